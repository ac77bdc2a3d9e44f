// ABOUTME: Event sound playback driver
// ABOUTME: Plays, cancels and drains concurrent sounds on one output device
// Package chime plays event sounds asynchronously on a single output device.
//
// A Driver accepts Play requests, resolves their properties into a sound
// source, negotiates the output device and streams the sound on its own
// goroutine. Every accepted request reports exactly one terminal Status
// through its FinishFunc: Success or an error status when the stream ends,
// Canceled after Cancel, or Destroyed after Destroy.
//
// Example:
//
//	d, err := chime.Open(chime.Config{})
//	defer d.Destroy()
//
//	err = d.Play(1, chime.Props{chime.PropEventID: "bell"},
//	    func(d *chime.Driver, id uint32, status chime.Status) {
//	        log.Printf("sound %d finished: %v", id, status)
//	    })
//
//	d.Cancel(1)
package chime
