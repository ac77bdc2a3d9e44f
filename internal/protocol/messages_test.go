// ABOUTME: Tests for protocol message decoding
// ABOUTME: Checks that generic payloads decode into typed messages
package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodePlay(t *testing.T) {
	raw := `{"type":"sound/play","payload":{"id":7,"props":{"event.id":"bell"}}}`

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if msg.Type != TypeSoundPlay {
		t.Fatalf("expected %s, got %s", TypeSoundPlay, msg.Type)
	}

	var play SoundPlay
	if err := Decode(msg.Payload, &play); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if play.ID != 7 || play.Props["event.id"] != "bell" {
		t.Errorf("unexpected play %+v", play)
	}
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	var play SoundPlay
	if err := Decode(map[string]interface{}{"id": "seven"}, &play); err == nil {
		t.Error("expected error for string id")
	}
	if err := Decode(map[string]interface{}{"id": -1}, &play); err == nil {
		t.Error("expected error for negative id")
	}
}
