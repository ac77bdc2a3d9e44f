// ABOUTME: chime remote protocol message type definitions
// ABOUTME: Defines structs for all message types exchanged with the daemon
package protocol

import "encoding/json"

// Version is the protocol version spoken by this build
const Version = 1

// Path is the websocket endpoint served by the daemon
const Path = "/chime"

// Message types
const (
	TypeClientHello   = "client/hello"
	TypeServerHello   = "server/hello"
	TypeServerError   = "server/error"
	TypeSoundPlay     = "sound/play"
	TypeSoundCancel   = "sound/cancel"
	TypeSoundFinished = "sound/finished"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Decode re-marshals a generic payload into v
func Decode(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID   string      `json:"server_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// ServerError reports a rejected connection or message
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SoundPlay asks the daemon to play a sound. IDs are scoped to the connection.
type SoundPlay struct {
	ID    uint32            `json:"id"`
	Props map[string]string `json:"props"`
}

// SoundCancel cancels every sound on the connection with ID
type SoundCancel struct {
	ID uint32 `json:"id"`
}

// SoundFinished reports the terminal status of one sound/play
type SoundFinished struct {
	ID     uint32 `json:"id"`
	Status string `json:"status"` // chime.Status string, e.g. "success" or "canceled"
	Code   int    `json:"code"`   // numeric chime.Status
	Error  string `json:"error,omitempty"`
}
