// ABOUTME: WebSocket client for the chime daemon
// ABOUTME: Handles connection, handshake and sound play/cancel messages
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/Sendspin/chime/internal/protocol"
	"github.com/gorilla/websocket"
)

// Config holds client configuration
type Config struct {
	ServerAddr string
	// Path is the websocket endpoint; defaults to protocol.Path
	Path       string
	ClientID   string
	Name       string
	DeviceInfo protocol.DeviceInfo
}

// Client represents a WebSocket client
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Finished receives sound/finished reports
	Finished chan protocol.SoundFinished
	// Errors receives server/error reports
	Errors chan protocol.ServerError

	serverHello protocol.ServerHello

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:   config,
		Finished: make(chan protocol.SoundFinished, 16),
		Errors:   make(chan protocol.ServerError, 4),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	path := c.config.Path
	if path == "" {
		path = protocol.Path
	}
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake performs the protocol handshake
func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    protocol.Version,
		DeviceInfo: &c.config.DeviceInfo,
	}

	if err := c.sendJSON(protocol.Message{Type: protocol.TypeClientHello, Payload: hello}); err != nil {
		return fmt.Errorf("failed to send client/hello: %w", err)
	}

	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var serverMsg protocol.Message
	if err := json.Unmarshal(data, &serverMsg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	switch serverMsg.Type {
	case protocol.TypeServerHello:
	case protocol.TypeServerError:
		var e protocol.ServerError
		protocol.Decode(serverMsg.Payload, &e)
		return fmt.Errorf("server rejected connection: %s", e.Message)
	default:
		return fmt.Errorf("expected server/hello, got %s", serverMsg.Type)
	}

	if err := protocol.Decode(serverMsg.Payload, &c.serverHello); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	log.Printf("Handshake complete with server %s", c.serverHello.Name)
	return nil
}

// ServerHello returns the daemon's handshake reply
func (c *Client) ServerHello() protocol.ServerHello {
	return c.serverHello
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.IsConnected() {
				log.Printf("Read error: %v", err)
			}
			return
		}

		if messageType == websocket.TextMessage {
			c.handleJSONMessage(data)
		}
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeSoundFinished:
		var finished protocol.SoundFinished
		if err := protocol.Decode(msg.Payload, &finished); err != nil {
			log.Printf("Failed to parse sound/finished: %v", err)
			return
		}
		select {
		case c.Finished <- finished:
		case <-c.ctx.Done():
		}

	case protocol.TypeServerError:
		var e protocol.ServerError
		protocol.Decode(msg.Payload, &e)
		select {
		case c.Errors <- e:
		case <-c.ctx.Done():
		}

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// Play asks the daemon to play a sound
func (c *Client) Play(id uint32, props map[string]string) error {
	return c.sendJSON(protocol.Message{
		Type:    protocol.TypeSoundPlay,
		Payload: protocol.SoundPlay{ID: id, Props: props},
	})
}

// Cancel asks the daemon to cancel every sound with id
func (c *Client) Cancel(id uint32) error {
	return c.sendJSON(protocol.Message{
		Type:    protocol.TypeSoundCancel,
		Payload: protocol.SoundCancel{ID: id},
	})
}

// Wait blocks until id finishes, the connection drops or ctx ends.
// Reports for other ids are discarded.
func (c *Client) Wait(ctx context.Context, id uint32) (protocol.SoundFinished, error) {
	for {
		select {
		case f := <-c.Finished:
			if f.ID == id {
				return f, nil
			}
		case <-c.ctx.Done():
			return protocol.SoundFinished{}, fmt.Errorf("connection closed")
		case <-ctx.Done():
			return protocol.SoundFinished{}, ctx.Err()
		}
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
