// ABOUTME: Tests for WebSocket client implementation
// ABOUTME: Tests handshake and message routing against an in-process server
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sendspin/chime/internal/protocol"
	"github.com/gorilla/websocket"
)

func TestNewClient(t *testing.T) {
	config := Config{
		ServerAddr: "localhost:8928",
		ClientID:   "test-client",
		Name:       "Test Client",
	}

	client := NewClient(config)
	if client == nil {
		t.Fatal("expected client to be created")
	}

	if client.config.ServerAddr != "localhost:8928" {
		t.Errorf("expected server addr localhost:8928, got %s", client.config.ServerAddr)
	}
	if client.IsConnected() {
		t.Error("new client should not be connected")
	}
}

// echoServer answers the handshake and replies to every sound/play with success
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	mux := http.NewServeMux()
	mux.HandleFunc(protocol.Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var hello protocol.Message
		if err := conn.ReadJSON(&hello); err != nil || hello.Type != protocol.TypeClientHello {
			return
		}
		conn.WriteJSON(protocol.Message{Type: protocol.TypeServerHello, Payload: protocol.ServerHello{ServerID: "s1", Name: "test", Version: protocol.Version}})

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg protocol.Message
			json.Unmarshal(data, &msg)
			if msg.Type != protocol.TypeSoundPlay {
				continue
			}
			var play protocol.SoundPlay
			protocol.Decode(msg.Payload, &play)

			// A report for another id first, which Wait must skip
			conn.WriteJSON(protocol.Message{Type: protocol.TypeSoundFinished, Payload: protocol.SoundFinished{ID: play.ID + 1, Status: "canceled"}})
			conn.WriteJSON(protocol.Message{Type: protocol.TypeSoundFinished, Payload: protocol.SoundFinished{ID: play.ID, Status: "success"}})
		}
	})

	return httptest.NewServer(mux)
}

func TestPlayAndWait(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	c := NewClient(Config{
		ServerAddr: strings.TrimPrefix(srv.URL, "http://"),
		ClientID:   "c1",
		Name:       "test",
	})
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	if got := c.ServerHello().ServerID; got != "s1" {
		t.Errorf("expected server id s1, got %q", got)
	}

	if err := c.Play(4, map[string]string{"event.id": "bell"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	f, err := c.Wait(ctx, 4)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if f.Status != "success" {
		t.Errorf("expected success, got %s", f.Status)
	}
}

func TestSendWhenClosed(t *testing.T) {
	c := NewClient(Config{ServerAddr: "localhost:1"})
	if err := c.Play(1, nil); err == nil {
		t.Error("expected error sending on unconnected client")
	}
	if err := c.Cancel(1); err == nil {
		t.Error("expected error canceling on unconnected client")
	}
}
