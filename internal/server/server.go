// ABOUTME: chime daemon implementation
// ABOUTME: Accepts WebSocket clients and plays their sounds on a shared driver
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/chime/internal/discovery"
	"github.com/Sendspin/chime/internal/protocol"
	"github.com/Sendspin/chime/internal/version"
	"github.com/Sendspin/chime/pkg/chime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
}

// Server plays sounds requested by remote clients
type Server struct {
	config   Config
	serverID string
	driver   *chime.Driver

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Driver ids are allocated here so client ids can overlap
	nextID atomic.Uint32

	// mDNS announcement, nil when disabled or failed
	announcement *discovery.Announcement

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected client
type Client struct {
	ID   string
	Name string
	Conn *websocket.Conn

	// Output channel for messages
	sendChan chan interface{}

	mu     sync.Mutex
	closed bool
	// client sound id -> driver ids currently playing for it
	sounds map[uint32]map[uint32]struct{}
}

// New creates a server that plays through driver. The caller owns the driver
// and destroys it after Start returns.
func New(config Config, driver *chime.Driver) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		driver:   driver,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: For production deployment, implement proper origin validation
				// This daemon is designed for trusted local networks only
				origin := r.Header.Get("Origin")
				if origin != "" && origin != "http://localhost" && origin != "http://127.0.0.1" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}

	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the protocol endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	log.Printf("Server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		a, err := discovery.Announce(s.config.Name, s.config.Port)
		if err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			s.announcement = a
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("WebSocket server listening on %s%s", addr, protocol.Path)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Printf("Server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdown()

	if s.announcement != nil {
		if err := s.announcement.Close(); err != nil {
			log.Printf("mDNS shutdown error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Server stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// shutdown rejects new connections and closes the open ones
func (s *Server) shutdown() {
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	s.clientsMu.RLock()
	for _, c := range s.clients {
		c.Conn.Close()
	}
	s.clientsMu.RUnlock()
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New WebSocket connection from %s", r.RemoteAddr)
	s.handleConnection(conn)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.shutdownMu.RUnlock()

	if s.config.Debug {
		log.Printf("[DEBUG] New connection, waiting for handshake")
	}

	hello, err := readHello(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		return
	}

	log.Printf("Client hello: %s (ID: %s)", hello.Name, hello.ClientID)

	client := &Client{
		ID:       hello.ClientID,
		Name:     hello.Name,
		Conn:     conn,
		sendChan: make(chan interface{}, 100),
		sounds:   make(map[uint32]map[uint32]struct{}),
	}

	// Check for duplicate client ID and register atomically
	s.clientsMu.Lock()
	if existing, exists := s.clients[hello.ClientID]; exists {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", hello.ClientID, existing.Name)

		errorMsg := protocol.Message{
			Type: protocol.TypeServerError,
			Payload: protocol.ServerError{
				Error:   "duplicate_client_id",
				Message: "Client ID already connected",
			},
		}
		if data, err := json.Marshal(errorMsg); err == nil {
			conn.WriteMessage(websocket.TextMessage, data)
		}
		return
	}
	s.clients[client.ID] = client
	s.clientsMu.Unlock()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		s.clientsMu.Unlock()

		// Sounds die with their connection
		for _, id := range client.allDriverIDs() {
			s.driver.Cancel(id)
		}
		client.close()
		log.Printf("Client disconnected: %s", client.Name)
	}()

	serverHello := protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.Version,
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	}

	if err := s.sendMessage(client, protocol.TypeServerHello, serverHello); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		s.handleClientMessage(client, data)
	}
}

// readHello waits for and validates client/hello
func readHello(conn *websocket.Conn) (*protocol.ClientHello, error) {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("error reading hello: %w", err)
	}

	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("error unmarshaling message: %w", err)
	}

	if msg.Type != protocol.TypeClientHello {
		return nil, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}

	var hello protocol.ClientHello
	if err := protocol.Decode(msg.Payload, &hello); err != nil {
		return nil, fmt.Errorf("error unmarshaling client hello: %w", err)
	}

	if hello.ClientID == "" {
		return nil, fmt.Errorf("client hello missing ClientID")
	}
	if hello.Name == "" {
		return nil, fmt.Errorf("client hello missing Name")
	}

	return &hello, nil
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing text message: %v", err)
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeSoundPlay:
		s.handlePlay(client, msg.Payload)
	case protocol.TypeSoundCancel:
		s.handleCancel(client, msg.Payload)
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// handlePlay starts a sound and reports its status when it finishes
func (s *Server) handlePlay(client *Client, payload interface{}) {
	var play protocol.SoundPlay
	if err := protocol.Decode(payload, &play); err != nil {
		log.Printf("Error unmarshaling sound/play: %v", err)
		s.sendError(client, "invalid_message", err.Error())
		return
	}

	props := chime.Props(play.Props)
	if props == nil {
		props = chime.Props{}
	}

	driverID := s.nextID.Add(1)
	client.track(play.ID, driverID)

	err := s.driver.Play(driverID, props, func(_ *chime.Driver, _ uint32, status chime.Status) {
		client.untrack(play.ID, driverID)
		s.finish(client, play.ID, status, nil)
	})
	if err != nil {
		client.untrack(play.ID, driverID)
		s.finish(client, play.ID, chime.StatusOf(err), err)
		return
	}

	if s.config.Debug {
		log.Printf("[DEBUG] %s: sound %d playing as %d", client.Name, play.ID, driverID)
	}
}

// handleCancel cancels every sound the client started with the given id
func (s *Server) handleCancel(client *Client, payload interface{}) {
	var cancel protocol.SoundCancel
	if err := protocol.Decode(payload, &cancel); err != nil {
		log.Printf("Error unmarshaling sound/cancel: %v", err)
		s.sendError(client, "invalid_message", err.Error())
		return
	}

	for _, id := range client.driverIDs(cancel.ID) {
		if err := s.driver.Cancel(id); err != nil {
			log.Printf("Error canceling sound %d: %v", cancel.ID, err)
		}
	}
}

func (s *Server) finish(client *Client, id uint32, status chime.Status, err error) {
	msg := protocol.SoundFinished{
		ID:     id,
		Status: status.String(),
		Code:   int(status),
	}
	if err != nil {
		msg.Error = err.Error()
	}

	if err := s.sendMessage(client, protocol.TypeSoundFinished, msg); err != nil && s.config.Debug {
		log.Printf("[DEBUG] Dropping sound/finished for %s: %v", client.Name, err)
	}
}

func (s *Server) sendError(client *Client, code, message string) {
	s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{Error: code, Message: message})
}

// sendMessage queues a JSON message for a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	return client.send(protocol.Message{
		Type:    msgType,
		Payload: payload,
	})
}

// send queues msg unless the client is gone or its buffer is full
func (c *Client) send(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("client disconnected")
	}

	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.sendChan)
	}
}

func (c *Client) track(id, driverID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sounds[id] == nil {
		c.sounds[id] = make(map[uint32]struct{})
	}
	c.sounds[id][driverID] = struct{}{}
}

func (c *Client) untrack(id, driverID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sounds[id], driverID)
	if len(c.sounds[id]) == 0 {
		delete(c.sounds, id)
	}
}

func (c *Client) driverIDs(id uint32) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []uint32
	for driverID := range c.sounds[id] {
		ids = append(ids, driverID)
	}
	return ids
}

func (c *Client) allDriverIDs() []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []uint32
	for _, set := range c.sounds {
		for driverID := range set {
			ids = append(ids, driverID)
		}
	}
	return ids
}
