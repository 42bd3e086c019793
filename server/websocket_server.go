package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"frontdesk/config"
	"frontdesk/dialogue"
	"frontdesk/faq"
	"frontdesk/messages"
	"frontdesk/session"
	"frontdesk/store"
	"frontdesk/summary"

	"github.com/gorilla/websocket"
)

const (
	writeBufferSize = 64
	writeTimeout    = 10 * time.Second
)

type Server struct {
	httpServer     *http.Server
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	router         *dialogue.Router
	builder        *summary.Builder
	store          *store.Store
	matcher        *faq.Matcher
	config         *config.Config
}

func New(cfg *config.Config, sessionManager *session.Manager, router *dialogue.Router, builder *summary.Builder, st *store.Store, matcher *faq.Matcher) *Server {
	s := &Server{
		sessionManager: sessionManager,
		router:         router,
		builder:        builder,
		store:          st,
		matcher:        matcher,
		config:         cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Check allowed origins
				origin := r.Header.Get("Origin")
				for _, allowed := range cfg.AllowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	s.registerAPIRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Start begins listening for connections
func (s *Server) Start() error {
	log.Printf("🚀 Front desk server starting on port %d", s.config.Port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%d/ws", s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("🛑 Shutting down server...")
	s.sessionManager.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

// callConn owns a single WebSocket connection. All writes go through the
// write pump goroutine so agent replies, status updates, and keepalive pings
// never interleave on the wire.
type callConn struct {
	conn      *websocket.Conn
	writeChan chan *messages.ServerMessage
	closeChan chan struct{}
	closeOnce sync.Once
}

func newCallConn(conn *websocket.Conn) *callConn {
	return &callConn{
		conn:      conn,
		writeChan: make(chan *messages.ServerMessage, writeBufferSize),
		closeChan: make(chan struct{}),
	}
}

// queue adds a message to the write queue (non-blocking)
func (c *callConn) queue(msg *messages.ServerMessage) {
	select {
	case <-c.closeChan:
	case c.writeChan <- msg:
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
	}
}

func (c *callConn) writePump(keepalive time.Duration) {
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()
	defer func() {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-c.closeChan:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg := <-c.writeChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (c *callConn) close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		c.conn.Close()
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP to WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sess, err := s.sessionManager.CreateSession(r.Context())
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		errMsg := messages.NewErrorMessage("", messages.ErrCodeSessionFailed, err.Error())
		_ = conn.WriteJSON(errMsg)
		conn.Close()
		return
	}

	log.Printf("✅ [%s] New call connected", shortID(sess.ID))

	cc := newCallConn(conn)
	go cc.writePump(s.config.KeepAlivePeriod)
	cc.queue(messages.NewStatusMessage(sess.ID, "connected", "Session established"))

	runner := dialogue.NewRunner(sess, s.router, s.builder, func(text string) {
		cc.queue(messages.NewSayMessage(sess.ID, text))
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	runner.Start(ctx)

	// Send a terminal status once the call is finalized, whoever finalizes it.
	go func() {
		<-runner.Done()
		cc.queue(messages.NewStatusMessage(sess.ID, "closed", "Call complete"))
	}()

	s.readLoop(cc, sess, runner)

	// Disconnect without a clean close still yields a terminal summary
	runner.Abort()
	cc.close()
	s.sessionManager.RemoveSession(context.Background(), sess.ID)
	log.Printf("🔌 [%s] Call disconnected", shortID(sess.ID))
}

func (s *Server) readLoop(cc *callConn, sess *session.CallSession, runner *dialogue.Runner) {
	buffer := session.NewTranscriptBuffer()

	for {
		_, raw, err := cc.conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := messages.Decode(raw)
		if err != nil {
			cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeInvalidMessage, "Invalid message format"))
			continue
		}

		switch msg.Type {
		case "transcript":
			var payload messages.TranscriptPayload
			if err := messages.DecodePayload(msg, &payload); err != nil {
				cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeInvalidMessage, "Invalid transcript payload"))
				continue
			}
			if !payload.IsFinal {
				buffer.Append(payload.Text)
				continue
			}
			text := buffer.Flush(payload.Text)
			if text == "" {
				continue
			}
			if err := runner.Submit(text); err != nil {
				cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeSessionEnded, "Call already ended"))
			}

		case "control":
			var payload messages.ControlPayload
			if err := messages.DecodePayload(msg, &payload); err != nil {
				cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeInvalidMessage, "Invalid control payload"))
				continue
			}
			switch payload.Action {
			case "ping":
				cc.queue(messages.NewStatusMessage(sess.ID, "pong", ""))
			case "end_call":
				log.Printf("📞 [%s] Client requested end of call", shortID(sess.ID))
				runner.Abort()
				return
			default:
				cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeInvalidMessage, "Unknown control action: "+payload.Action))
			}

		default:
			cc.queue(messages.NewErrorMessage(sess.ID, messages.ErrCodeInvalidMessage, "Unknown message type: "+msg.Type))
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.sessionManager.ActiveSessionCount())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
