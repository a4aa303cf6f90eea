// Package ws serves a read-only debug stream of dispatch statistics
// over websocket. Observers get the latest stats snapshot on connect and
// every broadcast thereafter; slow observers are dropped, never waited
// on, so the stream can never back-pressure the simulation.
package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*conn]struct{}
	latest []byte
}

type conn struct {
	out chan []byte
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		log:   logger,
		conns: map[*conn]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Broadcast queues a stats snapshot to every connected observer.
// Called from the simulation loop; never blocks.
func (s *Server) Broadcast(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = b
	for c := range s.conns {
		select {
		case c.out <- b:
		default:
			// Observer not keeping up; it will catch the next snapshot.
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		wc, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer wc.Close()

		c := &conn{out: make(chan []byte, 8)}
		s.mu.Lock()
		if s.latest != nil {
			c.out <- s.latest
		}
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(s.conns, c)
			s.mu.Unlock()
		}()

		// Drain reads so pings/close frames are processed; observers
		// have nothing to say.
		done := make(chan struct{})
		go func() {
			for {
				if _, _, err := wc.ReadMessage(); err != nil {
					close(done)
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case b := <-c.out:
				_ = wc.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := wc.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}
