package ws

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTest(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = wc.Close() })
	return wc
}

func readOne(t *testing.T, wc *websocket.Conn) string {
	t.Helper()
	_ = wc.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := wc.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestObserverGetsLatestOnConnect(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	s.Broadcast([]byte(`{"tick":1}`))

	wc := dialTest(t, s)
	if got := readOne(t, wc); got != `{"tick":1}` {
		t.Fatalf("first frame = %q, want the latest snapshot", got)
	}
}

func TestBroadcastReachesObserver(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	wc := dialTest(t, s)

	// The connect is registered under the server's lock before Handler
	// returns to the select loop, but give the handshake a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.Broadcast([]byte(`{"tick":2}`))
		_ = wc.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if _, b, err := wc.ReadMessage(); err == nil {
			if string(b) != `{"tick":2}` {
				t.Fatalf("frame = %q, want the broadcast snapshot", b)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("no broadcast received before deadline")
		}
	}
}

func TestBroadcastNeverBlocks(t *testing.T) {
	s := NewServer(log.New(io.Discard, "", 0))
	_ = dialTest(t, s) // connected but never reading

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Broadcast([]byte(`{"tick":3}`))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Broadcast blocked on a slow observer")
	}
}
