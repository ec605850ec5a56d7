package connection

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       4,
	}
}

// drain keeps a server connection open until the peer goes away.
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
}

func TestClient_ConnectRefused(t *testing.T) {
	server := mockWSServer(t, drain)
	url := wsURL(server)
	server.Close()

	client := NewClient(testClientConfig(url), nil)
	if err := client.Connect(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}
	if client.IsConnected() {
		t.Error("expected IsConnected to return false")
	}
}

func TestClient_Send(t *testing.T) {
	received := make(chan []byte, 1)

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
		}
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	testMsg := []byte(`{"id":"LogPumpStatus","name":"Pump3"}`)
	if err := client.Send(testMsg); err != nil {
		t.Errorf("Send failed: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(testMsg) {
			t.Errorf("received %q, want %q", got, testMsg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for server to receive frame")
	}
}

func TestClient_SendWithoutWriteTimeout(t *testing.T) {
	received := make(chan []byte, 1)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			received <- msg
		}
		drain(conn)
	})
	defer server.Close()

	cfg := testClientConfig(wsURL(server))
	cfg.WriteTimeout = 0
	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte(`{"id":"LogStart"}`)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for server to receive frame")
	}
}

func TestClient_MessagesInOrderWithoutDrops(t *testing.T) {
	const total = 200

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for i := 0; i < total; i++ {
			msg := []byte(`{"id":"UpdateEnvironmentSensor","name":"tempsensor1","value":` + strconv.Itoa(i) + `}`)
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
		drain(conn)
	})
	defer server.Close()

	// BufferSize 4 forces the queue to grow while nobody reads.
	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	time.Sleep(100 * time.Millisecond)

	timeout := time.After(2 * time.Second)
	for i := 0; i < total; i++ {
		select {
		case msg := <-client.Messages():
			want := `{"id":"UpdateEnvironmentSensor","name":"tempsensor1","value":` + strconv.Itoa(i) + `}`
			if string(msg.Data) != want {
				t.Fatalf("message %d: got %q, want %q", i, msg.Data, want)
			}
			if msg.ReceivedAt.IsZero() {
				t.Error("ReceivedAt should not be zero")
			}
		case <-timeout:
			t.Fatalf("timeout waiting for messages, received %d of %d", i, total)
		}
	}
}

func TestClient_PeerCloseReportsCloseError(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"UpdateStop"}`))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "controller rebooting"),
			time.Now().Add(time.Second))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var frames int
	for range client.Messages() {
		frames++
	}
	if frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}

	select {
	case err := <-client.Errors():
		var closeErr *websocket.CloseError
		if !errors.As(err, &closeErr) {
			t.Fatalf("expected *websocket.CloseError, got %T: %v", err, err)
		}
		if closeErr.Code != websocket.CloseGoingAway {
			t.Errorf("Code = %d, want %d", closeErr.Code, websocket.CloseGoingAway)
		}
		if closeErr.Text != "controller rebooting" {
			t.Errorf("Text = %q, want %q", closeErr.Text, "controller rebooting")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for close error")
	}
}

func TestClient_SendNotConnected(t *testing.T) {
	client := NewClient(testClientConfig("ws://localhost:12345"), nil)

	err := client.Send([]byte("test"))
	if err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)

	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// First close should succeed
	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should be no-op
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	if err := client.Connect(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_ConcurrentSends(t *testing.T) {
	var mu sync.Mutex
	var count int

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			mu.Lock()
			count++
			mu.Unlock()
		}
	})
	defer server.Close()

	client := NewClient(testClientConfig(wsURL(server)), nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.Send([]byte(`{"id":"LogStart"}`)); err != nil {
				t.Errorf("Send failed: %v", err)
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == 10 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	t.Errorf("server received %d frames, want 10", count)
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()
	if cfg.URL != "ws://192.168.7.180:80/ws" {
		t.Errorf("URL = %s, want ws://192.168.7.180:80/ws", cfg.URL)
	}
	if cfg.HandshakeTimeout != 10*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 10s", cfg.HandshakeTimeout)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0", cfg.WriteTimeout)
	}
	if cfg.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, want 1024", cfg.BufferSize)
	}
}
