package connection

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/chamber-panel/internal/metrics"
)

func nextEvent(t *testing.T, m Manager) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestManager_StartDeliversOpenAndFrames(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"id":"UpdateStart"},{"id":"UpdateDevMode","state":"Off"}]`))
		drain(conn)
	})
	defer server.Close()

	m := NewManager(testClientConfig(wsURL(server)), nil)
	require.Equal(t, StateConnecting, m.Status().State)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop(context.Background())

	ev := nextEvent(t, m)
	require.Equal(t, EventOpen, ev.Kind)
	require.Equal(t, StateOpen, m.Status().State)
	require.False(t, m.Status().ConnectedAt.IsZero())

	select {
	case f := <-m.Frames():
		require.JSONEq(t, `[{"id":"UpdateStart"},{"id":"UpdateDevMode","state":"Off"}]`, string(f.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
	require.EqualValues(t, 1, m.Status().FramesReceived)
}

func TestManager_PeerCloseAfterFrames(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"UpdateStart"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"UpdateStop"}`))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4000, "shutting down"),
			time.Now().Add(time.Second))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	m := NewManager(testClientConfig(wsURL(server)), nil)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop(context.Background())

	require.Equal(t, EventOpen, nextEvent(t, m).Kind)

	// Both frames arrive before the close is reported.
	for _, want := range []string{`{"id":"UpdateStart"}`, `{"id":"UpdateStop"}`} {
		select {
		case f := <-m.Frames():
			require.Equal(t, want, string(f.Data))
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for frame")
		}
	}

	ev := nextEvent(t, m)
	require.Equal(t, EventClosed, ev.Kind)
	require.Equal(t, 4000, ev.Code)
	require.Equal(t, "shutting down", ev.Reason)

	status := m.Status()
	require.Equal(t, StateClosed, status.State)
	require.Equal(t, 4000, status.CloseCode)
	require.Equal(t, "shutting down", status.CloseReason)

	// No reconnect: sends fail from here on.
	require.ErrorIs(t, m.Send([]byte(`{"id":"LogStart"}`)), ErrNotConnected)
}

func TestManager_TransportErrorIsTerminal(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Drop the TCP connection without a close frame.
		conn.UnderlyingConn().Close()
	})
	defer server.Close()

	m := NewManager(testClientConfig(wsURL(server)), nil)
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop(context.Background())

	require.Equal(t, EventOpen, nextEvent(t, m).Kind)

	ev := nextEvent(t, m)
	require.Equal(t, EventError, ev.Kind)
	require.Error(t, ev.Err)
	require.Equal(t, StateFailed, m.Status().State)
	require.NotEmpty(t, m.Status().LastError)
}

func TestManager_DialFailure(t *testing.T) {
	server := mockWSServer(t, drain)
	url := wsURL(server)
	server.Close()

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheusCollector(reg)
	require.NoError(t, err)

	m := NewManager(testClientConfig(url), nil, WithMetrics(collector))
	err = m.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, StateFailed, m.Status().State)
	require.NotEmpty(t, m.Status().LastError)

	ev := nextEvent(t, m)
	require.Equal(t, EventError, ev.Kind)
	require.Error(t, ev.Err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var failed float64
	for _, mf := range families {
		if mf.GetName() != "chamber_panel_connection_state" {
			continue
		}
		for _, metric := range mf.Metric {
			for _, lp := range metric.Label {
				if lp.GetValue() == string(StateFailed) {
					failed = metric.GetGauge().GetValue()
				}
			}
		}
	}
	require.Equal(t, 1.0, failed)

	require.ErrorIs(t, m.Start(context.Background()), ErrAlreadyStarted)
}

func TestManager_Send(t *testing.T) {
	received := make(chan string, 2)
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(msg)
		}
	})
	defer server.Close()

	m := NewManager(testClientConfig(wsURL(server)), nil)
	require.ErrorIs(t, m.Send([]byte(`{}`)), ErrNotConnected)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop(context.Background())

	require.NoError(t, m.Send([]byte(`{"id":"LogPumpStatus","name":"Pump3"}`)))

	select {
	case got := <-received:
		require.Equal(t, `{"id":"LogPumpStatus","name":"Pump3"}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server to receive frame")
	}
	require.EqualValues(t, 1, m.Status().FramesSent)
}

func TestManager_StopWithUnreadFrames(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		for i := 0; i < 10; i++ {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"UpdateStart"}`))
		}
		drain(conn)
	})
	defer server.Close()

	m := NewManager(testClientConfig(wsURL(server)), nil)
	require.NoError(t, m.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	require.NoError(t, ctx.Err())
}

// slowClient is a Client whose handshake takes a while and then fails.
type slowClient struct {
	delay time.Duration
}

func (c *slowClient) Connect(ctx context.Context) error {
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
	}
	return errors.New("connection refused")
}

func (c *slowClient) Close() error { return nil }
func (c *slowClient) Send([]byte) error { return ErrNotConnected }
func (c *slowClient) Messages() <-chan Frame { return nil }
func (c *slowClient) Errors() <-chan error { return nil }
func (c *slowClient) IsConnected() bool { return false }

func TestManager_SendWhileDialing(t *testing.T) {
	m := NewManager(testClientConfig("ws://chamber.invalid/ws"), nil).(*manager)
	m.newClient = func(ClientConfig, *slog.Logger) Client {
		return &slowClient{delay: 50 * time.Millisecond}
	}

	stop := make(chan struct{})
	sendErrs := make(chan error, 1)
	go func() {
		for {
			err := m.Send([]byte(`{"id":"LogStart"}`))
			if err == nil {
				err = errors.New("send succeeded before the connection opened")
			}
			select {
			case <-stop:
				sendErrs <- err
				return
			default:
			}
			if !errors.Is(err, ErrNotConnected) {
				sendErrs <- err
				return
			}
		}
	}()

	require.Error(t, m.Start(context.Background()))
	close(stop)

	require.ErrorIs(t, <-sendErrs, ErrNotConnected)
	require.Equal(t, StateFailed, m.Status().State)
	require.NoError(t, m.Stop(context.Background()))
}
