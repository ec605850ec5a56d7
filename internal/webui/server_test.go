package webui

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/chamber-panel/internal/connection"
	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/metrics"
	"github.com/rickgao/chamber-panel/internal/panel"
	"github.com/rickgao/chamber-panel/internal/router"
)

type change struct {
	key, text string
}

type fakePanel struct {
	clicks  []string
	changes []change
	err     error
	stats   router.Stats
}

func (f *fakePanel) RenderPage(context.Context) (string, error) {
	return "<html><body>page</body></html>", f.err
}

func (f *fakePanel) RenderFragment(context.Context) (string, error) {
	return "<header>fragment</header>", f.err
}

func (f *fakePanel) Click(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.clicks = append(f.clicks, key)
	return nil
}

func (f *fakePanel) Change(_ context.Context, key, text string) error {
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, change{key, text})
	return nil
}

func (f *fakePanel) RouterStats() router.Stats { return f.stats }

type fakeStatus struct {
	status connection.Status
}

func (f fakeStatus) Status() connection.Status { return f.status }

func openStatus() fakeStatus {
	return fakeStatus{connection.Status{State: connection.StateOpen, URL: "ws://chamber/ws"}}
}

func TestHandler_Page(t *testing.T) {
	h := NewHandler(&fakePanel{}, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "page")
}

func TestHandler_Fragment(t *testing.T) {
	h := NewHandler(&fakePanel{}, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, dashboard.FragmentPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<header>fragment</header>", rec.Body.String())
}

func TestHandler_UnknownPath(t *testing.T) {
	h := NewHandler(&fakePanel{}, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Click(t *testing.T) {
	p := &fakePanel{}
	h := NewHandler(p, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, dashboard.ClickPath+"?key=Pump3", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"Pump3"}, p.clicks)
}

func TestHandler_ClickRequiresPost(t *testing.T) {
	p := &fakePanel{}
	h := NewHandler(p, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, dashboard.ClickPath+"?key=Pump3", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Empty(t, p.clicks)
}

func TestHandler_ClickMissingKey(t *testing.T) {
	h := NewHandler(&fakePanel{}, openStatus())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, dashboard.ClickPath, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ClickErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown key", dashboard.ErrNoElement, http.StatusNotFound},
		{"disabled", dashboard.ErrDisabled, http.StatusConflict},
		{"read only", dashboard.ErrReadOnly, http.StatusConflict},
		{"stopped", panel.ErrStopped, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakePanel{err: tt.err}, openStatus())

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, dashboard.ClickPath+"?key=x", nil))
			require.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandler_Change(t *testing.T) {
	p := &fakePanel{}
	h := NewHandler(p, openStatus())

	key := dashboard.PIDFieldKey(dashboard.Center, "P")
	form := url.Values{"value": {"1.25"}}
	req := httptest.NewRequest(http.MethodPost, dashboard.ChangePath+"?key="+url.QueryEscape(key), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []change{{key, "1.25"}}, p.changes)
}

func TestHandler_Health(t *testing.T) {
	p := &fakePanel{stats: router.Stats{FramesReceived: 3, MessagesRouted: 7}}
	h := NewHandler(p, openStatus(), WithComponent("journal", func() any {
		return map[string]int{"written": 5}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Status     string `json:"status"`
		Connection struct {
			State string `json:"state"`
			URL   string `json:"url"`
		} `json:"connection"`
		Router     router.Stats              `json:"router"`
		Components map[string]map[string]int `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "healthy", body.Status)
	require.Equal(t, "open", body.Connection.State)
	require.Equal(t, "ws://chamber/ws", body.Connection.URL)
	require.EqualValues(t, 3, body.Router.FramesReceived)
	require.EqualValues(t, 7, body.Router.MessagesRouted)
	require.Equal(t, 5, body.Components["journal"]["written"])
}

func TestHandler_HealthAfterClose(t *testing.T) {
	status := fakeStatus{connection.Status{State: connection.StateClosed, CloseCode: 1001}}
	h := NewHandler(&fakePanel{}, status)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"unhealthy"`)
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheusCollector(reg)
	require.NoError(t, err)
	collector.IncFrame("ok")

	h := NewHandler(&fakePanel{}, openStatus(),
		WithMetricsHandler("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "chamber_panel_frames_total")
}

func TestServeListener_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, NewHandler(&fakePanel{}, openStatus()), nil)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + dashboard.FragmentPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, "<header>fragment</header>", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
