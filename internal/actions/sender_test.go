package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/protocol"
)

type fakeTransport struct {
	frames []string
	err    error
}

func (f *fakeTransport) Send(data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, string(data))
	return nil
}

func TestSender_PumpToggleSendsOneFrame(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(tr)

	s.TogglePump("Pump3")

	require.Len(t, tr.frames, 1)
	require.JSONEq(t, `{"id":"LogPumpStatus","name":"Pump3"}`, tr.frames[0])
}

func TestSender_Actions(t *testing.T) {
	tests := []struct {
		name string
		act  func(*Sender)
		want string
	}{
		{"start", func(s *Sender) { s.Start() }, `{"id":"LogStart"}`},
		{"stop", func(s *Sender) { s.Stop() }, `{"id":"LogStop"}`},
		{"developer mode", func(s *Sender) { s.ToggleDeveloperMode() }, `{"id":"LogDeveloperMode"}`},
		{"power", func(s *Sender) { s.TogglePower(dashboard.FrontLeft) }, `{"id":"LogActuatorPower","name":"FrontLeft"}`},
		{"mode", func(s *Sender) { s.ToggleMode("Humidity2") }, `{"id":"LogActuatorMode","name":"Humidity2"}`},
		{"pid", func(s *Sender) { s.ChangePID(dashboard.Center, 1.5, 0, 0.25) }, `{"id":"LogActuatorPID","name":"Center","P":1.5,"I":0,"D":0.25}`},
		{"setpoint", func(s *Sender) { s.ChangeSetpoint(dashboard.BackLeft, 0) }, `{"id":"LogActuatorSetpoint","name":"BackLeft","value":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			tt.act(NewSender(tr))
			require.Len(t, tr.frames, 1)
			require.JSONEq(t, tt.want, tr.frames[0])
		})
	}
}

func TestSender_PIDCache(t *testing.T) {
	s := NewSender(&fakeTransport{})

	_, ok := s.Cache().Get(dashboard.FrontRight)
	require.False(t, ok)

	s.ChangePID(dashboard.FrontRight, 1, 2, 3)
	s.ChangeSetpoint(dashboard.FrontRight, 65.5)
	s.ChangePID(dashboard.FrontRight, 4, 5, 6)

	v, ok := s.Cache().Get(dashboard.FrontRight)
	require.True(t, ok)
	require.Equal(t, PIDValues{P: 4, I: 5, D: 6, Setpoint: 65.5}, v)
	require.Equal(t, 1, s.Cache().Len())
}

func TestSender_SendFailureIsSwallowed(t *testing.T) {
	tr := &fakeTransport{err: errors.New("not connected")}

	var hooked []protocol.OutboundID
	var hookErr error
	s := NewSender(tr, WithSendHook(func(id protocol.OutboundID, payload []byte, err error) {
		hooked = append(hooked, id)
		hookErr = err
		require.JSONEq(t, `{"id":"LogStop"}`, string(payload))
	}))

	s.Stop()

	require.Empty(t, tr.frames)
	require.Equal(t, []protocol.OutboundID{protocol.LogStop}, hooked)
	require.EqualError(t, hookErr, "not connected")
}

func TestSender_WiredIntoDashboard(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(tr)
	d := dashboard.Build(dashboard.DefaultTopology(), s)

	require.NoError(t, d.Click("Pump3"))
	require.NoError(t, d.Change(dashboard.PIDFieldKey(dashboard.BackRight, "I"), "0.5"))
	require.NoError(t, d.Change(dashboard.SetpointKey("Humidity1"), "not a number"))

	require.Len(t, tr.frames, 3)
	require.JSONEq(t, `{"id":"LogPumpStatus","name":"Pump3"}`, tr.frames[0])
	require.JSONEq(t, `{"id":"LogActuatorPID","name":"BackRight","P":0,"I":0.5,"D":0}`, tr.frames[1])
	require.JSONEq(t, `{"id":"LogActuatorSetpoint","name":"Humidity1","value":0}`, tr.frames[2])

	// Developer mode swallows the toggle entirely.
	d.SetDeveloperMode("On")
	require.ErrorIs(t, d.Click("Pump3"), dashboard.ErrDisabled)
	require.Len(t, tr.frames, 3)
}
