package protocol

import (
	"encoding/json"
	"fmt"
)

// NewStart builds the LogStart action.
func NewStart() Outbound {
	return Outbound{ID: LogStart}
}

// NewStop builds the LogStop action.
func NewStop() Outbound {
	return Outbound{ID: LogStop}
}

// NewDeveloperMode builds the developer-mode toggle request.
func NewDeveloperMode() Outbound {
	return Outbound{ID: LogDeveloperMode}
}

// NewPumpToggle builds a pump toggle request.
func NewPumpToggle(name string) Outbound {
	return Outbound{ID: LogPumpStatus, Name: name}
}

// NewPowerToggle builds an actuator power toggle request.
func NewPowerToggle(name string) Outbound {
	return Outbound{ID: LogActuatorPower, Name: name}
}

// NewModeToggle builds an actuator Auto/Manual toggle request.
func NewModeToggle(name string) Outbound {
	return Outbound{ID: LogActuatorMode, Name: name}
}

// NewPID builds a PID change. All three gains are always sent.
func NewPID(name string, p, i, d float64) Outbound {
	return Outbound{ID: LogActuatorPID, Name: name, P: &p, I: &i, D: &d}
}

// NewSetpoint builds a setpoint change.
func NewSetpoint(name string, value float64) Outbound {
	return Outbound{ID: LogActuatorSetpoint, Name: name, Value: &value}
}

// Encode renders an outbound action as one text frame.
func Encode(msg Outbound) ([]byte, error) {
	if msg.ID == "" {
		return nil, fmt.Errorf("encode outbound: %w", ErrMissingID)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.ID, err)
	}
	return data, nil
}
