package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingID      = errors.New("message has no id")
)

// UnknownIDError is returned for a message whose id is outside the inbound set.
type UnknownIDError struct {
	ID string
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("unknown message id %q", e.ID)
}

// FieldError is returned when a known message carries a field of the wrong type.
type FieldError struct {
	ID    InboundID
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %s: %v", e.ID, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// InboundID identifies a controller → panel state update.
type InboundID string

const (
	UpdateStart             InboundID = "UpdateStart"
	UpdateStop              InboundID = "UpdateStop"
	UpdateDevMode           InboundID = "UpdateDevMode"
	UpdateSystemOverview    InboundID = "UpdateSystemOverview"
	UpdateEnvironmentSensor InboundID = "UpdateEnvironmentSensor"
	UpdatePumpStatus        InboundID = "UpdatePumpStatus"
	UpdateWaterLevel        InboundID = "UpdateWaterLevel"
	UpdateActuatorPower     InboundID = "UpdateActuatorPower"
	UpdateActuatorMode      InboundID = "UpdateActuatorMode"
	UpdatePIDInput          InboundID = "UpdatePIDInput"
	UpdatePIDSetpoint       InboundID = "UpdatePIDSetpoint"
	UpdatePIDActual         InboundID = "UpdatePIDActual"
)

// InboundIDs lists every inbound id in dispatch order.
var InboundIDs = []InboundID{
	UpdateStart,
	UpdateStop,
	UpdateDevMode,
	UpdateSystemOverview,
	UpdateEnvironmentSensor,
	UpdatePumpStatus,
	UpdateWaterLevel,
	UpdateActuatorPower,
	UpdateActuatorMode,
	UpdatePIDInput,
	UpdatePIDSetpoint,
	UpdatePIDActual,
}

// OutboundID identifies a panel → controller log action.
type OutboundID string

const (
	LogStart            OutboundID = "LogStart"
	LogStop             OutboundID = "LogStop"
	LogDeveloperMode    OutboundID = "LogDeveloperMode"
	LogPumpStatus       OutboundID = "LogPumpStatus"
	LogActuatorPower    OutboundID = "LogActuatorPower"
	LogActuatorMode     OutboundID = "LogActuatorMode"
	LogActuatorPID      OutboundID = "LogActuatorPID"
	LogActuatorSetpoint OutboundID = "LogActuatorSetpoint"
)

// Binary state values carried in the "state" field.
const (
	StateOn     = "On"
	StateOff    = "Off"
	StateAuto   = "Auto"
	StateManual = "Manual"
)

// Inbound is one decoded state update. The concrete type is selected by id.
type Inbound interface {
	InboundID() InboundID
}

// StartUpdate marks the chamber as running.
type StartUpdate struct{}

// StopUpdate marks the chamber as stopped.
type StopUpdate struct{}

// DevModeUpdate carries the developer-mode lockout state.
type DevModeUpdate struct {
	State string
}

// OverviewUpdate sets one system overview field.
type OverviewUpdate struct {
	Name  string
	Value Value
}

// SensorUpdate sets one environment sensor reading.
type SensorUpdate struct {
	Name  string
	Value Value
}

// PumpUpdate carries a pump's power state.
type PumpUpdate struct {
	Name  string
	State string
}

// WaterLevelUpdate carries a water level sensor's state ("On" = high).
type WaterLevelUpdate struct {
	Name  string
	State string
}

// PowerUpdate carries an actuator's power state.
type PowerUpdate struct {
	Name  string
	State string
}

// ModeUpdate carries an actuator's Auto/Manual mode.
type ModeUpdate struct {
	Name  string
	State string
}

// PIDInputUpdate carries PID gains. Nil gains were absent and stay untouched.
type PIDInputUpdate struct {
	Name string
	P    *float64
	I    *float64
	D    *float64
}

// SetpointUpdate sets an actuator's PID setpoint.
type SetpointUpdate struct {
	Name  string
	Value Value
}

// ActualUpdate sets an actuator's observed value.
type ActualUpdate struct {
	Name  string
	Value Value
}

func (StartUpdate) InboundID() InboundID      { return UpdateStart }
func (StopUpdate) InboundID() InboundID       { return UpdateStop }
func (DevModeUpdate) InboundID() InboundID    { return UpdateDevMode }
func (OverviewUpdate) InboundID() InboundID   { return UpdateSystemOverview }
func (SensorUpdate) InboundID() InboundID     { return UpdateEnvironmentSensor }
func (PumpUpdate) InboundID() InboundID       { return UpdatePumpStatus }
func (WaterLevelUpdate) InboundID() InboundID { return UpdateWaterLevel }
func (PowerUpdate) InboundID() InboundID      { return UpdateActuatorPower }
func (ModeUpdate) InboundID() InboundID       { return UpdateActuatorMode }
func (PIDInputUpdate) InboundID() InboundID   { return UpdatePIDInput }
func (SetpointUpdate) InboundID() InboundID   { return UpdatePIDSetpoint }
func (ActualUpdate) InboundID() InboundID     { return UpdatePIDActual }

// Value is a scalar payload displayed verbatim.
type Value struct {
	raw json.RawMessage
}

// StringValue builds a Value holding a JSON string.
func StringValue(s string) Value {
	data, _ := json.Marshal(s)
	return Value{raw: data}
}

// NumberValue builds a Value holding a JSON number.
func NumberValue(f float64) Value {
	data, _ := json.Marshal(f)
	return Value{raw: data}
}

// IsZero reports whether the value was absent or null.
func (v Value) IsZero() bool {
	return len(v.raw) == 0 || bytes.Equal(v.raw, []byte("null"))
}

// String returns the display text: strings unquoted, other scalars as written.
func (v Value) String() string {
	if v.IsZero() {
		return ""
	}
	if v.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
	}
	return string(v.raw)
}

// MarshalJSON writes the value back as it was received.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

// messageWire is the wire format shared by every inbound message.
type messageWire struct {
	ID    json.RawMessage `json:"id"`
	Name  json.RawMessage `json:"name"`
	Value json.RawMessage `json:"value"`
	State json.RawMessage `json:"state"`
	P     json.RawMessage `json:"P"`
	I     json.RawMessage `json:"I"`
	D     json.RawMessage `json:"D"`
}

// Outbound is one panel → controller log action.
type Outbound struct {
	ID    OutboundID `json:"id"`
	Name  string     `json:"name,omitempty"`
	P     *float64   `json:"P,omitempty"`
	I     *float64   `json:"I,omitempty"`
	D     *float64   `json:"D,omitempty"`
	Value *float64   `json:"value,omitempty"`
}
