package dashboard

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrNoElement = errors.New("no such element")
	ErrDisabled  = errors.New("control disabled")
	ErrReadOnly  = errors.New("control is read-only")
)

// ActuatorName identifies a peltier or humidifier panel.
type ActuatorName string

// Fixed peltier positions.
const (
	FrontLeft  ActuatorName = "FrontLeft"
	FrontRight ActuatorName = "FrontRight"
	BackLeft   ActuatorName = "BackLeft"
	BackRight  ActuatorName = "BackRight"
	Center     ActuatorName = "Center"
)

// Peltiers lists the peltier panels in display order.
var Peltiers = []ActuatorName{FrontLeft, FrontRight, BackLeft, BackRight, Center}

// Humidifier returns the name of the i-th humidifier (1-based).
func Humidifier(i int) ActuatorName {
	return ActuatorName(fmt.Sprintf("Humidity%d", i))
}

// PumpName identifies a pump toggle.
type PumpName string

// Pump returns the name of the i-th pump (1-based).
func Pump(i int) PumpName {
	return PumpName(fmt.Sprintf("Pump%d", i))
}

// WaterSensorName identifies a water level indicator.
type WaterSensorName string

// WaterSensor returns the name of the i-th water level sensor (1-based).
func WaterSensor(i int) WaterSensorName {
	return WaterSensorName(fmt.Sprintf("waterLevelSensor%d", i))
}

// SensorID identifies an environment sensor tile.
type SensorID string

// TempSensor returns the id of the i-th temperature tile (1-based).
func TempSensor(i int) SensorID {
	return SensorID(fmt.Sprintf("tempsensor%d", i))
}

// HumiditySensor returns the id of the i-th humidity tile (1-based).
func HumiditySensor(i int) SensorID {
	return SensorID(fmt.Sprintf("humsensor%d", i))
}

// OverviewField names a system overview readout.
type OverviewField string

const (
	AverageTemperature   OverviewField = "averageTemperature"
	AverageHumidity      OverviewField = "averageHumidity"
	CarbonDioxideReading OverviewField = "carbonDioxideReading"
	CurrentAmps          OverviewField = "currentAmps"
	SystemStatus         OverviewField = "systemStatus"
	MaxCurrentValue      OverviewField = "maxCurrentValue"
)

// OverviewFields lists the overview readouts in display order.
var OverviewFields = []OverviewField{
	AverageTemperature,
	AverageHumidity,
	CarbonDioxideReading,
	CurrentAmps,
	SystemStatus,
	MaxCurrentValue,
}

var overviewLabels = map[OverviewField]string{
	AverageTemperature:   "Average Temperature",
	AverageHumidity:      "Average Humidity",
	CarbonDioxideReading: "CO₂",
	CurrentAmps:          "Current (A)",
	SystemStatus:         "System Status",
	MaxCurrentValue:      "Max Current (A)",
}

// Element keys shared with the rendered page.
const (
	StartKey   = "startBtn"
	StopKey    = "stopBtn"
	DevModeKey = "devFeatureBtn"
)

// PowerKey is the key of an actuator's power toggle.
func PowerKey(name ActuatorName) string { return "togglePower_" + string(name) }

// ModeKey is the key of an actuator's Auto/Manual toggle.
func ModeKey(name ActuatorName) string { return "toggleMode_" + string(name) }

// PIDKey is the key of an actuator's PID input group.
func PIDKey(name ActuatorName) string { return "updatePID_" + string(name) }

// SetpointKey is the key of an actuator's setpoint field.
func SetpointKey(name ActuatorName) string { return "setpoint_" + string(name) }

// ActualKey is the key of an actuator's observed value.
func ActualKey(name ActuatorName) string { return "actual_" + string(name) }

// PIDFieldKey is the key of one gain input inside a PID group.
func PIDFieldKey(name ActuatorName, param string) string {
	return PIDKey(name) + "." + param
}

// ButtonClass groups buttons the way developer mode locks them.
type ButtonClass string

const (
	ClassControl ButtonClass = "control-btn"
	ClassToggle  ButtonClass = "toggle-btn"
	ClassMode    ButtonClass = "mode-btn"
)

// Button is a clickable control with a label and an active marker.
type Button struct {
	Key      string
	Class    ButtonClass
	Label    string
	State    string
	Active   bool
	Disabled bool
	ReadOnly bool

	onClick func()
}

// Field is a numeric input.
type Field struct {
	Key         string
	Param       string
	Value       string
	Placeholder string
	Step        string

	onChange func(text string)
}

// Text is a labelled read-only value.
type Text struct {
	Key   string
	Label string
	Value string
}

// ActuatorPanel holds every control bound to one actuator.
type ActuatorPanel struct {
	Name     ActuatorName
	Power    *Button
	Mode     *Button
	P        *Field
	I        *Field
	D        *Field
	Setpoint *Field
	Actual   *Text
}

// PumpRow pairs a pump toggle with its water level indicator.
type PumpRow struct {
	Index      int
	Pump       *Button
	PumpLabel  string
	Water      *Button
	WaterLabel string
}

// Topology sizes the dashboard.
type Topology struct {
	TempSensors     int
	HumiditySensors int
	Humidifiers     int
	Pumps           int
}

// DefaultTopology matches the chamber's stock build.
func DefaultTopology() Topology {
	return Topology{
		TempSensors:     8,
		HumiditySensors: 8,
		Humidifiers:     5,
		Pumps:           5,
	}
}

// Actions receives user interactions that must be reported to the controller.
type Actions interface {
	Start()
	Stop()
	ToggleDeveloperMode()
	TogglePump(name PumpName)
	TogglePower(name ActuatorName)
	ToggleMode(name ActuatorName)
	ChangePID(name ActuatorName, p, i, d float64)
	ChangeSetpoint(name ActuatorName, setpoint float64)
}
