package router

import (
	"fmt"

	"github.com/rickgao/chamber-panel/internal/dashboard"
	"github.com/rickgao/chamber-panel/internal/protocol"
)

// Every handler traces before touching the dashboard and confirms with
// "APPROVED!" only after a mutation. A missing binding returns false with no
// further logging.

func (r *Router) approved(id protocol.InboundID, name string) {
	r.logger.Debug("APPROVED!", "id", id, "name", name)
}

func (r *Router) handleStart() bool {
	r.logger.Debug("processing start")
	r.dash.SetRunning(true)
	r.approved(protocol.UpdateStart, "")
	return true
}

func (r *Router) handleStop() bool {
	r.logger.Debug("processing stop")
	r.dash.SetRunning(false)
	r.approved(protocol.UpdateStop, "")
	return true
}

func (r *Router) handleDevMode(m protocol.DevModeUpdate) bool {
	r.logger.Debug("processing developer mode", "state", m.State)
	r.dash.SetDeveloperMode(m.State)
	r.approved(protocol.UpdateDevMode, "")
	return true
}

func (r *Router) handleOverview(m protocol.OverviewUpdate) bool {
	r.logger.Debug("processing system overview", "name", m.Name, "value", m.Value.String())
	t, ok := r.dash.OverviewField(dashboard.OverviewField(m.Name))
	if !ok {
		return false
	}
	t.Value = m.Value.String()
	r.approved(protocol.UpdateSystemOverview, m.Name)
	return true
}

func (r *Router) handleSensor(m protocol.SensorUpdate) bool {
	r.logger.Debug("processing environment sensor", "name", m.Name, "value", m.Value.String())
	t, ok := r.dash.Sensor(dashboard.SensorID(m.Name))
	if !ok {
		return false
	}
	t.Value = m.Value.String()
	r.approved(protocol.UpdateEnvironmentSensor, m.Name)
	return true
}

func (r *Router) handlePump(m protocol.PumpUpdate) bool {
	r.logger.Debug("processing pump status", "name", m.Name, "state", m.State)
	b, ok := r.dash.Pump(dashboard.PumpName(m.Name))
	if !ok {
		return false
	}
	b.ApplyBinary(m.State, m.State == protocol.StateOn, "On", "Off")
	r.approved(protocol.UpdatePumpStatus, m.Name)
	return true
}

func (r *Router) handleWaterLevel(m protocol.WaterLevelUpdate) bool {
	r.logger.Debug("processing water level", "name", m.Name, "state", m.State)
	b, ok := r.dash.WaterSensor(dashboard.WaterSensorName(m.Name))
	if !ok {
		return false
	}
	b.ApplyBinary(m.State, m.State == protocol.StateOn, "High", "Low")
	r.approved(protocol.UpdateWaterLevel, m.Name)
	return true
}

func (r *Router) handlePower(m protocol.PowerUpdate) bool {
	r.logger.Debug("processing actuator power", "name", m.Name, "state", m.State)
	p, ok := r.dash.Actuator(dashboard.ActuatorName(m.Name))
	if !ok {
		return false
	}
	p.Power.ApplyBinary(m.State, m.State == protocol.StateOn, "On", "Off")
	r.approved(protocol.UpdateActuatorPower, m.Name)
	return true
}

func (r *Router) handleMode(m protocol.ModeUpdate) bool {
	r.logger.Debug("processing actuator mode", "name", m.Name, "state", m.State)
	p, ok := r.dash.Actuator(dashboard.ActuatorName(m.Name))
	if !ok {
		return false
	}
	p.Mode.ApplyBinary(m.State, m.State == protocol.StateAuto, "Auto", "Manual")
	r.approved(protocol.UpdateActuatorMode, m.Name)
	return true
}

func (r *Router) handlePIDInput(m protocol.PIDInputUpdate) bool {
	r.logger.Debug("processing PID input", "name", m.Name)
	p, ok := r.dash.Actuator(dashboard.ActuatorName(m.Name))
	if !ok {
		return false
	}
	setGain(p.P, m.P)
	setGain(p.I, m.I)
	setGain(p.D, m.D)
	r.approved(protocol.UpdatePIDInput, m.Name)
	return true
}

// setGain leaves the field untouched when the gain was absent.
func setGain(f *dashboard.Field, gain *float64) {
	if gain == nil {
		return
	}
	f.Value = fmt.Sprintf("%.2f", *gain)
}

func (r *Router) handleSetpoint(m protocol.SetpointUpdate) bool {
	r.logger.Debug("processing PID setpoint", "name", m.Name, "value", m.Value.String())
	p, ok := r.dash.Actuator(dashboard.ActuatorName(m.Name))
	if !ok {
		return false
	}
	p.Setpoint.Value = m.Value.String()
	r.approved(protocol.UpdatePIDSetpoint, m.Name)
	return true
}

func (r *Router) handleActual(m protocol.ActualUpdate) bool {
	r.logger.Debug("processing PID actual", "name", m.Name, "value", m.Value.String())
	p, ok := r.dash.Actuator(dashboard.ActuatorName(m.Name))
	if !ok {
		return false
	}
	p.Actual.Value = m.Value.String()
	r.approved(protocol.UpdatePIDActual, m.Name)
	return true
}
