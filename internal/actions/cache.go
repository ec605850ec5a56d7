package actions

import "github.com/rickgao/chamber-panel/internal/dashboard"

// PIDValues is the last locally edited tuning of one actuator.
type PIDValues struct {
	P        float64
	I        float64
	D        float64
	Setpoint float64
}

// PIDCache remembers local PID and setpoint edits per actuator. It is filled
// only from user edits and never reconciled with inbound state.
//
// Not safe for concurrent use; the panel event loop owns it.
type PIDCache struct {
	values map[dashboard.ActuatorName]PIDValues
}

// NewPIDCache creates an empty cache.
func NewPIDCache() *PIDCache {
	return &PIDCache{values: make(map[dashboard.ActuatorName]PIDValues)}
}

// Get returns the cached values for name.
func (c *PIDCache) Get(name dashboard.ActuatorName) (PIDValues, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Len returns the number of actuators with cached values.
func (c *PIDCache) Len() int {
	return len(c.values)
}

func (c *PIDCache) setGains(name dashboard.ActuatorName, p, i, d float64) {
	v := c.values[name]
	v.P, v.I, v.D = p, i, d
	c.values[name] = v
}

func (c *PIDCache) setSetpoint(name dashboard.ActuatorName, setpoint float64) {
	v := c.values[name]
	v.Setpoint = setpoint
	c.values[name] = v
}
