package dashboard

// Dashboard is the panel's UI tree. It is built once and then mutated in
// place by the router and by user interactions, always from one goroutine.
type Dashboard struct {
	StartButton   *Button
	StopButton    *Button
	DevModeButton *Button

	Overview        []*Text
	TempSensors     []*Text
	HumiditySensors []*Text
	Peltiers        []*ActuatorPanel
	Humidifiers     []*ActuatorPanel
	PumpRows        []*PumpRow

	// Connection is the transport state shown in the page header.
	Connection string

	overview  map[OverviewField]*Text
	sensors   map[SensorID]*Text
	actuators map[ActuatorName]*ActuatorPanel
	pumps     map[PumpName]*Button
	water     map[WaterSensorName]*Button

	buttons map[string]*Button
	fields  map[string]*Field
}

func newDashboard() *Dashboard {
	return &Dashboard{
		Connection: "connecting",
		overview:   make(map[OverviewField]*Text),
		sensors:    make(map[SensorID]*Text),
		actuators:  make(map[ActuatorName]*ActuatorPanel),
		pumps:      make(map[PumpName]*Button),
		water:      make(map[WaterSensorName]*Button),
		buttons:    make(map[string]*Button),
		fields:     make(map[string]*Field),
	}
}

// OverviewField returns the overview readout with the given name.
func (d *Dashboard) OverviewField(name OverviewField) (*Text, bool) {
	t, ok := d.overview[name]
	return t, ok
}

// Sensor returns the environment sensor tile with the given id.
func (d *Dashboard) Sensor(id SensorID) (*Text, bool) {
	t, ok := d.sensors[id]
	return t, ok
}

// Actuator returns the panel bound to the given actuator.
func (d *Dashboard) Actuator(name ActuatorName) (*ActuatorPanel, bool) {
	p, ok := d.actuators[name]
	return p, ok
}

// Pump returns the toggle bound to the given pump.
func (d *Dashboard) Pump(name PumpName) (*Button, bool) {
	b, ok := d.pumps[name]
	return b, ok
}

// WaterSensor returns the indicator bound to the given water level sensor.
func (d *Dashboard) WaterSensor(name WaterSensorName) (*Button, bool) {
	b, ok := d.water[name]
	return b, ok
}

// Button returns any button by its key.
func (d *Dashboard) Button(key string) (*Button, bool) {
	b, ok := d.buttons[key]
	return b, ok
}

// Field returns any input field by its key.
func (d *Dashboard) Field(key string) (*Field, bool) {
	f, ok := d.fields[key]
	return f, ok
}

// Actuators returns peltier then humidifier panels.
func (d *Dashboard) Actuators() []*ActuatorPanel {
	all := make([]*ActuatorPanel, 0, len(d.Peltiers)+len(d.Humidifiers))
	all = append(all, d.Peltiers...)
	return append(all, d.Humidifiers...)
}

// SetControlsDisabled locks or unlocks every toggle and mode button.
func (d *Dashboard) SetControlsDisabled(disabled bool) {
	for _, b := range d.buttons {
		if b.Class == ClassToggle || b.Class == ClassMode {
			b.Disabled = disabled
		}
	}
}

// ApplyBinary sets a button's state, label and active marker from a binary state.
func (b *Button) ApplyBinary(state string, on bool, onLabel, offLabel string) {
	b.State = state
	b.Active = on
	if on {
		b.Label = onLabel
	} else {
		b.Label = offLabel
	}
}

// SetActive sets the active marker.
func (b *Button) SetActive(active bool) {
	b.Active = active
}

// SetRunning marks exactly one of Start/Stop active.
func (d *Dashboard) SetRunning(running bool) {
	d.StartButton.SetActive(running)
	d.StopButton.SetActive(!running)
}

// SetDeveloperMode applies the developer-mode lockout. Any state other than
// "On" releases it.
func (d *Dashboard) SetDeveloperMode(state string) {
	d.DevModeButton.ApplyBinary(state, state == "On", devModeOnLabel, devModeOffLabel)
	d.SetControlsDisabled(state == "On")
}

// DeveloperMode reports whether the lockout is active.
func (d *Dashboard) DeveloperMode() bool {
	return d.DevModeButton.Active
}
