package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default labels shown before the controller reports any state.
const (
	DefaultTempReading     = "70°F"
	DefaultHumidityReading = "0% R.H."
	DefaultActual          = "N/A"
	devModeOffLabel        = "Enable Developer Mode"
	devModeOnLabel         = "Disable Developer Mode"
)

// Build synthesizes the full dashboard for a topology and wires every
// interactive element to act. A nil act builds a display-only dashboard.
func Build(topo Topology, act Actions) *Dashboard {
	if act == nil {
		act = noopActions{}
	}

	d := newDashboard()
	d.buildStartStop(act)

	for _, name := range OverviewFields {
		t := &Text{Key: string(name), Label: overviewLabels[name]}
		d.overview[name] = t
		d.Overview = append(d.Overview, t)
	}

	for i := 1; i <= topo.TempSensors; i++ {
		d.TempSensors = append(d.TempSensors, d.addSensor(TempSensor(i), fmt.Sprintf("Temp Sensor %d", i), DefaultTempReading))
	}
	for i := 1; i <= topo.HumiditySensors; i++ {
		d.HumiditySensors = append(d.HumiditySensors, d.addSensor(HumiditySensor(i), fmt.Sprintf("Humidity Sensor %d", i), DefaultHumidityReading))
	}

	for _, name := range Peltiers {
		d.Peltiers = append(d.Peltiers, d.addActuator(name, act))
	}
	for i := 1; i <= topo.Humidifiers; i++ {
		d.Humidifiers = append(d.Humidifiers, d.addActuator(Humidifier(i), act))
	}

	for i := 1; i <= topo.Pumps; i++ {
		d.PumpRows = append(d.PumpRows, d.addPumpRow(i, act))
	}

	return d
}

func (d *Dashboard) addButton(b *Button) *Button {
	d.buttons[b.Key] = b
	return b
}

func (d *Dashboard) addField(f *Field) *Field {
	d.fields[f.Key] = f
	return f
}

func (d *Dashboard) buildStartStop(act Actions) {
	start := d.addButton(&Button{Key: StartKey, Class: ClassControl, Label: "Start"})
	stop := d.addButton(&Button{Key: StopKey, Class: ClassControl, Label: "Stop", Active: true})

	// Re-pressing the running state's button is not reported.
	start.onClick = func() {
		if !start.Active {
			act.Start()
		}
	}
	stop.onClick = func() {
		if !stop.Active {
			act.Stop()
		}
	}

	dev := d.addButton(&Button{Key: DevModeKey, Class: ClassControl, Label: devModeOffLabel, State: "Off"})
	dev.onClick = act.ToggleDeveloperMode

	d.StartButton = start
	d.StopButton = stop
	d.DevModeButton = dev
}

func (d *Dashboard) addSensor(id SensorID, label, initial string) *Text {
	t := &Text{Key: string(id), Label: label, Value: initial}
	d.sensors[id] = t
	return t
}

func (d *Dashboard) addActuator(name ActuatorName, act Actions) *ActuatorPanel {
	p := &ActuatorPanel{Name: name}

	p.Power = d.addButton(&Button{Key: PowerKey(name), Class: ClassToggle, Label: "Off", State: "Off"})
	p.Power.onClick = func() { act.TogglePower(name) }

	p.Mode = d.addButton(&Button{Key: ModeKey(name), Class: ClassMode, Label: "Manual"})
	p.Mode.onClick = func() { act.ToggleMode(name) }

	newGain := func(param string) *Field {
		return d.addField(&Field{Key: PIDFieldKey(name, param), Param: param, Placeholder: param, Step: "0.01"})
	}
	p.P = newGain("P")
	p.I = newGain("I")
	p.D = newGain("D")

	// Any gain edit reports all three current gains.
	onGain := func(string) {
		act.ChangePID(name, ParseNumber(p.P.Value), ParseNumber(p.I.Value), ParseNumber(p.D.Value))
	}
	p.P.onChange = onGain
	p.I.onChange = onGain
	p.D.onChange = onGain

	p.Setpoint = d.addField(&Field{Key: SetpointKey(name), Param: SetpointKey(name), Placeholder: "Value", Step: "0.1"})
	p.Setpoint.onChange = func(text string) { act.ChangeSetpoint(name, ParseNumber(text)) }

	p.Actual = &Text{Key: ActualKey(name), Label: "Actual:", Value: DefaultActual}

	d.actuators[name] = p
	return p
}

func (d *Dashboard) addPumpRow(i int, act Actions) *PumpRow {
	pumpName := Pump(i)
	waterName := WaterSensor(i)

	row := &PumpRow{
		Index:      i,
		PumpLabel:  string(pumpName),
		WaterLabel: fmt.Sprintf("Water_Level_Sensor_%d", i),
	}

	row.Pump = d.addButton(&Button{Key: string(pumpName), Class: ClassToggle, Label: "Off", State: "Off"})
	row.Pump.onClick = func() { act.TogglePump(pumpName) }

	row.Water = d.addButton(&Button{Key: string(waterName), Class: ClassToggle, Label: "Low", State: "Off", ReadOnly: true})

	d.pumps[pumpName] = row.Pump
	d.water[waterName] = row.Water
	return row
}

// ParseNumber reads a numeric field's text. Unparsable or non-finite text is 0.
func ParseNumber(text string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

type noopActions struct{}

func (noopActions) Start()                                            {}
func (noopActions) Stop()                                             {}
func (noopActions) ToggleDeveloperMode()                              {}
func (noopActions) TogglePump(PumpName)                               {}
func (noopActions) TogglePower(ActuatorName)                          {}
func (noopActions) ToggleMode(ActuatorName)                           {}
func (noopActions) ChangePID(ActuatorName, float64, float64, float64) {}
func (noopActions) ChangeSetpoint(ActuatorName, float64)              {}
