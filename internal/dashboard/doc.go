// Package dashboard models the chamber control panel as a typed UI tree.
//
// Build synthesizes the whole topology once: start/stop and developer-mode
// buttons, system overview readouts, temperature and humidity sensor tiles,
// the five peltier panels, the humidifier panels and the pump/water-level rows.
// Every control is reachable both through a typed accessor (Actuator, Pump,
// Sensor, ...) and through the string key the rendered page carries in its
// data-id/data-param attributes.
//
// A Dashboard is not safe for concurrent use. The panel event loop owns it.
package dashboard
