package dashboard

import (
	_ "embed"
	"html"
	"net/url"
	"strings"

	"github.com/chasefleming/elem-go"
	"github.com/chasefleming/elem-go/attrs"
)

// Paths the rendered page posts interactions to and polls for updates.
const (
	ClickPath    = "/ui/click"
	ChangePath   = "/ui/change"
	FragmentPath = "/ui/dashboard"
)

//go:embed assets/style.css
var cssContent string

// RenderPage returns the full HTML document for the dashboard.
func (d *Dashboard) RenderPage(title string) string {
	page := elem.Html(attrs.Props{},
		elem.Head(attrs.Props{},
			elem.Meta(attrs.Props{attrs.Charset: "utf-8"}),
			elem.Meta(attrs.Props{attrs.Name: "viewport", attrs.Content: "width=device-width, initial-scale=1"}),
			elem.Title(attrs.Props{}, text(title)),
			elem.Script(attrs.Props{attrs.Src: "https://unpkg.com/htmx.org@2.0.4"}),
			elem.Style(attrs.Props{}, elem.Text(cssContent)),
		),
		elem.Body(attrs.Props{},
			elem.Div(attrs.Props{
				attrs.ID:     "dashboard",
				"hx-get":     FragmentPath,
				"hx-trigger": "every 1s [!document.activeElement.matches('input')]",
				"hx-swap":    "innerHTML",
			}, d.fragmentNodes(title)...),
		),
	)
	return page.Render()
}

// RenderFragment returns the dashboard body polled by the page.
func (d *Dashboard) RenderFragment(title string) string {
	var b strings.Builder
	for _, n := range d.fragmentNodes(title) {
		b.WriteString(n.Render())
	}
	return b.String()
}

func (d *Dashboard) fragmentNodes(title string) []elem.Node {
	return []elem.Node{
		elem.Header(attrs.Props{},
			elem.H1(attrs.Props{}, text(title)),
			elem.Span(attrs.Props{attrs.Class: "connection " + escape(d.Connection)}, text(d.Connection)),
			renderButton(d.StartButton),
			renderButton(d.StopButton),
			renderButton(d.DevModeButton),
		),
		section("System Overview", "systemOverview", renderOverview(d.Overview)),
		section("Temperature", "tempSensors", renderSensors(d.TempSensors)),
		section("Humidity", "humiditySensors", renderSensors(d.HumiditySensors)),
		section("Peltiers", "peltierGroup", renderActuators(d.Peltiers)),
		section("Humidifiers", "humidifierGroup", renderActuators(d.Humidifiers)),
		section("Pumps and Water Level", "pumpWaterGroup", renderPumpRows(d.PumpRows)),
	}
}

func section(title, id string, children []elem.Node) elem.Node {
	return elem.Section(attrs.Props{},
		elem.H2(attrs.Props{}, elem.Text(title)),
		elem.Div(attrs.Props{attrs.ID: id, attrs.Class: "grid"}, children...),
	)
}

func renderOverview(items []*Text) []elem.Node {
	nodes := make([]elem.Node, 0, len(items))
	for _, t := range items {
		nodes = append(nodes, elem.Div(attrs.Props{attrs.Class: "overview-item"},
			elem.Div(attrs.Props{attrs.Class: "label"}, text(t.Label)),
			elem.Div(attrs.Props{attrs.Class: "value", attrs.ID: t.Key}, text(t.Value)),
		))
	}
	return nodes
}

func renderSensors(tiles []*Text) []elem.Node {
	nodes := make([]elem.Node, 0, len(tiles))
	for _, t := range tiles {
		nodes = append(nodes, elem.Div(attrs.Props{attrs.Class: "sensor", "data-id": t.Key},
			elem.Div(attrs.Props{attrs.Class: "label"}, text(t.Label)),
			elem.Div(attrs.Props{attrs.Class: "value"}, text(t.Value)),
		))
	}
	return nodes
}

func renderActuators(panels []*ActuatorPanel) []elem.Node {
	nodes := make([]elem.Node, 0, len(panels))
	for _, p := range panels {
		nodes = append(nodes, elem.Div(attrs.Props{attrs.Class: "actuator"},
			elem.H4(attrs.Props{}, text(string(p.Name))),
			elem.Div(attrs.Props{attrs.Class: "controls"},
				renderButton(p.Power),
				renderButton(p.Mode),
			),
			elem.Div(attrs.Props{attrs.Class: "pid-setpoint-actual"},
				elem.Div(attrs.Props{attrs.Class: "pid-inputs", "data-id": PIDKey(p.Name)},
					renderField(p.P),
					renderField(p.I),
					renderField(p.D),
				),
				elem.Div(attrs.Props{attrs.Class: "setpoint-container"},
					elem.Label(attrs.Props{}, elem.Text("Setpoint:")),
					renderField(p.Setpoint),
				),
				elem.Div(attrs.Props{attrs.Class: "actual-container"},
					elem.Span(attrs.Props{}, text(p.Actual.Label)),
					elem.Span(attrs.Props{"data-param": p.Actual.Key}, text(p.Actual.Value)),
				),
			),
		))
	}
	return nodes
}

func renderPumpRows(rows []*PumpRow) []elem.Node {
	nodes := make([]elem.Node, 0, len(rows))
	for _, r := range rows {
		nodes = append(nodes, elem.Div(attrs.Props{attrs.Class: "pump-water-row"},
			elem.Div(attrs.Props{attrs.Class: "label"}, text(r.PumpLabel)),
			renderButton(r.Pump),
			elem.Div(attrs.Props{attrs.Class: "label"}, text(r.WaterLabel)),
			renderButton(r.Water),
		))
	}
	return nodes
}

func renderButton(b *Button) elem.Node {
	classes := []string{string(b.Class)}
	if b.Active {
		classes = append(classes, "active")
	}
	if b.Disabled {
		classes = append(classes, "disabled")
	}
	if b.ReadOnly {
		classes = append(classes, "readonly")
	}

	props := attrs.Props{
		attrs.Class:  strings.Join(classes, " "),
		"data-id":    b.Key,
		"data-state": escape(b.State),
	}
	if b.Disabled {
		props["disabled"] = "true"
	}
	if !b.ReadOnly {
		props["hx-post"] = postURL(ClickPath, b.Key)
		props["hx-swap"] = "none"
	}
	return elem.Button(props, text(b.Label))
}

func renderField(f *Field) elem.Node {
	return elem.Input(attrs.Props{
		"type":        "number",
		"name":        "value",
		"value":       escape(f.Value),
		"placeholder": f.Placeholder,
		"step":        f.Step,
		"min":         "0",
		"data-param":  f.Param,
		"hx-post":     postURL(ChangePath, f.Key),
		"hx-trigger":  "change",
		"hx-swap":     "none",
	})
}

func postURL(path, key string) string {
	return path + "?key=" + url.QueryEscape(key)
}

// elem-go writes text and attribute values as given, so anything that may
// carry controller or config text is escaped first.
func escape(s string) string {
	return html.EscapeString(s)
}

func text(s string) elem.Node {
	return elem.Text(escape(s))
}
