package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	errNotString = errors.New("expected a string")
	errNotNumber = errors.New("expected a number or numeric string")
	errNotScalar = errors.New("expected a string or number")
)

// DecodeFrame splits one text frame into its messages, preserving array order.
// A frame holding a single object yields one element. Anything that is not
// valid UTF-8 JSON returns an error wrapping ErrMalformedFrame.
func DecodeFrame(data []byte) ([]json.RawMessage, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid utf-8", ErrMalformedFrame)
	}

	var root json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	root = bytes.TrimSpace(root)
	if len(root) > 0 && root[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(root, &batch); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		return batch, nil
	}

	return []json.RawMessage{root}, nil
}

// ParseMessage decodes one message element into its Inbound variant.
func ParseMessage(raw json.RawMessage) (Inbound, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrMissingID
	}

	var wire messageWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	id, err := optionalString(wire.ID)
	if err != nil {
		// A present but non-string id (7, true, {...}) is an id the panel
		// does not know, not a missing one.
		if truthy(wire.ID) {
			return nil, &UnknownIDError{ID: string(bytes.TrimSpace(wire.ID))}
		}
		return nil, ErrMissingID
	}
	if id == "" {
		return nil, ErrMissingID
	}

	switch InboundID(id) {
	case UpdateStart:
		return StartUpdate{}, nil
	case UpdateStop:
		return StopUpdate{}, nil
	}

	d := fieldDecoder{id: InboundID(id), wire: &wire}

	var msg Inbound
	switch d.id {
	case UpdateDevMode:
		msg = DevModeUpdate{State: d.str("state", wire.State)}
	case UpdateSystemOverview:
		msg = OverviewUpdate{Name: d.str("name", wire.Name), Value: d.value()}
	case UpdateEnvironmentSensor:
		msg = SensorUpdate{Name: d.str("name", wire.Name), Value: d.value()}
	case UpdatePumpStatus:
		msg = PumpUpdate{Name: d.str("name", wire.Name), State: d.str("state", wire.State)}
	case UpdateWaterLevel:
		msg = WaterLevelUpdate{Name: d.str("name", wire.Name), State: d.str("state", wire.State)}
	case UpdateActuatorPower:
		msg = PowerUpdate{Name: d.str("name", wire.Name), State: d.str("state", wire.State)}
	case UpdateActuatorMode:
		msg = ModeUpdate{Name: d.str("name", wire.Name), State: d.str("state", wire.State)}
	case UpdatePIDInput:
		msg = PIDInputUpdate{
			Name: d.str("name", wire.Name),
			P:    d.num("P", wire.P),
			I:    d.num("I", wire.I),
			D:    d.num("D", wire.D),
		}
	case UpdatePIDSetpoint:
		msg = SetpointUpdate{Name: d.str("name", wire.Name), Value: d.value()}
	case UpdatePIDActual:
		msg = ActualUpdate{Name: d.str("name", wire.Name), Value: d.value()}
	default:
		return nil, &UnknownIDError{ID: id}
	}

	if d.err != nil {
		return nil, d.err
	}
	return msg, nil
}

// fieldDecoder keeps the first field error seen while decoding one message.
type fieldDecoder struct {
	id   InboundID
	wire *messageWire
	err  error
}

func (d *fieldDecoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &FieldError{ID: d.id, Field: field, Err: err}
	}
}

func (d *fieldDecoder) str(field string, raw json.RawMessage) string {
	s, err := optionalString(raw)
	if err != nil {
		d.fail(field, err)
	}
	return s
}

func (d *fieldDecoder) num(field string, raw json.RawMessage) *float64 {
	f, err := optionalNumber(raw)
	if err != nil {
		d.fail(field, err)
	}
	return f
}

func (d *fieldDecoder) value() Value {
	raw := bytes.TrimSpace(d.wire.Value)
	if len(raw) > 0 && (raw[0] == '{' || raw[0] == '[') {
		d.fail("value", errNotScalar)
		return Value{}
	}
	return Value{raw: raw}
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// truthy reports whether a JSON value counts as set: anything except null,
// false, zero and the empty string.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return false
	}
	switch raw[0] {
	case 'f':
		return false
	case '"':
		var s string
		return json.Unmarshal(raw, &s) == nil && s != ""
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
	return true
}

func optionalString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errNotString
	}
	return s, nil
}

// optionalNumber accepts JSON numbers and numeric strings. Absent and null
// both mean "leave untouched".
func optionalNumber(raw json.RawMessage) (*float64, error) {
	if isNull(raw) {
		return nil, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errNotNumber
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errNotNumber
	}
	return &f, nil
}
