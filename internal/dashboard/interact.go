package dashboard

import "fmt"

// Click presses the button with the given key. Disabled buttons and read-only
// indicators swallow the click the way a browser would.
func (d *Dashboard) Click(key string) error {
	b, ok := d.buttons[key]
	if !ok {
		return fmt.Errorf("click %q: %w", key, ErrNoElement)
	}
	if b.Disabled {
		return fmt.Errorf("click %q: %w", key, ErrDisabled)
	}
	if b.ReadOnly || b.onClick == nil {
		return fmt.Errorf("click %q: %w", key, ErrReadOnly)
	}
	b.onClick()
	return nil
}

// Change commits new text into an input field and fires its change listener.
func (d *Dashboard) Change(key, text string) error {
	f, ok := d.fields[key]
	if !ok {
		return fmt.Errorf("change %q: %w", key, ErrNoElement)
	}
	f.Value = text
	if f.onChange != nil {
		f.onChange(text)
	}
	return nil
}
