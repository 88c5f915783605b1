package components

import "github.com/go-robo/hal"

// ButtonDriver is the interface a backend must implement to read buttons.
type ButtonDriver interface {
	ButtonPressed(identifier int) (bool, error)
}

// Button is a momentary push button.
type Button struct {
	id  int
	drv ButtonDriver
}

func NewButton(identifier int, drv ButtonDriver) *Button {
	return &Button{id: identifier, drv: drv}
}

func (b *Button) Identifier() int { return b.id }

// Pressed reports whether the button is currently held.
func (b *Button) Pressed() (bool, error) {
	return b.drv.ButtonPressed(b.id)
}

var _ hal.Component = (*Button)(nil)
