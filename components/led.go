package components

import "github.com/go-robo/hal"

// LEDDriver is the interface a backend must implement to drive LEDs.
type LEDDriver interface {
	LEDState(identifier int) (bool, error)
	SetLEDState(identifier int, on bool) error
}

// LED is a single light-emitting diode.
type LED struct {
	id  int
	drv LEDDriver
}

func NewLED(identifier int, drv LEDDriver) *LED {
	return &LED{id: identifier, drv: drv}
}

func (l *LED) Identifier() int { return l.id }

// State returns the current state of the LED.
func (l *LED) State() (bool, error) {
	return l.drv.LEDState(l.id)
}

// SetState turns the LED on or off.
func (l *LED) SetState(on bool) error {
	return l.drv.SetLEDState(l.id, on)
}

var _ hal.Component = (*LED)(nil)
