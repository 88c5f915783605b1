package components

import "github.com/go-robo/hal"

// PowerOutputDriver is the interface a backend must implement to drive
// switchable power outputs.
type PowerOutputDriver interface {
	OutputEnabled(identifier int) (bool, error)
	SetOutputEnabled(identifier int, on bool) error
}

// PowerOutput is a switchable high-current power output.
type PowerOutput struct {
	id  int
	drv PowerOutputDriver
}

func NewPowerOutput(identifier int, drv PowerOutputDriver) *PowerOutput {
	return &PowerOutput{id: identifier, drv: drv}
}

func (o *PowerOutput) Identifier() int { return o.id }

// Enabled reports whether the output is powered.
func (o *PowerOutput) Enabled() (bool, error) {
	return o.drv.OutputEnabled(o.id)
}

// SetEnabled switches the output on or off.
func (o *PowerOutput) SetEnabled(on bool) error {
	return o.drv.SetOutputEnabled(o.id, on)
}

var _ hal.Component = (*PowerOutput)(nil)
