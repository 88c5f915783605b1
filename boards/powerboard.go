package boards

import (
	"fmt"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/components"
)

// PowerBoardName is the human-readable name of the PBv4 power board.
const PowerBoardName = "PBv4 Power Board"

// Power-output identifiers on the PBv4, matching the wire protocol.
const (
	OutputH0 = iota
	OutputH1
	OutputL0
	OutputL1
	OutputL2
	OutputL3

	NumOutputs
)

// LED identifiers on the PBv4.
const (
	RunLED = iota
	ErrorLED
)

// powerDriver is the full capability set a power-board backend must
// implement. The assertion at construction is the structural check that
// every required interface is present.
type powerDriver interface {
	components.PowerOutputDriver
	components.LEDDriver
	components.PiezoDriver
	components.ButtonDriver
	components.BatterySensorDriver
}

// PowerBoard distributes battery power and carries the robot's start
// button, status LEDs, piezo sounder and battery sensor.
type PowerBoard struct {
	backend hal.Backend

	outputs  [NumOutputs]*components.PowerOutput
	runLED   *components.LED
	errorLED *components.LED
	piezo    *components.Piezo
	start    *components.Button
	battery  *components.BatterySensor
}

// NewPowerBoard builds a power board on top of a backend. The backend must
// implement the power-output, LED, piezo, button and battery-sensor
// driver interfaces.
func NewPowerBoard(backend hal.Backend) (*PowerBoard, error) {
	drv, ok := backend.(powerDriver)
	if !ok {
		return nil, &hal.CapabilityError{
			Board:      PowerBoardName,
			Capability: "power-output, LED, piezo, button and battery-sensor drivers",
		}
	}
	b := &PowerBoard{
		backend:  backend,
		runLED:   components.NewLED(RunLED, drv),
		errorLED: components.NewLED(ErrorLED, drv),
		piezo:    components.NewPiezo(0, drv),
		start:    components.NewButton(0, drv),
		battery:  components.NewBatterySensor(0, drv),
	}
	for i := range b.outputs {
		b.outputs[i] = components.NewPowerOutput(i, drv)
	}
	return b, nil
}

func (b *PowerBoard) Name() string { return PowerBoardName }

func (b *PowerBoard) SerialNumber() string { return b.backend.SerialNumber() }

func (b *PowerBoard) FirmwareVersion() string { return b.backend.FirmwareVersion() }

// Output returns the power output with the given identifier.
func (b *PowerBoard) Output(identifier int) *components.PowerOutput {
	return b.outputs[identifier]
}

// Outputs returns the power outputs in identifier order.
func (b *PowerBoard) Outputs() []*components.PowerOutput {
	return b.outputs[:]
}

func (b *PowerBoard) RunLED() *components.LED { return b.runLED }

func (b *PowerBoard) ErrorLED() *components.LED { return b.errorLED }

func (b *PowerBoard) Piezo() *components.Piezo { return b.piezo }

func (b *PowerBoard) StartButton() *components.Button { return b.start }

func (b *PowerBoard) Battery() *components.BatterySensor { return b.battery }

// MakeSafe switches every power output off, best-effort.
func (b *PowerBoard) MakeSafe() error {
	var errs []error
	for _, out := range b.outputs {
		if err := out.SetEnabled(false); err != nil {
			errs = append(errs, fmt.Errorf("output %d: %w", out.Identifier(), err))
		}
	}
	return hal.Safety(errs)
}

var _ hal.Board = (*PowerBoard)(nil)
