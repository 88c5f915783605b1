// Package boards defines the board models known to the HAL. A board owns a
// fixed set of components built at construction time and delegates all I/O,
// including its identity, to the backend driver it was constructed with.
package boards

import (
	"fmt"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/components"
)

// MotorBoardName is the human-readable name of the MBv4 motor board.
const MotorBoardName = "MBv4 Motor Board"

// NumMotors is the number of motor outputs on a motor board.
const NumMotors = 2

// MotorBoard is a dual-output brushed DC motor board.
type MotorBoard struct {
	backend hal.Backend
	motors  [NumMotors]*components.Motor
}

// NewMotorBoard builds a motor board on top of a backend. The backend must
// implement components.MotorDriver.
func NewMotorBoard(backend hal.Backend) (*MotorBoard, error) {
	drv, ok := backend.(components.MotorDriver)
	if !ok {
		return nil, &hal.CapabilityError{
			Board:      MotorBoardName,
			Capability: "components.MotorDriver",
		}
	}
	b := &MotorBoard{backend: backend}
	for i := range b.motors {
		b.motors[i] = components.NewMotor(i, drv)
	}
	return b, nil
}

func (b *MotorBoard) Name() string { return MotorBoardName }

func (b *MotorBoard) SerialNumber() string { return b.backend.SerialNumber() }

func (b *MotorBoard) FirmwareVersion() string { return b.backend.FirmwareVersion() }

// Motor returns the motor output with the given identifier.
func (b *MotorBoard) Motor(identifier int) *components.Motor {
	return b.motors[identifier]
}

// Motors returns the motor outputs in identifier order.
func (b *MotorBoard) Motors() []*components.Motor {
	return b.motors[:]
}

// MakeSafe coasts every motor output, best-effort.
func (b *MotorBoard) MakeSafe() error {
	var errs []error
	for _, m := range b.motors {
		if err := m.SetState(components.MotorCoast); err != nil {
			errs = append(errs, fmt.Errorf("motor %d: %w", m.Identifier(), err))
		}
	}
	return hal.Safety(errs)
}

var _ hal.Board = (*MotorBoard)(nil)
