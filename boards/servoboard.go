package boards

import (
	"fmt"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/components"
)

// ServoBoardName is the human-readable name of the SBv4 servo board.
const ServoBoardName = "SBv4 Servo Board"

// NumServos is the number of servo outputs on a servo board.
const NumServos = 12

// ServoBoard is a twelve-output servomotor board.
type ServoBoard struct {
	backend hal.Backend
	servos  [NumServos]*components.Servo
}

// NewServoBoard builds a servo board on top of a backend. The backend must
// implement components.ServoDriver.
func NewServoBoard(backend hal.Backend) (*ServoBoard, error) {
	drv, ok := backend.(components.ServoDriver)
	if !ok {
		return nil, &hal.CapabilityError{
			Board:      ServoBoardName,
			Capability: "components.ServoDriver",
		}
	}
	b := &ServoBoard{backend: backend}
	for i := range b.servos {
		b.servos[i] = components.NewServo(i, drv)
	}
	return b, nil
}

func (b *ServoBoard) Name() string { return ServoBoardName }

func (b *ServoBoard) SerialNumber() string { return b.backend.SerialNumber() }

func (b *ServoBoard) FirmwareVersion() string { return b.backend.FirmwareVersion() }

// Servo returns the servo output with the given identifier.
func (b *ServoBoard) Servo(identifier int) *components.Servo {
	return b.servos[identifier]
}

// Servos returns the servo outputs in identifier order.
func (b *ServoBoard) Servos() []*components.Servo {
	return b.servos[:]
}

// MakeSafe powers down every servo, best-effort.
func (b *ServoBoard) MakeSafe() error {
	var errs []error
	for _, s := range b.servos {
		if err := s.Disable(); err != nil {
			errs = append(errs, fmt.Errorf("servo %d: %w", s.Identifier(), err))
		}
	}
	return hal.Safety(errs)
}

var _ hal.Board = (*ServoBoard)(nil)
