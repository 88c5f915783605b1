package components

import (
	"fmt"

	"github.com/go-robo/hal"
)

// ServoPosition is the commanded position of a servo in [-1, 1], or the
// disabled state, which powers the servo down.
type ServoPosition struct {
	disabled bool
	pos      float64
}

// ServoDisabled powers the servo down.
var ServoDisabled = ServoPosition{disabled: true}

// ServoAt returns the position state for a value in [-1, 1]. The value is
// validated when the position is applied.
func ServoAt(pos float64) ServoPosition {
	return ServoPosition{pos: pos}
}

// IsDisabled reports whether the state powers the servo down.
func (p ServoPosition) IsDisabled() bool { return p.disabled }

// Value returns the position of an enabled state.
func (p ServoPosition) Value() float64 { return p.pos }

func (p ServoPosition) String() string {
	if p.disabled {
		return "disabled"
	}
	return fmt.Sprintf("%v", p.pos)
}

// ServoDriver is the interface a backend must implement to drive servos.
type ServoDriver interface {
	ServoPosition(identifier int) (ServoPosition, error)
	SetServoPosition(identifier int, pos ServoPosition) error
}

// Servo is a standard servomotor.
type Servo struct {
	id  int
	drv ServoDriver
}

func NewServo(identifier int, drv ServoDriver) *Servo {
	return &Servo{id: identifier, drv: drv}
}

func (s *Servo) Identifier() int { return s.id }

// Position returns the current position of the servo.
func (s *Servo) Position() (ServoPosition, error) {
	return s.drv.ServoPosition(s.id)
}

// SetPosition commands the servo. Positions outside [-1, 1] fail with
// *hal.InvalidArgumentError before the driver is touched.
func (s *Servo) SetPosition(pos ServoPosition) error {
	if !pos.disabled && (pos.pos < -1 || pos.pos > 1) {
		return &hal.InvalidArgumentError{
			Op:     "Servo.SetPosition",
			Value:  pos.pos,
			Reason: "servo position must be between -1 and 1",
		}
	}
	return s.drv.SetServoPosition(s.id, pos)
}

// Disable powers the servo down.
func (s *Servo) Disable() error {
	return s.drv.SetServoPosition(s.id, ServoDisabled)
}

var _ hal.Component = (*Servo)(nil)
