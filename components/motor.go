// Package components defines the component kinds a board can expose and,
// next to each kind, the driver interface a backend must implement to
// drive it. Components validate their own inputs and delegate every read
// and write to the driver, so the API always reflects live hardware state.
package components

import (
	"fmt"

	"github.com/go-robo/hal"
)

type motorKind uint8

const (
	motorPower motorKind = iota
	motorCoast
	motorBrake
)

// MotorState is the commanded state of a motor output: a signed power in
// [-1, 1], or one of the special coast/brake states.
type MotorState struct {
	kind  motorKind
	power float64
}

var (
	// MotorCoast lets the output spin freely.
	MotorCoast = MotorState{kind: motorCoast}
	// MotorBrake shorts the output windings.
	MotorBrake = MotorState{kind: motorBrake}
)

// MotorPower returns the state driving the output at the given power.
// The value is validated when the state is applied, not here.
func MotorPower(power float64) MotorState {
	return MotorState{kind: motorPower, power: power}
}

// IsPower reports whether the state is a plain power value.
func (s MotorState) IsPower() bool { return s.kind == motorPower }

// Power returns the power value of a plain-power state.
func (s MotorState) Power() float64 { return s.power }

func (s MotorState) String() string {
	switch s.kind {
	case motorCoast:
		return "coast"
	case motorBrake:
		return "brake"
	default:
		return fmt.Sprintf("%v", s.power)
	}
}

// MotorDriver is the interface a backend must implement to drive motors.
type MotorDriver interface {
	MotorState(identifier int) (MotorState, error)
	SetMotorState(identifier int, state MotorState) error
}

// Motor is a brushed DC motor output.
type Motor struct {
	id  int
	drv MotorDriver
}

func NewMotor(identifier int, drv MotorDriver) *Motor {
	return &Motor{id: identifier, drv: drv}
}

func (m *Motor) Identifier() int { return m.id }

// State returns the current state of the output.
func (m *Motor) State() (MotorState, error) {
	return m.drv.MotorState(m.id)
}

// SetState commands the output. Plain powers outside [-1, 1] fail with
// *hal.InvalidArgumentError before the driver is touched.
func (m *Motor) SetState(state MotorState) error {
	if state.IsPower() && (state.power < -1 || state.power > 1) {
		return &hal.InvalidArgumentError{
			Op:     "Motor.SetState",
			Value:  state.power,
			Reason: "motor power must be between -1 and 1",
		}
	}
	return m.drv.SetMotorState(m.id, state)
}

// SetPower commands the output to a plain power in [-1, 1].
func (m *Motor) SetPower(power float64) error {
	return m.SetState(MotorPower(power))
}

var _ hal.Component = (*Motor)(nil)
