package boards

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/components"
)

// fakeBackend implements every driver interface the boards in this package
// need. failMotor marks a single motor output whose writes fail, so tests
// can exercise the best-effort make-safe path.
type fakeBackend struct {
	failMotor int

	motors  map[int]components.MotorState
	servos  map[int]components.ServoPosition
	outputs map[int]bool
	leds    map[int]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failMotor: -1,
		motors:    make(map[int]components.MotorState),
		servos:    make(map[int]components.ServoPosition),
		outputs:   make(map[int]bool),
		leds:      make(map[int]bool),
	}
}

func (b *fakeBackend) SerialNumber() string { return "fake-0" }

func (b *fakeBackend) FirmwareVersion() string { return "3" }

func (b *fakeBackend) MotorState(id int) (components.MotorState, error) {
	return b.motors[id], nil
}

func (b *fakeBackend) SetMotorState(id int, s components.MotorState) error {
	if id == b.failMotor {
		return fmt.Errorf("motor %d is stuck", id)
	}
	b.motors[id] = s
	return nil
}

func (b *fakeBackend) ServoPosition(id int) (components.ServoPosition, error) {
	return b.servos[id], nil
}

func (b *fakeBackend) SetServoPosition(id int, pos components.ServoPosition) error {
	b.servos[id] = pos
	return nil
}

func (b *fakeBackend) OutputEnabled(id int) (bool, error) { return b.outputs[id], nil }

func (b *fakeBackend) SetOutputEnabled(id int, on bool) error {
	b.outputs[id] = on
	return nil
}

func (b *fakeBackend) LEDState(id int) (bool, error) { return b.leds[id], nil }

func (b *fakeBackend) SetLEDState(id int, on bool) error {
	b.leds[id] = on
	return nil
}

func (b *fakeBackend) Buzz(id int, duration time.Duration, frequency int) error { return nil }

func (b *fakeBackend) ButtonPressed(id int) (bool, error) { return false, nil }

func (b *fakeBackend) BatteryVoltage(id int) (float64, error) { return 11.1, nil }

func (b *fakeBackend) BatteryCurrent(id int) (float64, error) { return 2.5, nil }

// bareBackend satisfies hal.Backend but no driver interface.
type bareBackend struct{}

func (bareBackend) SerialNumber() string { return "bare-0" }

func (bareBackend) FirmwareVersion() string { return "0" }

func TestNewMotorBoardCapability(t *testing.T) {
	if _, err := NewMotorBoard(newFakeBackend()); err != nil {
		t.Fatalf("could not build motor board: %v", err)
	}

	_, err := NewMotorBoard(bareBackend{})
	var cerr *hal.CapabilityError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *hal.CapabilityError", err)
	}
}

func TestMotorBoardIdentity(t *testing.T) {
	board, err := NewMotorBoard(newFakeBackend())
	if err != nil {
		t.Fatalf("could not build motor board: %v", err)
	}
	if board.Name() != MotorBoardName {
		t.Errorf("got name %q, want %q", board.Name(), MotorBoardName)
	}
	if board.SerialNumber() != "fake-0" {
		t.Errorf("got serial %q, want %q", board.SerialNumber(), "fake-0")
	}
	if board.FirmwareVersion() != "3" {
		t.Errorf("got firmware %q, want %q", board.FirmwareVersion(), "3")
	}
	if len(board.Motors()) != NumMotors {
		t.Errorf("got %d motors, want %d", len(board.Motors()), NumMotors)
	}
}

func TestMotorBoardMakeSafe(t *testing.T) {
	backend := newFakeBackend()
	board, err := NewMotorBoard(backend)
	if err != nil {
		t.Fatalf("could not build motor board: %v", err)
	}
	if err := board.Motor(0).SetPower(0.5); err != nil {
		t.Fatalf("could not drive motor: %v", err)
	}

	if err := board.MakeSafe(); err != nil {
		t.Fatalf("make-safe failed: %v", err)
	}
	for i := 0; i < NumMotors; i++ {
		if backend.motors[i] != components.MotorCoast {
			t.Errorf("motor %d not coasting after make-safe", i)
		}
	}
}

func TestMotorBoardMakeSafeBestEffort(t *testing.T) {
	backend := newFakeBackend()
	backend.failMotor = 0
	board, err := NewMotorBoard(backend)
	if err != nil {
		t.Fatalf("could not build motor board: %v", err)
	}

	err = board.MakeSafe()
	var serr *hal.SafetyError
	if !errors.As(err, &serr) {
		t.Fatalf("got %v, want *hal.SafetyError", err)
	}
	if len(serr.Errs) != 1 {
		t.Fatalf("got %d failures, want 1", len(serr.Errs))
	}
	if backend.motors[1] != components.MotorCoast {
		t.Errorf("motor 1 not coasting after motor 0 failed")
	}
}

func TestServoBoardMakeSafe(t *testing.T) {
	backend := newFakeBackend()
	board, err := NewServoBoard(backend)
	if err != nil {
		t.Fatalf("could not build servo board: %v", err)
	}
	if err := board.Servo(4).SetPosition(components.ServoAt(0.5)); err != nil {
		t.Fatalf("could not drive servo: %v", err)
	}

	if err := board.MakeSafe(); err != nil {
		t.Fatalf("make-safe failed: %v", err)
	}
	for i := 0; i < NumServos; i++ {
		if !backend.servos[i].IsDisabled() {
			t.Errorf("servo %d still enabled after make-safe", i)
		}
	}
}

func TestPowerBoardMakeSafe(t *testing.T) {
	backend := newFakeBackend()
	board, err := NewPowerBoard(backend)
	if err != nil {
		t.Fatalf("could not build power board: %v", err)
	}
	for _, out := range board.Outputs() {
		if err := out.SetEnabled(true); err != nil {
			t.Fatalf("could not enable output: %v", err)
		}
	}
	if err := board.RunLED().SetState(true); err != nil {
		t.Fatalf("could not drive LED: %v", err)
	}

	if err := board.MakeSafe(); err != nil {
		t.Fatalf("make-safe failed: %v", err)
	}
	for i := 0; i < NumOutputs; i++ {
		if backend.outputs[i] {
			t.Errorf("output %d still enabled after make-safe", i)
		}
	}
	// make-safe leaves the LEDs alone
	if !backend.leds[RunLED] {
		t.Errorf("run LED was cleared by make-safe")
	}
}

func TestPowerBoardCapability(t *testing.T) {
	_, err := NewPowerBoard(bareBackend{})
	var cerr *hal.CapabilityError
	if !errors.As(err, &cerr) {
		t.Fatalf("got %v, want *hal.CapabilityError", err)
	}
}

func TestPowerBoardBattery(t *testing.T) {
	board, err := NewPowerBoard(newFakeBackend())
	if err != nil {
		t.Fatalf("could not build power board: %v", err)
	}
	v, err := board.Battery().Voltage()
	if err != nil {
		t.Fatalf("voltage read failed: %v", err)
	}
	if v != 11.1 {
		t.Errorf("got %v V, want 11.1 V", v)
	}
	i, err := board.Battery().Current()
	if err != nil {
		t.Fatalf("current read failed: %v", err)
	}
	if i != 2.5 {
		t.Errorf("got %v A, want 2.5 A", i)
	}
}
