package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/components"
)

func TestDiscoverMotorBoardsDefaults(t *testing.T) {
	var out bytes.Buffer
	found, err := DiscoverMotorBoards(Config{Out: &out})
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d boards, want 1", len(found))
	}
	if got, want := found[0].SerialNumber(), "motor-console-0"; got != want {
		t.Errorf("got serial %q, want %q", got, want)
	}
	if found[0].FirmwareVersion() != "" {
		t.Errorf("console board reported firmware %q", found[0].FirmwareVersion())
	}
}

func TestDiscoverMotorBoardsDuplicateSerials(t *testing.T) {
	var out bytes.Buffer
	_, err := DiscoverMotorBoards(Config{
		Serials: []string{"dup", "dup"},
		Out:     &out,
	})
	var aerr *hal.AmbiguityError
	if !errors.As(err, &aerr) {
		t.Fatalf("got %v, want *hal.AmbiguityError", err)
	}
}

func TestMotorBoardDriveAndMakeSafe(t *testing.T) {
	var out bytes.Buffer
	found, err := DiscoverMotorBoards(Config{
		Serials: []string{"mb-0"},
		Out:     &out,
	})
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	board := found[0]

	if err := board.Motor(0).SetPower(0.5); err != nil {
		t.Fatalf("could not drive motor 0: %v", err)
	}
	if err := board.Motor(1).SetPower(-1); err != nil {
		t.Fatalf("could not drive motor 1: %v", err)
	}
	if err := board.MakeSafe(); err != nil {
		t.Fatalf("make-safe failed: %v", err)
	}

	for _, m := range board.Motors() {
		state, err := m.State()
		if err != nil {
			t.Fatalf("could not read motor %d: %v", m.Identifier(), err)
		}
		if state != components.MotorCoast {
			t.Errorf("motor %d not coasting after make-safe: %v", m.Identifier(), state)
		}
	}

	for _, want := range []string{
		"MotorBoard(mb-0): setting motor 0 to 0.5",
		"MotorBoard(mb-0): setting motor 1 to -1",
		"MotorBoard(mb-0): setting motor 0 to coast",
		"MotorBoard(mb-0): setting motor 1 to coast",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestMotorBoardBackendBadIdentifier(t *testing.T) {
	var out bytes.Buffer
	backend := NewMotorBoardBackend("mb-0", Config{Out: &out})

	err := backend.SetMotorState(7, components.MotorCoast)
	var ierr *hal.InvalidArgumentError
	if !errors.As(err, &ierr) {
		t.Fatalf("got %v, want *hal.InvalidArgumentError", err)
	}
}

func TestServoBoardStartsDisabled(t *testing.T) {
	var out bytes.Buffer
	found, err := DiscoverServoBoards(Config{Out: &out})
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	board := found[0]

	for _, s := range board.Servos() {
		pos, err := s.Position()
		if err != nil {
			t.Fatalf("could not read servo %d: %v", s.Identifier(), err)
		}
		if !pos.IsDisabled() {
			t.Errorf("servo %d not disabled at startup", s.Identifier())
		}
	}

	if err := board.Servo(3).SetPosition(components.ServoAt(0.25)); err != nil {
		t.Fatalf("could not drive servo: %v", err)
	}
	if !strings.Contains(out.String(), "setting servo 3 to 0.25") {
		t.Errorf("output missing servo transition:\n%s", out.String())
	}
}

func TestPowerBoardPrompts(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("y\n12.1\nmaybe\nno\n")
	found, err := DiscoverPowerBoards(Config{
		Serials: []string{"pb-0"},
		In:      in,
		Out:     &out,
	})
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	board := found[0]

	pressed, err := board.StartButton().Pressed()
	if err != nil {
		t.Fatalf("button read failed: %v", err)
	}
	if !pressed {
		t.Errorf("got button released, want pressed")
	}

	v, err := board.Battery().Voltage()
	if err != nil {
		t.Fatalf("voltage read failed: %v", err)
	}
	if v != 12.1 {
		t.Errorf("got %v V, want 12.1 V", v)
	}

	// "maybe" is not an answer; the console prompts again
	pressed, err = board.StartButton().Pressed()
	if err != nil {
		t.Fatalf("button read failed: %v", err)
	}
	if pressed {
		t.Errorf("got button pressed, want released")
	}
	if !strings.Contains(out.String(), `unable to parse "maybe" as yes/no`) {
		t.Errorf("output missing reprompt notice:\n%s", out.String())
	}
}

func TestPowerBoardTransitions(t *testing.T) {
	var out bytes.Buffer
	backend := NewPowerBoardBackend("pb-0", Config{Out: &out})

	if err := backend.SetOutputEnabled(2, true); err != nil {
		t.Fatalf("could not enable output: %v", err)
	}
	on, err := backend.OutputEnabled(2)
	if err != nil {
		t.Fatalf("output read failed: %v", err)
	}
	if !on {
		t.Errorf("output 2 not enabled after write")
	}

	if err := backend.SetLEDState(0, true); err != nil {
		t.Fatalf("could not drive LED: %v", err)
	}
	if err := backend.Buzz(0, 100*time.Millisecond, 440); err != nil {
		t.Fatalf("buzz failed: %v", err)
	}

	for _, want := range []string{
		"PowerBoard(pb-0): setting output 2 to true",
		"PowerBoard(pb-0): setting LED 0 to true",
		"PowerBoard(pb-0): buzzing at 440 Hz for 100ms",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}
