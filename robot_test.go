package hal

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"golang.org/x/net/context"
)

type wobblyTicker struct {
	*Base
}

func (m *wobblyTicker) Tick(ctx context.Context) error {
	return fmt.Errorf("wobble")
}

func TestRobotRunInterrupt(t *testing.T) {
	board := &fakeBoard{serial: "m0"}
	reg := NewRegistry()
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) {
		return []*fakeBoard{board}, nil
	}))
	robot, err := NewRobot("test-run", reg)
	if err != nil {
		t.Fatalf("could not build robot: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- robot.Run() }()

	time.Sleep(200 * time.Millisecond)
	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("could not signal ourselves: %v", err)
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("robot did not stop on interrupt")
	}
	if board.safed != 1 {
		t.Errorf("board was not made safe on shutdown")
	}
}

func TestRobotRunTickError(t *testing.T) {
	board := &fakeBoard{serial: "m0"}
	reg := NewRegistry()
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) {
		return []*fakeBoard{board}, nil
	}))
	robot, err := NewRobot("test-tick", reg, &wobblyTicker{Base: NewBase("wobbly")})
	if err != nil {
		t.Fatalf("could not build robot: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- robot.Run() }()

	select {
	case err := <-errc:
		if err == nil || !strings.Contains(err.Error(), "wobble") {
			t.Fatalf("got %v, want the ticker's error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("robot did not stop on a failing ticker")
	}
	if board.safed != 1 {
		t.Errorf("board was not made safe on shutdown")
	}
}
