package hal

import (
	"testing"
)

func TestRegistryDiscover(t *testing.T) {
	reg := NewRegistry()
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) {
		return []*fakeBoard{{serial: "m0"}, {serial: "m1"}}, nil
	}))
	reg.Register("power", AsBoards(func() ([]*fakeBoard, error) {
		return []*fakeBoard{{serial: "p0"}}, nil
	}))

	if got, want := len(reg.Kinds()), 2; got != want {
		t.Fatalf("got %d kinds, want %d", got, want)
	}

	g, err := reg.Discover("motor")
	if err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("got %d motor boards, want 2", g.Len())
	}

	groups, err := reg.DiscoverAll()
	if err != nil {
		t.Fatalf("discover-all failed: %v", err)
	}
	if groups["power"].Len() != 1 {
		t.Fatalf("got %d power boards, want 1", groups["power"].Len())
	}

	if _, err := reg.Discover("camera"); err == nil {
		t.Fatalf("expected an error for an unregistered kind")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("duplicate registration did not panic")
		}
	}()
	reg := NewRegistry()
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) { return nil, nil }))
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) { return nil, nil }))
}

func TestRobotDiscoverAndMakeAllSafe(t *testing.T) {
	board := &fakeBoard{serial: "m0"}
	reg := NewRegistry()
	reg.Register("motor", AsBoards(func() ([]*fakeBoard, error) {
		return []*fakeBoard{board}, nil
	}))

	robot, err := NewRobot("test-robot", reg)
	if err != nil {
		t.Fatalf("could not build robot: %v", err)
	}

	if err := robot.Discover(); err != nil {
		t.Fatalf("discovery failed: %v", err)
	}
	g, ok := robot.Group("motor")
	if !ok {
		t.Fatalf("motor group missing after discovery")
	}
	if g.Len() != 1 {
		t.Fatalf("got %d boards, want 1", g.Len())
	}

	if err := robot.MakeAllSafe(); err != nil {
		t.Fatalf("make-all-safe failed: %v", err)
	}
	if board.safed != 1 {
		t.Errorf("board was not made safe")
	}
}
