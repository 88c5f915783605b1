package console

import (
	"fmt"
	"sync"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

// MotorBoardBackend simulates an MBv4 motor board on the console.
type MotorBoardBackend struct {
	serial string
	con    *Console

	mu    sync.Mutex
	state [boards.NumMotors]components.MotorState
}

// DiscoverMotorBoards returns one simulated motor board per configured
// serial number.
func DiscoverMotorBoards(cfg Config) ([]*boards.MotorBoard, error) {
	cfg.setDefaults("motor")
	found := make([]*boards.MotorBoard, 0, len(cfg.Serials))
	for _, serial := range cfg.Serials {
		board, err := boards.NewMotorBoard(NewMotorBoardBackend(serial, cfg))
		if err != nil {
			return nil, err
		}
		found = append(found, board)
	}
	if err := hal.DistinctSerials("motor", found); err != nil {
		return nil, err
	}
	return found, nil
}

func NewMotorBoardBackend(serial string, cfg Config) *MotorBoardBackend {
	cfg.setDefaults("motor")
	b := &MotorBoardBackend{
		serial: serial,
		con:    newConsole(fmt.Sprintf("MotorBoard(%s)", serial), cfg),
	}
	for i := range b.state {
		b.state[i] = components.MotorBrake
	}
	return b
}

func (b *MotorBoardBackend) SerialNumber() string { return b.serial }

// FirmwareVersion returns the empty string: a console board has no
// firmware.
func (b *MotorBoardBackend) FirmwareVersion() string { return "" }

func (b *MotorBoardBackend) MotorState(identifier int) (components.MotorState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumMotors {
		return components.MotorState{}, &hal.InvalidArgumentError{
			Op:     "MotorState",
			Value:  identifier,
			Reason: "no such motor",
		}
	}
	return b.state[identifier], nil
}

func (b *MotorBoardBackend) SetMotorState(identifier int, state components.MotorState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumMotors {
		return &hal.InvalidArgumentError{
			Op:     "SetMotorState",
			Value:  identifier,
			Reason: "no such motor",
		}
	}
	b.state[identifier] = state
	b.con.Infof("setting motor %d to %v", identifier, state)
	return nil
}

var (
	_ hal.Backend            = (*MotorBoardBackend)(nil)
	_ components.MotorDriver = (*MotorBoardBackend)(nil)
)
