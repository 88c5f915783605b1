package console

import (
	"fmt"
	"sync"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

// ServoBoardBackend simulates an SBv4 servo board on the console.
type ServoBoardBackend struct {
	serial string
	con    *Console

	mu    sync.Mutex
	state [boards.NumServos]components.ServoPosition
}

// DiscoverServoBoards returns one simulated servo board per configured
// serial number.
func DiscoverServoBoards(cfg Config) ([]*boards.ServoBoard, error) {
	cfg.setDefaults("servo")
	found := make([]*boards.ServoBoard, 0, len(cfg.Serials))
	for _, serial := range cfg.Serials {
		board, err := boards.NewServoBoard(NewServoBoardBackend(serial, cfg))
		if err != nil {
			return nil, err
		}
		found = append(found, board)
	}
	if err := hal.DistinctSerials("servo", found); err != nil {
		return nil, err
	}
	return found, nil
}

func NewServoBoardBackend(serial string, cfg Config) *ServoBoardBackend {
	cfg.setDefaults("servo")
	b := &ServoBoardBackend{
		serial: serial,
		con:    newConsole(fmt.Sprintf("ServoBoard(%s)", serial), cfg),
	}
	for i := range b.state {
		b.state[i] = components.ServoDisabled
	}
	return b
}

func (b *ServoBoardBackend) SerialNumber() string { return b.serial }

func (b *ServoBoardBackend) FirmwareVersion() string { return "" }

func (b *ServoBoardBackend) ServoPosition(identifier int) (components.ServoPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumServos {
		return components.ServoPosition{}, &hal.InvalidArgumentError{
			Op:     "ServoPosition",
			Value:  identifier,
			Reason: "no such servo",
		}
	}
	return b.state[identifier], nil
}

func (b *ServoBoardBackend) SetServoPosition(identifier int, pos components.ServoPosition) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumServos {
		return &hal.InvalidArgumentError{
			Op:     "SetServoPosition",
			Value:  identifier,
			Reason: "no such servo",
		}
	}
	b.state[identifier] = pos
	b.con.Infof("setting servo %d to %v", identifier, pos)
	return nil
}

var (
	_ hal.Backend            = (*ServoBoardBackend)(nil)
	_ components.ServoDriver = (*ServoBoardBackend)(nil)
)
