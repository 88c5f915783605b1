package console

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

// PowerBoardBackend simulates a PBv4 power board on the console. Outputs,
// LEDs and the piezo print their transitions; the button and battery
// sensor prompt the user for values.
type PowerBoardBackend struct {
	serial string
	con    *Console

	mu      sync.Mutex
	outputs [boards.NumOutputs]bool
	leds    [2]bool
}

// DiscoverPowerBoards returns one simulated power board per configured
// serial number.
func DiscoverPowerBoards(cfg Config) ([]*boards.PowerBoard, error) {
	cfg.setDefaults("power")
	found := make([]*boards.PowerBoard, 0, len(cfg.Serials))
	for _, serial := range cfg.Serials {
		board, err := boards.NewPowerBoard(NewPowerBoardBackend(serial, cfg))
		if err != nil {
			return nil, err
		}
		found = append(found, board)
	}
	if err := hal.DistinctSerials("power", found); err != nil {
		return nil, err
	}
	return found, nil
}

func NewPowerBoardBackend(serial string, cfg Config) *PowerBoardBackend {
	cfg.setDefaults("power")
	return &PowerBoardBackend{
		serial: serial,
		con:    newConsole(fmt.Sprintf("PowerBoard(%s)", serial), cfg),
	}
}

func (b *PowerBoardBackend) SerialNumber() string { return b.serial }

func (b *PowerBoardBackend) FirmwareVersion() string { return "" }

func (b *PowerBoardBackend) OutputEnabled(identifier int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumOutputs {
		return false, &hal.InvalidArgumentError{
			Op:     "OutputEnabled",
			Value:  identifier,
			Reason: "no such output",
		}
	}
	return b.outputs[identifier], nil
}

func (b *PowerBoardBackend) SetOutputEnabled(identifier int, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumOutputs {
		return &hal.InvalidArgumentError{
			Op:     "SetOutputEnabled",
			Value:  identifier,
			Reason: "no such output",
		}
	}
	b.outputs[identifier] = on
	b.con.Infof("setting output %d to %v", identifier, on)
	return nil
}

func (b *PowerBoardBackend) LEDState(identifier int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= len(b.leds) {
		return false, &hal.InvalidArgumentError{
			Op:     "LEDState",
			Value:  identifier,
			Reason: "no such LED",
		}
	}
	return b.leds[identifier], nil
}

func (b *PowerBoardBackend) SetLEDState(identifier int, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identifier < 0 || identifier >= len(b.leds) {
		return &hal.InvalidArgumentError{
			Op:     "SetLEDState",
			Value:  identifier,
			Reason: "no such LED",
		}
	}
	b.leds[identifier] = on
	b.con.Infof("setting LED %d to %v", identifier, on)
	return nil
}

func (b *PowerBoardBackend) Buzz(identifier int, duration time.Duration, frequency int) error {
	b.con.Infof("buzzing at %d Hz for %v", frequency, duration)
	return nil
}

func (b *PowerBoardBackend) ButtonPressed(identifier int) (bool, error) {
	return b.con.ReadBool("is the start button pressed? [y/n]")
}

func (b *PowerBoardBackend) BatteryVoltage(identifier int) (float64, error) {
	return b.con.ReadFloat("battery voltage [V]")
}

func (b *PowerBoardBackend) BatteryCurrent(identifier int) (float64, error) {
	return b.con.ReadFloat("battery current [A]")
}

var (
	_ hal.Backend                    = (*PowerBoardBackend)(nil)
	_ components.PowerOutputDriver   = (*PowerBoardBackend)(nil)
	_ components.LEDDriver           = (*PowerBoardBackend)(nil)
	_ components.PiezoDriver         = (*PowerBoardBackend)(nil)
	_ components.ButtonDriver        = (*PowerBoardBackend)(nil)
	_ components.BatterySensorDriver = (*PowerBoardBackend)(nil)
)
