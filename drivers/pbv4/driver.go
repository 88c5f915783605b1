// Package pbv4 is the hardware backend for the PBv4 power board, attached
// over raw USB control transfers.
package pbv4

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

// Command codes, matching the definitions in the firmware's usb.h. Read
// and write commands share the output codes.
const (
	cmdReadRail    = 6
	cmdReadBattery = 7
	cmdReadButton  = 8
	cmdReadFwVer   = 9

	cmdWriteRunLED   = 6
	cmdWriteErrorLED = 7
	cmdWritePiezo    = 8
)

// fwVersion is the only firmware revision this driver speaks.
const fwVersion = "3"

// Config holds the discovery options for PBv4 boards.
type Config struct {
	// Vendor and Product identify the board on the bus.
	// Defaults 0x1bda, 0x0010.
	Vendor  uint16
	Product uint16

	// Timeout bounds every control transfer. Default 250ms.
	Timeout time.Duration

	// Enumerator lists candidate devices. Defaults to libusb.
	Enumerator Enumerator
}

func (cfg *Config) setDefaults() {
	if cfg.Vendor == 0 {
		cfg.Vendor = 0x1bda
	}
	if cfg.Product == 0 {
		cfg.Product = 0x0010
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 250 * time.Millisecond
	}
	if cfg.Enumerator == nil {
		cfg.Enumerator = NewEnumerator()
	}
}

// Driver drives one PBv4 board over its USB handle. All access to the
// handle is serialized through the driver's mutex.
type Driver struct {
	*hal.Base

	mu  sync.Mutex
	dev Device

	serial  string
	fw      string
	outputs [boards.NumOutputs]bool
	leds    [2]bool
}

// Discover enumerates the USB bus for PBv4 boards and returns one board
// per unit that validates. Candidates that cannot be opened or fail the
// identity read are skipped. Two candidates reporting the same serial
// number fail the whole call.
func Discover(cfg Config) ([]*boards.PowerBoard, error) {
	cfg.setDefaults()
	log := hal.NewBase("pbv4")

	devs, err := cfg.Enumerator.Open(cfg.Vendor, cfg.Product, cfg.Timeout)
	if err != nil {
		return nil, &hal.TransportError{Op: "enumerate", Err: err}
	}

	var (
		found []*boards.PowerBoard
		drvs  []*Driver
	)
	for _, dev := range devs {
		drv, err := newDriver(dev)
		if err != nil {
			log.Debugf("skipping candidate: %v\n", err)
			dev.Close()
			continue
		}
		board, err := boards.NewPowerBoard(drv)
		if err != nil {
			dev.Close()
			releaseBoards(found, drvs)
			return nil, err
		}
		log.Infof("found PBv4 serial=%s\n", drv.SerialNumber())
		found = append(found, board)
		drvs = append(drvs, drv)
	}

	if err := hal.DistinctSerials("power", found); err != nil {
		releaseBoards(found, drvs)
		return nil, err
	}
	return found, nil
}

// releaseBoards safes and closes boards already constructed when a later
// candidate fails the whole discovery call, so no handle stays claimed.
func releaseBoards(found []*boards.PowerBoard, drvs []*Driver) {
	for _, board := range found {
		board.MakeSafe()
	}
	for _, drv := range drvs {
		drv.Close()
	}
}

func newDriver(dev Device) (*Driver, error) {
	serial, err := dev.SerialNumber()
	if err != nil {
		return nil, wireErr("read serial number", err)
	}
	d := &Driver{
		Base:   hal.NewBase("pbv4:" + serial),
		dev:    dev,
		serial: serial,
	}
	fw, err := d.readFirmwareVersion()
	if err != nil {
		return nil, err
	}
	if fw != fwVersion {
		return nil, &hal.TransportError{
			Op:  "identify",
			Err: fmt.Errorf("unsupported firmware version %q", fw),
		}
	}
	d.fw = fw
	return d, nil
}

func (d *Driver) SerialNumber() string { return d.serial }

func (d *Driver) FirmwareVersion() string { return d.fw }

func (d *Driver) readFirmwareVersion() (string, error) {
	raw, err := d.read(cmdReadFwVer, 4)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(int(binary.LittleEndian.Uint32(raw))), nil
}

// OutputEnabled returns the last state commanded on the output; the read
// command on the wire reports current draw, not the switch state.
func (d *Driver) OutputEnabled(identifier int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumOutputs {
		return false, &hal.InvalidArgumentError{
			Op:     "OutputEnabled",
			Value:  identifier,
			Reason: "no such output",
		}
	}
	return d.outputs[identifier], nil
}

func (d *Driver) SetOutputEnabled(identifier int, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumOutputs {
		return &hal.InvalidArgumentError{
			Op:     "SetOutputEnabled",
			Value:  identifier,
			Reason: "no such output",
		}
	}
	if err := d.write(uint16(identifier), boolWord(on), nil); err != nil {
		return err
	}
	d.outputs[identifier] = on
	return nil
}

func (d *Driver) LEDState(identifier int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= len(d.leds) {
		return false, &hal.InvalidArgumentError{
			Op:     "LEDState",
			Value:  identifier,
			Reason: "no such LED",
		}
	}
	return d.leds[identifier], nil
}

func (d *Driver) SetLEDState(identifier int, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var cmd uint16
	switch identifier {
	case boards.RunLED:
		cmd = cmdWriteRunLED
	case boards.ErrorLED:
		cmd = cmdWriteErrorLED
	default:
		return &hal.InvalidArgumentError{
			Op:     "SetLEDState",
			Value:  identifier,
			Reason: "no such LED",
		}
	}
	if err := d.write(cmd, boolWord(on), nil); err != nil {
		return err
	}
	d.leds[identifier] = on
	return nil
}

func (d *Driver) Buzz(identifier int, duration time.Duration, frequency int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ms := duration / time.Millisecond
	if ms < 0 || ms > 65535 {
		return &hal.InvalidArgumentError{
			Op:     "Buzz",
			Value:  duration,
			Reason: "duration outside the wire format range",
		}
	}
	// The firmware wants the frequency word first.
	data := make([]byte, 4)
	binary.LittleEndian.PutUint16(data[0:2], uint16(frequency))
	binary.LittleEndian.PutUint16(data[2:4], uint16(ms))
	return d.write(cmdWritePiezo, 0, data)
}

func (d *Driver) ButtonPressed(identifier int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.read(cmdReadButton, 4)
	if err != nil {
		return false, err
	}
	return binary.LittleEndian.Uint32(raw) != 0, nil
}

// BatteryVoltage returns the battery voltage, converted from the
// millivolt reading on the wire.
func (d *Driver) BatteryVoltage(identifier int) (float64, error) {
	_, mv, err := d.readBattery()
	return float64(mv) / 1000, err
}

// BatteryCurrent returns the battery current draw, converted from the
// milliamp reading on the wire.
func (d *Driver) BatteryCurrent(identifier int) (float64, error) {
	ma, _, err := d.readBattery()
	return float64(ma) / 1000, err
}

func (d *Driver) readBattery() (current, voltage uint32, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	raw, err := d.read(cmdReadBattery, 8)
	if err != nil {
		return 0, 0, err
	}
	current = binary.LittleEndian.Uint32(raw[0:4])
	voltage = binary.LittleEndian.Uint32(raw[4:8])
	return current, voltage, nil
}

// Close releases the USB handle. The board keeps its last commanded
// state; make the board safe first if that matters.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dev.Close()
}

// read issues an IN control transfer. Callers hold d.mu (or run before
// the driver is shared).
func (d *Driver) read(cmd uint16, length int) ([]byte, error) {
	raw, err := d.dev.ControlIn(cmd, length)
	if err != nil {
		return nil, wireErr(fmt.Sprintf("control read %d", cmd), err)
	}
	if len(raw) != length {
		return nil, &hal.TransportError{
			Op:  fmt.Sprintf("control read %d", cmd),
			Err: fmt.Errorf("read %d of %d bytes", len(raw), length),
		}
	}
	return raw, nil
}

func (d *Driver) write(cmd uint16, value uint16, data []byte) error {
	if err := d.dev.ControlOut(cmd, value, data); err != nil {
		return wireErr(fmt.Sprintf("control write %d", cmd), err)
	}
	return nil
}

func wireErr(op string, err error) error {
	if isUSBTimeout(err) {
		return &hal.TimeoutError{Op: op, Err: err}
	}
	return &hal.TransportError{Op: op, Err: err}
}

func boolWord(on bool) uint16 {
	if on {
		return 1
	}
	return 0
}

var (
	_ hal.Backend                    = (*Driver)(nil)
	_ components.PowerOutputDriver   = (*Driver)(nil)
	_ components.LEDDriver           = (*Driver)(nil)
	_ components.PiezoDriver         = (*Driver)(nil)
	_ components.ButtonDriver        = (*Driver)(nil)
	_ components.BatterySensorDriver = (*Driver)(nil)
)
