// Package mbv4 is the hardware backend for the MBv4 motor board, a
// dual-output brushed motor controller attached over USB-serial.
package mbv4

import (
	"bufio"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

// Command bytes understood by the MBv4 firmware.
const (
	cmdReset   = 0
	cmdVersion = 1
	cmdMotor0  = 2
	cmdMotor1  = 3
)

// Special speed bytes. Plain powers map onto 3..253, centred on 128.
const (
	speedCoast = 1
	speedBrake = 2
)

// fwVersion is the only firmware revision this driver speaks.
const fwVersion = "3"

// Config holds the discovery options for MBv4 boards.
type Config struct {
	// Ports lists explicit device paths to probe. When empty, paths
	// matching Globs are scanned instead.
	Ports []string

	// Globs are the device-path patterns scanned for candidates.
	// Default: /dev/ttyACM*, /dev/ttyUSB*.
	Globs []string

	// Baud is the line rate. Default 1000000.
	Baud int

	// Timeout bounds every read and write on the port. Default 250ms.
	Timeout time.Duration
}

func (cfg *Config) setDefaults() {
	if len(cfg.Globs) == 0 {
		cfg.Globs = defaultGlobs()
	}
	if cfg.Baud == 0 {
		cfg.Baud = 1000000
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 250 * time.Millisecond
	}
}

// openPort is swapped out by tests to run discovery against mock ports.
var openPort = serial.Open

// Driver drives one MBv4 board over its serial port. All access to the
// port is serialized through the driver's mutex.
type Driver struct {
	*hal.Base

	mu   sync.Mutex
	port serial.Port
	rd   *bufio.Reader

	serial string
	fw     string
	state  [boards.NumMotors]components.MotorState
}

// Discover probes the candidate serial ports for MBv4 boards and returns
// one board per unit that answers the identity handshake. Candidates that
// are busy, silent or answer as something else are skipped. Two candidates
// reporting the same serial number fail the whole call.
func Discover(cfg Config) ([]*boards.MotorBoard, error) {
	cfg.setDefaults()
	log := hal.NewBase("mbv4")

	ports := cfg.Ports
	if len(ports) == 0 {
		ports = listPorts(cfg.Globs)
	}

	var (
		found []*boards.MotorBoard
		drvs  []*Driver
	)
	for _, path := range ports {
		drv, err := Open(path, cfg)
		if err != nil {
			log.Debugf("skipping %s: %v\n", path, err)
			continue
		}
		board, err := boards.NewMotorBoard(drv)
		if err != nil {
			drv.Close()
			releaseBoards(found, drvs)
			return nil, err
		}
		log.Infof("found MBv4 serial=%s on %s\n", drv.SerialNumber(), path)
		found = append(found, board)
		drvs = append(drvs, drv)
	}

	if err := hal.DistinctSerials("motor", found); err != nil {
		releaseBoards(found, drvs)
		return nil, err
	}
	return found, nil
}

// releaseBoards safes and closes boards already constructed when a later
// candidate fails the whole discovery call, so no port stays claimed.
func releaseBoards(found []*boards.MotorBoard, drvs []*Driver) {
	for _, board := range found {
		board.MakeSafe()
	}
	for _, drv := range drvs {
		drv.Close()
	}
}

// Open opens and validates a single candidate port.
func Open(path string, cfg Config) (*Driver, error) {
	cfg.setDefaults()
	port, err := openPort(&serial.Config{
		Address:  path,
		BaudRate: cfg.Baud,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, &hal.TransportError{Op: "open " + path, Err: err}
	}

	d := &Driver{
		Base: hal.NewBase("mbv4:" + path),
		port: port,
		rd:   bufio.NewReader(port),
	}
	for i := range d.state {
		d.state[i] = components.MotorBrake
	}

	if err := d.identify(); err != nil {
		port.Close()
		return nil, err
	}

	// Brake both outputs so the board state matches ours.
	for i, s := range d.state {
		if err := d.SetMotorState(i, s); err != nil {
			port.Close()
			return nil, err
		}
	}

	return d, nil
}

// identify asks the board for its identity line, "MBV4:<serial>:<fw>".
func (d *Driver) identify() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.send(cmdVersion); err != nil {
		return err
	}
	line, err := d.readLine()
	if err != nil {
		return err
	}

	parts := strings.Split(line, ":")
	if len(parts) != 3 || parts[0] != "MBV4" {
		return &hal.TransportError{
			Op:  "identify",
			Err: fmt.Errorf("unexpected identity line %q", line),
		}
	}
	if parts[2] != fwVersion {
		return &hal.TransportError{
			Op:  "identify",
			Err: fmt.Errorf("unsupported firmware version %q", parts[2]),
		}
	}
	d.serial, d.fw = parts[1], parts[2]
	return nil
}

func (d *Driver) SerialNumber() string { return d.serial }

func (d *Driver) FirmwareVersion() string { return d.fw }

// MotorState returns the last state commanded on the output. The board
// cannot report its outputs over the wire, so the driver mirrors what it
// last wrote.
func (d *Driver) MotorState(identifier int) (components.MotorState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumMotors {
		return components.MotorState{}, &hal.InvalidArgumentError{
			Op:     "MotorState",
			Value:  identifier,
			Reason: "no such motor",
		}
	}
	return d.state[identifier], nil
}

func (d *Driver) SetMotorState(identifier int, state components.MotorState) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumMotors {
		return &hal.InvalidArgumentError{
			Op:     "SetMotorState",
			Value:  identifier,
			Reason: "no such motor",
		}
	}
	if err := d.send(byte(cmdMotor0+identifier), encodeSpeed(state)); err != nil {
		return err
	}
	d.state[identifier] = state
	return nil
}

// Reset reboots the board firmware.
func (d *Driver) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send(cmdReset)
}

// Close releases the serial port. The board keeps its last commanded
// state; make the board safe first if that matters.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.port.Close()
}

// send writes one command frame. Callers hold d.mu.
func (d *Driver) send(cmd ...byte) error {
	n, err := d.port.Write(cmd)
	if err != nil {
		return wireErr("write", err)
	}
	if n != len(cmd) {
		return &hal.TransportError{
			Op:  "write",
			Err: fmt.Errorf("wrote %d of %d bytes", n, len(cmd)),
		}
	}
	return nil
}

// readLine reads one reply line. Callers hold d.mu.
func (d *Driver) readLine() (string, error) {
	line, err := d.rd.ReadString('\n')
	if err != nil {
		return "", wireErr("read", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func wireErr(op string, err error) error {
	if err == serial.ErrTimeout {
		return &hal.TimeoutError{Op: op, Err: err}
	}
	return &hal.TransportError{Op: op, Err: err}
}

// encodeSpeed maps a motor state onto the wire byte. Powers use the range
// 3..253 so that forward and reverse are symmetric around 128; 1 and 2 are
// the coast and brake magic values.
func encodeSpeed(state components.MotorState) byte {
	switch {
	case state == components.MotorCoast:
		return speedCoast
	case state == components.MotorBrake:
		return speedBrake
	default:
		return byte(math.Round(state.Power()*125) + 128)
	}
}

var (
	_ hal.Backend            = (*Driver)(nil)
	_ components.MotorDriver = (*Driver)(nil)
)
