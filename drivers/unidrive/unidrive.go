// Package unidrive is the hardware backend for UD-series dual-axis motor
// drives, attached over modbus-TCP. Drive settings are addressed as
// menu.index parameters mapped onto 32-bit modbus holding registers.
package unidrive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/go-robo/hal"
	"github.com/go-robo/hal/boards"
	"github.com/go-robo/hal/components"
)

const (
	enable32bits = 0x4000 // enables the 32b mode of the drive's modbus map
	nregs        = 2      // number of 16b registers per parameter
)

// Param addresses one drive parameter in the UD menu map.
type Param struct {
	Menu  int
	Index int
}

// reg returns the 32b modbus register corresponding to this parameter.
func (p Param) reg() uint16 {
	return uint16(p.Menu*100 + p.Index - 1 + enable32bits)
}

func (p Param) String() string {
	return fmt.Sprintf("%02d.%03d", p.Menu, p.Index)
}

// ParseParam parses a menu.index parameter reference.
func ParseParam(ref string) (Param, error) {
	var p Param

	toks := strings.Split(ref, ".")
	if len(toks) != 2 {
		return p, fmt.Errorf("unidrive: invalid parameter reference %q", ref)
	}
	for i, tok := range toks {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return p, fmt.Errorf("unidrive: invalid parameter reference %q: %v", ref, err)
		}
		switch i {
		case 0:
			p.Menu = v
		case 1:
			p.Index = v
		}
	}

	if p.Menu < 0 || p.Menu > 162 {
		return p, fmt.Errorf("unidrive: invalid menu value (%d) [pr=%s]", p.Menu, ref)
	}
	if p.Index < 1 || p.Index >= 100 {
		return p, fmt.Errorf("unidrive: invalid index value (%d) [pr=%s]", p.Index, ref)
	}

	return p, nil
}

// Identity and per-axis control parameters of the UD map.
var (
	paramSerial = Param{Menu: 11, Index: 30}
	paramFw     = Param{Menu: 11, Index: 29}

	// speed reference per axis, in thousandths of full scale
	speedParams = [boards.NumMotors]Param{{Menu: 1, Index: 21}, {Menu: 1, Index: 22}}
	// drive-enable word per axis: 0 releases the axis (coast)
	enableParams = [boards.NumMotors]Param{{Menu: 6, Index: 15}, {Menu: 6, Index: 16}}
)

// Config holds the discovery options for UD drives. Modbus-TCP has no bus
// enumeration, so candidates are an explicit address list.
type Config struct {
	// Addrs lists the host:port endpoints to probe.
	Addrs []string

	// Slave is the modbus slave id. Default 1.
	Slave byte

	// Timeout bounds every modbus transaction. Default 5s.
	Timeout time.Duration
}

func (cfg *Config) setDefaults() {
	if cfg.Slave == 0 {
		cfg.Slave = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
}

// Driver drives one UD unit. A transaction handler is dialed per
// parameter access, m702-style; the mutex keeps accesses serialized.
type Driver struct {
	*hal.Base

	addr    string
	slave   byte
	timeout time.Duration

	mu     sync.Mutex
	serial string
	fw     string
	state  [boards.NumMotors]components.MotorState
}

// Discover probes the configured endpoints for UD drives and returns one
// motor board per unit that answers the identity reads. Unreachable
// endpoints are skipped. Two units reporting the same serial number fail
// the whole call.
func Discover(cfg Config) ([]*boards.MotorBoard, error) {
	cfg.setDefaults()
	log := hal.NewBase("unidrive")

	var found []*boards.MotorBoard
	for _, addr := range cfg.Addrs {
		drv, err := Open(addr, cfg)
		if err != nil {
			log.Debugf("skipping %s: %v\n", addr, err)
			continue
		}
		board, err := boards.NewMotorBoard(drv)
		if err != nil {
			return nil, err
		}
		log.Infof("found UD drive serial=%s at %s\n", drv.SerialNumber(), addr)
		found = append(found, board)
	}

	if err := hal.DistinctSerials("motor", found); err != nil {
		return nil, err
	}
	return found, nil
}

// Open probes and validates a single endpoint.
func Open(addr string, cfg Config) (*Driver, error) {
	cfg.setDefaults()
	d := &Driver{
		Base:    hal.NewBase("unidrive:" + addr),
		addr:    addr,
		slave:   cfg.Slave,
		timeout: cfg.Timeout,
	}
	for i := range d.state {
		d.state[i] = components.MotorCoast
	}

	serial, err := d.readParam(paramSerial)
	if err != nil {
		return nil, err
	}
	fw, err := d.readParam(paramFw)
	if err != nil {
		return nil, err
	}
	d.serial = fmt.Sprintf("UD%08d", serial)
	d.fw = fmt.Sprintf("%d.%02d", fw/100, fw%100)

	// Release both axes so the drive state matches ours.
	for i, s := range d.state {
		if err := d.SetMotorState(i, s); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *Driver) SerialNumber() string { return d.serial }

func (d *Driver) FirmwareVersion() string { return d.fw }

// MotorState returns the last state commanded on the axis.
func (d *Driver) MotorState(identifier int) (components.MotorState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if identifier < 0 || identifier >= boards.NumMotors {
		return components.MotorState{}, &hal.InvalidArgumentError{
			Op:     "MotorState",
			Value:  identifier,
			Reason: "no such axis",
		}
	}
	return d.state[identifier], nil
}

func (d *Driver) SetMotorState(identifier int, state components.MotorState) error {
	if identifier < 0 || identifier >= boards.NumMotors {
		return &hal.InvalidArgumentError{
			Op:     "SetMotorState",
			Value:  identifier,
			Reason: "no such axis",
		}
	}

	var enable, speed uint32
	switch {
	case state == components.MotorCoast:
		enable, speed = 0, 0
	case state == components.MotorBrake:
		enable, speed = 1, 0
	default:
		enable = 1
		speed = uint32(int32(math.Round(state.Power() * 1000)))
	}

	if err := d.writeParam(speedParams[identifier], speed); err != nil {
		return err
	}
	if err := d.writeParam(enableParams[identifier], enable); err != nil {
		return err
	}

	d.mu.Lock()
	d.state[identifier] = state
	d.mu.Unlock()
	return nil
}

func (d *Driver) client() *modbus.TCPClientHandler {
	h := modbus.NewTCPClientHandler(d.addr)
	h.SlaveId = d.slave
	h.Timeout = d.timeout
	return h
}

// readParam reads one 32b parameter from the drive.
func (d *Driver) readParam(p Param) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.client()
	defer h.Close()

	o, err := modbus.NewClient(h).ReadHoldingRegisters(p.reg(), nregs)
	if err != nil {
		return 0, wireErr(fmt.Sprintf("read Pr-%v", p), err)
	}
	if len(o) != 4 {
		return 0, &hal.TransportError{
			Op:  fmt.Sprintf("read Pr-%v", p),
			Err: fmt.Errorf("read %d of 4 bytes", len(o)),
		}
	}
	return binary.BigEndian.Uint32(o), nil
}

// writeParam writes one 32b parameter to the drive.
func (d *Driver) writeParam(p Param, v uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.client()
	defer h.Close()

	var data [4]byte
	binary.BigEndian.PutUint32(data[:], v)
	o, err := modbus.NewClient(h).WriteMultipleRegisters(p.reg(), nregs, data[:])
	if err != nil {
		return wireErr(fmt.Sprintf("write Pr-%v", p), err)
	}
	if len(o) >= 2 && binary.BigEndian.Uint16(o) != nregs {
		return &hal.TransportError{
			Op:  fmt.Sprintf("write Pr-%v", p),
			Err: fmt.Errorf("expected %d registers written, got %d", nregs, binary.BigEndian.Uint16(o)),
		}
	}
	return nil
}

func wireErr(op string, err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &hal.TimeoutError{Op: op, Err: err}
	}
	return &hal.TransportError{Op: op, Err: err}
}

var (
	_ hal.Backend            = (*Driver)(nil)
	_ components.MotorDriver = (*Driver)(nil)
)
