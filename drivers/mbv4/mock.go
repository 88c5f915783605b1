package mbv4

import (
	"sync"

	"github.com/goburrow/serial"

	"github.com/go-robo/hal/boards"
)

// MockPort is an in-memory serial port that answers like an MBv4 board.
// It backs the driver tests and lets applications exercise discovery
// without hardware attached.
type MockPort struct {
	mu      sync.Mutex
	serial  string
	fw      string
	pending []byte
	closed  bool

	// Speeds holds the raw speed byte last written per output.
	Speeds [boards.NumMotors]byte
}

// NewMockPort returns a mock board with the given serial number, running
// the supported firmware revision.
func NewMockPort(serialNumber string) *MockPort {
	return NewMockPortFirmware(serialNumber, fwVersion)
}

// NewMockPortFirmware returns a mock board reporting an arbitrary
// firmware revision, for exercising the validation path.
func NewMockPortFirmware(serialNumber, fw string) *MockPort {
	m := &MockPort{serial: serialNumber, fw: fw}
	for i := range m.Speeds {
		m.Speeds[i] = speedCoast
	}
	return m
}

func (m *MockPort) Open(*serial.Config) error { return nil }

func (m *MockPort) Read(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		// a silent board looks like a read timeout
		return 0, serial.ErrTimeout
	}
	n := copy(data, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

func (m *MockPort) Write(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(data) == 0 {
		return 0, nil
	}
	switch data[0] {
	case cmdReset:
		// no reply
	case cmdVersion:
		m.pending = append(m.pending, []byte("MBV4:"+m.serial+":"+m.fw+"\n")...)
	case cmdMotor0, cmdMotor1:
		if len(data) > 1 {
			m.Speeds[data[0]-cmdMotor0] = data[1]
		}
	}
	return len(data), nil
}

func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ serial.Port = (*MockPort)(nil)
