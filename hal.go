// Package hal provides a uniform API for addressing heterogeneous robotics
// hardware: boards expose components, components delegate their I/O to a
// backend driver, and drivers discover the physically present boards over
// their transport (USB, serial, modbus or a console stand-in).
package hal

import (
	"golang.org/x/net/context"
)

// Component is the smallest addressable capability on a board (a motor, an
// LED, a sensor...). A component holds its identifier and a reference to the
// driver that performs the actual I/O, and nothing else.
type Component interface {
	Identifier() int
}

// Board is a physical (or simulated) hardware unit exposing a fixed set of
// components. Boards never perform I/O themselves; identity accessors and
// component operations all delegate to the backend driver.
type Board interface {
	Name() string
	SerialNumber() string

	// FirmwareVersion returns the firmware version reported by the board,
	// or the empty string when the backend has none (console backends).
	FirmwareVersion() string

	// MakeSafe commands every component with a defined safe state into that
	// state. It is best-effort: it attempts every component and returns an
	// aggregated *SafetyError rather than stopping at the first failure.
	MakeSafe() error
}

// Backend binds one board model to one transport. A concrete driver also
// implements the component driver interfaces (components.MotorDriver, ...)
// required by its board; boards verify that structurally at construction.
type Backend interface {
	SerialNumber() string
	FirmwareVersion() string
}

// Module is a long-lived part of a Robot with a managed lifecycle.
type Module interface {
	Name() string
	Boot(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Ticker is implemented by modules that want the Robot's periodic tick.
type Ticker interface {
	Name() string
	Tick(ctx context.Context) error
}
