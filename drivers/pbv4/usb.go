package pbv4

import (
	"time"

	"github.com/google/gousb"
)

// Device is the slice of a USB device handle the driver consumes: identity
// plus vendor control transfers with a bounded timeout.
type Device interface {
	SerialNumber() (string, error)
	// ControlIn issues an IN control transfer for the command code in
	// index and returns the payload.
	ControlIn(index uint16, length int) ([]byte, error)
	// ControlOut issues an OUT control transfer for the command code in
	// index, carrying either a value word or a data payload.
	ControlOut(index uint16, value uint16, data []byte) error
	Close() error
}

// Enumerator lists the devices matching the board's USB identity. Devices
// that are present but cannot be opened (already claimed by another
// process) are skipped, not fatal.
type Enumerator interface {
	Open(vendor, product uint16, timeout time.Duration) ([]Device, error)
}

// bRequest used for every PBv4 control transfer, matching the firmware.
const ctrlRequest = 64

// libusbEnumerator enumerates over libusb. The context stays open for the
// lifetime of the devices it handed out.
type libusbEnumerator struct {
	ctx *gousb.Context
}

// NewEnumerator returns the libusb-backed enumerator used by default.
func NewEnumerator() Enumerator {
	return &libusbEnumerator{ctx: gousb.NewContext()}
}

func (e *libusbEnumerator) Open(vendor, product uint16, timeout time.Duration) ([]Device, error) {
	devs, err := e.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(vendor) && desc.Product == gousb.ID(product)
	})
	// OpenDevices reports an error when any matching device could not be
	// opened; the ones it did open are still usable. A claimed device is
	// a skip condition, so the error is dropped and the opened devices
	// are kept.
	if len(devs) == 0 && err != nil {
		return nil, err
	}
	out := make([]Device, 0, len(devs))
	for _, dev := range devs {
		dev.ControlTimeout = timeout
		out = append(out, &libusbDevice{dev: dev})
	}
	return out, nil
}

type libusbDevice struct {
	dev *gousb.Device
}

func (d *libusbDevice) SerialNumber() (string, error) {
	return d.dev.SerialNumber()
}

func (d *libusbDevice) ControlIn(index uint16, length int) ([]byte, error) {
	buf := make([]byte, length)
	n, err := d.dev.Control(0x80, ctrlRequest, 0, index, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (d *libusbDevice) ControlOut(index uint16, value uint16, data []byte) error {
	_, err := d.dev.Control(0x00, ctrlRequest, value, index, data)
	return err
}

func (d *libusbDevice) Close() error {
	return d.dev.Close()
}

// isUSBTimeout reports whether a libusb error is a transfer timeout.
func isUSBTimeout(err error) bool {
	return err == gousb.TransferTimedOut || err == gousb.ErrorTimeout
}
