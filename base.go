package hal

import (
	"golang.org/x/net/context"

	"github.com/gonuts/logger"
	"nanomsg.org/go-mangos"
	"nanomsg.org/go-mangos/protocol/bus"
	"nanomsg.org/go-mangos/transport/ipc"
	"nanomsg.org/go-mangos/transport/tcp"
)

// Base carries the named logger and the telemetry-bus connection shared by
// drivers and the Robot. Before Boot is called the bus is not connected and
// Send drops messages silently, so drivers work standalone.
type Base struct {
	*logger.Logger
	sck mangos.Socket
}

func NewBase(name string) *Base {
	return &Base{
		Logger: logger.New(name),
	}
}

func (b *Base) Boot(ctx context.Context) error {
	sck, err := bus.NewSocket()
	if err != nil {
		return err
	}
	b.sck = sck

	b.sck.AddTransport(ipc.NewTransport())
	b.sck.AddTransport(tcp.NewTransport())

	err = b.sck.Listen("tcp://127.0.0.1:0")
	if err != nil {
		return err
	}

	err = b.sck.Dial(BusAddr)
	if err != nil {
		return err
	}

	return err
}

func (b *Base) Start(ctx context.Context) error { return nil }

func (b *Base) Stop(ctx context.Context) error { return nil }

func (b *Base) Shutdown(ctx context.Context) error {
	if b.sck == nil {
		return nil
	}
	err := b.sck.Close()
	if err != nil {
		b.Errorf("error closing connection to telemetry bus: %v\n", err)
		return err
	}
	b.sck = nil

	return err
}

// Send publishes data on the telemetry bus, tagged with the sender's name.
func (b *Base) Send(data []byte) error {
	if b.sck == nil {
		return nil
	}
	msg := append([]byte("name="+b.Name()+"; "), data...)
	return b.sck.Send(msg)
}
