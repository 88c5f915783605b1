package hal

import (
	"io"

	"golang.org/x/net/context"

	"nanomsg.org/go-mangos"
	"nanomsg.org/go-mangos/protocol/bus"
	"nanomsg.org/go-mangos/transport/ipc"
	"nanomsg.org/go-mangos/transport/tcp"
)

const (
	// BusAddr is the default rendez-vous point for the telemetry bus.
	BusAddr = "tcp://127.0.0.1:40000"
)

// sysbus is the telemetry bus every Base dials into. The Robot owns it and
// logs whatever the drivers and boards publish.
type sysbus struct {
	*Base
	sck mangos.Socket
}

func newSysBus() *sysbus {
	return &sysbus{
		Base: NewBase("sysbus"),
	}
}

func (b *sysbus) init() error {
	sck, err := bus.NewSocket()
	if err != nil {
		b.Errorf("error creating a nanomsg socket: %v\n", err)
		return err
	}

	b.sck = sck
	b.sck.AddTransport(ipc.NewTransport())
	b.sck.AddTransport(tcp.NewTransport())

	err = b.sck.Listen(BusAddr)
	if err != nil {
		return err
	}

	return err
}

func (b *sysbus) Boot(ctx context.Context) error {
	var err error

	go func() {
	loop:
		for {
			select {
			case <-ctx.Done():
				b.Infof("shutting down telemetry bus...\n")
				return

			default:
				msg, err := b.sck.Recv()
				if err != nil {
					if err == io.EOF || err == mangos.ErrClosed {
						b.Errorf("received EOF: %v\n", err)
						break loop
					}
					b.Errorf("error receiving from telemetry bus: %v\n", err)
					continue
				}
				b.Infof("recv: %v\n", string(msg))
			}
		}
	}()

	return err
}

func (b *sysbus) Start(ctx context.Context) error { return nil }

func (b *sysbus) Stop(ctx context.Context) error { return nil }

func (b *sysbus) Shutdown(ctx context.Context) error {
	var err error

	err = b.sck.Close()
	if err != nil {
		b.Errorf("error closing telemetry-bus socket: %v\n", err)
		return err
	}

	return err
}
