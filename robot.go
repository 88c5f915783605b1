package hal

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/net/context"
)

// Robot is the application layer: it owns the telemetry bus, the module
// lifecycle and the board groups discovered through its registry. On
// shutdown every discovered board is made safe before modules stop.
type Robot struct {
	*Base
	ctx      context.Context
	sysbus   *sysbus
	registry *Registry
	modules  []Module
	groups   map[string]*Group[Board]
}

func NewRobot(name string, registry *Registry, modules ...Module) (*Robot, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Robot{
		Base:     NewBase(name),
		ctx:      context.Background(),
		sysbus:   newSysBus(),
		registry: registry,
		modules:  modules,
		groups:   make(map[string]*Group[Board]),
	}, nil
}

func (r *Robot) AddModule(m Module) {
	r.modules = append(r.modules, m)
}

// Registry returns the registry the robot discovers boards through.
func (r *Robot) Registry() *Registry { return r.registry }

// Discover enumerates the boards of every registered kind. The previous
// groups are replaced wholesale; there is no incremental hot-plug.
func (r *Robot) Discover() error {
	groups, err := r.registry.DiscoverAll()
	if err != nil {
		r.Errorf("discovery error: %v\n", err)
		return err
	}
	r.groups = groups
	for _, kind := range r.registry.Kinds() {
		group := groups[kind]
		for _, board := range group.Boards() {
			r.Infof("found %s board serial=%s fw=%q\n",
				kind, board.SerialNumber(), board.FirmwareVersion(),
			)
		}
		r.Send([]byte(fmt.Sprintf("discovered=%s; count=%d", kind, group.Len())))
	}
	return nil
}

// Group returns the discovered group for a board kind.
func (r *Robot) Group(kind string) (*Group[Board], bool) {
	group, ok := r.groups[kind]
	return group, ok
}

// MakeAllSafe makes every discovered board safe, best-effort across all
// groups, and reports the aggregated failures.
func (r *Robot) MakeAllSafe() error {
	var errs []error
	for _, kind := range r.registry.Kinds() {
		group, ok := r.groups[kind]
		if !ok {
			continue
		}
		if err := group.MakeSafe(); err != nil {
			errs = append(errs, err)
		}
	}
	err := Safety(errs)
	if err != nil {
		r.Errorf("make-safe error: %v\n", err)
	}
	r.Send([]byte("make-safe"))
	return err
}

// Run boots the modules, discovers boards and ticks until interrupted.
func (r *Robot) Run() error {
	var err error

	err = r.sysbus.init()
	if err != nil {
		r.Errorf("error initializing telemetry bus: %v\n", err)
		return err
	}

	r.modules = append([]Module{r.sysbus}, r.modules...)

	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt)

	err = r.sysBoot(ctx)
	if err != nil {
		r.Errorf("boot-error: %v\n", err)
		cancel()
		return err
	}

	err = r.Discover()
	if err != nil {
		cancel()
		return err
	}

	err = r.sysStart(ctx)
	if err != nil {
		r.Errorf("start-error: %v\n", err)
		cancel()
		return err
	}

	tick := time.NewTicker(1 * time.Second)

	// Closing rather than sending keeps the goroutine from blocking
	// forever when the loop has already exited on a tick error.
	quit := make(chan struct{})
	go func() {
		<-sigch
		r.Infof("stopping robot...\n")
		tick.Stop()
		close(quit)
	}()

loop:
	for {
		select {

		case <-tick.C:
			r.Debugf("tick...\n")
			err = r.sysTick(ctx)
			if err != nil {
				r.Errorf("tick error: %v\n", err)
				cancel()
				break loop
			}

		case <-quit:
			break loop

		case <-ctx.Done():
			r.Infof("ctx.done!!\n")
			return ctx.Err()
		}
	}

	if serr := r.MakeAllSafe(); serr != nil && err == nil {
		err = serr
	}

	if serr := r.sysStop(ctx); serr != nil {
		cancel()
		return serr
	}

	if serr := r.sysShutdown(ctx); serr != nil {
		cancel()
		return serr
	}

	return err
}

type modFunc func(m Module, ctx context.Context) error

func (r *Robot) doSys(ctx context.Context, f modFunc) error {

	errc := make(chan error, len(r.modules))
	for _, m := range r.modules {
		go func(m Module) {
			errc <- f(m, ctx)
		}(m)
	}
	for range r.modules {
		err := <-errc
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Robot) sysBoot(ctx context.Context) error {
	return r.doSys(ctx, modFunc(Module.Boot))
}

func (r *Robot) sysStart(ctx context.Context) error {
	return r.doSys(ctx, modFunc(Module.Start))
}

func (r *Robot) sysStop(ctx context.Context) error {
	return r.doSys(ctx, modFunc(Module.Stop))
}

func (r *Robot) sysShutdown(ctx context.Context) error {
	return r.doSys(ctx, modFunc(Module.Shutdown))
}

func (r *Robot) sysTick(ctx context.Context) error {

	errc := make(chan error, len(r.modules))
	for _, m := range r.modules {
		go func(m Module) {
			tick, ok := m.(Ticker)
			if !ok {
				errc <- nil
				return
			}
			err := tick.Tick(ctx)
			if err != nil {
				r.Errorf("tick error from %q: %v\n", m.Name(), err)
			}
			errc <- err
		}(m)
	}

	for range r.modules {
		err := <-errc
		if err != nil {
			return err
		}
	}

	return nil
}
