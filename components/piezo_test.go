package components

import (
	"errors"
	"testing"
	"time"

	"github.com/go-robo/hal"
)

func TestPiezoBuzz(t *testing.T) {
	drv := newMockDriver()
	piezo := NewPiezo(0, drv)

	if err := piezo.Buzz(100*time.Millisecond, 440); err != nil {
		t.Fatalf("buzz failed: %v", err)
	}
	if drv.buzzDuration != 100*time.Millisecond || drv.buzzFrequency != 440 {
		t.Errorf("driver saw %v at %d Hz, want 100ms at 440 Hz",
			drv.buzzDuration, drv.buzzFrequency)
	}
}

func TestPiezoInvalidInput(t *testing.T) {
	for _, tc := range []struct {
		name      string
		duration  time.Duration
		frequency int
	}{
		{name: "zero duration", duration: 0, frequency: 440},
		{name: "negative duration", duration: -time.Second, frequency: 440},
		{name: "frequency too low", duration: time.Second, frequency: 2},
		{name: "frequency too high", duration: time.Second, frequency: 40000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			drv := newMockDriver()
			piezo := NewPiezo(0, drv)

			err := piezo.Buzz(tc.duration, tc.frequency)
			var ierr *hal.InvalidArgumentError
			if !errors.As(err, &ierr) {
				t.Fatalf("got %v, want *hal.InvalidArgumentError", err)
			}
			if drv.calls != 0 {
				t.Errorf("driver saw %d calls, want 0", drv.calls)
			}
		})
	}
}
