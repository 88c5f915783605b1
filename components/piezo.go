package components

import (
	"time"

	"github.com/go-robo/hal"
)

// Piezo frequency bounds, in Hertz. The upper bound is the top of the
// sounder's usable range, not of human hearing.
const (
	MinFrequency = 8
	MaxFrequency = 10000
)

// PiezoDriver is the interface a backend must implement to drive a piezo
// sounder.
type PiezoDriver interface {
	Buzz(identifier int, duration time.Duration, frequency int) error
}

// Piezo is a piezoelectric sounder.
type Piezo struct {
	id  int
	drv PiezoDriver
}

func NewPiezo(identifier int, drv PiezoDriver) *Piezo {
	return &Piezo{id: identifier, drv: drv}
}

func (p *Piezo) Identifier() int { return p.id }

// Buzz sounds the sounder at the given frequency for the given duration.
// Out-of-range values fail with *hal.InvalidArgumentError before the
// driver is touched.
func (p *Piezo) Buzz(duration time.Duration, frequency int) error {
	if duration <= 0 {
		return &hal.InvalidArgumentError{
			Op:     "Piezo.Buzz",
			Value:  duration,
			Reason: "duration must be positive",
		}
	}
	if frequency < MinFrequency || frequency > MaxFrequency {
		return &hal.InvalidArgumentError{
			Op:     "Piezo.Buzz",
			Value:  frequency,
			Reason: "frequency out of sounder range",
		}
	}
	return p.drv.Buzz(p.id, duration, frequency)
}

var _ hal.Component = (*Piezo)(nil)
