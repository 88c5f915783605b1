package components

import "github.com/go-robo/hal"

// BatterySensorDriver is the interface a backend must implement to report
// battery telemetry.
type BatterySensorDriver interface {
	BatteryVoltage(identifier int) (float64, error)
	BatteryCurrent(identifier int) (float64, error)
}

// BatterySensor reports the voltage and current draw of the main battery.
type BatterySensor struct {
	id  int
	drv BatterySensorDriver
}

func NewBatterySensor(identifier int, drv BatterySensorDriver) *BatterySensor {
	return &BatterySensor{id: identifier, drv: drv}
}

func (s *BatterySensor) Identifier() int { return s.id }

// Voltage returns the battery voltage, in Volts.
func (s *BatterySensor) Voltage() (float64, error) {
	return s.drv.BatteryVoltage(s.id)
}

// Current returns the battery current draw, in Amps.
func (s *BatterySensor) Current() (float64, error) {
	return s.drv.BatteryCurrent(s.id)
}

var _ hal.Component = (*BatterySensor)(nil)
