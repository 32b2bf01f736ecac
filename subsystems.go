package gourdianringlog

import (
	"fmt"
	"strings"
)

// Subsystem identifies the logical origin of a record, typically a
// peripheral driver.
type Subsystem int

const (
	CORE Subsystem = iota
	SPI
	I2C
	UART
	ADC
	PWM
	TIMER1
	TIMER2
	TIMER3

	numSubsystems
)

var subsystemNames = [numSubsystems]string{
	"CORE", "SPI", "I2C", "UART", "ADC", "PWM", "TIMER1", "TIMER2", "TIMER3",
}

func (s Subsystem) String() string {
	if !s.Valid() {
		return "UNKNOWN"
	}
	return subsystemNames[s]
}

// Valid reports whether s is a member of the subsystem set.
func (s Subsystem) Valid() bool {
	return s >= 0 && s < numSubsystems
}

// Subsystems returns every subsystem in declaration order.
func Subsystems() []Subsystem {
	out := make([]Subsystem, numSubsystems)
	for i := range out {
		out[i] = Subsystem(i)
	}
	return out
}

// ParseSubsystem converts a case-insensitive subsystem name to its Subsystem.
func ParseSubsystem(name string) (Subsystem, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range subsystemNames {
		if n == name {
			return Subsystem(i), nil
		}
	}
	return CORE, fmt.Errorf("%w: %q", ErrInvalidSubsystem, name)
}
