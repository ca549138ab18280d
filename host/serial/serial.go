// Package serial opens the telemetry link to a board's UART
package serial

import "io"

// Port is an open serial link
type Port interface {
	io.ReadWriteCloser

	// Flush discards any unread input
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	Device string // e.g. "/dev/ttyUSB0" or "COM3"
	Baud   int

	// ReadTimeout in milliseconds, 0 blocks
	ReadTimeout int
}

// DefaultBaud is the RTL819x boot console rate
const DefaultBaud = 38400

// DefaultConfig returns the console settings for device
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100,
	}
}
