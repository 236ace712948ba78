package serial

import (
	"fmt"

	"go.bug.st/serial"
)

// lister is replaced in tests.
var lister = serial.GetPortsList

// ListPorts returns a list of available serial ports.
func ListPorts() ([]string, error) {
	ports, err := lister()
	if err != nil {
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	return ports, nil
}

// SinglePort returns the only available serial port, or "" when there is
// none, more than one, or the ports cannot be listed.
func SinglePort() string {
	ports, err := ListPorts()
	if err != nil || len(ports) != 1 {
		return ""
	}
	return ports[0]
}
