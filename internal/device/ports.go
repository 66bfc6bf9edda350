package device

import (
	"errors"
	"fmt"

	"go.bug.st/serial/enumerator"
)

// PortInfo описывает найденный последовательный порт.
type PortInfo struct {
	Name        string
	Description string
	IsUSB       bool
	VID         string
	PID         string
}

// ListPorts возвращает последовательные порты системы.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}
	ports := make([]PortInfo, 0, len(details))
	for _, p := range details {
		ports = append(ports, PortInfo{
			Name:        p.Name,
			Description: p.Product,
			IsUSB:       p.IsUSB,
			VID:         p.VID,
			PID:         p.PID,
		})
	}
	return ports, nil
}

// FirstUSBPort возвращает первый USB-UART порт: на нем почти всегда
// и висит плата.
func FirstUSBPort() (PortInfo, error) {
	ports, err := ListPorts()
	if err != nil {
		return PortInfo{}, err
	}
	for _, p := range ports {
		if p.IsUSB {
			return p, nil
		}
	}
	return PortInfo{}, errors.New("no usb serial port found: is any device connected?")
}
