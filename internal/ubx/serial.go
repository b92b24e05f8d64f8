package ubx

import (
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Port - последовательный порт приёмника с UBX-ридером
type Port struct {
	port *serial.Port
	*Reader
}

// Open открывает порт; readTimeout ограничивает один Read (tarm/serial), 0 - блокирующее чтение.
func Open(device string, baud int, readTimeout time.Duration) (*Port, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial open %s: %w", device, err)
	}
	return &Port{port: p, Reader: NewReader(p)}, nil
}

// Close закрывает порт
func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}
