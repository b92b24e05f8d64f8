package source

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/ubx"
)

// u-blox по умолчанию шлёт NAV-PVT раз в секунду
const gnssReadTimeout = 1500 * time.Millisecond

// packetReader - то, что GNSS нужно от порта (подменяется в тестах)
type packetReader interface {
	Next() (ubx.Packet, error)
	Close() error
}

// GNSS - опорное время по UBX-NAV-PVT с приёмника.
// Время NAV-PVT относится к началу эпохи измерения; задержку доставки по линии не компенсируем,
// поэтому GNSS годится как грубая опора, а для наносекунд берётся PPS-probe.
type GNSS struct {
	port    packetReader
	device  string
	timeout time.Duration // ожидание NAV-PVT в GetTime; 0 - gnssReadTimeout
}

// NewGNSS открывает последовательный порт приёмника
func NewGNSS(device string, baud int) (*GNSS, error) {
	port, err := ubx.Open(device, baud, gnssReadTimeout/3)
	if err != nil {
		return nil, err
	}
	return &GNSS{port: port, device: device}, nil
}

// Name возвращает имя источника
func (g *GNSS) Name() string {
	return fmt.Sprintf("gnss:%s", g.device)
}

// Protocol возвращает протокол
func (g *GNSS) Protocol() string {
	return "gnss"
}

// GetTime ждёт следующий NAV-PVT не дольше gnssReadTimeout.
// Таймаут чтения на молчащей линии (tarm/serial отдаёт io.EOF) - пауза между эпохами, читаем дальше.
// Без валидного времени возвращает StatusUnlocked, при ошибке порта - StatusUnavailable.
// Последнее известное время не подставляется: устаревшая опора дала бы ложное отклонение.
func (g *GNSS) GetTime() (time.Time, Status) {
	timeout := g.timeout
	if timeout <= 0 {
		timeout = gnssReadTimeout
	}
	deadline := time.Now().Add(timeout)
	st := StatusUnavailable
	for time.Now().Before(deadline) {
		packet, err := g.port.Next()
		if err != nil {
			if errors.Is(err, ubx.ErrChecksum) || isIdle(err) {
				continue
			}
			return time.Time{}, st
		}
		if !packet.IsNAVPVT() {
			continue
		}
		st = StatusUnlocked
		if t, ok := ubx.ParseNAVPVTTime(packet.Payload); ok {
			return t, StatusLocked
		}
	}
	return time.Time{}, st
}

// Close закрывает порт
func (g *GNSS) Close() error {
	if g.port == nil {
		return nil
	}
	return g.port.Close()
}

// isIdle: таймаут чтения порта, в том числе посреди пакета (io.ReadFull даёт ErrUnexpectedEOF)
func isIdle(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
