package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tarm/serial"
)

const nmeaReadTimeout = 2 * time.Second

// NMEA - опорное время по RMC (GPRMC/GNRMC/GARMC...) с последовательного порта.
// Время RMC - начало секунды, в которую отправлена фраза; offsetNs компенсирует задержку вывода.
type NMEA struct {
	port    io.ReadCloser
	rd      *bufio.Reader
	pending string // начало строки, прерванной таймаутом чтения
	device  string
	offset  time.Duration
	timeout time.Duration
}

// NewNMEA открывает порт приёмника; baud 0 - 9600
func NewNMEA(device string, baud int, offsetNs int64) (*NMEA, error) {
	if baud == 0 {
		baud = 9600
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: nmeaReadTimeout / 4,
	})
	if err != nil {
		return nil, fmt.Errorf("nmea open %s: %w", device, err)
	}
	return newNMEA(port, device, offsetNs), nil
}

func newNMEA(port io.ReadCloser, device string, offsetNs int64) *NMEA {
	return &NMEA{
		port:   port,
		rd:     bufio.NewReader(port),
		device: device,
		offset: time.Duration(offsetNs),
	}
}

// Name возвращает имя источника
func (n *NMEA) Name() string {
	return fmt.Sprintf("nmea:%s", n.device)
}

// Protocol возвращает протокол
func (n *NMEA) Protocol() string {
	return "nmea"
}

// GetTime ждёт RMC со статусом A не дольше nmeaReadTimeout.
// RMC со статусом V - StatusUnlocked; молчащая линия или ошибка порта - StatusUnavailable.
func (n *NMEA) GetTime() (time.Time, Status) {
	timeout := n.timeout
	if timeout <= 0 {
		timeout = nmeaReadTimeout
	}
	deadline := time.Now().Add(timeout)
	st := StatusUnavailable
	for time.Now().Before(deadline) {
		line, err := n.rd.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				n.pending += line
				continue
			}
			return time.Time{}, StatusUnavailable
		}
		line, n.pending = strings.TrimSpace(n.pending+line), ""
		fix, ok := isRMC(line)
		if !ok {
			continue
		}
		if !fix {
			st = StatusUnlocked
			continue
		}
		if t, ok := parseRMC(line); ok {
			return t.Add(n.offset), StatusLocked
		}
	}
	return time.Time{}, st
}

// isRMC: фраза RMC с верной контрольной суммой; fix = статус A
func isRMC(line string) (rmc, fix bool) {
	if len(line) < 7 || line[0] != '$' || line[3:6] != "RMC" {
		return false, false
	}
	body, sum, ok := strings.Cut(line[1:], "*")
	if !ok || !nmeaChecksumOK(body, sum) {
		return false, false
	}
	fields := strings.Split(body, ",")
	return len(fields) >= 10, len(fields) >= 10 && fields[2] == "A"
}

func nmeaChecksumOK(body, sum string) bool {
	want, err := strconv.ParseUint(sum, 16, 8)
	if err != nil {
		return false
	}
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return cs == byte(want)
}

// parseRMC: поле 1 hhmmss[.sss], поле 9 ddmmyy
func parseRMC(line string) (time.Time, bool) {
	body, _, _ := strings.Cut(line[1:], "*")
	fields := strings.Split(body, ",")
	if len(fields) < 10 {
		return time.Time{}, false
	}
	clock, date := fields[1], fields[9]
	if len(clock) < 6 || len(date) != 6 {
		return time.Time{}, false
	}
	hms, err := strconv.Atoi(clock[:6])
	if err != nil {
		return time.Time{}, false
	}
	dmy, err := strconv.Atoi(date)
	if err != nil {
		return time.Time{}, false
	}
	var nsec int
	if len(clock) > 7 && clock[6] == '.' {
		frac := clock[7:]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		v, err := strconv.Atoi(frac)
		if err != nil {
			return time.Time{}, false
		}
		for i := len(frac); i < 9; i++ {
			v *= 10
		}
		nsec = v
	}
	year := dmy % 100
	if year < 80 {
		year += 2000
	} else {
		year += 1900
	}
	day, month := dmy/10000, dmy/100%100
	hh, mm, ss := hms/10000, hms/100%100, hms%100
	if month < 1 || month > 12 || day < 1 || day > 31 || hh > 23 || mm > 59 || ss > 60 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hh, mm, ss, nsec, time.UTC), true
}

// Close закрывает порт
func (n *NMEA) Close() error {
	if n.port == nil {
		return nil
	}
	return n.port.Close()
}
