package source

import (
	"fmt"
	"time"
)

const defaultPHCDevice = "/dev/ptp0"

// readPHC читает время PTP hardware clock; на не-Linux не задан
var readPHC func(device string) (time.Time, error)

// PTP - опорное время из PHC (/dev/ptpN), который синхронизирует внешний ptp4l.
// Сам PTP-обмен здесь не ведётся.
type PTP struct {
	device string
}

// NewPTP создаёт источник по PHC; пустой device - /dev/ptp0
func NewPTP(device string) *PTP {
	if device == "" {
		device = defaultPHCDevice
	}
	return &PTP{device: device}
}

// Name возвращает имя источника
func (p *PTP) Name() string {
	return fmt.Sprintf("ptp:%s", p.device)
}

// Protocol возвращает протокол
func (p *PTP) Protocol() string {
	return "ptp"
}

// GetTime читает PHC; нет поддержки или ошибка чтения - StatusUnavailable.
// Состояние сервы ptp4l отсюда не видно, поэтому прочитанное время считается locked.
func (p *PTP) GetTime() (time.Time, Status) {
	if readPHC == nil {
		return time.Time{}, StatusUnavailable
	}
	t, err := readPHC(p.device)
	if err != nil {
		return time.Time{}, StatusUnavailable
	}
	return t, StatusLocked
}

// Close не требует освобождения ресурсов (PHC открывается на каждое чтение)
func (p *PTP) Close() error {
	return nil
}
