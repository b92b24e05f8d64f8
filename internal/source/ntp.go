package source

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTP - опорное время по одному SNTP-запросу (beevik/ntp).
// Опорное время = локальные часы + ClockOffset, offset уже учитывает задержку сети.
type NTP struct {
	host    string
	timeout time.Duration
	query   func(host string, opt ntp.QueryOptions) (*ntp.Response, error)
}

// NewNTP создаёт NTP источник; host допускает host:port, timeout <= 0 - 5 секунд
func NewNTP(host string, timeout time.Duration) *NTP {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NTP{host: host, timeout: timeout, query: ntp.QueryWithOptions}
}

// Name возвращает имя источника
func (n *NTP) Name() string {
	return fmt.Sprintf("ntp:%s", n.host)
}

// Protocol возвращает протокол
func (n *NTP) Protocol() string {
	return "ntp"
}

// GetTime запрашивает время у сервера. Нет ответа - StatusUnavailable;
// ответ не прошёл Validate (kiss-o'-death, unsynchronized, stratum) - StatusUnlocked.
func (n *NTP) GetTime() (time.Time, Status) {
	resp, err := n.query(n.host, ntp.QueryOptions{Timeout: n.timeout})
	if err != nil {
		return time.Time{}, StatusUnavailable
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, StatusUnlocked
	}
	return time.Now().Add(resp.ClockOffset).UTC(), StatusLocked
}

// Close не требует освобождения ресурсов
func (n *NTP) Close() error {
	return nil
}
