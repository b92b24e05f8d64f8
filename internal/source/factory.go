package source

import (
	"fmt"
	"time"

	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
)

// NewFromClockSource создаёт TimeSource из конфига reference_clocks / fallback_clocks
func NewFromClockSource(c pkgconfig.ClockSource) (TimeSource, error) {
	if c.Disable {
		return nil, fmt.Errorf("source disabled")
	}
	switch c.Protocol {
	case "gnss":
		return NewGNSS(c.Device, c.Baud)
	case "nmea":
		return NewNMEA(c.Device, c.Baud, c.Offset)
	case "ptp":
		return NewPTP(c.Device), nil
	case "ntp":
		if c.IP == "" {
			return nil, fmt.Errorf("ntp: ip required")
		}
		return NewNTP(c.IP, pkgconfig.ParseDuration(c.PollInterval, 4*time.Second)), nil
	default:
		return nil, fmt.Errorf("unknown protocol: %s", c.Protocol)
	}
}
