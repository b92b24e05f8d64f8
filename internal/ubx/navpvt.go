package ubx

import (
	"encoding/binary"
	"time"
)

// NAV class и ID (u-blox)
const (
	ClassNAV   = 0x01
	IDNAVPVT   = 0x07 // NAV-PVT: position, velocity, time
	NAVPVTSize = 92   // минимальный размер payload NAV-PVT
)

// смещения полей времени в payload NAV-PVT
const (
	navPvtYear  = 4  // uint16
	navPvtMonth = 6  // uint8
	navPvtDay   = 7  // uint8
	navPvtHour  = 8  // uint8
	navPvtMin   = 9  // uint8
	navPvtSec   = 10 // uint8
	navPvtValid = 11 // uint8: bit0 validDate, bit1 validTime, bit2 fullyResolved
	navPvtNano  = 16 // int32, может быть отрицательным
)

// Valid flags NAV-PVT
const (
	NavPVTValidDate          = 1 << 0
	NavPVTValidTime          = 1 << 1
	NavPVTValidFullyResolved = 1 << 2
)

// IsNAVPVT - пакет UBX-NAV-PVT достаточной длины
func (p Packet) IsNAVPVT() bool {
	return p.Class == ClassNAV && p.ID == IDNAVPVT && len(p.Payload) >= NAVPVTSize
}

// ParseNAVPVTTime возвращает UTC время из payload NAV-PVT, если выставлены validDate и validTime.
// nano складывается со временем как есть: приёмник даёт отрицательные nano в пределах секунды.
func ParseNAVPVTTime(payload []byte) (time.Time, bool) {
	if len(payload) < NAVPVTSize {
		return time.Time{}, false
	}
	valid := payload[navPvtValid]
	if valid&(NavPVTValidDate|NavPVTValidTime) != NavPVTValidDate|NavPVTValidTime {
		return time.Time{}, false
	}
	nano := int32(binary.LittleEndian.Uint32(payload[navPvtNano:]))
	if nano <= -1e9 || nano >= 1e9 {
		return time.Time{}, false
	}
	t := time.Date(
		int(binary.LittleEndian.Uint16(payload[navPvtYear:])),
		time.Month(payload[navPvtMonth]),
		int(payload[navPvtDay]),
		int(payload[navPvtHour]),
		int(payload[navPvtMin]),
		int(payload[navPvtSec]),
		0, time.UTC)
	return t.Add(time.Duration(nano)), true
}
