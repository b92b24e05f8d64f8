//go:build linux

package clockadj

import "golang.org/x/sys/unix"

// Slew плавно сдвигает системные часы на offsetNs через adjtimex(ADJ_OFFSET_SINGLESHOT).
// Ядро принимает микросекунды; остаток меньше микросекунды отбрасывается.
// Требует CAP_SYS_TIME или root.
func Slew(offsetNs int64) error {
	offsetUs := offsetNs / 1000
	if offsetUs == 0 {
		return nil
	}
	buf := &unix.Timex{
		Modes:  unix.ADJ_OFFSET_SINGLESHOT,
		Offset: offsetUs,
	}
	_, err := unix.Adjtimex(buf)
	return err
}

// Step сдвигает системное время скачком на offsetNs. Требует CAP_SYS_TIME или root.
func Step(offsetNs int64) error {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return err
	}
	ts = unix.NsecToTimespec(ts.Nano() + offsetNs)
	return unix.ClockSettime(unix.CLOCK_REALTIME, &ts)
}

// GetFrequency возвращает текущую коррекцию частоты из ядра (ppm): Freq в timex - scaled ppm.
func GetFrequency() (ppm float64, err error) {
	buf := &unix.Timex{}
	if _, err = unix.Adjtimex(buf); err != nil {
		return 0, err
	}
	return float64(buf.Freq) / 65536, nil
}
