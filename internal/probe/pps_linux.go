//go:build linux

package probe

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux PPS API (include/uapi/linux/pps.h):
// PPS_FETCH = _IOWR('p', 0xa4, struct pps_fdata *) - в номере размер указателя (8 на 64-bit)
// pps_fdata { pps_kinfo info (48 байт с выравниванием); pps_ktime timeout; }
// pps_kinfo: assert_sequence u32, clear_sequence u32, assert_tu {sec s64, nsec s32, flags u32}, ...
const (
	ppsIoctlFetch  = 0xc00870a4
	ppsFdataSize   = 64
	ppsAssertSeq   = 0
	ppsAssertNsec  = 16
	ppsTimeoutSec  = 48
	ppsTimeoutNsec = 56
)

type linuxPPS struct {
	f   *os.File
	buf [ppsFdataSize]byte
}

func openPPSDevice(index int) (ppsDevice, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/pps%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return &linuxPPS{f: f}, nil
}

// fetch: ядро ждёт следующий assert до timeout (flags = 0 - timeout валиден), иначе ETIMEDOUT.
func (p *linuxPPS) fetch(timeout time.Duration) (ppsEvent, error) {
	clear(p.buf[:])
	binary.LittleEndian.PutUint64(p.buf[ppsTimeoutSec:], uint64(timeout/time.Second))
	binary.LittleEndian.PutUint32(p.buf[ppsTimeoutNsec:], uint32(timeout%time.Second))
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.f.Fd(), uintptr(ppsIoctlFetch), uintptr(unsafe.Pointer(&p.buf[0])))
	if errno != 0 {
		if errno == unix.ETIMEDOUT {
			return ppsEvent{}, ErrTimeout
		}
		return ppsEvent{}, fmt.Errorf("PPS_FETCH: %w", errno)
	}
	return ppsEvent{
		seq:  binary.LittleEndian.Uint32(p.buf[ppsAssertSeq:]),
		nsec: int32(binary.LittleEndian.Uint32(p.buf[ppsAssertNsec:])),
	}, nil
}

func (p *linuxPPS) close() error {
	return p.f.Close()
}
