//go:build linux

package source

import "testing"

func TestPHCClockID(t *testing.T) {
	// ((~fd) << 3) | 3
	for fd, want := range map[uintptr]int32{0: -5, 3: -29, 7: -61} {
		if got := phcClockID(fd); got != want {
			t.Errorf("phcClockID(%d) = %d, want %d", fd, got, want)
		}
	}
}
