//go:build !linux

package probe

import (
	"errors"
	"testing"
)

func TestOpenPPS_Unsupported(t *testing.T) {
	if _, err := OpenPPS(0, 0, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("OpenPPS() = %v, want ErrUnsupported", err)
	}
}
