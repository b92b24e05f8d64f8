//go:build !linux

package clockadj

import "testing"

func TestStubs(t *testing.T) {
	if err := Slew(1000); err != nil {
		t.Errorf("Slew: %v", err)
	}
	if err := Step(-1000); err != nil {
		t.Errorf("Step: %v", err)
	}
	if ppm, err := GetFrequency(); ppm != 0 || err != nil {
		t.Errorf("GetFrequency() = %v, %v", ppm, err)
	}
}
