//go:build !linux

package clockadj

// Slew - заглушка на не-Linux (коррекция не выполняется).
func Slew(offsetNs int64) error {
	return nil
}

// Step - заглушка на не-Linux.
func Step(offsetNs int64) error {
	return nil
}

// GetFrequency - заглушка на не-Linux.
func GetFrequency() (ppm float64, err error) {
	return 0, nil
}
