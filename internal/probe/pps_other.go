//go:build !linux

package probe

func openPPSDevice(index int) (ppsDevice, error) {
	return nil, ErrUnsupported
}
