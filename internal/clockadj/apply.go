// Package clockadj применяет коррекцию к системным часам (adjtimex / clock_settime на Linux).
package clockadj

// Mode - как была применена коррекция
type Mode string

const (
	ModeNone Mode = "none"
	ModeSlew Mode = "slew"
	ModeStep Mode = "step"
)

// Adjuster - способ сдвинуть часы; подменяется в тестах и в monitor-only режиме
type Adjuster interface {
	Slew(offsetNs int64) error
	Step(offsetNs int64) error
}

// System - системные часы
type System struct{}

func (System) Slew(offsetNs int64) error { return Slew(offsetNs) }
func (System) Step(offsetNs int64) error { return Step(offsetNs) }

// Apply сдвигает часы против коррекции: correction = secondary − reference,
// положительная - вторичные часы спешат. |correction| > stepLimitNs - step, иначе slew.
func Apply(a Adjuster, correctionNs, stepLimitNs int64) (Mode, error) {
	if correctionNs == 0 {
		return ModeNone, nil
	}
	if correctionNs > stepLimitNs || correctionNs < -stepLimitNs {
		return ModeStep, a.Step(-correctionNs)
	}
	return ModeSlew, a.Slew(-correctionNs)
}
