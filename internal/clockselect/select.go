// Package clockselect выбирает опорный источник времени: сначала reference, затем fallback.
package clockselect

import (
	"time"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/source"
)

// Election - выбор активного опорного источника.
// Select опрашивает источники по порядку; один опрос даёт и выбор, и опорную метку.
type Election struct {
	reference []source.TimeSource
	fallback  []source.TimeSource
	active    source.TimeSource
}

// NewElection создаёт выборщик из списков reference и fallback
func NewElection(reference, fallback []source.TimeSource) *Election {
	return &Election{
		reference: reference,
		fallback:  fallback,
	}
}

// Select возвращает первый пригодный источник и его время; nil, если пригодных нет.
func (e *Election) Select() (source.TimeSource, time.Time) {
	for _, list := range [][]source.TimeSource{e.reference, e.fallback} {
		for _, s := range list {
			if t, st := s.GetTime(); st.IsUsable() {
				e.active = s
				return s, t
			}
		}
	}
	e.active = nil
	return nil, time.Time{}
}

// Active возвращает источник, выбранный последним Select
func (e *Election) Active() source.TimeSource {
	return e.active
}

// Sources возвращает все источники (для Close)
func (e *Election) Sources() []source.TimeSource {
	out := make([]source.TimeSource, 0, len(e.reference)+len(e.fallback))
	out = append(out, e.reference...)
	return append(out, e.fallback...)
}
