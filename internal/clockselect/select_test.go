package clockselect

import (
	"testing"
	"time"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/source"
)

// mockSource реализует source.TimeSource для тестов.
type mockSource struct {
	name  string
	t     time.Time
	st    source.Status
	calls int
}

func (m *mockSource) Name() string     { return m.name }
func (m *mockSource) Protocol() string { return "mock" }
func (m *mockSource) GetTime() (time.Time, source.Status) {
	m.calls++
	return m.t, m.st
}
func (m *mockSource) Close() error { return nil }

func TestElection_Select(t *testing.T) {
	lockedTime := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		reference []*mockSource
		fallback  []*mockSource
		want      string
		wantTime  time.Time
	}{
		{name: "no sources"},
		{
			name:      "reference usable",
			reference: []*mockSource{{name: "r1", t: lockedTime, st: source.StatusLocked}},
			fallback:  []*mockSource{{name: "f1", t: lockedTime.Add(time.Second), st: source.StatusLocked}},
			want:      "r1",
			wantTime:  lockedTime,
		},
		{
			name: "reference unavailable fallback used",
			reference: []*mockSource{
				{name: "u", st: source.StatusUnavailable},
				{name: "ul", t: lockedTime, st: source.StatusUnlocked},
			},
			fallback: []*mockSource{{name: "f1", t: lockedTime.Add(time.Second), st: source.StatusLocked}},
			want:     "f1",
			wantTime: lockedTime.Add(time.Second),
		},
		{
			name:      "none usable",
			reference: []*mockSource{{name: "ul", t: lockedTime, st: source.StatusUnlocked}},
			fallback:  []*mockSource{{name: "u", st: source.StatusUnavailable}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewElection(toSources(tt.reference), toSources(tt.fallback))
			got, gotTime := e.Select()
			if tt.want == "" {
				if got != nil || e.Active() != nil || !gotTime.IsZero() {
					t.Errorf("ожидали nil, получили %v %v", got, gotTime)
				}
				return
			}
			if got == nil || got.Name() != tt.want {
				t.Fatalf("Select() = %v, want %s", got, tt.want)
			}
			if !gotTime.Equal(tt.wantTime) {
				t.Errorf("время %v, want %v", gotTime, tt.wantTime)
			}
			if e.Active() != got {
				t.Error("Active() должен вернуть выбранный источник")
			}
			if n := len(e.Sources()); n != len(tt.reference)+len(tt.fallback) {
				t.Errorf("Sources() = %d", n)
			}
		})
	}
}

func TestElection_SelectPollsOnce(t *testing.T) {
	r := &mockSource{name: "r", t: time.Unix(100, 0), st: source.StatusLocked}
	f := &mockSource{name: "f", t: time.Unix(200, 0), st: source.StatusLocked}
	e := NewElection([]source.TimeSource{r}, []source.TimeSource{f})
	e.Select()
	if r.calls != 1 || f.calls != 0 {
		t.Errorf("calls: reference=%d fallback=%d", r.calls, f.calls)
	}
}

func toSources(ms []*mockSource) []source.TimeSource {
	out := make([]source.TimeSource, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}
