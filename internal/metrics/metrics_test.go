package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveSample(-120, 3, -400, -350)
	m.ObserveSample(80, 2, -300, -200)
	m.ObserveCorrection(-133, "slew")
	m.ProbeError()
	m.JournalError()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	text := string(body)

	for _, want := range []string{
		"devsync_samples_total 2",
		`devsync_corrections_total{mode="slew"} 1`,
		"devsync_probe_errors_total 1",
		"devsync_journal_errors_total 1",
		"devsync_window_misses 2",
		"devsync_window_out_of_sync_sum_ns -300",
		"devsync_last_deviation_ns 80",
		"devsync_last_correction_ns -133",
		"devsync_deviation_abs_ns_count 2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("в /metrics нет %q", want)
		}
	}
}
