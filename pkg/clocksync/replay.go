package clocksync

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shiwa/timecard-mini/tc-devsync/pkg/morethanhalf"
)

// ReplayOptions - окно и порог офлайн-прогона
type ReplayOptions struct {
	HistorySize  int
	MaxDeviation uint64
	// Verify сверяет агрегаты с пересчётом окна после каждого сэмпла
	Verify bool
}

// Replay читает по одному отклонению (нс) на строку и пишет по одной коррекции на строку.
// Пустые строки и строки с '#' пропускаются. Окно не сбрасывается после коррекции.
func Replay(r io.Reader, w io.Writer, opts ReplayOptions) error {
	s, err := morethanhalf.New(opts.HistorySize, opts.MaxDeviation)
	if err != nil {
		return err
	}
	out := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		deviation, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		correction := s.Process(deviation)
		if opts.Verify {
			if err := s.Verify(); err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
		}
		if _, err := fmt.Fprintln(out, correction); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read: %w", err)
	}
	return out.Flush()
}
