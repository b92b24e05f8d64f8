package morethanhalf

import "fmt"

// AggregateError - расхождение инкрементальных агрегатов с полным пересчётом окна.
type AggregateError struct {
	Field string
	Got   int64 // значение в Sync
	Want  int64 // пересчёт по окну
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("morethanhalf: %s = %d, window recompute = %d", e.Field, e.Got, e.Want)
}

// Verify пересчитывает агрегаты по всему окну за O(size) и сравнивает с текущими.
// Отладочная проверка; Process её не вызывает.
func (s *Sync) Verify() error {
	var misses, outOfSync, total int64
	for _, v := range s.history.Window() {
		total += v
		if s.outOfRange(v) {
			misses++
			outOfSync += v
		}
	}
	if int64(s.misses) != misses {
		return &AggregateError{Field: "misses", Got: int64(s.misses), Want: misses}
	}
	if s.outOfSyncSum != outOfSync {
		return &AggregateError{Field: "out_of_sync_sum", Got: s.outOfSyncSum, Want: outOfSync}
	}
	if s.totalSum != total {
		return &AggregateError{Field: "total_sum", Got: s.totalSum, Want: total}
	}
	return nil
}
