// Package diag - описательная статистика окна отклонений для статуса.
// Вне горячего пути: вызывается при публикации снимка, не на каждый Process.
package diag

import (
	"github.com/montanaflynn/stats"

	"github.com/shiwa/timecard-mini/tc-devsync/pkg/model"
)

// Summarize считает среднее, медиану и стандартное отклонение (генеральное) окна.
// Пустое окно даёт нули.
func Summarize(window []int64) model.WindowStats {
	if len(window) == 0 {
		return model.WindowStats{}
	}
	data := make(stats.Float64Data, len(window))
	for i, v := range window {
		data[i] = float64(v)
	}
	var out model.WindowStats
	out.Mean, _ = stats.Mean(data)
	out.Median, _ = stats.Median(data)
	out.StdDev, _ = stats.StandardDeviation(data)
	return out
}
