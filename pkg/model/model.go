// Package model - записи, которые демон отдаёт наружу: решения о коррекции и снимок состояния.
package model

import "time"

// Decision - одно решение о коррекции (только ненулевые).
type Decision struct {
	Session      string    `json:"session"`
	Time         time.Time `json:"time"`
	Probe        string    `json:"probe"`
	Correction   int64     `json:"correction_ns"` // secondary − reference
	Misses       int       `json:"misses"`
	OutOfSyncSum int64     `json:"out_of_sync_sum"`
	TotalSum     int64     `json:"total_sum"`
	HistorySize  int       `json:"history_size"`
	Applied      string    `json:"applied"` // none, slew, step
	Error        string    `json:"error,omitempty"`
}

// WindowStats - сводка по текущему окну (для диагностики, не для решения)
type WindowStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
}

// Snapshot - состояние решателя после последнего сэмпла.
type Snapshot struct {
	Session         string      `json:"session"`
	Probe           string      `json:"probe"`
	Samples         uint64      `json:"samples"`
	Corrections     uint64      `json:"corrections"`
	ProbeErrors     uint64      `json:"probe_errors"`
	LastDeviation   int64       `json:"last_deviation_ns"`
	LastCorrection  *Decision   `json:"last_correction,omitempty"`
	Misses          int         `json:"misses"`
	OutOfSyncSum    int64       `json:"out_of_sync_sum"`
	TotalSum        int64       `json:"total_sum"`
	HalfHistorySize int         `json:"half_history_size"`
	MaxDeviation    uint64      `json:"max_deviation_ns"`
	Window          []int64     `json:"window"` // от старого к новому
	Stats           WindowStats `json:"stats"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
