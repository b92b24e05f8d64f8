package morethanhalf

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func newSync(t *testing.T, size int, maxDeviation uint64) *Sync {
	t.Helper()
	s, err := New(size, maxDeviation)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", size, maxDeviation, err)
	}
	return s
}

func TestProcess_Example(t *testing.T) {
	s := newSync(t, 4, 10)
	for _, d := range []int64{5, 30, -40, 2} {
		if got := s.Process(d); got != 0 {
			t.Fatalf("Process(%d) = %d, ожидали 0", d, got)
		}
	}
	if s.Misses() != 2 || s.OutOfSyncSum() != -10 || s.HalfHistorySize() != 2 {
		t.Fatalf("misses=%d out_of_sync_sum=%d half=%d", s.Misses(), s.OutOfSyncSum(), s.HalfHistorySize())
	}
	if s.TotalSum() != -3 {
		t.Errorf("TotalSum() = %d, want -3", s.TotalSum())
	}

	// 50 вытесняет 5 (в диапазоне), misses = 3 > 2
	if got := s.Process(50); got != 13 {
		t.Errorf("Process(50) = %d, want 13", got)
	}
	if s.Misses() != 3 || s.OutOfSyncSum() != 40 || s.TotalSum() != 42 {
		t.Errorf("misses=%d out_of_sync_sum=%d total=%d", s.Misses(), s.OutOfSyncSum(), s.TotalSum())
	}
	if err := s.Verify(); err != nil {
		t.Error(err)
	}
}

func TestProcess_Truncation(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want int64
	}{
		{"negative toward zero", []int64{-5, -2}, -3},
		{"positive toward zero", []int64{5, 2}, 3},
		{"mixed sign", []int64{-9, 4}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSync(t, 2, 0)
			var got int64
			for _, d := range tt.in {
				got = s.Process(d)
			}
			if got != tt.want {
				t.Errorf("коррекция = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProcess_MajorityRule(t *testing.T) {
	const size, thr = 5, 10
	s := newSync(t, size, thr)

	// ровно half (2) вне диапазона - коррекции нет
	for _, d := range []int64{1, 100, -2, 200, 3} {
		if got := s.Process(d); got != 0 {
			t.Fatalf("Process(%d) = %d: при %d промахах коррекция не ожидалась", d, got, s.Misses())
		}
	}
	// окно в диапазоне, затем одиночный джиттер раз в окно - коррекции нет
	for i := 0; i < size; i++ {
		s.Process(0)
	}
	for i := 0; i < 3*size; i++ {
		d := int64(i%3 - 1)
		if i%size == 0 {
			d = 500
		}
		if got := s.Process(d); got != 0 {
			t.Fatalf("шаг %d: Process(%d) = %d", i, d, got)
		}
	}
	// устойчивый уход: третий промах в окне даёт коррекцию
	s.Process(40)
	s.Process(50)
	if got := s.Process(60); got != 50 {
		t.Errorf("Process(60) = %d misses=%d, want 50", got, s.Misses())
	}
}

func TestProcess_EvenSizeNeedsMoreThanHalf(t *testing.T) {
	s := newSync(t, 10, 0)
	for i := 0; i < 5; i++ {
		if got := s.Process(7); got != 0 {
			t.Fatalf("после %d промахов из 10 коррекция %d не ожидалась", i+1, got)
		}
	}
	if got := s.Process(7); got != 7 {
		t.Errorf("6 промахов из 10: коррекция = %d, want 7", got)
	}
}

// Открытый вопрос про историю ёмкостью 1: вытеснение и вставка работают с одним слотом.
func TestProcess_SizeOne(t *testing.T) {
	s := newSync(t, 1, 10)
	if s.HalfHistorySize() != 0 {
		t.Fatalf("HalfHistorySize() = %d", s.HalfHistorySize())
	}
	steps := []struct {
		in, want int64
		misses   int
	}{
		{20, 20, 1},
		{5, 0, 0},
		{-30, -30, 1},
		{-12, -12, 1},
		{10, 0, 0},
		{11, 11, 1},
	}
	for _, st := range steps {
		got := s.Process(st.in)
		if got != st.want || s.Misses() != st.misses {
			t.Errorf("Process(%d) = %d misses=%d, want %d misses=%d", st.in, got, s.Misses(), st.want, st.misses)
		}
		if s.TotalSum() != st.in {
			t.Errorf("TotalSum() = %d, want %d", s.TotalSum(), st.in)
		}
		if err := s.Verify(); err != nil {
			t.Error(err)
		}
	}
}

func TestProcess_ExtremeValues(t *testing.T) {
	s := newSync(t, 1, math.MaxInt64)
	if got := s.Process(math.MaxInt64); got != 0 {
		t.Errorf("Process(MaxInt64) = %d: |x| == порог, коррекция не ожидалась", got)
	}
	if got := s.Process(math.MinInt64); got != math.MinInt64 {
		t.Errorf("Process(MinInt64) = %d, want MinInt64", got)
	}
	if s.Misses() != 1 {
		t.Errorf("Misses() = %d, want 1", s.Misses())
	}
}

func TestProcess_MatchesRecompute(t *testing.T) {
	rng := rand.New(rand.NewSource(20180321))
	for iter := 0; iter < 200; iter++ {
		size := 1 + rng.Intn(33)
		thr := uint64(rng.Intn(1000))
		s := newSync(t, size, thr)

		window := make([]int64, size) // модель: очередь FIFO, старт с нулей
		steps := 4*size + rng.Intn(100)
		for n := 0; n < steps; n++ {
			d := rng.Int63n(4000) - 2000
			got := s.Process(d)

			window = append(window[1:], d)
			var misses int
			var outSum int64
			for _, v := range window {
				if v > int64(thr) || v < -int64(thr) {
					misses++
					outSum += v
				}
			}
			var want int64
			if misses > size/2 {
				want = outSum / int64(misses)
			}
			if got != want {
				t.Fatalf("size=%d thr=%d шаг %d: Process(%d) = %d, want %d", size, thr, n, d, got, want)
			}
			if s.Misses() != misses || s.OutOfSyncSum() != outSum {
				t.Fatalf("size=%d thr=%d шаг %d: misses=%d/%d out=%d/%d", size, thr, n, s.Misses(), misses, s.OutOfSyncSum(), outSum)
			}
			if s.Misses() < 0 || s.Misses() > size {
				t.Fatalf("misses=%d вне [0, %d]", s.Misses(), size)
			}
			if err := s.Verify(); err != nil {
				t.Fatalf("size=%d thr=%d шаг %d: %v", size, thr, n, err)
			}
		}
	}
}

func TestReset_Idempotent(t *testing.T) {
	in := []int64{3, -70, 80, 90, -5, 120, 130, -140, 0, 1, 2, 3}
	buf := make([]int64, 5)
	var s Sync

	run := func() []int64 {
		out := make([]int64, 0, len(in))
		for _, d := range in {
			out = append(out, s.Process(d))
		}
		return out
	}

	s.Reset(buf, len(buf), 50)
	first := run()
	clear(buf)
	s.Reset(buf, len(buf), 50)
	second := run()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("шаг %d: %d != %d после Reset", i, first[i], second[i])
		}
	}
	corrected := false
	for _, c := range first {
		corrected = corrected || c != 0
	}
	if !corrected {
		t.Error("последовательность должна была вызвать хотя бы одну коррекцию")
	}
}

func TestReset_ClearsAggregates(t *testing.T) {
	s := newSync(t, 3, 1)
	for _, d := range []int64{9, 9, 9} {
		s.Process(d)
	}
	s.Reset(make([]int64, 6), 6, 2)
	if s.Misses() != 0 || s.OutOfSyncSum() != 0 || s.TotalSum() != 0 {
		t.Errorf("после Reset агрегаты не обнулены: %d %d %d", s.Misses(), s.OutOfSyncSum(), s.TotalSum())
	}
	if s.HalfHistorySize() != 3 || s.MaxDeviation() != 2 || s.History().Size() != 6 {
		t.Errorf("half=%d max=%d size=%d", s.HalfHistorySize(), s.MaxDeviation(), s.History().Size())
	}
}

func TestVerify_DetectsDirtyBuffer(t *testing.T) {
	var s Sync
	s.Reset([]int64{0, 42, 0}, 3, 10) // необнулённая память: нарушение предусловия
	err := s.Verify()
	var aggErr *AggregateError
	if !errors.As(err, &aggErr) {
		t.Fatalf("Verify() = %v, ожидали *AggregateError", err)
	}
	if aggErr.Field != "misses" || aggErr.Got != 0 || aggErr.Want != 1 {
		t.Errorf("AggregateError = %+v", aggErr)
	}
}

func TestNewAndValidate(t *testing.T) {
	if _, err := New(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("New(0) err = %v, want ErrInvalidSize", err)
	}
	if _, err := New(-3, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("New(-3) err = %v, want ErrInvalidSize", err)
	}
	tests := []struct {
		name string
		buf  []int64
		size int
		want error
	}{
		{"ok", make([]int64, 4), 4, nil},
		{"larger buffer", make([]int64, 8), 4, nil},
		{"zero size", make([]int64, 4), 0, ErrInvalidSize},
		{"short buffer", make([]int64, 3), 4, ErrShortBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.buf, tt.size); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}
