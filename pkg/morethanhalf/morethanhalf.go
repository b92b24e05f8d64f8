// Package morethanhalf решает, нужна ли синхронизация между двумя изохронными событиями.
//
// Храним историю отклонений вторичного события от опорного. Если больше половины истории
// вне допустимого диапазона (|отклонение| > maxDeviation), возвращаем среднее отклонение
// этих сэмплов - вызывающий применяет коррекцию сам. Одиночный джиттер коррекцию не вызывает.
//
//	Уходит вперёд:  secondary: |       |       +|      +|      ++|     ++|
//	                reference: |       |       |       |       |       |
//	Отстаёт:        secondary: |       |      |-      |-     |--     |--
//	                reference: |       |       |       |       |       |
//
// Агрегаты обновляются за O(1): сначала снимается вклад вытесняемого сэмпла, затем
// добавляется вклад нового. Пересчёт окна целиком есть только в Verify.
package morethanhalf

import (
	"errors"

	"github.com/shiwa/timecard-mini/tc-devsync/pkg/history"
)

var (
	// ErrInvalidSize - ёмкость истории меньше 1
	ErrInvalidSize = errors.New("morethanhalf: history size must be at least 1")
	// ErrShortBuffer - буфер меньше заявленной ёмкости
	ErrShortBuffer = errors.New("morethanhalf: history buffer shorter than history size")
)

// Sync - состояние решателя: история и агрегаты по текущему окну.
// Не потокобезопасен: один Process/Reset за раз на экземпляр.
type Sync struct {
	history         history.History
	halfHistorySize int
	maxDeviation    uint64
	misses          int   // сэмплы в окне с |x| > maxDeviation
	outOfSyncSum    int64 // сумма этих сэмплов со знаком
	totalSum        int64 // сумма всех сэмплов окна
}

// New выделяет обнулённую историю ёмкостью size и возвращает готовый Sync.
func New(size int, maxDeviation uint64) (*Sync, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	s := &Sync{}
	s.Reset(make([]int64, size), size, maxDeviation)
	return s, nil
}

// Validate проверяет предусловия Reset для памяти, выделенной вызывающим.
func Validate(buf []int64, size int) error {
	if size < 1 {
		return ErrInvalidSize
	}
	if len(buf) < size {
		return ErrShortBuffer
	}
	return nil
}

// Reset привязывает историю к buf, задаёт порог и обнуляет агрегаты.
// Предусловия (см. Validate) не проверяются. buf должен быть обнулён, иначе
// старое содержимое будет вычитаться из агрегатов при вытеснении.
func (s *Sync) Reset(buf []int64, size int, maxDeviation uint64) {
	s.history.Reset(buf, size)
	s.halfHistorySize = size / 2
	s.maxDeviation = maxDeviation

	s.misses = 0
	s.outOfSyncSum = 0
	s.totalSum = 0
}

// Process вызывается на каждое опорное событие с последним отклонением.
// Возвращает 0, если синхронизация не нужна, иначе среднее отклонение (усечение к нулю)
// сэмплов вне диапазона.
//
// Если вторичное событие генерирует другой хост, после коррекции может пройти время,
// прежде чем оно придёт синхронизированным (сетевые задержки).
func (s *Sync) Process(deviation int64) int64 {
	// слот вытесняемого сэмпла - тот же, куда ляжет новый: читаем до Insert
	tail := s.history.PeekOldest()

	s.totalSum -= tail
	s.totalSum += deviation

	if s.outOfRange(tail) {
		s.misses--
		s.outOfSyncSum -= tail
	}
	if s.outOfRange(deviation) {
		s.misses++
		s.outOfSyncSum += deviation
	}

	s.history.Insert(deviation)

	if s.misses > s.halfHistorySize {
		return s.outOfSyncSum / int64(s.misses)
	}
	return 0
}

func (s *Sync) outOfRange(v int64) bool {
	return abs(v) > s.maxDeviation
}

// abs в uint64: корректно и для math.MinInt64
func abs(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// Misses возвращает число сэмплов окна вне диапазона
func (s *Sync) Misses() int { return s.misses }

// OutOfSyncSum возвращает сумму сэмплов вне диапазона
func (s *Sync) OutOfSyncSum() int64 { return s.outOfSyncSum }

// TotalSum возвращает сумму всех сэмплов окна (для диагностики, в коррекции не участвует)
func (s *Sync) TotalSum() int64 { return s.totalSum }

// HalfHistorySize возвращает size/2 - коррекция требует misses строго больше
func (s *Sync) HalfHistorySize() int { return s.halfHistorySize }

// MaxDeviation возвращает порог допустимого отклонения
func (s *Sync) MaxDeviation() uint64 { return s.maxDeviation }

// History возвращает историю (только для чтения диагностикой)
func (s *Sync) History() *history.History { return &s.history }
