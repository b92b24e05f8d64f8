// Package history - кольцевая история отклонений фиксированной ёмкости поверх памяти вызывающего.
//
// History не выделяет и не освобождает память на горячем пути: Reset только привязывает
// переданный срез, Insert перезаписывает самый старый слот и сдвигает курсор.
package history

// History - кольцевой буфер знаковых отклонений.
// Курсор указывает на слот, который будет перезаписан следующим Insert.
type History struct {
	buf    []int64
	size   int
	cursor int
}

// Reset привязывает историю к buf ёмкостью size и ставит курсор в 0.
// Предусловия: size >= 1 и len(buf) >= size; не проверяются.
// Содержимое buf не трогается - для нейтрального старта вызывающий передаёт обнулённую память.
func (h *History) Reset(buf []int64, size int) {
	h.buf = buf
	h.size = size
	h.cursor = 0
}

// PeekOldest возвращает значение слота, который перезапишет следующий Insert.
func (h *History) PeekOldest() int64 {
	return h.buf[h.cursor]
}

// Insert записывает v в слот под курсором и сдвигает курсор по модулю ёмкости.
func (h *History) Insert(v int64) {
	h.buf[h.cursor] = v
	h.cursor++
	if h.cursor == h.size {
		h.cursor = 0
	}
}

// Size возвращает ёмкость истории (в сэмплах)
func (h *History) Size() int {
	return h.size
}

// Cursor возвращает индекс следующего перезаписываемого слота
func (h *History) Cursor() int {
	return h.cursor
}

// Window возвращает привязанные слоты buf[:size] без копирования (порядок физический, не хронологический).
func (h *History) Window() []int64 {
	return h.buf[:h.size]
}

// Ordered дописывает окно к dst от самого старого сэмпла к самому новому.
func (h *History) Ordered(dst []int64) []int64 {
	dst = append(dst, h.buf[h.cursor:h.size]...)
	return append(dst, h.buf[:h.cursor]...)
}
