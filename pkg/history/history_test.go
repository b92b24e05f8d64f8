package history

import (
	"reflect"
	"testing"
)

func TestHistory_InsertWraps(t *testing.T) {
	buf := make([]int64, 3)
	var h History
	h.Reset(buf, 3)

	for i, v := range []int64{1, 2, 3} {
		if h.Cursor() != i {
			t.Fatalf("Cursor() до вставки %d = %d", i, h.Cursor())
		}
		if got := h.PeekOldest(); got != 0 {
			t.Errorf("PeekOldest() на свежей памяти = %d, ожидали 0", got)
		}
		h.Insert(v)
	}
	if h.Cursor() != 0 {
		t.Fatalf("после %d вставок курсор должен вернуться в 0, получили %d", h.Size(), h.Cursor())
	}

	// Следующая вставка вытесняет первый записанный сэмпл (FIFO по кольцу)
	if got := h.PeekOldest(); got != 1 {
		t.Errorf("PeekOldest() = %d, ожидали 1", got)
	}
	h.Insert(4)
	if got := h.PeekOldest(); got != 2 {
		t.Errorf("PeekOldest() = %d, ожидали 2", got)
	}
	if !reflect.DeepEqual(buf, []int64{4, 2, 3}) {
		t.Errorf("buf = %v", buf)
	}
}

func TestHistory_Ordered(t *testing.T) {
	var h History
	h.Reset(make([]int64, 4), 4)
	for _, v := range []int64{10, 20, 30, 40, 50, 60} {
		h.Insert(v)
	}
	got := h.Ordered(nil)
	want := []int64{30, 40, 50, 60}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ordered() = %v, want %v", got, want)
	}
	if w := h.Window(); !reflect.DeepEqual(w, []int64{50, 60, 30, 40}) {
		t.Errorf("Window() = %v", w)
	}
}

func TestHistory_SizeOne(t *testing.T) {
	var h History
	h.Reset(make([]int64, 1), 1)
	h.Insert(7)
	if h.Cursor() != 0 {
		t.Fatalf("Cursor() = %d", h.Cursor())
	}
	if got := h.PeekOldest(); got != 7 {
		t.Errorf("PeekOldest() = %d, ожидали 7", got)
	}
	h.Insert(-3)
	if got := h.PeekOldest(); got != -3 {
		t.Errorf("PeekOldest() = %d, ожидали -3", got)
	}
}

func TestHistory_ResetKeepsMemory(t *testing.T) {
	buf := []int64{5, 6, 7, 8, 9}
	var h History
	h.Reset(buf, 4) // буфер больше ёмкости - используется только префикс
	if got := h.PeekOldest(); got != 5 {
		t.Errorf("PeekOldest() = %d: Reset не должен менять содержимое", got)
	}
	if len(h.Window()) != 4 {
		t.Errorf("len(Window()) = %d, want 4", len(h.Window()))
	}
	for i := 0; i < 4; i++ {
		h.Insert(0)
	}
	if buf[4] != 9 {
		t.Errorf("слот за пределами ёмкости изменён: %d", buf[4])
	}
}
