// Пакет history хранит историю отмены и повтора редактирования документа.
//
// Основные возможности:
//   - Ограниченные стеки undo/redo из глубоких снимков (дерево, выделение).
//   - Склейка быстрых последовательных правок (набор текста) в одну единицу
//     отмены через окно тишины.
//   - Явный state machine отложенного снимка с внешними часами, чтобы тесты
//     не зависели от реальных таймеров.
package history

import (
	"sync"
	"time"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

const (
	DefaultLimit  = 100
	DefaultWindow = 300 * time.Millisecond
)

// Clock - абстракция времени и планировщика. В проде - системные часы,
// в тестах - виртуальные.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer - отменяемый отложенный вызов.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Entry - один снимок истории: дерево документа и выделение на момент снимка.
type Entry struct {
	Doc *document.Node
	Sel document.Selection
}

// History - пара стеков undo/redo с отложенным снимком для склейки набора.
type History struct {
	mu      sync.Mutex
	undo    []Entry
	redo    []Entry
	limit   int
	window  time.Duration
	clock   Clock
	pending *Entry
	timer   Timer
}

// New создает историю. Нулевые параметры заменяются значениями по умолчанию
// (100 записей, окно 300мс, системные часы).
func New(limit int, window time.Duration, clock Clock) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &History{limit: limit, window: window, clock: clock}
}

// Push кладет снимок в стек отмены и очищает стек повтора: новая правка
// обесценивает будущее. Отложенный снимок сначала фиксируется, чтобы
// сохранить порядок единиц отмены.
func (h *History) Push(doc *document.Node, sel document.Selection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushPendingLocked()
	h.pushLocked(Entry{Doc: doc.Clone(), Sel: sel})
}

// PushDebounced склеивает быстрые последовательные вызовы в один снимок:
// первый вызов серии запоминается, последующие в пределах окна тишины лишь
// продлевают окно. Набор слова дает одну единицу отмены, а не по одной
// на каждое нажатие.
func (h *History) PushDebounced(doc *document.Node, sel document.Selection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.pending == nil {
		h.pending = &Entry{Doc: doc.Clone(), Sel: sel}
	}
	h.timer = h.clock.AfterFunc(h.window, h.flushPending)
}

// Undo снимает верхний снимок отмены и кладет текущее состояние в стек
// повтора. Возвращает nil при пустом стеке.
func (h *History) Undo(doc *document.Node, sel document.Selection) *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushPendingLocked()
	if len(h.undo) == 0 {
		return nil
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = appendBounded(h.redo, Entry{Doc: doc.Clone(), Sel: sel}, h.limit)
	return &last
}

// Redo - зеркальное отражение Undo.
func (h *History) Redo(doc *document.Node, sel document.Selection) *Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushPendingLocked()
	if len(h.redo) == 0 {
		return nil
	}
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = appendBounded(h.undo, Entry{Doc: doc.Clone(), Sel: sel}, h.limit)
	return &last
}

// UndoLen возвращает глубину стека отмены (вместе с отложенным снимком).
func (h *History) UndoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if h.pending != nil {
		n++
	}
	return n
}

// RedoLen возвращает глубину стека повтора.
func (h *History) RedoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo)
}

func (h *History) flushPending() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushPendingLocked()
}

func (h *History) flushPendingLocked() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	if h.pending == nil {
		return
	}
	h.pushLocked(*h.pending)
	h.pending = nil
}

func (h *History) pushLocked(e Entry) {
	h.redo = h.redo[:0]
	h.undo = appendBounded(h.undo, e, h.limit)
}

// appendBounded добавляет запись, вытесняя самую старую при переполнении.
func appendBounded(stack []Entry, e Entry, limit int) []Entry {
	stack = append(stack, e)
	if len(stack) > limit {
		copy(stack, stack[1:])
		stack = stack[:limit]
	}
	return stack
}
