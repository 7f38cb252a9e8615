package session

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
	"github.com/aisa-it/aiplan-editor/internal/editor/history"
	"github.com/aisa-it/aiplan-editor/internal/editor/transform"
)

// HookPoint - именованная точка расширения сессии. Коллабораторы
// регистрируются в списки хуков вместо подмены методов движка.
type HookPoint string

const (
	HookPreInsertText  HookPoint = "pre-insert-text"
	HookPostInsertText HookPoint = "post-insert-text"
	HookPreBackspace   HookPoint = "pre-backspace"
)

// HookContext передается хуку. Хук не должен вызывать методы сессии:
// он исполняется внутри транзакции.
type HookContext struct {
	Point     HookPoint
	Text      string
	Selection document.Selection
}

type Hook func(ctx HookContext)

// EditSession - оркестратор редактирования одного документа. Принимает
// высокоуровневые намерения, выстраивает из них транзакции, ведет историю
// и держит выделение валидным через абсолютные смещения.
//
// Ровно один логический писатель: все публичные методы сериализуются
// мьютексом на время целой транзакции, частичная видимость транзакции
// нарушила бы инвариант минимального содержимого.
type EditSession struct {
	mu        sync.Mutex
	doc       *document.Node
	selection *SelectionController
	history   *history.History
	version   uint64
	observers []func(version uint64)
	hooks     map[HookPoint][]Hook
}

// New создает сессию. Нулевой doc заменяется пустым документом; переданное
// дерево клонируется - сессия всегда мутирует копию, которой никто больше
// не владеет.
func New(doc *document.Node, hist *history.History, port PresentationPort) *EditSession {
	if doc == nil {
		doc = document.NewDoc()
	} else {
		doc = doc.Clone()
		document.Normalize(doc)
	}
	if hist == nil {
		hist = history.New(0, 0, nil)
	}
	return &EditSession{
		doc:       doc,
		selection: NewSelectionController(port),
		history:   hist,
		hooks:     make(map[HookPoint][]Hook),
	}
}

// Doc возвращает глубокую копию дерева документа.
func (s *EditSession) Doc() *document.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Version возвращает текущий номер версии документа.
func (s *EditSession) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe регистрирует наблюдателя версий. Наблюдатели вызываются после
// каждой мутации; паника одного наблюдателя не мешает остальным.
func (s *EditSession) Subscribe(fn func(version uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// RegisterHook добавляет хук в именованную точку расширения.
func (s *EditSession) RegisterHook(point HookPoint, h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[point] = append(s.hooks[point], h)
}

// Selection возвращает сохраненное выделение.
func (s *EditSession) Selection() document.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Saved()
}

// SetSelection запоминает выделение и проталкивает его в слой отображения.
func (s *EditSession) SetSelection(sel document.Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SetSaved(sel)
	s.selection.Restore()
}

// SelectAll выделяет весь документ. Это явный сигнал слоя отображения,
// по проценту покрытия выделение не угадывается.
func (s *EditSession) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := document.CollectTextNodes(s.doc)
	if len(texts) == 0 {
		return
	}
	first, last := texts[0], texts[len(texts)-1]
	s.selection.SetSaved(document.Selection{
		Anchor:    document.Position{NodeID: first.ID, Offset: 0},
		Focus:     document.Position{NodeID: last.ID, Offset: last.Length()},
		Collapsed: first.ID == last.ID && last.Length() == 0,
	})
	s.selection.Restore()
}

// LoadContent заменяет содержимое документа целиком (полная загрузка).
// В историю не попадает.
func (s *EditSession) LoadContent(children []*document.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &transform.Transaction{AddToHistory: false}
	tx.Add(transform.Step{Kind: transform.StepReplaceContent, Children: children})
	transform.Apply(s.doc, tx)
	if texts := document.CollectTextNodes(s.doc); len(texts) > 0 {
		s.selection.SetCursorToNode(texts[0].ID, 0)
	}
	s.notifyLocked()
}

// InsertText вставляет текст в позицию каретки. Непустое выделение сначала
// удаляется той же единицей отмены. Набор текста склеивается в истории
// через окно тишины.
func (s *EditSession) InsertText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() || text == "" {
		return
	}
	s.runHooks(HookPreInsertText, text, sel)

	if !isCollapsed(sel) {
		s.history.Push(s.doc, sel)
		caret, ok := s.deleteRangeLocked(sel)
		if !ok {
			s.notifyLocked()
			return
		}
		sel = caret
	} else {
		node := document.FindByID(s.doc, sel.Anchor.NodeID)
		if node == nil || !node.IsText() {
			return
		}
		s.history.PushDebounced(s.doc, sel)
	}

	pos := sel.Anchor
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepInsertText, NodeID: pos.NodeID, Offset: pos.Offset, Text: text})
	transform.Apply(s.doc, tx)

	s.selection.SetCursorToNode(pos.NodeID, pos.Offset+utf8.RuneCountInString(text))
	s.selection.Restore()
	s.runHooks(HookPostInsertText, text, s.selection.Saved())
	s.notifyLocked()
}

// Enter расщепляет текущий блок по каретке. Каретка встает в начало
// первой текстовой ноды нового блока.
func (s *EditSession) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() {
		return
	}
	node := document.FindByID(s.doc, sel.Anchor.NodeID)
	if node == nil || !node.IsText() {
		return
	}

	s.history.Push(s.doc, sel)
	if !isCollapsed(sel) {
		caret, ok := s.deleteRangeLocked(sel)
		if !ok {
			s.notifyLocked()
			return
		}
		sel = caret
	}

	pos := sel.Anchor
	block, _ := document.FindParent(s.doc, pos.NodeID)
	if block == nil {
		s.notifyLocked()
		return
	}
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepSplitNode, BlockID: block.ID, TextNodeID: pos.NodeID, Offset: pos.Offset})
	results := transform.Apply(s.doc, tx)
	if results[0].NewTextID != "" {
		s.selection.SetCursorToNode(results[0].NewTextID, 0)
		s.selection.Restore()
	}
	s.notifyLocked()
}

// Backspace удаляет символ перед кареткой либо применяет блочную политику
// на границе блока: слияние с предыдущим блоком, удаление пустого элемента
// списка, удаление опустевшей таблицы. Через нетекстовый блок слияние
// не происходит - такой сосед удаляется целиком.
func (s *EditSession) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() {
		return
	}
	s.runHooks(HookPreBackspace, "", sel)

	if !isCollapsed(sel) {
		s.history.Push(s.doc, sel)
		if caret, ok := s.deleteRangeLocked(sel); ok {
			s.selection.SetSaved(caret)
			s.selection.Restore()
		}
		s.notifyLocked()
		return
	}

	pos := sel.Anchor
	node := document.FindByID(s.doc, pos.NodeID)
	if node == nil || !node.IsText() {
		return
	}

	if pos.Offset > 0 {
		s.history.PushDebounced(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: pos.NodeID, Offset: pos.Offset - 1, Count: 1})
		transform.Apply(s.doc, tx)
		s.selection.SetCursorToNode(pos.NodeID, pos.Offset-1)
		s.selection.Restore()
		s.notifyLocked()
		return
	}

	if s.backspaceAtBlockStartLocked(pos, sel) {
		s.selection.Restore()
		s.notifyLocked()
	}
}

// Delete удаляет символ после каретки либо сливает следующий блок в текущий
// по той же блочной политике, что и Backspace.
func (s *EditSession) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() {
		return
	}

	if !isCollapsed(sel) {
		s.history.Push(s.doc, sel)
		if caret, ok := s.deleteRangeLocked(sel); ok {
			s.selection.SetSaved(caret)
			s.selection.Restore()
		}
		s.notifyLocked()
		return
	}

	pos := sel.Anchor
	node := document.FindByID(s.doc, pos.NodeID)
	if node == nil || !node.IsText() {
		return
	}

	if pos.Offset < node.Length() {
		s.history.PushDebounced(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: pos.NodeID, Offset: pos.Offset, Count: 1})
		transform.Apply(s.doc, tx)
		s.selection.Restore()
		s.notifyLocked()
		return
	}

	if s.deleteAtBlockEndLocked(pos, sel) {
		s.selection.Restore()
		s.notifyLocked()
	}
}

// Cut удаляет выделенный диапазон и возвращает его текст.
func (s *EditSession) Cut() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() || isCollapsed(sel) {
		return ""
	}
	text := s.selectedTextLocked(sel)
	s.history.Push(s.doc, sel)
	if caret, ok := s.deleteRangeLocked(sel); ok {
		s.selection.SetSaved(caret)
		s.selection.Restore()
	}
	s.notifyLocked()
	return text
}

// ApplyMark применяет метку форматирования к выделенному диапазону.
// Выделение переживает расщепления нод через абсолютные смещения.
func (s *EditSession) ApplyMark(mark document.Mark) {
	s.markRange(transform.Step{Kind: transform.StepAddMark, Mark: mark})
}

// RemoveMark снимает метку указанного вида с выделенного диапазона.
func (s *EditSession) RemoveMark(kind document.MarkKind) {
	s.markRange(transform.Step{Kind: transform.StepRemoveMark, MarkKind: kind})
}

func (s *EditSession) markRange(step transform.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() || isCollapsed(sel) {
		return
	}
	anchorAbs := document.AbsoluteOffset(s.doc, sel.Anchor.NodeID, sel.Anchor.Offset)
	focusAbs := document.AbsoluteOffset(s.doc, sel.Focus.NodeID, sel.Focus.Offset)
	if anchorAbs < 0 || focusAbs < 0 {
		return
	}

	s.history.Push(s.doc, sel)
	step.Start = sel.Anchor
	step.End = sel.Focus
	tx := transform.NewTransaction()
	tx.Add(step)
	transform.Apply(s.doc, tx)

	// Расщепления сдвинули границы нод, выделение пересчитывается
	// по абсолютным смещениям.
	anchor, okA := document.PositionAt(s.doc, anchorAbs)
	focus, okF := document.PositionAt(s.doc, focusAbs)
	if okA && okF {
		s.selection.SetSaved(document.Selection{Anchor: anchor, Focus: focus, Collapsed: anchor == focus})
		s.selection.Restore()
	}
	s.notifyLocked()
}

// FormatBlock меняет тип блока под кареткой. Списки оборачивают блок,
// остальные виды переназначают тип на месте.
func (s *EditSession) FormatBlock(kind document.NodeKind, attrs *document.Attrs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.selection.Capture()
	if sel.IsZero() {
		return
	}
	block, _ := document.FindParent(s.doc, sel.Anchor.NodeID)
	if block == nil {
		return
	}

	s.history.Push(s.doc, sel)
	tx := transform.NewTransaction()
	switch kind {
	case document.KindBulletList, document.KindOrderedList, document.KindBlockquote:
		tx.Add(transform.Step{Kind: transform.StepWrapInBlock, BlockID: block.ID, NewKind: kind})
	default:
		tx.Add(transform.Step{Kind: transform.StepChangeBlockType, BlockID: block.ID, NewKind: kind, Attrs: attrs})
	}
	transform.Apply(s.doc, tx)
	s.selection.Restore()
	s.notifyLocked()
}

// Undo откатывает последнюю единицу отмены. Пустая история - no-op.
func (s *EditSession) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.history.Undo(s.doc, s.selection.Saved())
	if entry == nil {
		return
	}
	s.doc = entry.Doc
	s.selection.SetSaved(entry.Sel)
	s.selection.Restore()
	s.notifyLocked()
}

// Redo повторяет отмененную единицу.
func (s *EditSession) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.history.Redo(s.doc, s.selection.Saved())
	if entry == nil {
		return
	}
	s.doc = entry.Doc
	s.selection.SetSaved(entry.Sel)
	s.selection.Restore()
	s.notifyLocked()
}

func (s *EditSession) notifyLocked() {
	s.version++
	for _, fn := range s.observers {
		safeNotify(fn, s.version)
	}
}

func safeNotify(fn func(uint64), version uint64) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Version observer panic", "panic", r)
		}
	}()
	fn(version)
}

func (s *EditSession) runHooks(point HookPoint, text string, sel document.Selection) {
	for _, h := range s.hooks[point] {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Hook panic", "point", point, "panic", r)
				}
			}()
			h(HookContext{Point: point, Text: text, Selection: sel})
		}()
	}
}

func isCollapsed(sel document.Selection) bool {
	return sel.Collapsed || sel.Anchor == sel.Focus
}
