// Пакет session связывает движок документа с внешним миром: хранит текущее
// выделение, принимает высокоуровневые намерения редактирования и
// транслирует их в транзакции мутаций.
package session

import "github.com/aisa-it/aiplan-editor/internal/editor/document"

// PresentationPort - контракт слоя отображения. Слой отображения может быть
// недоступен или не найти позицию, поэтому Capture возвращает ok=false,
// а ядро деградирует до последнего сохраненного выделения.
type PresentationPort interface {
	CaptureSelection() (document.Selection, bool)
	RestoreSelection(sel document.Selection)
}

// SelectionController владеет текущим выделением как чистым значением.
// Мутации и история работают только с сохраненным значением и не зависят
// от слоя отображения.
type SelectionController struct {
	port     PresentationPort
	saved    document.Selection
	hasSaved bool
}

// NewSelectionController создает контроллер. port может быть nil - тогда
// контроллер работает только с сохраненным значением.
func NewSelectionController(port PresentationPort) *SelectionController {
	return &SelectionController{port: port}
}

// Capture запрашивает выделение у слоя отображения. При неудаче возвращает
// последнее сохраненное значение.
func (sc *SelectionController) Capture() document.Selection {
	if sc.port != nil {
		if sel, ok := sc.port.CaptureSelection(); ok {
			sc.saved = sel
			sc.hasSaved = true
			return sel
		}
	}
	return sc.saved
}

// Restore проталкивает сохраненное выделение в слой отображения.
func (sc *SelectionController) Restore() {
	if sc.port == nil || !sc.hasSaved {
		return
	}
	sc.port.RestoreSelection(sc.saved)
}

// Saved возвращает сохраненное выделение без обращения к слою отображения.
func (sc *SelectionController) Saved() document.Selection {
	return sc.saved
}

// SetSaved запоминает выделение.
func (sc *SelectionController) SetSaved(sel document.Selection) {
	sc.saved = sel
	sc.hasSaved = true
}

// SetCursorToNode ставит схлопнутую каретку в указанную позицию.
func (sc *SelectionController) SetCursorToNode(nodeID string, offset int) {
	sc.SetSaved(document.Caret(nodeID, offset))
}
