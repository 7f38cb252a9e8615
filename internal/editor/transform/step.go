// Пакет transform реализует атомарные мутации дерева документа.
// Шаги (Step) группируются в транзакции и применяются к рабочей копии дерева;
// после каждой транзакции восстанавливается инвариант минимального содержимого.
//
// Основные возможности:
//   - Текстовые шаги: вставка и удаление символов с клампингом смещений.
//   - Структурные шаги: расщепление и слияние блоков, вставка и удаление нод.
//   - Применение и снятие меток форматирования на произвольном диапазоне
//     с расщеплением текстовых нод по границам выделения.
//   - Смена типа блока и оборачивание блока в список или цитату.
package transform

import "github.com/aisa-it/aiplan-editor/internal/editor/document"

// StepKind определяет вид шага мутации.
type StepKind string

const (
	StepInsertText      StepKind = "insertText"
	StepDeleteText      StepKind = "deleteText"
	StepSplitNode       StepKind = "splitNode"
	StepMergeNodes      StepKind = "mergeNodes"
	StepAddMark         StepKind = "addMark"
	StepRemoveMark      StepKind = "removeMark"
	StepSetNodeAttr     StepKind = "setNodeAttr"
	StepInsertNode      StepKind = "insertNode"
	StepDeleteNode      StepKind = "deleteNode"
	StepReplaceContent  StepKind = "replaceContent"
	StepWrapInBlock     StepKind = "wrapInBlock"
	StepChangeBlockType StepKind = "changeBlockType"
)

// Step - одна атомарная мутация дерева. Используется универсальная структура,
// заполняются только поля, относящиеся к конкретному виду шага.
type Step struct {
	Kind StepKind

	NodeID string // insertText, deleteText, setNodeAttr, deleteNode
	Offset int    // insertText, deleteText, splitNode
	Text   string // insertText
	Count  int    // deleteText

	BlockID    string // splitNode, mergeNodes, wrapInBlock, changeBlockType
	TextNodeID string // splitNode

	Start    document.Position // addMark, removeMark
	End      document.Position
	Mark     document.Mark     // addMark
	MarkKind document.MarkKind // removeMark

	AttrKey   string // setNodeAttr
	AttrValue any

	ParentID string         // insertNode
	Index    int            // insertNode
	Node     *document.Node // insertNode

	Children []*document.Node // replaceContent

	NewKind document.NodeKind // wrapInBlock, changeBlockType
	Attrs   *document.Attrs   // changeBlockType
}

// Result - результат применения шага. Для splitNode содержит идентификатор
// первой текстовой ноды нового блока, для mergeNodes - точку склейки.
type Result struct {
	NewTextID  string
	JoinNodeID string
	JoinOffset int
}

// Transaction - упорядоченный набор шагов, применяемый атомарно как одна
// единица отмены (если AddToHistory не сброшен вызывающим кодом).
type Transaction struct {
	Steps        []Step
	AddToHistory bool
}

// NewTransaction создает пустую транзакцию, попадающую в историю.
func NewTransaction() *Transaction {
	return &Transaction{AddToHistory: true}
}

// Add добавляет шаг в транзакцию.
func (tx *Transaction) Add(step Step) *Transaction {
	tx.Steps = append(tx.Steps, step)
	return tx
}
