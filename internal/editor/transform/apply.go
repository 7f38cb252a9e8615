package transform

import (
	"log/slog"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// Apply применяет все шаги транзакции к дереву по порядку и восстанавливает
// инвариант минимального содержимого. Нерастворимые ссылки на ноды делают
// отдельный шаг no-op, транзакция при этом не прерывается.
func Apply(doc *document.Node, tx *Transaction) []Result {
	results := make([]Result, 0, len(tx.Steps))
	for _, step := range tx.Steps {
		results = append(results, applyStep(doc, step))
	}
	document.Normalize(doc)
	return results
}

func applyStep(doc *document.Node, s Step) Result {
	switch s.Kind {
	case StepInsertText:
		node := document.FindByID(doc, s.NodeID)
		if node == nil || !node.IsText() {
			return Result{}
		}
		node.Text = spliceText(node.Text, s.Offset, s.Text, 0)
	case StepDeleteText:
		node := document.FindByID(doc, s.NodeID)
		if node == nil || !node.IsText() {
			return Result{}
		}
		node.Text = spliceText(node.Text, s.Offset, "", s.Count)
	case StepSplitNode:
		return splitBlock(doc, s)
	case StepMergeNodes:
		return mergeBlocks(doc, s)
	case StepAddMark:
		applyMarkRange(doc, s, false)
	case StepRemoveMark:
		applyMarkRange(doc, s, true)
	case StepSetNodeAttr:
		setNodeAttr(doc, s)
	case StepInsertNode:
		parent := document.FindByID(doc, s.ParentID)
		if parent == nil || s.Node == nil {
			return Result{}
		}
		insertChild(parent, s.Index, s.Node)
	case StepDeleteNode:
		parent, idx := document.FindParent(doc, s.NodeID)
		if parent == nil {
			return Result{}
		}
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	case StepReplaceContent:
		doc.Children = s.Children
	case StepWrapInBlock:
		wrapInBlock(doc, s)
	case StepChangeBlockType:
		changeBlockType(doc, s)
	default:
		// Программная ошибка вызывающего кода, не повод ронять транзакцию.
		slog.Error("Unknown step kind", "kind", s.Kind)
	}
	return Result{}
}

// spliceText вырезает deleteCount рун начиная с offset и вставляет insert.
// Смещения за пределами строки клампятся, не отклоняются.
func spliceText(s string, offset int, insert string, deleteCount int) string {
	runes := []rune(s)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	end := offset + deleteCount
	if end < offset {
		end = offset
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[:offset]) + insert + string(runes[end:])
}

func insertChild(parent *document.Node, index int, node *document.Node) {
	if index < 0 {
		index = 0
	}
	if index > len(parent.Children) {
		index = len(parent.Children)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[index+1:], parent.Children[index:])
	parent.Children[index] = node
}

// splitBlock расщепляет блок на позиции (текстовая нода, смещение) на два
// соседних блока. Заголовок при расщеплении деградирует до параграфа:
// Enter внутри заголовка не продолжает заголовок.
func splitBlock(doc *document.Node, s Step) Result {
	block := document.FindByID(doc, s.BlockID)
	if block == nil {
		return Result{}
	}
	parent, idx := document.FindParent(doc, block.ID)
	if parent == nil {
		return Result{}
	}
	ti := -1
	for i, child := range block.Children {
		if child.ID == s.TextNodeID {
			ti = i
			break
		}
	}
	if ti < 0 || !block.Children[ti].IsText() {
		return Result{}
	}

	textNode := block.Children[ti]
	runes := []rune(textNode.Text)
	off := s.Offset
	if off < 0 {
		off = 0
	}
	if off > len(runes) {
		off = len(runes)
	}

	// Левая часть сохраняет исходный id, правая получает новый и наследует метки.
	right := document.NewText(string(runes[off:]), cloneMarks(textNode.Marks)...)
	textNode.Text = string(runes[:off])

	newKind := block.Kind
	newAttrs := block.Attrs
	if newKind == document.KindHeading {
		newKind = document.KindParagraph
		newAttrs = document.Attrs{Align: block.Attrs.Align}
	}

	tail := make([]*document.Node, 0, len(block.Children)-ti)
	tail = append(tail, right)
	tail = append(tail, block.Children[ti+1:]...)
	block.Children = block.Children[:ti+1]

	newBlock := document.NewNode(newKind, tail...)
	newBlock.Attrs = newAttrs
	insertChild(parent, idx+1, newBlock)

	return Result{NewTextID: right.ID}
}

// mergeBlocks вливает блок в предыдущего соседа. Точка склейки - конец
// последней текстовой ноды поглощающего блока до слияния, чтобы каретку
// можно было поставить ровно на шов. No-op для первого ребенка родителя.
func mergeBlocks(doc *document.Node, s Step) Result {
	block := document.FindByID(doc, s.BlockID)
	if block == nil {
		return Result{}
	}
	parent, idx := document.FindParent(doc, block.ID)
	if parent == nil || idx <= 0 {
		return Result{}
	}
	prev := parent.Children[idx-1]

	prevTexts := document.CollectTextNodes(prev)
	if len(prevTexts) == 0 {
		return Result{}
	}
	joinNode := prevTexts[len(prevTexts)-1]
	joinOffset := joinNode.Length()

	moved := block.Children
	// Соседние текстовые прогоны с одинаковым набором меток склеиваются в один.
	if len(moved) > 0 && moved[0].IsText() && document.MarksEqual(joinNode.Marks, moved[0].Marks) {
		joinNode.Text += moved[0].Text
		moved = moved[1:]
	}
	prev.Children = append(prev.Children, moved...)
	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)

	return Result{JoinNodeID: joinNode.ID, JoinOffset: joinOffset}
}

func setNodeAttr(doc *document.Node, s Step) {
	node := document.FindByID(doc, s.NodeID)
	if node == nil {
		return
	}
	switch s.AttrKey {
	case "level":
		node.Attrs.Level = toInt(s.AttrValue)
	case "align":
		node.Attrs.Align = document.TextAlign(toInt(s.AttrValue))
	case "indent":
		node.Attrs.Indent = toInt(s.AttrValue)
	case "src":
		node.Attrs.Src = toString(s.AttrValue)
	case "width":
		node.Attrs.Width = toInt(s.AttrValue)
	case "colspan":
		node.Attrs.ColSpan = toInt(s.AttrValue)
	case "rowspan":
		node.Attrs.RowSpan = toInt(s.AttrValue)
	case "header":
		node.Attrs.Header = toBool(s.AttrValue)
	case "language":
		node.Attrs.Language = toString(s.AttrValue)
	case "start":
		node.Attrs.Start = toInt(s.AttrValue)
	default:
		slog.Debug("Unknown node attr", "key", s.AttrKey)
	}
}

// wrapInBlock оборачивает блок в новый родительский блок. При оборачивании
// в список блок дополнительно вкладывается в автоматически созданный listItem.
func wrapInBlock(doc *document.Node, s Step) {
	block := document.FindByID(doc, s.BlockID)
	if block == nil {
		return
	}
	parent, idx := document.FindParent(doc, block.ID)
	if parent == nil {
		return
	}
	var wrapper *document.Node
	switch s.NewKind {
	case document.KindBulletList, document.KindOrderedList:
		wrapper = document.NewNode(s.NewKind, document.NewNode(document.KindListItem, block))
	default:
		wrapper = document.NewNode(s.NewKind, block)
	}
	parent.Children[idx] = wrapper
}

func changeBlockType(doc *document.Node, s Step) {
	block := document.FindByID(doc, s.BlockID)
	if block == nil {
		return
	}
	block.Kind = s.NewKind
	if s.Attrs != nil {
		block.Attrs = *s.Attrs
	}
	if s.NewKind == document.KindParagraph {
		block.Attrs.Level = 0
	}
}

func cloneMarks(marks []document.Mark) []document.Mark {
	if marks == nil {
		return nil
	}
	cloned := make([]document.Mark, 0, len(marks))
	for _, m := range marks {
		cloned = append(cloned, m.Clone())
	}
	return cloned
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		// JSON числа приходят как float64
		return int(n)
	}
	return 0
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
