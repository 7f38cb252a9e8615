package session

import (
	"strings"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
	"github.com/aisa-it/aiplan-editor/internal/editor/transform"
)

// deleteRangeLocked удаляет выделенный диапазон одной транзакцией и возвращает
// схлопнутую каретку в начале бывшего диапазона. Историю вызывающий код
// фиксирует сам: удаление диапазона входит в единицу отмены вместе с
// последующей операцией (вставкой, расщеплением и т.д.).
func (s *EditSession) deleteRangeLocked(sel document.Selection) (document.Selection, bool) {
	startAbs := document.AbsoluteOffset(s.doc, sel.Anchor.NodeID, sel.Anchor.Offset)
	endAbs := document.AbsoluteOffset(s.doc, sel.Focus.NodeID, sel.Focus.Offset)
	if startAbs < 0 || endAbs < 0 {
		return document.Selection{}, false
	}
	start, end := sel.Anchor, sel.Focus
	if endAbs < startAbs {
		start, end = end, start
	}

	startNode := document.FindByID(s.doc, start.NodeID)
	endNode := document.FindByID(s.doc, end.NodeID)
	if startNode == nil || endNode == nil || !startNode.IsText() || !endNode.IsText() {
		return document.Selection{}, false
	}

	tx := transform.NewTransaction()
	if startNode.ID == endNode.ID {
		tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: startNode.ID, Offset: start.Offset, Count: end.Offset - start.Offset})
		transform.Apply(s.doc, tx)
		return document.Caret(startNode.ID, start.Offset), true
	}

	texts := document.CollectTextNodes(s.doc)
	si := indexOfText(texts, startNode.ID)
	ei := indexOfText(texts, endNode.ID)
	if si < 0 || ei < 0 || si > ei {
		return document.Selection{}, false
	}

	startBlock, _ := document.FindParent(s.doc, startNode.ID)
	endBlock, _ := document.FindParent(s.doc, endNode.ID)
	if startBlock == nil || endBlock == nil {
		return document.Selection{}, false
	}

	// Хвост стартовой ноды и голова конечной.
	tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: startNode.ID, Offset: start.Offset, Count: startNode.Length() - start.Offset})
	tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: endNode.ID, Offset: 0, Count: end.Offset})

	// Блоки, целиком накрытые выделением, удаляются вместе с содержимым.
	removedBlocks := map[string]bool{}
	mergeEnd := false
	if parent, sbi := document.FindParent(s.doc, startBlock.ID); parent != nil && startBlock.ID != endBlock.ID {
		if endParent, ebi := document.FindParent(s.doc, endBlock.ID); endParent != nil && endParent.ID == parent.ID {
			for i := sbi + 1; i < ebi; i++ {
				removedBlocks[parent.Children[i].ID] = true
				tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: parent.Children[i].ID})
			}
			mergeEnd = true
		}
	}

	// Промежуточные текстовые прогоны вне удаляемых блоков вырезаются поштучно.
	for i := si + 1; i < ei; i++ {
		if block, _ := document.FindParent(s.doc, texts[i].ID); block != nil && removedBlocks[block.ID] {
			continue
		}
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: texts[i].ID})
	}

	if mergeEnd {
		tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: endBlock.ID})
	}
	transform.Apply(s.doc, tx)
	return document.Caret(startNode.ID, start.Offset), true
}

// selectedTextLocked возвращает текст выделенного диапазона. Границы блоков
// превращаются в переводы строки.
func (s *EditSession) selectedTextLocked(sel document.Selection) string {
	startAbs := document.AbsoluteOffset(s.doc, sel.Anchor.NodeID, sel.Anchor.Offset)
	endAbs := document.AbsoluteOffset(s.doc, sel.Focus.NodeID, sel.Focus.Offset)
	if startAbs < 0 || endAbs < 0 {
		return ""
	}
	start, end := sel.Anchor, sel.Focus
	if endAbs < startAbs {
		start, end = end, start
	}

	texts := document.CollectTextNodes(s.doc)
	si := indexOfText(texts, start.NodeID)
	ei := indexOfText(texts, end.NodeID)
	if si < 0 || ei < 0 {
		return ""
	}

	if si == ei {
		runes := []rune(texts[si].Text)
		lo, hi := clampRune(start.Offset, len(runes)), clampRune(end.Offset, len(runes))
		if lo > hi {
			lo, hi = hi, lo
		}
		return string(runes[lo:hi])
	}

	var b strings.Builder
	prevBlockID := ""
	for i := si; i <= ei; i++ {
		node := texts[i]
		block, _ := document.FindParent(s.doc, node.ID)
		if i > si && block != nil && block.ID != prevBlockID {
			b.WriteString("\n")
		}
		if block != nil {
			prevBlockID = block.ID
		}
		runes := []rune(node.Text)
		switch i {
		case si:
			b.WriteString(string(runes[clampRune(start.Offset, len(runes)):]))
		case ei:
			b.WriteString(string(runes[:clampRune(end.Offset, len(runes))]))
		default:
			b.WriteString(node.Text)
		}
	}
	return b.String()
}

func indexOfText(texts []*document.Node, id string) int {
	for i, n := range texts {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func clampRune(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}
