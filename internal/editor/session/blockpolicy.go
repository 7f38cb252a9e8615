package session

import (
	"github.com/aisa-it/aiplan-editor/internal/editor/document"
	"github.com/aisa-it/aiplan-editor/internal/editor/transform"
)

// backspaceAtBlockStartLocked реализует политику Backspace на границе блока.
// Возвращает false, если намерение молча игнорируется (начало документа,
// начало ячейки непустой таблицы и т.п.).
func (s *EditSession) backspaceAtBlockStartLocked(pos document.Position, sel document.Selection) bool {
	block, _ := document.FindParent(s.doc, pos.NodeID)
	if block == nil {
		return false
	}

	// Нулевое смещение не первого текстового прогона блока означает удаление
	// последнего символа предыдущего прогона.
	blockTexts := document.CollectTextNodes(block)
	if i := indexOfText(blockTexts, pos.NodeID); i > 0 {
		prev := blockTexts[i-1]
		length := prev.Length()
		if length == 0 {
			return false
		}
		s.history.PushDebounced(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: prev.ID, Offset: length - 1, Count: 1})
		transform.Apply(s.doc, tx)
		s.selection.SetCursorToNode(prev.ID, length-1)
		return true
	}

	parent, bidx := document.FindParent(s.doc, block.ID)
	if parent == nil {
		return false
	}

	switch parent.Kind {
	case document.KindListItem:
		return s.backspaceInListLocked(block, parent, sel)
	case document.KindTableCell:
		return s.backspaceInTableLocked(block, sel)
	}

	if bidx == 0 {
		// Начало документа или контейнера.
		return false
	}
	prev := parent.Children[bidx-1]

	switch {
	case mergeHostile(prev):
		// Через нетекстовый блок слияния нет, сосед удаляется целиком.
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: prev.ID})
		transform.Apply(s.doc, tx)
		s.selection.SetSaved(sel)
		return true

	case prev.Kind == document.KindBulletList || prev.Kind == document.KindOrderedList:
		// Блок вливается в последний элемент списка перед ним.
		lastItem := prev.Children[len(prev.Children)-1]
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: block.ID})
		tx.Add(transform.Step{Kind: transform.StepInsertNode, ParentID: lastItem.ID, Index: len(lastItem.Children), Node: block})
		tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: block.ID})
		results := transform.Apply(s.doc, tx)
		s.setCaretToJoin(results[len(results)-1], sel)
		return true

	default:
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: block.ID})
		results := transform.Apply(s.doc, tx)
		s.setCaretToJoin(results[0], sel)
		return true
	}
}

// backspaceInListLocked - политика Backspace в начале блока внутри элемента
// списка: слияние с предыдущим блоком элемента, удаление пустого элемента,
// подъем первого элемента из списка, слияние с предыдущим элементом.
func (s *EditSession) backspaceInListLocked(block, item *document.Node, sel document.Selection) bool {
	list, iidx := document.FindParent(s.doc, item.ID)
	if list == nil {
		return false
	}

	if bidx := childIndex(item, block.ID); bidx > 0 {
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: block.ID})
		results := transform.Apply(s.doc, tx)
		s.setCaretToJoin(results[0], sel)
		return true
	}

	if blockTextEmpty(item) {
		parent, lidx := document.FindParent(s.doc, list.ID)
		if parent == nil {
			return false
		}
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		switch {
		case len(list.Children) == 1:
			// Единственный пустой элемент: весь список заменяется пустым параграфом.
			para := document.NewNode(document.KindParagraph, document.NewText(""))
			tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: list.ID})
			tx.Add(transform.Step{Kind: transform.StepInsertNode, ParentID: parent.ID, Index: lidx, Node: para})
			transform.Apply(s.doc, tx)
			s.selection.SetCursorToNode(para.Children[0].ID, 0)
		case iidx == 0:
			next := list.Children[1]
			tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: item.ID})
			transform.Apply(s.doc, tx)
			if t := firstTextOf(next); t != nil {
				s.selection.SetCursorToNode(t.ID, 0)
			}
		default:
			prevItem := list.Children[iidx-1]
			tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: item.ID})
			transform.Apply(s.doc, tx)
			if t := lastTextOf(prevItem); t != nil {
				s.selection.SetCursorToNode(t.ID, t.Length())
			}
		}
		return true
	}

	if iidx == 0 {
		// Непустой первый элемент поднимается из списка перед ним.
		parent, lidx := document.FindParent(s.doc, list.ID)
		if parent == nil {
			return false
		}
		blocks := item.Children
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: item.ID})
		for i, b := range blocks {
			tx.Add(transform.Step{Kind: transform.StepInsertNode, ParentID: parent.ID, Index: lidx + i, Node: b})
		}
		if len(list.Children) == 1 {
			tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: list.ID})
		}
		transform.Apply(s.doc, tx)
		s.selection.SetSaved(document.Caret(sel.Anchor.NodeID, 0))
		return true
	}

	// Непустой элемент вливается в предыдущий.
	prevItem := list.Children[iidx-1]
	blocks := item.Children
	s.history.Push(s.doc, sel)
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: item.ID})
	for i, b := range blocks {
		tx.Add(transform.Step{Kind: transform.StepInsertNode, ParentID: prevItem.ID, Index: len(prevItem.Children) + i, Node: b})
	}
	tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: blocks[0].ID})
	results := transform.Apply(s.doc, tx)
	s.setCaretToJoin(results[len(results)-1], sel)
	return true
}

// backspaceInTableLocked - политика Backspace в начале первого блока ячейки.
// Блоки соседних ячеек не сливаются. Полностью пустая таблица удаляется
// целиком, каретка встает перед местом таблицы.
func (s *EditSession) backspaceInTableLocked(block *document.Node, sel document.Selection) bool {
	cell, _ := document.FindParent(s.doc, block.ID)
	if cell == nil || cell.Kind != document.KindTableCell {
		return false
	}
	if bidx := childIndex(cell, block.ID); bidx > 0 {
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: block.ID})
		results := transform.Apply(s.doc, tx)
		s.setCaretToJoin(results[0], sel)
		return true
	}
	row, _ := document.FindParent(s.doc, cell.ID)
	if row == nil {
		return false
	}
	table, _ := document.FindParent(s.doc, row.ID)
	if table == nil || table.Kind != document.KindTable {
		return false
	}
	if !blockTextEmpty(table) {
		return false
	}

	abs := document.AbsoluteOffset(s.doc, sel.Anchor.NodeID, 0)
	s.history.Push(s.doc, sel)
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: table.ID})
	transform.Apply(s.doc, tx)
	if p, ok := document.PositionAt(s.doc, abs); ok {
		s.selection.SetSaved(document.Selection{Anchor: p, Focus: p, Collapsed: true})
	}
	return true
}

// deleteAtBlockEndLocked - зеркальная политика Delete в конце блока: слияние
// следующего блока в текущий, удаление нетекстового соседа, втягивание
// первого элемента следующего списка.
func (s *EditSession) deleteAtBlockEndLocked(pos document.Position, sel document.Selection) bool {
	block, _ := document.FindParent(s.doc, pos.NodeID)
	if block == nil {
		return false
	}

	blockTexts := document.CollectTextNodes(block)
	if i := indexOfText(blockTexts, pos.NodeID); i >= 0 && i < len(blockTexts)-1 {
		next := blockTexts[i+1]
		if next.Length() == 0 {
			return false
		}
		s.history.PushDebounced(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteText, NodeID: next.ID, Offset: 0, Count: 1})
		transform.Apply(s.doc, tx)
		s.selection.SetSaved(sel)
		return true
	}

	parent, bidx := document.FindParent(s.doc, block.ID)
	if parent == nil {
		return false
	}

	switch parent.Kind {
	case document.KindListItem:
		if bidx < len(parent.Children)-1 {
			return s.mergeNextSiblingLocked(parent.Children[bidx+1], sel)
		}
		list, iidx := document.FindParent(s.doc, parent.ID)
		if list == nil || iidx >= len(list.Children)-1 {
			return false
		}
		return s.pullItemBlocksLocked(list, list.Children[iidx+1], parent, len(parent.Children), sel)
	case document.KindTableCell:
		if bidx < len(parent.Children)-1 {
			return s.mergeNextSiblingLocked(parent.Children[bidx+1], sel)
		}
		return false
	}

	if bidx >= len(parent.Children)-1 {
		return false
	}
	next := parent.Children[bidx+1]

	switch {
	case mergeHostile(next):
		s.history.Push(s.doc, sel)
		tx := transform.NewTransaction()
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: next.ID})
		transform.Apply(s.doc, tx)
		s.selection.SetSaved(sel)
		return true

	case next.Kind == document.KindBulletList || next.Kind == document.KindOrderedList:
		return s.pullItemBlocksLocked(next, next.Children[0], parent, bidx+1, sel)

	default:
		return s.mergeNextSiblingLocked(next, sel)
	}
}

// mergeNextSiblingLocked вливает указанный блок в его предыдущего соседа.
func (s *EditSession) mergeNextSiblingLocked(next *document.Node, sel document.Selection) bool {
	s.history.Push(s.doc, sel)
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: next.ID})
	results := transform.Apply(s.doc, tx)
	s.setCaretToJoin(results[0], sel)
	return true
}

// pullItemBlocksLocked вынимает блоки элемента списка в целевой контейнер и
// сливает первый из них с предыдущим соседом. Опустевший список удаляется.
func (s *EditSession) pullItemBlocksLocked(list, item, target *document.Node, index int, sel document.Selection) bool {
	blocks := item.Children
	if len(blocks) == 0 {
		return false
	}
	s.history.Push(s.doc, sel)
	tx := transform.NewTransaction()
	tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: item.ID})
	for i, b := range blocks {
		tx.Add(transform.Step{Kind: transform.StepInsertNode, ParentID: target.ID, Index: index + i, Node: b})
	}
	if len(list.Children) == 1 {
		tx.Add(transform.Step{Kind: transform.StepDeleteNode, NodeID: list.ID})
	}
	tx.Add(transform.Step{Kind: transform.StepMergeNodes, BlockID: blocks[0].ID})
	results := transform.Apply(s.doc, tx)
	s.setCaretToJoin(results[len(results)-1], sel)
	return true
}

func (s *EditSession) setCaretToJoin(r transform.Result, fallback document.Selection) {
	if r.JoinNodeID != "" {
		s.selection.SetCursorToNode(r.JoinNodeID, r.JoinOffset)
		return
	}
	s.selection.SetSaved(fallback)
}

// mergeHostile: через такие блоки текст не сливается, при удалении на границе
// сосед удаляется целиком. Кодовый блок сюда входит, иначе обычный текст
// затянуло бы внутрь кода.
func mergeHostile(n *document.Node) bool {
	return n.CaretHostile() || n.Kind == document.KindHardBreak || n.Kind == document.KindCodeBlock
}

func childIndex(parent *document.Node, id string) int {
	for i, c := range parent.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// blockTextEmpty проверяет, что все текстовые ноды поддерева пусты.
func blockTextEmpty(n *document.Node) bool {
	empty := true
	document.Walk(n, func(c *document.Node) bool {
		if c.IsText() && c.Length() > 0 {
			empty = false
			return true
		}
		return false
	})
	return empty
}

func firstTextOf(n *document.Node) *document.Node {
	texts := document.CollectTextNodes(n)
	if len(texts) == 0 {
		return nil
	}
	return texts[0]
}

func lastTextOf(n *document.Node) *document.Node {
	texts := document.CollectTextNodes(n)
	if len(texts) == 0 {
		return nil
	}
	return texts[len(texts)-1]
}
