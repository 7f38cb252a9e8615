package transform

import "github.com/aisa-it/aiplan-editor/internal/editor/document"

// applyMarkRange применяет или снимает метку на диапазоне выделения.
// Метка должна затронуть только выделенную подстроку, поэтому текстовые ноды
// расщепляются по границам выделения. Повторное применение той же метки
// на том же логическом диапазоне идемпотентно: метка одного вида заменяется,
// а не дублируется.
func applyMarkRange(doc *document.Node, s Step, remove bool) {
	texts := document.CollectTextNodes(doc)
	si := indexOf(texts, s.Start.NodeID)
	ei := indexOf(texts, s.End.NodeID)
	if si < 0 || ei < 0 {
		return
	}

	start, end := s.Start, s.End
	// Anchor может стоять после focus, направление не гарантируется.
	if ei < si || (si == ei && end.Offset < start.Offset) {
		si, ei = ei, si
		start, end = end, start
	}

	mutate := func(n *document.Node) {
		if remove {
			n.RemoveMark(s.MarkKind)
		} else {
			n.AddMark(s.Mark.Clone())
		}
	}

	if si == ei {
		node := texts[si]
		lo, hi := clampOffset(node, start.Offset), clampOffset(node, end.Offset)
		if lo == hi {
			return
		}
		// Сначала расщепление по большему смещению, чтобы меньшее осталось валидным.
		splitTextAt(doc, node, hi)
		target := node
		if midID := splitTextAt(doc, node, lo); midID != "" {
			target = document.FindByID(doc, midID)
		}
		mutate(target)
		return
	}

	startNode, endNode := texts[si], texts[ei]

	// Хвост конечной ноды отрезается; при нулевом смещении конечная нода
	// исключается целиком, граница сдвигается на предыдущую текстовую ноду.
	endID := endNode.ID
	endOffset := clampOffset(endNode, end.Offset)
	if endOffset == 0 {
		if ei == 0 {
			return
		}
		endID = texts[ei-1].ID
	} else if endOffset < endNode.Length() {
		splitTextAt(doc, endNode, endOffset)
	}

	// Симметрично для начальной ноды: смещение в конце ноды исключает ее,
	// внутреннее смещение отрезает голову.
	startID := startNode.ID
	startAfter := false
	startOffset := clampOffset(startNode, start.Offset)
	if startOffset >= startNode.Length() {
		startAfter = true
	} else if startOffset > 0 {
		if newID := splitTextAt(doc, startNode, startOffset); newID != "" {
			startID = newID
		}
	}

	// После расщеплений идентификаторы сдвинулись, пересобираем список.
	texts = document.CollectTextNodes(doc)
	from := indexOf(texts, startID)
	to := indexOf(texts, endID)
	if startAfter {
		from++
	}
	if from < 0 || to < 0 || from > to || from >= len(texts) {
		return
	}
	for i := from; i <= to; i++ {
		mutate(texts[i])
	}
}

// splitTextAt расщепляет текстовую ноду на месте внутри ее родителя.
// Возвращает id новой правой ноды или пустую строку, если смещение пришлось
// на границу и расщепление не требуется.
func splitTextAt(doc *document.Node, node *document.Node, offset int) string {
	length := node.Length()
	if offset <= 0 || offset >= length {
		return ""
	}
	parent, idx := document.FindParent(doc, node.ID)
	if parent == nil {
		return ""
	}
	runes := []rune(node.Text)
	right := document.NewText(string(runes[offset:]), cloneMarks(node.Marks)...)
	node.Text = string(runes[:offset])
	insertChild(parent, idx+1, right)
	return right.ID
}

func clampOffset(node *document.Node, offset int) int {
	if offset < 0 {
		return 0
	}
	if length := node.Length(); offset > length {
		return length
	}
	return offset
}

func indexOf(texts []*document.Node, id string) int {
	for i, n := range texts {
		if n.ID == id {
			return i
		}
	}
	return -1
}
