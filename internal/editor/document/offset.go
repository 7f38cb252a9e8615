// Преобразование между логической позицией (нода, смещение) и абсолютным
// смещением от начала документа. Абсолютное смещение переживает расщепления
// и слияния текстовых нод, поэтому используется для сохранения каретки
// через структурные мутации.
package document

// AbsoluteOffset возвращает абсолютное смещение позиции (nodeID, offset)
// от начала документа в рунах. Возвращает -1, если нода больше не существует.
func AbsoluteOffset(root *Node, nodeID string, offset int) int {
	total := 0
	found := -1
	Walk(root, func(n *Node) bool {
		if !n.IsText() {
			return false
		}
		if n.ID == nodeID {
			found = total + offset
			return true
		}
		total += n.Length()
		return false
	})
	return found
}

// PositionAt возвращает текстовую ноду и смещение внутри нее для абсолютного
// смещения abs. Граничное смещение принадлежит концу предыдущей ноды.
// Возвращает ok=false, если смещение выходит за пределы документа.
func PositionAt(root *Node, abs int) (Position, bool) {
	if abs < 0 {
		return Position{}, false
	}
	total := 0
	var pos Position
	ok := false
	Walk(root, func(n *Node) bool {
		if !n.IsText() {
			return false
		}
		length := n.Length()
		if abs <= total+length {
			pos = Position{NodeID: n.ID, Offset: abs - total}
			ok = true
			return true
		}
		total += length
		return false
	})
	return pos, ok
}

// TextLength возвращает суммарную длину текста документа в рунах.
func TextLength(root *Node) int {
	total := 0
	Walk(root, func(n *Node) bool {
		if n.IsText() {
			total += n.Length()
		}
		return false
	})
	return total
}
