// Навигация по дереву документа: поиск нод, обход в глубину, сбор текстовых нод.
// Все функции чистые, без мутаций, линейный проход по дереву.
package document

// Walk обходит поддерево в глубину. Если visit возвращает true, обход
// прекращается и в детей ноды спуска не происходит.
func Walk(n *Node, visit func(*Node) bool) {
	if visit(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, visit)
	}
}

// FindByID ищет ноду по идентификатору. Возвращает nil, если нода не найдена.
func FindByID(root *Node, id string) *Node {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.ID == id {
			found = n
			return true
		}
		return false
	})
	return found
}

// FindParent возвращает родителя ноды и индекс ноды среди его детей.
// Для корня и отсутствующей ноды возвращает (nil, -1).
func FindParent(root *Node, id string) (*Node, int) {
	var parent *Node
	index := -1
	Walk(root, func(n *Node) bool {
		for i, child := range n.Children {
			if child.ID == id {
				parent = n
				index = i
				return true
			}
		}
		return false
	})
	return parent, index
}

// CollectTextNodes собирает все текстовые ноды поддерева в порядке документа.
func CollectTextNodes(root *Node) []*Node {
	var texts []*Node
	Walk(root, func(n *Node) bool {
		if n.IsText() {
			texts = append(texts, n)
		}
		return false
	})
	return texts
}
