package document

// Position - логическая позиция каретки: текстовая нода и смещение в рунах.
type Position struct {
	NodeID string `json:"node_id"`
	Offset int    `json:"offset"`
}

// Selection - значение выделения. Anchor и Focus могут указывать на одну и ту же
// или разные ноды; направление (anchor до или после focus) не гарантируется,
// вызывающий код нормализует его сам.
type Selection struct {
	Anchor    Position `json:"anchor"`
	Focus     Position `json:"focus"`
	Collapsed bool     `json:"collapsed"`
}

// Caret возвращает схлопнутое выделение в указанной позиции.
func Caret(nodeID string, offset int) Selection {
	p := Position{NodeID: nodeID, Offset: offset}
	return Selection{Anchor: p, Focus: p, Collapsed: true}
}

// IsZero возвращает true для пустого (незаданного) выделения.
func (s Selection) IsZero() bool {
	return s.Anchor.NodeID == "" && s.Focus.NodeID == ""
}
