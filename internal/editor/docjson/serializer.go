package docjson

import (
	"encoding/json"
	"log/slog"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// Serialize сериализует дерево документа во внешний JSON формат.
func Serialize(doc *document.Node) ([]byte, error) {
	wireDoc := WireDocument{
		Type:    "doc",
		Content: make([]WireNode, 0, len(doc.Children)),
	}

	for _, child := range doc.Children {
		if node := serializeNode(child); node != nil {
			wireDoc.Content = append(wireDoc.Content, *node)
		}
	}

	return json.Marshal(wireDoc)
}

// serializeNode преобразует ноду дерева во внешнюю ноду.
func serializeNode(n *document.Node) *WireNode {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case document.KindText:
		return serializeText(n)
	case document.KindParagraph, document.KindBlockquote, document.KindListItem,
		document.KindTable, document.KindTableRow:
		return serializeBlock(n)
	case document.KindHeading:
		node := serializeBlock(n)
		setAttr(node, "level", n.Attrs.Level)
		return node
	case document.KindCodeBlock:
		node := serializeBlock(n)
		if n.Attrs.Language != "" {
			setAttr(node, "language", n.Attrs.Language)
		}
		return node
	case document.KindBulletList:
		return serializeBlock(n)
	case document.KindOrderedList:
		node := serializeBlock(n)
		if n.Attrs.Start > 0 {
			setAttr(node, "start", n.Attrs.Start)
		}
		return node
	case document.KindTableCell:
		return serializeTableCell(n)
	case document.KindImage:
		return serializeImage(n)
	case document.KindHorizontalRule, document.KindHardBreak, document.KindPageBreak:
		return &WireNode{Type: string(n.Kind)}
	default:
		slog.Warn("Unknown node kind for serialization", "kind", n.Kind)
		return nil
	}
}

func serializeBlock(n *document.Node) *WireNode {
	node := &WireNode{
		Type:    string(n.Kind),
		Content: make([]WireNode, 0, len(n.Children)),
	}

	// Атрибуты добавляются только если они не default
	if n.Attrs.Align != document.LeftAlign {
		setAttr(node, "textAlign", serializeTextAlign(n.Attrs.Align))
	}
	if n.Attrs.Indent > 0 {
		setAttr(node, "indent", n.Attrs.Indent)
	}

	for _, child := range n.Children {
		if childNode := serializeNode(child); childNode != nil {
			node.Content = append(node.Content, *childNode)
		}
	}

	return node
}

func serializeTableCell(n *document.Node) *WireNode {
	node := serializeBlock(n)
	node.Type = "tableCell"
	if n.Attrs.Header {
		node.Type = "tableHeader"
	}
	if n.Attrs.ColSpan > 1 {
		setAttr(node, "colspan", n.Attrs.ColSpan)
	}
	if n.Attrs.RowSpan > 1 {
		setAttr(node, "rowspan", n.Attrs.RowSpan)
	}
	return node
}

func serializeImage(n *document.Node) *WireNode {
	node := &WireNode{Type: "image"}
	if n.Attrs.Src != "" {
		setAttr(node, "src", n.Attrs.Src)
	}
	if n.Attrs.Width > 0 {
		setAttr(node, "width", n.Attrs.Width)
	}
	if n.Attrs.Align != document.LeftAlign {
		setAttr(node, "textAlign", serializeTextAlign(n.Attrs.Align))
	}
	return node
}

func serializeText(n *document.Node) *WireNode {
	node := &WireNode{
		Type: "text",
		Text: n.Text,
	}

	marks := make([]WireMark, 0, len(n.Marks))
	for _, m := range n.Marks {
		wm := WireMark{Type: string(m.Kind)}
		if len(m.Attrs) > 0 {
			wm.Attrs = make(map[string]interface{}, len(m.Attrs))
			for k, v := range m.Attrs {
				wm.Attrs[k] = v
			}
		}
		marks = append(marks, wm)
	}
	if len(marks) > 0 {
		node.Marks = marks
	}

	return node
}

func setAttr(node *WireNode, key string, value interface{}) {
	if node.Attrs == nil {
		node.Attrs = make(map[string]interface{})
	}
	node.Attrs[key] = value
}
