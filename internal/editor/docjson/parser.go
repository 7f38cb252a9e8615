package docjson

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// ParseJSON парсит JSON контент внешнего редактора в дерево документа.
// Принимает io.Reader с JSON данными и возвращает нормализованный документ.
// Всем нодам назначаются свежие идентификаторы.
func ParseJSON(r io.Reader) (*document.Node, error) {
	var wireDoc WireDocument
	if err := json.NewDecoder(r).Decode(&wireDoc); err != nil {
		return nil, err
	}

	doc := document.NewNode(document.KindDoc)
	for _, node := range wireDoc.Content {
		if parsed := parseNode(node); parsed != nil {
			doc.Children = append(doc.Children, parsed)
		}
	}
	document.Normalize(doc)
	return doc, nil
}

// parseNode парсит отдельную ноду внешнего формата.
func parseNode(node WireNode) *document.Node {
	switch node.Type {
	case "paragraph":
		return parseBlock(node, document.KindParagraph)
	case "heading":
		return parseHeading(node)
	case "blockquote":
		return parseBlock(node, document.KindBlockquote)
	case "codeBlock":
		return parseCodeBlock(node)
	case "bulletList":
		return parseList(node, document.KindBulletList)
	case "orderedList":
		return parseList(node, document.KindOrderedList)
	case "listItem":
		return parseBlock(node, document.KindListItem)
	case "table":
		return parseBlock(node, document.KindTable)
	case "tableRow":
		return parseBlock(node, document.KindTableRow)
	case "tableCell", "tableHeader":
		return parseTableCell(node)
	case "image":
		return parseImage(node)
	case "horizontalRule":
		return document.NewNode(document.KindHorizontalRule)
	case "hardBreak":
		return document.NewNode(document.KindHardBreak)
	case "pageBreak":
		return document.NewNode(document.KindPageBreak)
	case "text":
		return parseText(node)
	default:
		slog.Warn("Unknown node type", "type", node.Type)
		return nil
	}
}

func parseChildren(node WireNode) []*document.Node {
	children := make([]*document.Node, 0, len(node.Content))
	for _, child := range node.Content {
		if parsed := parseNode(child); parsed != nil {
			children = append(children, parsed)
		}
	}
	return children
}

func parseBlock(node WireNode, kind document.NodeKind) *document.Node {
	block := document.NewNode(kind, parseChildren(node)...)
	block.Attrs.Align = parseTextAlign(getAttrString(node.Attrs, "textAlign"))
	block.Attrs.Indent = getAttrInt(node.Attrs, "indent")
	return block
}

func parseHeading(node WireNode) *document.Node {
	head := parseBlock(node, document.KindHeading)
	head.Attrs.Level = getAttrInt(node.Attrs, "level")
	if head.Attrs.Level < 1 || head.Attrs.Level > 6 {
		head.Attrs.Level = 1
	}
	return head
}

func parseCodeBlock(node WireNode) *document.Node {
	code := document.NewNode(document.KindCodeBlock, parseChildren(node)...)
	code.Attrs.Language = getAttrString(node.Attrs, "language")
	return code
}

func parseList(node WireNode, kind document.NodeKind) *document.Node {
	list := document.NewNode(kind, parseChildren(node)...)
	if kind == document.KindOrderedList {
		list.Attrs.Start = getAttrInt(node.Attrs, "start")
	}
	return list
}

func parseTableCell(node WireNode) *document.Node {
	cell := document.NewNode(document.KindTableCell, parseChildren(node)...)
	cell.Attrs.Header = node.Type == "tableHeader"
	cell.Attrs.ColSpan = getAttrInt(node.Attrs, "colspan")
	cell.Attrs.RowSpan = getAttrInt(node.Attrs, "rowspan")
	return cell
}

func parseImage(node WireNode) *document.Node {
	img := document.NewNode(document.KindImage)
	img.Attrs.Src = getAttrString(node.Attrs, "src")
	img.Attrs.Width = getAttrInt(node.Attrs, "width")
	img.Attrs.Align = parseTextAlign(getAttrString(node.Attrs, "textAlign"))
	return img
}

func parseText(node WireNode) *document.Node {
	text := document.NewText(node.Text)
	for _, mark := range node.Marks {
		if parsed, ok := parseMark(mark); ok {
			text.AddMark(parsed)
		}
	}
	return text
}

// parseMark парсит метку форматирования. Неизвестные виды меток отбрасываются.
func parseMark(mark WireMark) (document.Mark, bool) {
	kind := document.MarkKind(mark.Type)
	switch kind {
	case document.MarkBold, document.MarkItalic, document.MarkUnderline,
		document.MarkStrike, document.MarkCode:
		return document.Mark{Kind: kind}, true
	case document.MarkLink:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"href": getAttrString(mark.Attrs, "href"),
		}}, true
	case document.MarkColor, document.MarkBackground:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"color": getAttrString(mark.Attrs, "color"),
		}}, true
	case document.MarkFontFamily:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"family": getAttrString(mark.Attrs, "family"),
		}}, true
	case document.MarkFontSize:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"size": getAttrString(mark.Attrs, "size"),
		}}, true
	case document.MarkAnchor:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"id": getAttrString(mark.Attrs, "id"),
		}}, true
	case document.MarkMention:
		return document.Mark{Kind: kind, Attrs: map[string]string{
			"id":    getAttrString(mark.Attrs, "id"),
			"label": getAttrString(mark.Attrs, "label"),
		}}, true
	default:
		slog.Warn("Unknown mark type", "type", mark.Type)
		return document.Mark{}, false
	}
}
