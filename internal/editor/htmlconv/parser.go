package htmlconv

import (
	"bytes"
	"io"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// ParseHTML парсит HTML фрагмент в дерево документа. Вход проходит через
// политику санитизации, неизвестные элементы пропускаются. Результат всегда
// нормализован.
func ParseHTML(r io.Reader) (*document.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseSanitized(PastePolicy.SanitizeBytes(raw))
}

// ParseHTMLRaw парсит HTML без санитизации. Только для доверенного входа.
func ParseHTMLRaw(r io.Reader) (*document.Node, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseSanitized(raw)
}

func parseSanitized(raw []byte) (*document.Node, error) {
	rootNode, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	doc := document.NewNode(document.KindDoc)
	for el := getBody(rootNode).FirstChild; el != nil; el = el.NextSibling {
		// Голый текст на верхнем уровне оборачивается в параграф
		if el.Type == html.TextNode && strings.TrimSpace(el.Data) != "" {
			doc.Children = append(doc.Children,
				document.NewNode(document.KindParagraph, document.NewText(el.Data)))
			continue
		}
		if block := parseBlock(el); block != nil {
			doc.Children = append(doc.Children, block)
		}
	}
	document.Normalize(doc)
	return doc, nil
}

func parseBlock(el *html.Node) *document.Node {
	if el.Type != html.ElementNode {
		return nil
	}

	switch el.Data {
	case "p":
		return parseParagraph(el)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		head := document.NewNode(document.KindHeading, parseInline(el, nil)...)
		head.Attrs.Level, _ = strconv.Atoi(strings.TrimPrefix(el.Data, "h"))
		return head
	case "blockquote":
		return document.NewNode(document.KindBlockquote, parseBlockChildren(el)...)
	case "pre":
		return parseCodeBlock(el)
	case "ul", "ol":
		return parseList(el)
	case "table":
		return parseTable(el)
	case "hr":
		return document.NewNode(document.KindHorizontalRule)
	case "img":
		return parseImage(el)
	default:
		return nil
	}
}

func parseBlockChildren(root *html.Node) []*document.Node {
	var blocks []*document.Node
	for el := root.FirstChild; el != nil; el = el.NextSibling {
		if block := parseBlock(el); block != nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

func parseParagraph(el *html.Node) *document.Node {
	p := document.NewNode(document.KindParagraph, parseInline(el, nil)...)
	switch styleValue(el, "text-align") {
	case "center":
		p.Attrs.Align = document.CenterAlign
	case "right":
		p.Attrs.Align = document.RightAlign
	}
	return p
}

func parseCodeBlock(el *html.Node) *document.Node {
	code := document.NewNode(document.KindCodeBlock)
	var text strings.Builder
	iterNodes(el, func(child *html.Node) bool {
		if child.Type == html.TextNode {
			text.WriteString(child.Data)
		}
		if child.Type == html.ElementNode && child.Data == "code" {
			if class := getAttrValue("class", child.Attr); strings.HasPrefix(class, "language-") {
				code.Attrs.Language = strings.TrimPrefix(class, "language-")
			}
		}
		return false
	})
	code.Children = append(code.Children, document.NewText(text.String()))
	return code
}

func parseList(el *html.Node) *document.Node {
	kind := document.KindBulletList
	if el.Data == "ol" {
		kind = document.KindOrderedList
	}
	list := document.NewNode(kind)
	if kind == document.KindOrderedList {
		list.Attrs.Start, _ = strconv.Atoi(getAttrValue("start", el.Attr))
	}

	for li := el.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := document.NewNode(document.KindListItem, parseBlockChildren(li)...)
		if len(item.Children) == 0 {
			// li с голым инлайн содержимым без <p>
			item.Children = append(item.Children,
				document.NewNode(document.KindParagraph, parseInline(li, nil)...))
		}
		list.Children = append(list.Children, item)
	}
	return list
}

func parseTable(el *html.Node) *document.Node {
	table := document.NewNode(document.KindTable)
	iterNodes(el, func(tr *html.Node) bool {
		if tr.Type != html.ElementNode || tr.Data != "tr" {
			return false
		}
		row := document.NewNode(document.KindTableRow)
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if td.Type != html.ElementNode || (td.Data != "td" && td.Data != "th") {
				continue
			}
			cell := document.NewNode(document.KindTableCell, parseBlockChildren(td)...)
			cell.Attrs.Header = td.Data == "th"
			cell.Attrs.ColSpan, _ = strconv.Atoi(getAttrValue("colspan", td.Attr))
			cell.Attrs.RowSpan, _ = strconv.Atoi(getAttrValue("rowspan", td.Attr))
			if len(cell.Children) == 0 {
				cell.Children = append(cell.Children,
					document.NewNode(document.KindParagraph, parseInline(td, nil)...))
			}
			row.Children = append(row.Children, cell)
		}
		table.Children = append(table.Children, row)
		return true
	})
	return table
}

func parseImage(el *html.Node) *document.Node {
	img := document.NewNode(document.KindImage)
	img.Attrs.Src = getAttrValue("src", el.Attr)
	img.Attrs.Width, _ = strconv.Atoi(strings.TrimSuffix(getAttrValue("width", el.Attr), "px"))
	return img
}

// parseInline собирает текстовые прогоны элемента. Метки форматирования
// наследуются от объемлющих инлайн тегов.
func parseInline(root *html.Node, marks []document.Mark) []*document.Node {
	var runs []*document.Node
	for el := root.FirstChild; el != nil; el = el.NextSibling {
		switch el.Type {
		case html.TextNode:
			if el.Data != "" {
				runs = append(runs, document.NewText(el.Data, slices.Clone(marks)...))
			}
		case html.ElementNode:
			switch el.Data {
			case "br":
				runs = append(runs, document.NewNode(document.KindHardBreak))
			case "img":
				runs = append(runs, parseImage(el))
			default:
				runs = append(runs, parseInline(el, inlineMarks(el, marks))...)
			}
		}
	}
	return runs
}

func inlineMarks(el *html.Node, marks []document.Mark) []document.Mark {
	out := slices.Clone(marks)
	switch el.Data {
	case "strong", "b":
		out = append(out, document.Mark{Kind: document.MarkBold})
	case "em", "i":
		out = append(out, document.Mark{Kind: document.MarkItalic})
	case "u":
		out = append(out, document.Mark{Kind: document.MarkUnderline})
	case "s", "del", "strike":
		out = append(out, document.Mark{Kind: document.MarkStrike})
	case "code":
		out = append(out, document.Mark{Kind: document.MarkCode})
	case "a":
		out = append(out, document.Mark{Kind: document.MarkLink, Attrs: map[string]string{
			"href": getAttrValue("href", el.Attr),
		}})
	case "span", "mark":
		out = append(out, styleMarks(el)...)
	}
	return out
}

func styleMarks(el *html.Node) []document.Mark {
	var out []document.Mark
	if v := styleValue(el, "color"); v != "" {
		out = append(out, document.Mark{Kind: document.MarkColor, Attrs: map[string]string{"color": v}})
	}
	if v := styleValue(el, "background-color"); v != "" {
		out = append(out, document.Mark{Kind: document.MarkBackground, Attrs: map[string]string{"color": v}})
	}
	if v := styleValue(el, "font-size"); v != "" {
		out = append(out, document.Mark{Kind: document.MarkFontSize, Attrs: map[string]string{"size": v}})
	}
	if v := styleValue(el, "font-family"); v != "" {
		out = append(out, document.Mark{Kind: document.MarkFontFamily, Attrs: map[string]string{"family": v}})
	}
	return out
}

func styleValue(el *html.Node, key string) string {
	for _, styleRaw := range strings.Split(getAttrValue("style", el.Attr), ";") {
		arr := strings.SplitN(styleRaw, ":", 2)
		if len(arr) != 2 {
			continue
		}
		if strings.TrimSpace(arr[0]) == key {
			return strings.TrimSpace(arr[1])
		}
	}
	return ""
}

func getBody(rootNode *html.Node) *html.Node {
	var body *html.Node
	iterNodes(rootNode, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return true
		}
		return false
	})
	if body == nil {
		return rootNode
	}
	return body
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
