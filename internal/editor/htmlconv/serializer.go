package htmlconv

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

// SerializeHTML сериализует дерево документа в HTML строку.
func SerializeHTML(doc *document.Node) string {
	var b strings.Builder
	for _, child := range doc.Children {
		writeBlock(&b, child)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, n *document.Node) {
	switch n.Kind {
	case document.KindParagraph:
		b.WriteString("<p" + alignStyle(n) + ">")
		writeInline(b, n.Children)
		b.WriteString("</p>")
	case document.KindHeading:
		level := n.Attrs.Level
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(b, "<h%d>", level)
		writeInline(b, n.Children)
		fmt.Fprintf(b, "</h%d>", level)
	case document.KindBlockquote:
		b.WriteString("<blockquote>")
		for _, child := range n.Children {
			writeBlock(b, child)
		}
		b.WriteString("</blockquote>")
	case document.KindCodeBlock:
		b.WriteString("<pre><code")
		if n.Attrs.Language != "" {
			fmt.Fprintf(b, " class=%q", "language-"+n.Attrs.Language)
		}
		b.WriteString(">")
		for _, child := range n.Children {
			if child.IsText() {
				b.WriteString(html.EscapeString(child.Text))
			}
		}
		b.WriteString("</code></pre>")
	case document.KindBulletList:
		b.WriteString("<ul>")
		writeListItems(b, n)
		b.WriteString("</ul>")
	case document.KindOrderedList:
		b.WriteString("<ol")
		if n.Attrs.Start > 0 {
			fmt.Fprintf(b, " start=%q", fmt.Sprint(n.Attrs.Start))
		}
		b.WriteString(">")
		writeListItems(b, n)
		b.WriteString("</ol>")
	case document.KindTable:
		b.WriteString("<table>")
		for _, row := range n.Children {
			writeBlock(b, row)
		}
		b.WriteString("</table>")
	case document.KindTableRow:
		b.WriteString("<tr>")
		for _, cell := range n.Children {
			writeCell(b, cell)
		}
		b.WriteString("</tr>")
	case document.KindHorizontalRule, document.KindPageBreak:
		b.WriteString("<hr/>")
	case document.KindImage:
		writeImage(b, n)
	}
}

func writeListItems(b *strings.Builder, list *document.Node) {
	for _, item := range list.Children {
		b.WriteString("<li>")
		for _, block := range item.Children {
			writeBlock(b, block)
		}
		b.WriteString("</li>")
	}
}

func writeCell(b *strings.Builder, cell *document.Node) {
	tag := "td"
	if cell.Attrs.Header {
		tag = "th"
	}
	b.WriteString("<" + tag)
	if cell.Attrs.ColSpan > 1 {
		fmt.Fprintf(b, " colspan=%q", fmt.Sprint(cell.Attrs.ColSpan))
	}
	if cell.Attrs.RowSpan > 1 {
		fmt.Fprintf(b, " rowspan=%q", fmt.Sprint(cell.Attrs.RowSpan))
	}
	b.WriteString(">")
	for _, block := range cell.Children {
		writeBlock(b, block)
	}
	b.WriteString("</" + tag + ">")
}

func writeImage(b *strings.Builder, n *document.Node) {
	b.WriteString("<img")
	if n.Attrs.Src != "" {
		fmt.Fprintf(b, " src=%q", html.EscapeString(n.Attrs.Src))
	}
	if n.Attrs.Width > 0 {
		fmt.Fprintf(b, " width=%q", fmt.Sprint(n.Attrs.Width))
	}
	b.WriteString("/>")
}

func writeInline(b *strings.Builder, runs []*document.Node) {
	for _, run := range runs {
		switch run.Kind {
		case document.KindHardBreak:
			b.WriteString("<br/>")
		case document.KindImage:
			writeImage(b, run)
		case document.KindText:
			writeText(b, run)
		}
	}
}

// writeText оборачивает текстовый прогон в теги его меток. Порядок тегов
// фиксирован, чтобы сериализация была детерминированной.
func writeText(b *strings.Builder, run *document.Node) {
	open, close := markTags(run.Marks)
	b.WriteString(open)
	b.WriteString(html.EscapeString(run.Text))
	b.WriteString(close)
}

func markTags(marks []document.Mark) (string, string) {
	var open strings.Builder
	var closers []string

	wrap := func(openTag, closeTag string) {
		open.WriteString(openTag)
		closers = append(closers, closeTag)
	}

	for _, kind := range []document.MarkKind{
		document.MarkLink, document.MarkBold, document.MarkItalic,
		document.MarkUnderline, document.MarkStrike, document.MarkCode,
	} {
		mark, ok := findMark(marks, kind)
		if !ok {
			continue
		}
		switch kind {
		case document.MarkLink:
			wrap(fmt.Sprintf("<a href=%q>", html.EscapeString(mark.Attrs["href"])), "</a>")
		case document.MarkBold:
			wrap("<strong>", "</strong>")
		case document.MarkItalic:
			wrap("<em>", "</em>")
		case document.MarkUnderline:
			wrap("<u>", "</u>")
		case document.MarkStrike:
			wrap("<s>", "</s>")
		case document.MarkCode:
			wrap("<code>", "</code>")
		}
	}

	if style := styleString(marks); style != "" {
		wrap(fmt.Sprintf("<span style=%q>", style), "</span>")
	}

	var close strings.Builder
	for i := len(closers) - 1; i >= 0; i-- {
		close.WriteString(closers[i])
	}
	return open.String(), close.String()
}

func styleString(marks []document.Mark) string {
	var styles []string
	if m, ok := findMark(marks, document.MarkColor); ok {
		styles = append(styles, "color: "+m.Attrs["color"])
	}
	if m, ok := findMark(marks, document.MarkBackground); ok {
		styles = append(styles, "background-color: "+m.Attrs["color"])
	}
	if m, ok := findMark(marks, document.MarkFontSize); ok {
		styles = append(styles, "font-size: "+m.Attrs["size"])
	}
	if m, ok := findMark(marks, document.MarkFontFamily); ok {
		styles = append(styles, "font-family: "+m.Attrs["family"])
	}
	return strings.Join(styles, "; ")
}

func findMark(marks []document.Mark, kind document.MarkKind) (document.Mark, bool) {
	for _, m := range marks {
		if m.Kind == kind {
			return m, true
		}
	}
	return document.Mark{}, false
}

func alignStyle(n *document.Node) string {
	switch n.Attrs.Align {
	case document.CenterAlign:
		return ` style="text-align: center"`
	case document.RightAlign:
		return ` style="text-align: right"`
	default:
		return ""
	}
}
