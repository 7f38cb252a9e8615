// Пакет document содержит модель дерева rich-text документа: блочные ноды,
// текстовые ноды и форматирующие метки (marks).
//
// Основные возможности:
//   - Типы нод документа (параграфы, заголовки, списки, таблицы и т.д.) с закрытым набором атрибутов.
//   - Метки форматирования текста (bold, italic, link и т.д.), не более одной метки каждого вида на ноду.
//   - Глубокое копирование поддеревьев при передаче через границы владения.
//   - Автоматическое восстановление инварианта минимального содержимого (Normalize).
package document

import (
	"unicode/utf8"

	"github.com/gofrs/uuid"
)

// NodeKind определяет вид ноды дерева документа.
type NodeKind string

const (
	KindDoc            NodeKind = "doc"
	KindParagraph      NodeKind = "paragraph"
	KindHeading        NodeKind = "heading"
	KindBlockquote     NodeKind = "blockquote"
	KindCodeBlock      NodeKind = "codeBlock"
	KindBulletList     NodeKind = "bulletList"
	KindOrderedList    NodeKind = "orderedList"
	KindListItem       NodeKind = "listItem"
	KindTable          NodeKind = "table"
	KindTableRow       NodeKind = "tableRow"
	KindTableCell      NodeKind = "tableCell"
	KindHorizontalRule NodeKind = "horizontalRule"
	KindImage          NodeKind = "image"
	KindHardBreak      NodeKind = "hardBreak"
	KindPageBreak      NodeKind = "pageBreak"
	KindText           NodeKind = "text"
)

// MarkKind определяет вид метки форматирования.
type MarkKind string

const (
	MarkBold       MarkKind = "bold"
	MarkItalic     MarkKind = "italic"
	MarkUnderline  MarkKind = "underline"
	MarkStrike     MarkKind = "strike"
	MarkCode       MarkKind = "code"
	MarkLink       MarkKind = "link"
	MarkFontFamily MarkKind = "fontFamily"
	MarkFontSize   MarkKind = "fontSize"
	MarkColor      MarkKind = "color"
	MarkBackground MarkKind = "background"
	MarkAnchor     MarkKind = "anchor"
	MarkMention    MarkKind = "mention"
)

type TextAlign int

const (
	LeftAlign TextAlign = iota
	CenterAlign
	RightAlign
)

// Mark - метка форматирования текстовой ноды.
// Attrs хранит небольшие дополнительные параметры (href ссылки, hex цвета и т.д.).
type Mark struct {
	Kind  MarkKind
	Attrs map[string]string
}

// Clone возвращает глубокую копию метки.
func (m Mark) Clone() Mark {
	c := Mark{Kind: m.Kind}
	if m.Attrs != nil {
		c.Attrs = make(map[string]string, len(m.Attrs))
		for k, v := range m.Attrs {
			c.Attrs[k] = v
		}
	}
	return c
}

// Attrs - закрытый набор атрибутов ноды. Нулевое значение поля означает
// "атрибут не задан" (absent = default).
type Attrs struct {
	Level    int // уровень заголовка 1..6
	Align    TextAlign
	Indent   int
	Src      string // image
	Width    int    // image
	ColSpan  int    // tableCell
	RowSpan  int    // tableCell
	Header   bool   // tableCell
	Language string // codeBlock
	Start    int    // orderedList
}

// Node - универсальный элемент дерева документа.
// Id назначается при создании и никогда не переиспользуется.
type Node struct {
	ID       string
	Kind     NodeKind
	Attrs    Attrs
	Children []*Node
	Text     string
	Marks    []Mark
}

// NewID генерирует новый уникальный идентификатор ноды.
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// NewNode создает блочную ноду указанного вида с переданными детьми.
func NewNode(kind NodeKind, children ...*Node) *Node {
	return &Node{
		ID:       NewID(),
		Kind:     kind,
		Children: children,
	}
}

// NewText создает текстовую ноду с метками форматирования.
func NewText(text string, marks ...Mark) *Node {
	return &Node{
		ID:    NewID(),
		Kind:  KindText,
		Text:  text,
		Marks: marks,
	}
}

// NewDoc создает корень документа. Пустой документ получает пустой параграф,
// чтобы курсору всегда было куда встать.
func NewDoc(children ...*Node) *Node {
	doc := NewNode(KindDoc, children...)
	Normalize(doc)
	return doc
}

// IsText возвращает true для текстовой ноды.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// Length возвращает длину текста ноды в рунах.
func (n *Node) Length() int {
	return utf8.RuneCountInString(n.Text)
}

// IsLeafBlock возвращает true для блоков без детей (линейка, изображение и т.д.).
func (n *Node) IsLeafBlock() bool {
	switch n.Kind {
	case KindHorizontalRule, KindImage, KindHardBreak, KindPageBreak:
		return true
	}
	return false
}

// CaretHostile возвращает true для блоков, в которые нельзя поставить каретку.
// Документ не может заканчиваться такой нодой.
func (n *Node) CaretHostile() bool {
	switch n.Kind {
	case KindTable, KindImage, KindHorizontalRule, KindPageBreak:
		return true
	}
	return false
}

// Clone возвращает глубокую копию поддерева с сохранением всех идентификаторов.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:    n.ID,
		Kind:  n.Kind,
		Attrs: n.Attrs,
		Text:  n.Text,
	}
	if n.Marks != nil {
		c.Marks = make([]Mark, 0, len(n.Marks))
		for _, m := range n.Marks {
			c.Marks = append(c.Marks, m.Clone())
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			c.Children = append(c.Children, child.Clone())
		}
	}
	return c
}

// HasMark проверяет наличие метки указанного вида.
func (n *Node) HasMark(kind MarkKind) bool {
	for _, m := range n.Marks {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// AddMark добавляет метку. Метка того же вида заменяется, а не дублируется.
func (n *Node) AddMark(mark Mark) {
	for i, m := range n.Marks {
		if m.Kind == mark.Kind {
			n.Marks[i] = mark
			return
		}
	}
	n.Marks = append(n.Marks, mark)
}

// RemoveMark убирает метку указанного вида. Пустой список меток обнуляется.
func (n *Node) RemoveMark(kind MarkKind) {
	filtered := n.Marks[:0]
	for _, m := range n.Marks {
		if m.Kind != kind {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		n.Marks = nil
		return
	}
	n.Marks = filtered
}

// MarksEqual сравнивает наборы меток двух текстовых нод по виду.
func MarksEqual(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind {
			return false
		}
	}
	return true
}

// Normalize восстанавливает инвариант минимального содержимого:
// корень не пуст, каждый блок имеет хотя бы одного ребенка, документ не
// заканчивается нодой без текста. Вызывается после каждой транзакции.
func Normalize(doc *Node) {
	if doc == nil || doc.Kind != KindDoc {
		return
	}
	if len(doc.Children) == 0 {
		doc.Children = append(doc.Children, NewNode(KindParagraph, NewText("")))
	}
	backfillEmptyBlocks(doc)
	last := doc.Children[len(doc.Children)-1]
	if last.CaretHostile() {
		doc.Children = append(doc.Children, NewNode(KindParagraph, NewText("")))
	}
}

func backfillEmptyBlocks(n *Node) {
	for _, child := range n.Children {
		backfillEmptyBlocks(child)
	}
	if n.Kind == KindDoc || n.IsText() || n.IsLeafBlock() {
		return
	}
	if len(n.Children) == 0 {
		switch n.Kind {
		case KindBulletList, KindOrderedList:
			n.Children = append(n.Children, NewNode(KindListItem, NewNode(KindParagraph, NewText(""))))
		case KindListItem, KindBlockquote, KindTableCell:
			n.Children = append(n.Children, NewNode(KindParagraph, NewText("")))
		case KindTable:
			n.Children = append(n.Children, NewNode(KindTableRow, NewNode(KindTableCell, NewNode(KindParagraph, NewText("")))))
		case KindTableRow:
			n.Children = append(n.Children, NewNode(KindTableCell, NewNode(KindParagraph, NewText(""))))
		default:
			n.Children = append(n.Children, NewText(""))
		}
	}
}
