package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDoc(t *testing.T) {
	t.Run("empty doc gets paragraph with empty text", func(t *testing.T) {
		doc := NewDoc()
		require.Len(t, doc.Children, 1)
		para := doc.Children[0]
		assert.Equal(t, KindParagraph, para.Kind)
		require.Len(t, para.Children, 1)
		assert.True(t, para.Children[0].IsText())
		assert.Equal(t, "", para.Children[0].Text)
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := NewText("a")
		b := NewText("a")
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestNormalize(t *testing.T) {
	t.Run("empty block gets empty text node", func(t *testing.T) {
		para := NewNode(KindParagraph)
		doc := NewNode(KindDoc, para)
		Normalize(doc)
		require.Len(t, para.Children, 1)
		assert.True(t, para.Children[0].IsText())
	})

	t.Run("empty list gets item with paragraph", func(t *testing.T) {
		list := NewNode(KindBulletList)
		doc := NewNode(KindDoc, list)
		Normalize(doc)
		require.Len(t, list.Children, 1)
		item := list.Children[0]
		assert.Equal(t, KindListItem, item.Kind)
		require.Len(t, item.Children, 1)
		assert.Equal(t, KindParagraph, item.Children[0].Kind)
	})

	t.Run("doc ending with table gets trailing paragraph", func(t *testing.T) {
		table := NewNode(KindTable)
		doc := NewNode(KindDoc, NewNode(KindParagraph, NewText("a")), table)
		Normalize(doc)
		last := doc.Children[len(doc.Children)-1]
		assert.Equal(t, KindParagraph, last.Kind)
	})

	t.Run("empty table gets row cell paragraph", func(t *testing.T) {
		table := NewNode(KindTable)
		doc := NewNode(KindDoc, table)
		Normalize(doc)
		require.Len(t, table.Children, 1)
		row := table.Children[0]
		assert.Equal(t, KindTableRow, row.Kind)
		require.Len(t, row.Children, 1)
		assert.Equal(t, KindTableCell, row.Children[0].Kind)
	})
}

func TestMarks(t *testing.T) {
	t.Run("add mark of same kind replaces", func(t *testing.T) {
		n := NewText("hi")
		n.AddMark(Mark{Kind: MarkLink, Attrs: map[string]string{"href": "a"}})
		n.AddMark(Mark{Kind: MarkLink, Attrs: map[string]string{"href": "b"}})
		require.Len(t, n.Marks, 1)
		assert.Equal(t, "b", n.Marks[0].Attrs["href"])
	})

	t.Run("remove mark keeps others", func(t *testing.T) {
		n := NewText("hi", Mark{Kind: MarkBold}, Mark{Kind: MarkItalic})
		n.RemoveMark(MarkBold)
		require.Len(t, n.Marks, 1)
		assert.Equal(t, MarkItalic, n.Marks[0].Kind)
	})

	t.Run("remove last mark nils the slice", func(t *testing.T) {
		n := NewText("hi", Mark{Kind: MarkBold})
		n.RemoveMark(MarkBold)
		assert.Nil(t, n.Marks)
	})

	t.Run("marks equal by kind sequence", func(t *testing.T) {
		assert.True(t, MarksEqual(
			[]Mark{{Kind: MarkBold}, {Kind: MarkItalic}},
			[]Mark{{Kind: MarkBold}, {Kind: MarkItalic}},
		))
		assert.False(t, MarksEqual([]Mark{{Kind: MarkBold}}, nil))
	})
}

func TestClone(t *testing.T) {
	doc := NewDoc(
		NewNode(KindParagraph, NewText("привет", Mark{Kind: MarkBold})),
		NewNode(KindHeading, NewText("title")),
	)
	doc.Children[1].Attrs.Level = 2

	clone := doc.Clone()
	require.Equal(t, doc.ID, clone.ID)
	require.Len(t, clone.Children, 2)
	assert.Equal(t, doc.Children[0].Children[0].ID, clone.Children[0].Children[0].ID)
	assert.Equal(t, 2, clone.Children[1].Attrs.Level)

	// мутация копии не задевает оригинал
	clone.Children[0].Children[0].Text = "x"
	clone.Children[0].Children[0].Marks[0].Kind = MarkItalic
	assert.Equal(t, "привет", doc.Children[0].Children[0].Text)
	assert.Equal(t, MarkBold, doc.Children[0].Children[0].Marks[0].Kind)
}

func TestLength(t *testing.T) {
	// длина считается в рунах, не в байтах
	n := NewText("привет")
	assert.Equal(t, 6, n.Length())
}
