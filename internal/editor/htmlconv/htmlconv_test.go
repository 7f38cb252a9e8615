package htmlconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

func TestParseHTML(t *testing.T) {
	t.Run("paragraph with nested marks", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<p>plain <strong>bold <em>both</em></strong></p>`))
		require.NoError(t, err)
		require.Len(t, doc.Children, 1)
		para := doc.Children[0]
		require.Len(t, para.Children, 3)
		assert.Equal(t, "plain ", para.Children[0].Text)
		assert.Nil(t, para.Children[0].Marks)
		assert.True(t, para.Children[1].HasMark(document.MarkBold))
		assert.False(t, para.Children[1].HasMark(document.MarkItalic))
		assert.True(t, para.Children[2].HasMark(document.MarkBold))
		assert.True(t, para.Children[2].HasMark(document.MarkItalic))
	})

	t.Run("script is sanitized away", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<p>safe</p><script>alert(1)</script>`))
		require.NoError(t, err)
		require.Len(t, doc.Children, 1)
		assert.Equal(t, "safe", doc.Children[0].Children[0].Text)
	})

	t.Run("link href", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<p><a href="https://example.com/x">link</a></p>`))
		require.NoError(t, err)
		run := doc.Children[0].Children[0]
		require.Len(t, run.Marks, 1)
		assert.Equal(t, document.MarkLink, run.Marks[0].Kind)
		assert.Equal(t, "https://example.com/x", run.Marks[0].Attrs["href"])
	})

	t.Run("javascript url stripped by policy", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<p><a href="javascript:alert(1)">x</a></p>`))
		require.NoError(t, err)
		run := doc.Children[0].Children[0]
		for _, m := range run.Marks {
			if m.Kind == document.MarkLink {
				assert.NotContains(t, m.Attrs["href"], "javascript")
			}
		}
	})

	t.Run("lists", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<ol start="3"><li><p>a</p></li><li>b</li></ol>`))
		require.NoError(t, err)
		list := doc.Children[0]
		assert.Equal(t, document.KindOrderedList, list.Kind)
		assert.Equal(t, 3, list.Attrs.Start)
		require.Len(t, list.Children, 2)
		// li без <p> оборачивается в параграф
		item := list.Children[1]
		require.Len(t, item.Children, 1)
		assert.Equal(t, document.KindParagraph, item.Children[0].Kind)
		assert.Equal(t, "b", item.Children[0].Children[0].Text)
	})

	t.Run("table with header cell", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(
			`<table><tr><th colspan="2"><p>h</p></th></tr><tr><td><p>v</p></td></tr></table>`))
		require.NoError(t, err)
		table := doc.Children[0]
		require.Equal(t, document.KindTable, table.Kind)
		require.Len(t, table.Children, 2)
		cell := table.Children[0].Children[0]
		assert.True(t, cell.Attrs.Header)
		assert.Equal(t, 2, cell.Attrs.ColSpan)
	})

	t.Run("heading levels", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<h3>title</h3>`))
		require.NoError(t, err)
		assert.Equal(t, document.KindHeading, doc.Children[0].Kind)
		assert.Equal(t, 3, doc.Children[0].Attrs.Level)
	})

	t.Run("code block language", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(`<pre><code class="language-go">x := 1</code></pre>`))
		require.NoError(t, err)
		code := doc.Children[0]
		assert.Equal(t, document.KindCodeBlock, code.Kind)
		assert.Equal(t, "go", code.Attrs.Language)
		assert.Equal(t, "x := 1", code.Children[0].Text)
	})

	t.Run("empty input normalized to minimal doc", func(t *testing.T) {
		doc, err := ParseHTML(strings.NewReader(""))
		require.NoError(t, err)
		require.Len(t, doc.Children, 1)
		assert.Equal(t, document.KindParagraph, doc.Children[0].Kind)
	})
}

func TestSerializeHTML(t *testing.T) {
	t.Run("escapes text content", func(t *testing.T) {
		doc := document.NewDoc(document.NewNode(document.KindParagraph,
			document.NewText(`<script>&`)))
		got := SerializeHTML(doc)
		assert.NotContains(t, got, "<script>")
		assert.Contains(t, got, "&lt;script&gt;")
	})

	t.Run("marks become tags", func(t *testing.T) {
		doc := document.NewDoc(document.NewNode(document.KindParagraph,
			document.NewText("x",
				document.Mark{Kind: document.MarkBold},
				document.Mark{Kind: document.MarkItalic})))
		assert.Equal(t, "<p><strong><em>x</em></strong></p>", SerializeHTML(doc))
	})

	t.Run("structural round trip", func(t *testing.T) {
		head := document.NewNode(document.KindHeading, document.NewText("Заголовок"))
		head.Attrs.Level = 2
		list := document.NewNode(document.KindBulletList,
			document.NewNode(document.KindListItem,
				document.NewNode(document.KindParagraph,
					document.NewText("пункт ", document.Mark{Kind: document.MarkBold}),
					document.NewText("обычный"))))
		src := document.NewDoc(head, list)

		parsed, err := ParseHTML(strings.NewReader(SerializeHTML(src)))
		require.NoError(t, err)

		require.Len(t, parsed.Children, 2)
		assert.Equal(t, document.KindHeading, parsed.Children[0].Kind)
		assert.Equal(t, 2, parsed.Children[0].Attrs.Level)
		assert.Equal(t, "Заголовок", parsed.Children[0].Children[0].Text)

		item := parsed.Children[1].Children[0]
		para := item.Children[0]
		require.Len(t, para.Children, 2)
		assert.True(t, para.Children[0].HasMark(document.MarkBold))
		assert.Equal(t, "пункт ", para.Children[0].Text)
		assert.Equal(t, "обычный", para.Children[1].Text)
	})
}
