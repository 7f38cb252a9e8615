package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/aiplan-editor/internal/editor/document"
)

func TestInsertText(t *testing.T) {
	txt := document.NewText("héllo")
	doc := document.NewDoc(document.NewNode(document.KindParagraph, txt))

	tx := NewTransaction()
	tx.Add(Step{Kind: StepInsertText, NodeID: txt.ID, Offset: 2, Text: "XY"})
	Apply(doc, tx)
	assert.Equal(t, "héXYllo", txt.Text)

	t.Run("offset clamped to length", func(t *testing.T) {
		tx := NewTransaction()
		tx.Add(Step{Kind: StepInsertText, NodeID: txt.ID, Offset: 100, Text: "!"})
		Apply(doc, tx)
		assert.Equal(t, "héXYllo!", txt.Text)
	})

	t.Run("missing node is no-op", func(t *testing.T) {
		tx := NewTransaction()
		tx.Add(Step{Kind: StepInsertText, NodeID: "gone", Offset: 0, Text: "!"})
		Apply(doc, tx)
		assert.Equal(t, "héXYllo!", txt.Text)
	})
}

func TestDeleteText(t *testing.T) {
	txt := document.NewText("abcdef")
	doc := document.NewDoc(document.NewNode(document.KindParagraph, txt))

	tx := NewTransaction()
	tx.Add(Step{Kind: StepDeleteText, NodeID: txt.ID, Offset: 1, Count: 2})
	Apply(doc, tx)
	assert.Equal(t, "adef", txt.Text)

	t.Run("count clamped to tail", func(t *testing.T) {
		tx := NewTransaction()
		tx.Add(Step{Kind: StepDeleteText, NodeID: txt.ID, Offset: 2, Count: 100})
		Apply(doc, tx)
		assert.Equal(t, "ad", txt.Text)
	})
}

func TestSplitNode(t *testing.T) {
	t.Run("paragraph splits into two paragraphs", func(t *testing.T) {
		txt := document.NewText("hello world")
		para := document.NewNode(document.KindParagraph, txt)
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSplitNode, BlockID: para.ID, TextNodeID: txt.ID, Offset: 5})
		results := Apply(doc, tx)

		require.Len(t, doc.Children, 2)
		assert.Equal(t, "hello", txt.Text)
		newBlock := doc.Children[1]
		assert.Equal(t, document.KindParagraph, newBlock.Kind)
		require.Len(t, newBlock.Children, 1)
		assert.Equal(t, " world", newBlock.Children[0].Text)
		assert.Equal(t, results[0].NewTextID, newBlock.Children[0].ID)
		// левая часть сохраняет исходный id
		assert.Equal(t, txt.ID, doc.Children[0].Children[0].ID)
	})

	t.Run("heading split demotes new block to paragraph", func(t *testing.T) {
		txt := document.NewText("Заголовок")
		head := document.NewNode(document.KindHeading, txt)
		head.Attrs.Level = 2
		doc := document.NewDoc(head)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSplitNode, BlockID: head.ID, TextNodeID: txt.ID, Offset: 4})
		Apply(doc, tx)

		require.Len(t, doc.Children, 2)
		assert.Equal(t, document.KindHeading, doc.Children[0].Kind)
		assert.Equal(t, 2, doc.Children[0].Attrs.Level)
		assert.Equal(t, "Заго", doc.Children[0].Children[0].Text)
		assert.Equal(t, document.KindParagraph, doc.Children[1].Kind)
		assert.Equal(t, 0, doc.Children[1].Attrs.Level)
		assert.Equal(t, "ловок", doc.Children[1].Children[0].Text)
	})

	t.Run("split at end produces empty second block", func(t *testing.T) {
		txt := document.NewText("abc")
		para := document.NewNode(document.KindParagraph, txt)
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSplitNode, BlockID: para.ID, TextNodeID: txt.ID, Offset: 3})
		results := Apply(doc, tx)

		require.Len(t, doc.Children, 2)
		assert.Equal(t, "abc", doc.Children[0].Children[0].Text)
		assert.Equal(t, "", doc.Children[1].Children[0].Text)
		assert.NotEmpty(t, results[0].NewTextID)
	})

	t.Run("marks inherited by right part", func(t *testing.T) {
		txt := document.NewText("bold", document.Mark{Kind: document.MarkBold})
		para := document.NewNode(document.KindParagraph, txt)
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSplitNode, BlockID: para.ID, TextNodeID: txt.ID, Offset: 2})
		Apply(doc, tx)
		right := doc.Children[1].Children[0]
		assert.True(t, right.HasMark(document.MarkBold))
	})
}

func TestMergeNodes(t *testing.T) {
	t.Run("merge joins text runs with equal marks", func(t *testing.T) {
		t1 := document.NewText("hello")
		t2 := document.NewText(" world")
		p2 := document.NewNode(document.KindParagraph, t2)
		doc := document.NewDoc(document.NewNode(document.KindParagraph, t1), p2)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepMergeNodes, BlockID: p2.ID})
		results := Apply(doc, tx)

		require.Len(t, doc.Children, 1)
		assert.Equal(t, "hello world", t1.Text)
		assert.Equal(t, t1.ID, results[0].JoinNodeID)
		assert.Equal(t, 5, results[0].JoinOffset)
	})

	t.Run("merge keeps runs with different marks separate", func(t *testing.T) {
		t1 := document.NewText("plain")
		t2 := document.NewText("bold", document.Mark{Kind: document.MarkBold})
		p2 := document.NewNode(document.KindParagraph, t2)
		doc := document.NewDoc(document.NewNode(document.KindParagraph, t1), p2)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepMergeNodes, BlockID: p2.ID})
		Apply(doc, tx)

		require.Len(t, doc.Children, 1)
		require.Len(t, doc.Children[0].Children, 2)
		assert.Equal(t, "plain", doc.Children[0].Children[0].Text)
		assert.Equal(t, "bold", doc.Children[0].Children[1].Text)
	})

	t.Run("first child is no-op", func(t *testing.T) {
		p1 := document.NewNode(document.KindParagraph, document.NewText("a"))
		doc := document.NewDoc(p1, document.NewNode(document.KindParagraph, document.NewText("b")))

		tx := NewTransaction()
		tx.Add(Step{Kind: StepMergeNodes, BlockID: p1.ID})
		Apply(doc, tx)
		assert.Len(t, doc.Children, 2)
	})

	t.Run("split then merge restores original text", func(t *testing.T) {
		txt := document.NewText("hello world")
		para := document.NewNode(document.KindParagraph, txt)
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSplitNode, BlockID: para.ID, TextNodeID: txt.ID, Offset: 5})
		Apply(doc, tx)
		require.Len(t, doc.Children, 2)

		tx = NewTransaction()
		tx.Add(Step{Kind: StepMergeNodes, BlockID: doc.Children[1].ID})
		Apply(doc, tx)

		require.Len(t, doc.Children, 1)
		require.Len(t, doc.Children[0].Children, 1)
		assert.Equal(t, "hello world", doc.Children[0].Children[0].Text)
	})
}

func TestStructuralSteps(t *testing.T) {
	t.Run("insert and delete node", func(t *testing.T) {
		doc := document.NewDoc(document.NewNode(document.KindParagraph, document.NewText("a")))
		hr := document.NewNode(document.KindHorizontalRule)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepInsertNode, ParentID: doc.ID, Index: 1, Node: hr})
		Apply(doc, tx)
		// нормализация добавляет параграф после линейки в конце документа
		require.Len(t, doc.Children, 3)
		assert.Equal(t, document.KindHorizontalRule, doc.Children[1].Kind)

		tx = NewTransaction()
		tx.Add(Step{Kind: StepDeleteNode, NodeID: hr.ID})
		Apply(doc, tx)
		assert.Len(t, doc.Children, 2)
	})

	t.Run("replace content", func(t *testing.T) {
		doc := document.NewDoc(document.NewNode(document.KindParagraph, document.NewText("old")))
		tx := &Transaction{AddToHistory: false}
		tx.Add(Step{Kind: StepReplaceContent, Children: []*document.Node{
			document.NewNode(document.KindParagraph, document.NewText("new")),
		}})
		Apply(doc, tx)
		require.Len(t, doc.Children, 1)
		assert.Equal(t, "new", doc.Children[0].Children[0].Text)
	})

	t.Run("wrap in list creates item wrapper", func(t *testing.T) {
		para := document.NewNode(document.KindParagraph, document.NewText("item"))
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepWrapInBlock, BlockID: para.ID, NewKind: document.KindBulletList})
		Apply(doc, tx)

		require.Len(t, doc.Children, 1)
		list := doc.Children[0]
		assert.Equal(t, document.KindBulletList, list.Kind)
		require.Len(t, list.Children, 1)
		assert.Equal(t, document.KindListItem, list.Children[0].Kind)
		assert.Equal(t, para.ID, list.Children[0].Children[0].ID)
	})

	t.Run("wrap in blockquote has no item wrapper", func(t *testing.T) {
		para := document.NewNode(document.KindParagraph, document.NewText("q"))
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepWrapInBlock, BlockID: para.ID, NewKind: document.KindBlockquote})
		Apply(doc, tx)

		quote := doc.Children[0]
		assert.Equal(t, document.KindBlockquote, quote.Kind)
		assert.Equal(t, para.ID, quote.Children[0].ID)
	})

	t.Run("change block type to heading and back", func(t *testing.T) {
		para := document.NewNode(document.KindParagraph, document.NewText("t"))
		doc := document.NewDoc(para)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepChangeBlockType, BlockID: para.ID, NewKind: document.KindHeading, Attrs: &document.Attrs{Level: 3}})
		Apply(doc, tx)
		assert.Equal(t, document.KindHeading, para.Kind)
		assert.Equal(t, 3, para.Attrs.Level)

		tx = NewTransaction()
		tx.Add(Step{Kind: StepChangeBlockType, BlockID: para.ID, NewKind: document.KindParagraph})
		Apply(doc, tx)
		assert.Equal(t, document.KindParagraph, para.Kind)
		assert.Equal(t, 0, para.Attrs.Level)
	})

	t.Run("set node attr", func(t *testing.T) {
		img := document.NewNode(document.KindImage)
		doc := document.NewDoc(document.NewNode(document.KindParagraph, document.NewText("a")), img)
		document.Normalize(doc)

		tx := NewTransaction()
		tx.Add(Step{Kind: StepSetNodeAttr, NodeID: img.ID, AttrKey: "src", AttrValue: "pic.png"})
		tx.Add(Step{Kind: StepSetNodeAttr, NodeID: img.ID, AttrKey: "width", AttrValue: float64(640)})
		Apply(doc, tx)
		assert.Equal(t, "pic.png", img.Attrs.Src)
		assert.Equal(t, 640, img.Attrs.Width)
	})
}
