package notion

import (
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/gt"
)

func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.Heading1Block:
		return b.Heading1.RichText[0].Text.Content
	case *notionapi.Heading2Block:
		return b.Heading2.RichText[0].Text.Content
	case *notionapi.Heading3Block:
		return b.Heading3.RichText[0].Text.Content
	case *notionapi.ParagraphBlock:
		return b.Paragraph.RichText[0].Text.Content
	case *notionapi.BulletedListItemBlock:
		return b.BulletedListItem.RichText[0].Text.Content
	case *notionapi.CodeBlock:
		return b.Code.RichText[0].Text.Content
	}
	return ""
}

func TestMarkdownToBlocks(t *testing.T) {
	t.Run("headings, bullets, code, and paragraphs", func(t *testing.T) {
		body := strings.Join([]string{
			"# Title",
			"",
			"Intro line one",
			"continues here.",
			"",
			"## Section",
			"- first point",
			"* second point",
			"",
			"```go",
			`fmt.Println("hi")`,
			"```",
			"### Details",
			"closing words",
		}, "\n")

		blocks := markdownToBlocks(body)
		gt.Array(t, blocks).Length(8).Required()

		gt.Value(t, blocks[0].GetType()).Equal(notionapi.BlockTypeHeading1)
		gt.Value(t, blockText(blocks[0])).Equal("Title")

		gt.Value(t, blocks[1].GetType()).Equal(notionapi.BlockTypeParagraph)
		gt.Value(t, blockText(blocks[1])).Equal("Intro line one continues here.")

		gt.Value(t, blocks[2].GetType()).Equal(notionapi.BlockTypeHeading2)

		gt.Value(t, blocks[3].GetType()).Equal(notionapi.BlockTypeBulletedListItem)
		gt.Value(t, blockText(blocks[3])).Equal("first point")
		gt.Value(t, blocks[4].GetType()).Equal(notionapi.BlockTypeBulletedListItem)
		gt.Value(t, blockText(blocks[4])).Equal("second point")

		gt.Value(t, blocks[5].GetType()).Equal(notionapi.BlockTypeCode)
		code, ok := blocks[5].(*notionapi.CodeBlock)
		gt.Bool(t, ok).True()
		gt.Value(t, code.Code.Language).Equal("go")
		gt.Value(t, blockText(blocks[5])).Equal(`fmt.Println("hi")`)

		gt.Value(t, blocks[6].GetType()).Equal(notionapi.BlockTypeHeading3)
		gt.Value(t, blocks[7].GetType()).Equal(notionapi.BlockTypeParagraph)
	})

	t.Run("unterminated fence still becomes a code block", func(t *testing.T) {
		blocks := markdownToBlocks("```\nleftover line")
		gt.Array(t, blocks).Length(1).Required()
		gt.Value(t, blocks[0].GetType()).Equal(notionapi.BlockTypeCode)
		gt.Value(t, blockText(blocks[0])).Equal("leftover line")
	})

	t.Run("fence without language falls back to plain text", func(t *testing.T) {
		blocks := markdownToBlocks("```\nx\n```")
		gt.Array(t, blocks).Length(1).Required()
		code, ok := blocks[0].(*notionapi.CodeBlock)
		gt.Bool(t, ok).True()
		gt.Value(t, code.Code.Language).Equal("plain text")
	})

	t.Run("long text is capped at the rich text limit", func(t *testing.T) {
		blocks := markdownToBlocks(strings.Repeat("a", 3000))
		gt.Array(t, blocks).Length(1).Required()
		gt.Number(t, len(blockText(blocks[0]))).Equal(2000)
	})

	t.Run("empty body yields no blocks", func(t *testing.T) {
		gt.Array(t, markdownToBlocks("")).Length(0)
	})
}
