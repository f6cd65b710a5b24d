package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// Notion caps rich text content at 2000 characters per element
const maxRichTextLen = 2000

func richText(text string) notionapi.RichText {
	if len(text) > maxRichTextLen {
		text = text[:maxRichTextLen]
	}
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: text},
	}
}

// markdownToBlocks converts a markdown body into Notion blocks. It covers the
// structures the draft generator emits: headings, bullet and numbered lists,
// fenced code, and paragraphs. Inline markup is carried as plain text.
func markdownToBlocks(body string) []notionapi.Block {
	var blocks []notionapi.Block

	lines := strings.Split(body, "\n")
	var paragraph []string
	var codeLines []string
	var codeLang string
	inCode := false

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := strings.Join(paragraph, " ")
		paragraph = nil
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{
				RichText: []notionapi.RichText{richText(text)},
			},
		})
	}

	for _, line := range lines {
		if inCode {
			if strings.HasPrefix(line, "```") {
				inCode = false
				blocks = append(blocks, &notionapi.CodeBlock{
					BasicBlock: notionapi.BasicBlock{
						Object: notionapi.ObjectTypeBlock,
						Type:   notionapi.BlockTypeCode,
					},
					Code: notionapi.Code{
						RichText: []notionapi.RichText{richText(strings.Join(codeLines, "\n"))},
						Language: codeLanguage(codeLang),
					},
				})
				codeLines = nil
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "```"):
			flushParagraph()
			inCode = true
			codeLang = strings.TrimPrefix(trimmed, "```")

		case strings.HasPrefix(trimmed, "### "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading3Block{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeHeading3,
				},
				Heading3: notionapi.Heading{
					RichText: []notionapi.RichText{richText(strings.TrimPrefix(trimmed, "### "))},
				},
			})

		case strings.HasPrefix(trimmed, "## "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading2Block{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeHeading2,
				},
				Heading2: notionapi.Heading{
					RichText: []notionapi.RichText{richText(strings.TrimPrefix(trimmed, "## "))},
				},
			})

		case strings.HasPrefix(trimmed, "# "):
			flushParagraph()
			blocks = append(blocks, &notionapi.Heading1Block{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeHeading1,
				},
				Heading1: notionapi.Heading{
					RichText: []notionapi.RichText{richText(strings.TrimPrefix(trimmed, "# "))},
				},
			})

		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			blocks = append(blocks, &notionapi.BulletedListItemBlock{
				BasicBlock: notionapi.BasicBlock{
					Object: notionapi.ObjectTypeBlock,
					Type:   notionapi.BlockTypeBulletedListItem,
				},
				BulletedListItem: notionapi.ListItem{
					RichText: []notionapi.RichText{richText(trimmed[2:])},
				},
			})

		case trimmed == "":
			flushParagraph()

		default:
			paragraph = append(paragraph, trimmed)
		}
	}

	// Unterminated code fence falls back to a code block as-is
	if inCode && len(codeLines) > 0 {
		blocks = append(blocks, &notionapi.CodeBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeCode,
			},
			Code: notionapi.Code{
				RichText: []notionapi.RichText{richText(strings.Join(codeLines, "\n"))},
				Language: codeLanguage(codeLang),
			},
		})
	}
	flushParagraph()

	return blocks
}

func codeLanguage(lang string) string {
	if lang == "" {
		return "plain text"
	}
	return lang
}
