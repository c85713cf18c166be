package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// editorNode mirrors the generic JSON document shape produced by the
// rich-text editor: a recursive node with a type tag, optional attributes,
// optional inline marks, and either child nodes or literal text.
type editorNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []editorNode   `json:"content,omitempty"`
	Marks   []editorMark   `json:"marks,omitempty"`
	Text    string         `json:"text,omitempty"`
}

type editorMark struct {
	Type string `json:"type"`
}

// DecodeEditorJSON converts the editor's JSON document into a Tree. Unknown
// node types are descended into rather than rejected, so editor upgrades that
// add wrapper nodes do not break extraction.
func DecodeEditorJSON(data []byte) (*Tree, error) {
	var root editorNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding editor document: %w", err)
	}

	tree := &Tree{}
	appendBlocks(tree, root.Content, false)
	tree.PlainText = plainText(tree)
	return tree, nil
}

// appendBlocks walks a slice of editor nodes and appends the recognized
// block nodes to the tree.
func appendBlocks(tree *Tree, nodes []editorNode, ordered bool) {
	for _, n := range nodes {
		switch n.Type {
		case "heading":
			tree.Nodes = append(tree.Nodes, Node{
				Type:    NodeHeading,
				Heading: &Heading{Level: intAttr(n.Attrs, "level", 1), Text: inlineText(n)},
			})

		case "paragraph":
			text := inlineText(n)
			if strings.TrimSpace(text) == "" {
				continue
			}
			tree.Nodes = append(tree.Nodes, Node{
				Type:      NodeParagraph,
				Paragraph: &Paragraph{Text: text, Bold: allBold(n)},
			})

		case "table":
			tree.Nodes = append(tree.Nodes, Node{Type: NodeTable, Table: decodeTable(n)})

		case "bulletList":
			appendListItems(tree, n.Content, false)

		case "orderedList":
			appendListItems(tree, n.Content, true)

		case "listItem":
			tree.Nodes = append(tree.Nodes, Node{
				Type:     NodeListItem,
				ListItem: &ListItem{Ordered: ordered, Text: blockText(n)},
			})

		default:
			// Wrapper node from a newer editor version: descend.
			appendBlocks(tree, n.Content, ordered)
		}
	}
}

func appendListItems(tree *Tree, items []editorNode, ordered bool) {
	for _, item := range items {
		text := blockText(item)
		if strings.TrimSpace(text) == "" {
			continue
		}
		tree.Nodes = append(tree.Nodes, Node{
			Type:     NodeListItem,
			ListItem: &ListItem{Ordered: ordered, Text: text},
		})
	}
}

func decodeTable(n editorNode) *Table {
	table := &Table{}
	for _, rowNode := range n.Content {
		if rowNode.Type != "tableRow" {
			continue
		}
		var row Row
		for _, cellNode := range rowNode.Content {
			switch cellNode.Type {
			case "tableCell", "tableHeader":
				row.Cells = append(row.Cells, Cell{Text: blockText(cellNode)})
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// inlineText concatenates the text of all descendant text nodes without
// inserting separators; used for single-line nodes.
func inlineText(n editorNode) string {
	var b strings.Builder
	collectText(&b, n, "")
	return b.String()
}

// blockText concatenates descendant text, joining block-level children with
// newlines; used for cells and list items whose content is itself blocks.
func blockText(n editorNode) string {
	var parts []string
	for _, child := range n.Content {
		text := inlineText(child)
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

func collectText(b *strings.Builder, n editorNode, sep string) {
	if n.Type == "text" {
		b.WriteString(n.Text)
		return
	}
	if n.Type == "hardBreak" {
		b.WriteString("\n")
		return
	}
	for i, child := range n.Content {
		if i > 0 && sep != "" {
			b.WriteString(sep)
		}
		collectText(b, child, sep)
	}
}

// allBold reports whether every text node under n carries a bold mark.
// Empty paragraphs are not bold.
func allBold(n editorNode) bool {
	found := false
	bold := true
	var walk func(editorNode)
	walk = func(en editorNode) {
		if en.Type == "text" {
			found = true
			marked := false
			for _, m := range en.Marks {
				if m.Type == "bold" {
					marked = true
				}
			}
			if !marked {
				bold = false
			}
			return
		}
		for _, child := range en.Content {
			walk(child)
		}
	}
	walk(n)
	return found && bold
}

func intAttr(attrs map[string]any, key string, fallback int) int {
	if v, ok := attrs[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return fallback
}

// plainText renders the tree back to a flat text form, used as the fallback
// input when callers only have the tree.
func plainText(t *Tree) string {
	var lines []string
	for _, n := range t.Nodes {
		if n.IsTable() {
			for _, row := range n.Table.Rows {
				var cells []string
				for _, c := range row.Cells {
					cells = append(cells, c.Text)
				}
				lines = append(lines, strings.Join(cells, "\t"))
			}
			continue
		}
		if text := n.Text(); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}
