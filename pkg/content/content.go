// Package content defines the semantic model of editor-authored document
// content: headings, paragraphs, tables, and list items. It is pure data
// with traversal helpers; extraction logic lives elsewhere.
package content

import "strings"

// NodeType discriminates the kinds of content nodes.
type NodeType string

const (
	NodeHeading   NodeType = "heading"
	NodeParagraph NodeType = "paragraph"
	NodeTable     NodeType = "table"
	NodeListItem  NodeType = "list_item"
)

// Node is one block of editor content. Exactly one of the pointer fields is
// non-nil, matching Type.
type Node struct {
	Type      NodeType   `json:"type"`
	Heading   *Heading   `json:"heading,omitempty"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
	ListItem  *ListItem  `json:"list_item,omitempty"`
}

// Heading is a section header with an outline level (1 = top).
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Paragraph is a run of prose. Bold marks the whole paragraph as emphasized;
// the extractor treats bold paragraphs as header candidates.
type Paragraph struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// ListItem is one bullet or numbered item.
type ListItem struct {
	Ordered bool   `json:"ordered,omitempty"`
	Text    string `json:"text"`
}

// Table is a grid of rows. Header rows are not distinguished structurally;
// classifiers recognize them by their text.
type Table struct {
	Rows []Row `json:"rows"`
}

// Row is an ordered sequence of cells.
type Row struct {
	Cells []Cell `json:"cells"`
}

// Cell holds the flattened text of one table cell.
type Cell struct {
	Text string `json:"text"`
}

// Tree is the root of editor content handed to field extraction, together
// with the editor's plain-text rendering as a fallback.
type Tree struct {
	Nodes     []Node `json:"nodes"`
	PlainText string `json:"plain_text,omitempty"`
}

// Text returns the textual content of a non-table node, or "" for tables
// and malformed nodes.
func (n Node) Text() string {
	switch n.Type {
	case NodeHeading:
		if n.Heading != nil {
			return n.Heading.Text
		}
	case NodeParagraph:
		if n.Paragraph != nil {
			return n.Paragraph.Text
		}
	case NodeListItem:
		if n.ListItem != nil {
			return n.ListItem.Text
		}
	}
	return ""
}

// IsTable reports whether the node is a well-formed table.
func (n Node) IsTable() bool {
	return n.Type == NodeTable && n.Table != nil
}

// Tables returns all tables in the tree in document order.
func (t *Tree) Tables() []*Table {
	var tables []*Table
	for i := range t.Nodes {
		if t.Nodes[i].IsTable() {
			tables = append(tables, t.Nodes[i].Table)
		}
	}
	return tables
}

// JoinedText returns the concatenation of all cell text in the table with
// all whitespace removed. Classifiers match keyword signatures against this
// form so that cell boundaries and spacing variations cannot break a match.
func (t *Table) JoinedText() string {
	var b strings.Builder
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			for _, r := range cell.Text {
				switch r {
				case ' ', '\t', '\n', '\r', ' ', '　':
				default:
					b.WriteRune(r)
				}
			}
		}
	}
	return b.String()
}

// CellText returns the trimmed text of the i-th cell, or "" when the row is
// too short. Row shapes vary between templates, so positional access must
// never panic.
func (r Row) CellText(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i].Text)
}

// IsEmpty reports whether every cell in the row is blank.
func (r Row) IsEmpty() bool {
	for _, cell := range r.Cells {
		if strings.TrimSpace(cell.Text) != "" {
			return false
		}
	}
	return true
}
