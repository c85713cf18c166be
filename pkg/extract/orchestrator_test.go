package extract

import (
	"testing"

	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/field"
)

func sampleTree() *content.Tree {
	node := func(n content.Node) content.Node { return n }
	table := func(rows ...[]string) content.Node {
		t := &content.Table{}
		for _, cells := range rows {
			var row content.Row
			for _, text := range cells {
				row.Cells = append(row.Cells, content.Cell{Text: text})
			}
			t.Rows = append(t.Rows, row)
		}
		return content.Node{Type: content.NodeTable, Table: t}
	}

	return &content.Tree{Nodes: []content.Node{
		table([]string{"명칭", "스마트 재활 보조기"}, []string{"범주", "바이오·의료"}, []string{"지역", "일반지역"}),
		node(content.Node{Type: content.NodeHeading, Heading: &content.Heading{Level: 2, Text: "1-1. 문제 인식"}}),
		node(content.Node{Type: content.NodeParagraph, Paragraph: &content.Paragraph{Text: "• 고령 재활 환자가 늘고 있다"}}),
		node(content.Node{Type: content.NodeParagraph, Paragraph: &content.Paragraph{Text: "기존 장비는 고가이다"}}),
		node(content.Node{Type: content.NodeHeading, Heading: &content.Heading{Level: 2, Text: "4-1. 팀 구성"}}),
		table(
			[]string{"구분", "직위", "담당업무", "보유역량", "구성상태"},
			[]string{"대표자", "CEO", "사업 총괄", "재활의학 10년", ""},
		),
		table(
			[]string{"비목", "산출근거", "금액"},
			[]string{"재료비", "센서 모듈 30개", "3,000,000"},
		),
		table([]string{"출처를 알 수 없는", "표"}),
	}}
}

func TestExtract_EveryKeyPresent(t *testing.T) {
	record, _ := Extract(sampleTree(), nil)

	for _, key := range field.Keys() {
		if _, ok := record[key]; !ok {
			t.Fatalf("record missing key %q after extraction", key)
		}
	}
}

func TestExtract_MergesTableAndSectionResults(t *testing.T) {
	record, stats := Extract(sampleTree(), nil)

	if got := record.Get(field.KeyItemName); got != "스마트 재활 보조기" {
		t.Errorf("item_name = %q", got)
	}
	if got := record.Get(field.KeyRegionType); got != "일반지역" {
		t.Errorf("region_type = %q", got)
	}
	want := "고령 재활 환자가 늘고 있다\n\n기존 장비는 고가이다"
	if got := record.Get(field.KeyProbNecessity); got != want {
		t.Errorf("prob_necessity = %q, want %q", got, want)
	}
	if got := record.Get(field.TeamKey(1, "position")); got != "CEO" {
		t.Errorf("team_1_position = %q", got)
	}
	if got := record.Get(field.GovKey(field.StageOne, field.CategoryMaterial)); got != "3,000,000" {
		t.Errorf("budget_material_amount = %q", got)
	}

	if stats.Tables != 4 {
		t.Errorf("stats.Tables = %d, want 4", stats.Tables)
	}
	if stats.UnclassifiedTables != 1 {
		t.Errorf("stats.UnclassifiedTables = %d, want 1", stats.UnclassifiedTables)
	}
}

func TestExtract_BackfillsSummaryFromNarrative(t *testing.T) {
	tree := &content.Tree{Nodes: []content.Node{
		{Type: content.NodeHeading, Heading: &content.Heading{Level: 2, Text: "1-1. 문제 인식"}},
		{Type: content.NodeParagraph, Paragraph: &content.Paragraph{Text: "요약 후보 문단"}},
	}}

	record, _ := Extract(tree, nil)

	if got := record.Get(field.KeyItemSummary); got != "요약 후보 문단" {
		t.Errorf("item_summary backfill = %q, want %q", got, "요약 후보 문단")
	}
	if record.Get(field.KeyItemName) == "" {
		t.Error("item_name backfill should use the first line of the tree")
	}
}

func TestExtract_EmptyTreeStillTotal(t *testing.T) {
	record, stats := Extract(&content.Tree{}, nil)

	if len(record) != len(field.Keys()) {
		t.Errorf("record has %d keys, want %d", len(record), len(field.Keys()))
	}
	if stats.Tables != 0 || stats.ClassifiedTables != 0 {
		t.Errorf("unexpected stats for empty tree: %+v", stats)
	}
}
