package classify

import (
	"strings"

	"github.com/thegrantai/hwpxgen/pkg/content"
	"github.com/thegrantai/hwpxgen/pkg/field"
)

// overviewLabels maps overview-table row labels to record keys, in match
// order. Labels are matched as substrings of the cell text so that header
// variants like "아이템 명칭" and "사업 아이템의 명칭" both resolve.
var overviewLabels = []struct {
	keyword string
	key     string
}{
	{"명칭", field.KeyItemName},
	{"범주", field.KeyItemCategory},
	{"지원분야", field.KeySupportField},
	{"기술분야", field.KeyTechField},
	{"지역", field.KeyRegionType},
	{"개요", field.KeyItemSummary},
	{"요약", field.KeyItemSummary},
	{"동기", field.KeyItemMotivation},
	{"배경", field.KeyItemMotivation},
}

// budgetCategories maps budget-row labels to category keys, in match order.
// First match wins; unmatched labels fall back to the 기타 category.
var budgetCategories = []struct {
	keyword  string
	category string
}{
	{"재료", field.CategoryMaterial},
	{"외주", field.CategoryOutsource},
	{"기계", field.CategoryMachine},
	{"장비", field.CategoryMachine},
	{"특허", field.CategoryPatent},
	{"무형", field.CategoryPatent},
	{"인건", field.CategoryPersonnel},
	{"광고", field.CategoryMarketing},
	{"홍보", field.CategoryMarketing},
	{"마케팅", field.CategoryMarketing},
	{"기타", field.CategoryEtc},
}

// ExtractOverview reads label/value cell pairs from the overview table.
// Each row is scanned left to right; a cell matching a known label takes
// the cell to its right as the value. Already-populated keys are kept.
func ExtractOverview(table *content.Table, record field.Record) {
	for _, row := range table.Rows {
		for i := 0; i+1 < len(row.Cells); i++ {
			label := row.CellText(i)
			if label == "" {
				continue
			}
			key, ok := overviewKey(label)
			if !ok {
				continue
			}
			value := row.CellText(i + 1)
			if value != "" && record.Get(key) == "" {
				record.Set(key, value)
				i++ // value cell consumed
			}
		}
	}
}

func overviewKey(label string) (string, bool) {
	for _, entry := range overviewLabels {
		if strings.Contains(label, entry.keyword) {
			return entry.key, true
		}
	}
	return "", false
}

// ExtractBudget maps budget-table rows onto one stage's line-item keys.
// Column layout is fixed: category label, calculation basis, government
// amount. A label containing 합계 or 총 is the totals row and lands on the
// stage's grand-total amount key instead of a category.
func ExtractBudget(table *content.Table, stage int, record field.Record) {
	for _, row := range table.Rows {
		label := row.CellText(0)
		if label == "" || row.IsEmpty() {
			continue
		}
		// Header row carries the column titles.
		if strings.Contains(label, "비목") {
			continue
		}

		if strings.Contains(label, "합계") || strings.Contains(label, "총") {
			if amount := row.CellText(2); amount != "" {
				record.Set(field.GovKey(stage, field.CategoryTotal), amount)
			}
			continue
		}

		category := budgetCategory(label)
		if record.Get(field.GovKey(stage, category)) != "" {
			// A later row for an already-filled category (several rows can
			// fall back to 기타) does not overwrite the first.
			continue
		}
		record.Set(field.BasisKey(stage, category), row.CellText(1))
		record.Set(field.GovKey(stage, category), row.CellText(2))
	}
}

func budgetCategory(label string) string {
	for _, entry := range budgetCategories {
		if strings.Contains(label, entry.keyword) {
			return entry.category
		}
	}
	return field.CategoryEtc
}

// ExtractTeam maps team-roster rows onto sequential team keys. Column
// layout is fixed: division, position, role, competency, status. Header and
// fully empty rows are skipped; rows beyond the maximum are dropped.
func ExtractTeam(table *content.Table, record field.Record) {
	index := 1
	for _, row := range table.Rows {
		if row.IsEmpty() || isHeaderRow(row, "직위", "담당업무", "구성상태") {
			continue
		}
		if index > field.MaxTeamMembers {
			break
		}
		record.Set(field.TeamKey(index, "position"), row.CellText(1))
		record.Set(field.TeamKey(index, "role"), row.CellText(2))
		record.Set(field.TeamKey(index, "competency"), row.CellText(3))
		record.Set(field.TeamKey(index, "status"), row.CellText(4))
		index++
	}
}

// ExtractPartner maps partner-roster rows onto sequential partner keys.
// Column layout is fixed: division, partner name, competency, collaboration
// plan, collaboration date.
func ExtractPartner(table *content.Table, record field.Record) {
	index := 1
	for _, row := range table.Rows {
		if row.IsEmpty() || isHeaderRow(row, "파트너명", "협업", "보유역량") {
			continue
		}
		if index > field.MaxPartners {
			break
		}
		record.Set(field.PartnerKey(index, "name"), row.CellText(1))
		record.Set(field.PartnerKey(index, "competency"), row.CellText(2))
		record.Set(field.PartnerKey(index, "plan"), row.CellText(3))
		record.Set(field.PartnerKey(index, "date"), row.CellText(4))
		index++
	}
}

// ExtractSchedule maps schedule rows onto sequential schedule keys: task,
// period, detail. Tables with a leading ordinal column shift right by one.
func ExtractSchedule(table *content.Table, record field.Record) {
	index := 1
	for _, row := range table.Rows {
		if row.IsEmpty() || isHeaderRow(row, "추진내용", "추진기간", "세부내용") {
			continue
		}
		if index > field.MaxScheduleRows {
			break
		}
		offset := 0
		if len(row.Cells) >= 4 {
			offset = 1
		}
		record.Set(field.ScheduleKey(index, "task"), row.CellText(offset))
		record.Set(field.ScheduleKey(index, "period"), row.CellText(offset+1))
		record.Set(field.ScheduleKey(index, "detail"), row.CellText(offset+2))
		index++
	}
}

// isHeaderRow reports whether any cell in the row carries one of the
// literal column-title labels.
func isHeaderRow(row content.Row, labels ...string) bool {
	for _, cell := range row.Cells {
		for _, label := range labels {
			if strings.Contains(cell.Text, label) {
				return true
			}
		}
	}
	return false
}
