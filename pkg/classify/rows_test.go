package classify

import (
	"fmt"
	"testing"

	"github.com/thegrantai/hwpxgen/pkg/field"
)

func TestExtractTeam_RowsToSequentialKeys(t *testing.T) {
	table := tableOf(
		[]string{"구분", "직위", "담당업무", "보유역량", "구성상태"},
		[]string{"대표자", "CEO", "사업 총괄", "10년 경력", ""},
		[]string{"", "", "", "", ""},
		[]string{"직원1", "개발팀장", "백엔드 개발", "서버 개발 7년", "채용 완료"},
	)
	record := field.NewRecord()

	ExtractTeam(table, record)

	if got := record.Get(field.TeamKey(1, "position")); got != "CEO" {
		t.Errorf("team_1_position = %q, want %q", got, "CEO")
	}
	if got := record.Get(field.TeamKey(1, "role")); got != "사업 총괄" {
		t.Errorf("team_1_role = %q, want %q", got, "사업 총괄")
	}
	if got := record.Get(field.TeamKey(2, "position")); got != "개발팀장" {
		t.Errorf("team_2_position = %q, want %q", got, "개발팀장")
	}
	if got := record.Get(field.TeamKey(2, "status")); got != "채용 완료" {
		t.Errorf("team_2_status = %q, want %q", got, "채용 완료")
	}
	if got := record.Get(field.TeamKey(3, "position")); got != "" {
		t.Errorf("team_3_position = %q, want empty", got)
	}
}

func TestExtractTeam_DropsRowsBeyondMaximum(t *testing.T) {
	table := tableOf([]string{"구분", "직위", "담당업무", "보유역량", "구성상태"})
	for i := 0; i < field.MaxTeamMembers+3; i++ {
		table.Rows = append(table.Rows, tableOf([]string{
			"직원", fmt.Sprintf("팀원%d", i+1), "업무", "역량", "예정",
		}).Rows[0])
	}
	record := field.NewRecord()

	ExtractTeam(table, record)

	if got := record.Get(field.TeamKey(field.MaxTeamMembers, "position")); got == "" {
		t.Errorf("team_%d_position should be filled", field.MaxTeamMembers)
	}
	if _, ok := record[field.TeamKey(field.MaxTeamMembers+1, "position")]; ok {
		t.Errorf("keys beyond the maximum must not be created")
	}
}

func TestExtractPartner_RowsToSequentialKeys(t *testing.T) {
	table := tableOf(
		[]string{"구분", "파트너명", "보유역량", "협업방안", "협업시기"},
		[]string{"제조", "한빛정밀", "시제품 금형 제작", "금형 외주 생산", "2026.05"},
	)
	record := field.NewRecord()

	ExtractPartner(table, record)

	if got := record.Get(field.PartnerKey(1, "name")); got != "한빛정밀" {
		t.Errorf("partner_1_name = %q, want %q", got, "한빛정밀")
	}
	if got := record.Get(field.PartnerKey(1, "plan")); got != "금형 외주 생산" {
		t.Errorf("partner_1_plan = %q, want %q", got, "금형 외주 생산")
	}
	if got := record.Get(field.PartnerKey(1, "date")); got != "2026.05" {
		t.Errorf("partner_1_date = %q, want %q", got, "2026.05")
	}
}

func TestExtractBudget_CategoryRows(t *testing.T) {
	table := tableOf(
		[]string{"비목", "산출근거", "금액"},
		[]string{"재료비", "시제품 부품 50종", "3,000,000"},
		[]string{"외주용역비", "금형 제작 외주", "5,000,000"},
		[]string{"무형자산 취득비", "특허 출원 2건", "1,500,000"},
		[]string{"합계", "", "9,500,000"},
	)
	record := field.NewRecord()

	ExtractBudget(table, field.StageOne, record)

	if got := record.Get(field.GovKey(field.StageOne, field.CategoryMaterial)); got != "3,000,000" {
		t.Errorf("budget_material_amount = %q, want %q", got, "3,000,000")
	}
	if got := record.Get(field.BasisKey(field.StageOne, field.CategoryMaterial)); got != "시제품 부품 50종" {
		t.Errorf("budget_material_basis = %q", got)
	}
	if got := record.Get(field.GovKey(field.StageOne, field.CategoryOutsource)); got != "5,000,000" {
		t.Errorf("budget_outsource_amount = %q, want %q", got, "5,000,000")
	}
	// 무형자산 maps onto the patent category.
	if got := record.Get(field.GovKey(field.StageOne, field.CategoryPatent)); got != "1,500,000" {
		t.Errorf("budget_patent_amount = %q, want %q", got, "1,500,000")
	}
	// Totals row lands on the grand-total amount key, not a category.
	if got := record.Get(field.GovKey(field.StageOne, field.CategoryTotal)); got != "9,500,000" {
		t.Errorf("budget_total_amount = %q, want %q", got, "9,500,000")
	}
}

func TestExtractBudget_UnknownLabelFallsBackToEtc(t *testing.T) {
	table := tableOf(
		[]string{"비목", "산출근거", "금액"},
		[]string{"회의비", "월 2회 자문회의", "800,000"},
	)
	record := field.NewRecord()

	ExtractBudget(table, field.StageOne, record)

	if got := record.Get(field.GovKey(field.StageOne, field.CategoryEtc)); got != "800,000" {
		t.Errorf("budget_etc_amount = %q, want %q", got, "800,000")
	}
}

func TestExtractBudget_StageTwoKeys(t *testing.T) {
	table := tableOf(
		[]string{"비목", "산출근거", "금액"},
		[]string{"인건비", "개발자 2인 6개월", "12,000,000"},
	)
	record := field.NewRecord()

	ExtractBudget(table, field.StageTwo, record)

	if got := record.Get(field.GovKey(field.StageTwo, field.CategoryPersonnel)); got != "12,000,000" {
		t.Errorf("budget2_personnel_amount = %q, want %q", got, "12,000,000")
	}
	if got := record.Get(field.GovKey(field.StageOne, field.CategoryPersonnel)); got != "" {
		t.Errorf("stage 1 key touched by stage 2 extraction: %q", got)
	}
}

func TestExtractOverview_LabelValuePairs(t *testing.T) {
	table := tableOf(
		[]string{"명칭", "AI 사업계획서 서비스", "범주", "지식서비스"},
		[]string{"지역", "수도권"},
		[]string{"아이템 개요", "생성형 AI로 사업계획서 초안을 작성한다"},
	)
	record := field.NewRecord()

	ExtractOverview(table, record)

	if got := record.Get(field.KeyItemName); got != "AI 사업계획서 서비스" {
		t.Errorf("item_name = %q", got)
	}
	if got := record.Get(field.KeyItemCategory); got != "지식서비스" {
		t.Errorf("item_category = %q", got)
	}
	if got := record.Get(field.KeyRegionType); got != "수도권" {
		t.Errorf("region_type = %q", got)
	}
	if got := record.Get(field.KeyItemSummary); got != "생성형 AI로 사업계획서 초안을 작성한다" {
		t.Errorf("item_summary = %q", got)
	}
}

func TestExtractSchedule_WithAndWithoutOrdinalColumn(t *testing.T) {
	withOrdinal := tableOf(
		[]string{"순번", "추진내용", "추진기간", "세부내용"},
		[]string{"1", "시제품 제작", "2026.03 ~ 2026.05", "금형 및 조립"},
	)
	record := field.NewRecord()
	ExtractSchedule(withOrdinal, record)

	if got := record.Get(field.ScheduleKey(1, "task")); got != "시제품 제작" {
		t.Errorf("schedule_1_task = %q, want %q", got, "시제품 제작")
	}
	if got := record.Get(field.ScheduleKey(1, "period")); got != "2026.03 ~ 2026.05" {
		t.Errorf("schedule_1_period = %q", got)
	}

	bare := tableOf(
		[]string{"추진내용", "추진기간", "세부내용"},
		[]string{"인증 취득", "2026.06", "KC 인증"},
	)
	record = field.NewRecord()
	ExtractSchedule(bare, record)

	if got := record.Get(field.ScheduleKey(1, "task")); got != "인증 취득" {
		t.Errorf("schedule_1_task without ordinal column = %q", got)
	}
}
