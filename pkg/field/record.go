// Package field defines the flat, fully-keyed record that bridges content
// extraction and template injection. Every enumerable key exists in a new
// Record from the start, so "missing key" is not a representable state and
// consumers never probe for absence.
package field

import "fmt"

// Record maps template placeholder identifiers to their values. Values
// default to the empty string; injection deletes placeholders whose value
// is empty.
type Record map[string]string

// Budget stages. Stage 1 keys carry no tag ("budget_material_amount"),
// stage 2 keys carry "2" ("budget2_material_amount"), matching the
// template's placeholder vocabulary.
const (
	StageOne = 1
	StageTwo = 2
)

// Roster and schedule maxima. Rows beyond the maximum are dropped.
const (
	MaxTeamMembers  = 5
	MaxPartners     = 3
	MaxScheduleRows = 8
)

// Categories enumerates the budget line-item categories in template order.
// CategoryTotal is the grand-total pseudo-category filled from the table's
// totals row or computed by the budget calculator.
var Categories = []string{
	CategoryMaterial,
	CategoryOutsource,
	CategoryMachine,
	CategoryPatent,
	CategoryPersonnel,
	CategoryMarketing,
	CategoryEtc,
}

const (
	CategoryMaterial  = "material"
	CategoryOutsource = "outsource"
	CategoryMachine   = "machine"
	CategoryPatent    = "patent"
	CategoryPersonnel = "personnel"
	CategoryMarketing = "marketing"
	CategoryEtc       = "etc"
	CategoryTotal     = "total"
)

// Identity and overview keys.
const (
	KeyItemName       = "item_name"
	KeyItemCategory   = "item_category"
	KeyItemSummary    = "item_summary"
	KeyItemMotivation = "item_motivation"
	KeyRegionType     = "region_type"
	KeySupportField   = "support_field"
	KeyTechField      = "tech_field"
)

// Narrative section keys, in template order.
const (
	KeyProbNecessity  = "prob_necessity"
	KeyProbMarket     = "prob_market"
	KeySolutionStatus = "solution_status"
	KeySolutionPlan   = "solution_plan"
	KeyGrowthStrategy = "growth_strategy"
	KeyMarketEntry    = "market_entry"
	KeyFundingPlan    = "funding_plan"
	KeyTeamCapability = "team_capability"
)

// Summary keys carrying scaled currency strings ("N백만원"/"N천원") for the
// overview page.
const (
	KeySummaryBudget  = "summary_budget"
	KeySummaryBudget2 = "summary_budget2"
)

// narrativeKeys lists every narrative key for enumeration.
var narrativeKeys = []string{
	KeyProbNecessity,
	KeyProbMarket,
	KeySolutionStatus,
	KeySolutionPlan,
	KeyGrowthStrategy,
	KeyMarketEntry,
	KeyFundingPlan,
	KeyTeamCapability,
}

// overviewKeys lists every identity/overview key for enumeration.
var overviewKeys = []string{
	KeyItemName,
	KeyItemCategory,
	KeyItemSummary,
	KeyItemMotivation,
	KeyRegionType,
	KeySupportField,
	KeyTechField,
	KeySummaryBudget,
	KeySummaryBudget2,
}

// stageTag returns the key infix for a budget stage: "" for stage 1,
// "2" for stage 2.
func stageTag(stage int) string {
	if stage == StageTwo {
		return "2"
	}
	return ""
}

// BasisKey returns the calculation-basis key for a budget category,
// e.g. "budget_material_basis".
func BasisKey(stage int, category string) string {
	return fmt.Sprintf("budget%s_%s_basis", stageTag(stage), category)
}

// GovKey returns the government-share amount key for a budget category,
// e.g. "budget_material_amount".
func GovKey(stage int, category string) string {
	return fmt.Sprintf("budget%s_%s_amount", stageTag(stage), category)
}

// CashKey returns the self-funded cash amount key, e.g. "cash_material_amount".
func CashKey(stage int, category string) string {
	return fmt.Sprintf("cash%s_%s_amount", stageTag(stage), category)
}

// InKindKey returns the self-funded in-kind amount key,
// e.g. "inkind_material_amount".
func InKindKey(stage int, category string) string {
	return fmt.Sprintf("inkind%s_%s_amount", stageTag(stage), category)
}

// TotalKey returns the category total amount key, e.g. "total_material_amount".
func TotalKey(stage int, category string) string {
	return fmt.Sprintf("total%s_%s_amount", stageTag(stage), category)
}

// TeamKey returns a team roster key: part is one of "position", "role",
// "competency", "status". Indices are 1-based.
func TeamKey(index int, part string) string {
	return fmt.Sprintf("team_%d_%s", index, part)
}

// PartnerKey returns a partner roster key: part is one of "name",
// "competency", "plan", "date". Indices are 1-based.
func PartnerKey(index int, part string) string {
	return fmt.Sprintf("partner_%d_%s", index, part)
}

// ScheduleKey returns a schedule key: part is one of "task", "period",
// "detail". Indices are 1-based.
func ScheduleKey(index int, part string) string {
	return fmt.Sprintf("schedule_%d_%s", index, part)
}

// Keys enumerates every key a complete Record contains.
func Keys() []string {
	var keys []string
	keys = append(keys, overviewKeys...)
	keys = append(keys, narrativeKeys...)

	for _, stage := range []int{StageOne, StageTwo} {
		for _, category := range append(append([]string{}, Categories...), CategoryTotal) {
			keys = append(keys,
				BasisKey(stage, category),
				GovKey(stage, category),
				CashKey(stage, category),
				InKindKey(stage, category),
				TotalKey(stage, category),
			)
		}
	}

	for i := 1; i <= MaxTeamMembers; i++ {
		keys = append(keys,
			TeamKey(i, "position"),
			TeamKey(i, "role"),
			TeamKey(i, "competency"),
			TeamKey(i, "status"),
		)
	}
	for i := 1; i <= MaxPartners; i++ {
		keys = append(keys,
			PartnerKey(i, "name"),
			PartnerKey(i, "competency"),
			PartnerKey(i, "plan"),
			PartnerKey(i, "date"),
		)
	}
	for i := 1; i <= MaxScheduleRows; i++ {
		keys = append(keys,
			ScheduleKey(i, "task"),
			ScheduleKey(i, "period"),
			ScheduleKey(i, "detail"),
		)
	}

	return keys
}

// NewRecord returns a Record containing every enumerable key mapped to the
// empty string.
func NewRecord() Record {
	record := make(Record, 256)
	for _, key := range Keys() {
		record[key] = ""
	}
	return record
}

// Set assigns value to key. Setting an unknown key is allowed (templates may
// carry auxiliary placeholders) but extraction only writes enumerated keys.
func (r Record) Set(key, value string) {
	r[key] = value
}

// Get returns the value for key, or "" when the key is unknown.
func (r Record) Get(key string) string {
	return r[key]
}

// AppendParagraph appends text to the value under key, separated by a blank
// line when the key already holds text. Source order is preserved.
func (r Record) AppendParagraph(key, text string) {
	if text == "" {
		return
	}
	if existing := r[key]; existing != "" {
		r[key] = existing + "\n\n" + text
		return
	}
	r[key] = text
}
