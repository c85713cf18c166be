package budget

import (
	"math"
	"strconv"
	"strings"

	"github.com/thegrantai/hwpxgen/pkg/field"
)

// defaultGovAmounts holds the fallback government amount per category,
// applied when extraction found no amount for a category. The template is
// always fully populated, even for partially specified requests.
var defaultGovAmounts = map[string]int64{
	field.CategoryMaterial:  3_000_000,
	field.CategoryOutsource: 5_000_000,
	field.CategoryMachine:   4_000_000,
	field.CategoryPatent:    1_500_000,
	field.CategoryPersonnel: 6_000_000,
	field.CategoryMarketing: 2_500_000,
	field.CategoryEtc:       1_000_000,
}

// Apply enriches the record with derived budget figures for both stages:
// per-category totals and self-funding splits under the record's region
// policy, grand-total rows, and scaled summary strings. Amounts already in
// the record are reformatted in place; missing amounts take the per-category
// defaults.
func Apply(record field.Record) {
	policy := PolicyFor(strings.TrimSpace(record.Get(field.KeyRegionType)))
	if record.Get(field.KeyRegionType) == "" {
		record.Set(field.KeyRegionType, policy.Name)
	}

	for _, stage := range []int{field.StageOne, field.StageTwo} {
		applyStage(record, stage, policy)
	}

	record.Set(field.KeySummaryBudget, FormatScaled(ParseAmount(record.Get(field.TotalKey(field.StageOne, field.CategoryTotal)))))
	record.Set(field.KeySummaryBudget2, FormatScaled(ParseAmount(record.Get(field.TotalKey(field.StageTwo, field.CategoryTotal)))))
}

func applyStage(record field.Record, stage int, policy RegionPolicy) {
	var sumGov, sumCash, sumInKind, sumTotal int64

	for _, category := range field.Categories {
		gov := ParseAmount(record.Get(field.GovKey(stage, category)))
		if gov == 0 {
			gov = defaultGovAmounts[category]
		}

		total := int64(math.Round(float64(gov) / policy.GovRatio))
		cash := int64(math.Round(float64(total) * policy.CashRatio))
		inKind := int64(math.Round(float64(total) * policy.InKindRatio))

		record.Set(field.GovKey(stage, category), FormatWon(gov))
		record.Set(field.CashKey(stage, category), FormatWon(cash))
		record.Set(field.InKindKey(stage, category), FormatWon(inKind))
		record.Set(field.TotalKey(stage, category), FormatWon(total))

		sumGov += gov
		sumCash += cash
		sumInKind += inKind
		sumTotal += total
	}

	record.Set(field.GovKey(stage, field.CategoryTotal), FormatWon(sumGov))
	record.Set(field.CashKey(stage, field.CategoryTotal), FormatWon(sumCash))
	record.Set(field.InKindKey(stage, field.CategoryTotal), FormatWon(sumInKind))
	record.Set(field.TotalKey(stage, field.CategoryTotal), FormatWon(sumTotal))
}

// ParseAmount reads a won amount from extracted cell text, tolerating comma
// grouping, a trailing 원, and surrounding prose. Returns 0 when no digits
// are present.
func ParseAmount(text string) int64 {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	amount, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return amount
}

// FormatWon renders an amount as a comma-grouped whole-won integer string.
func FormatWon(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	raw := strconv.FormatInt(amount, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, digit := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

// FormatScaled renders a summary amount in the template's scaled style:
// whole millions as "N백만원", whole thousands as "N천원", anything else as
// a comma-grouped "N원".
func FormatScaled(amount int64) string {
	switch {
	case amount == 0:
		return "0원"
	case amount%1_000_000 == 0:
		return FormatWon(amount/1_000_000) + "백만원"
	case amount%1_000 == 0:
		return FormatWon(amount/1_000) + "천원"
	default:
		return FormatWon(amount) + "원"
	}
}
