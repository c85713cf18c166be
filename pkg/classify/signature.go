// Package classify recognizes table shapes in editor content by keyword
// signature and maps their rows onto record keys. Signatures are data, not
// control flow: the built-in set mirrors the grant template family and can
// be overridden from a YAML file.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thegrantai/hwpxgen/pkg/content"
)

// Role names one recognizable table shape.
type Role string

const (
	RoleOverview     Role = "overview"
	RoleBudgetStage1 Role = "budget_stage1"
	RoleBudgetStage2 Role = "budget_stage2"
	RoleTeam         Role = "team"
	RolePartner      Role = "partner"
	RoleSchedule     Role = "schedule"
)

// Signature is the keyword predicate for one table role, tested against the
// whitespace-stripped concatenation of all cell text in a table.
type Signature struct {
	Role Role `yaml:"role"`

	// RequireAll keywords must all be present.
	RequireAll []string `yaml:"require_all,omitempty"`

	// RequireAny needs at least one present keyword (ignored when empty).
	RequireAny []string `yaml:"require_any,omitempty"`

	// Exclude keywords must all be absent.
	Exclude []string `yaml:"exclude,omitempty"`
}

// Matches tests the signature against a table's joined text.
func (s Signature) Matches(joined string) bool {
	for _, keyword := range s.RequireAll {
		if !strings.Contains(joined, keyword) {
			return false
		}
	}
	if len(s.RequireAny) > 0 {
		found := false
		for _, keyword := range s.RequireAny {
			if strings.Contains(joined, keyword) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, keyword := range s.Exclude {
		if strings.Contains(joined, keyword) {
			return false
		}
	}
	return true
}

// DefaultSignatures is the built-in signature set, in precedence order.
// Order is significant: the stage-1 budget signature precedes stage 2 so an
// unmarked budget table lands on stage 1 first; the team signature excludes
// the partner table's 파트너명 marker.
func DefaultSignatures() []Signature {
	return []Signature{
		{
			Role:       RoleOverview,
			RequireAll: []string{"명칭", "범주"},
		},
		{
			Role:       RoleBudgetStage1,
			RequireAny: []string{"비목", "산출근거"},
			Exclude:    []string{"2단계"},
		},
		{
			Role:       RoleBudgetStage2,
			RequireAny: []string{"비목", "산출근거"},
		},
		{
			Role:       RoleTeam,
			RequireAll: []string{"직위"},
			RequireAny: []string{"구성상태", "담당업무"},
			Exclude:    []string{"파트너명"},
		},
		{
			Role:       RolePartner,
			RequireAll: []string{"파트너명"},
		},
		{
			Role:       RoleSchedule,
			RequireAll: []string{"추진기간"},
		},
	}
}

// LoadSignatures reads a signature list from a YAML file, replacing the
// built-in set. The file is a sequence of signature mappings.
func LoadSignatures(path string) ([]Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signature file %s: %w", path, err)
	}

	var signatures []Signature
	if err := yaml.Unmarshal(data, &signatures); err != nil {
		return nil, fmt.Errorf("parsing signature file %s: %w", path, err)
	}

	for i, sig := range signatures {
		if sig.Role == "" {
			return nil, fmt.Errorf("signature %d in %s has no role", i, path)
		}
		if len(sig.RequireAll) == 0 && len(sig.RequireAny) == 0 {
			return nil, fmt.Errorf("signature %d (%s) in %s has no required keywords", i, sig.Role, path)
		}
	}
	return signatures, nil
}

// Classify assigns tables to roles. For each table in document order, the
// first matching signature whose role is still unassigned wins; a table
// serves at most one role. Tables matching nothing are skipped; callers
// treat the result as best-effort, not a validated parse.
func Classify(tables []*content.Table, signatures []Signature) map[Role]*content.Table {
	assigned := make(map[Role]*content.Table)

	for _, table := range tables {
		joined := table.JoinedText()
		for _, sig := range signatures {
			if _, taken := assigned[sig.Role]; taken {
				continue
			}
			if sig.Matches(joined) {
				assigned[sig.Role] = table
				break
			}
		}
	}
	return assigned
}
