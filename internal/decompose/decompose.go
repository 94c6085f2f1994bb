// Package decompose maps a natural-language task to the ordered list of
// agent roles that should handle it.
package decompose

import (
	"strings"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Role names produced by the rule table.
const (
	RoleDeveloper = "developer"
	RoleValidator = "validator"
	RoleTester    = "tester"
	RoleAuditor   = "auditor"
)

// Rule maps any of its keywords to a stage sequence.
type Rule struct {
	Name     string
	Keywords []string
	Sequence []string
}

// DefaultRules is the ordered rule table. The first matching rule wins.
var DefaultRules = []Rule{
	{
		Name:     "build",
		Keywords: []string{"build", "create"},
		Sequence: []string{RoleDeveloper, RoleValidator, RoleTester, RoleAuditor},
	},
	{
		Name:     "test",
		Keywords: []string{"test"},
		Sequence: []string{RoleTester, RoleAuditor},
	},
}

// DefaultSequence applies when no rule matches.
var DefaultSequence = []string{RoleDeveloper, RoleValidator}

// Match describes how a task was classified.
type Match struct {
	// Rule is the matched rule name, or "default".
	Rule string
	// Keyword is the keyword that matched, empty for the default.
	Keyword  string
	Sequence models.Sequence
}

// Classify returns the first rule whose keyword occurs in task.
// Matching is a case-insensitive substring test, so "rebuild" matches "build".
func Classify(task string) Match {
	lower := strings.ToLower(task)
	for _, r := range DefaultRules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return Match{Rule: r.Name, Keyword: kw, Sequence: clone(r.Sequence)}
			}
		}
	}
	return Match{Rule: "default", Sequence: clone(DefaultSequence)}
}

// Decompose returns the agent sequence for task. It is pure and never fails.
func Decompose(task string) models.Sequence {
	return Classify(task).Sequence
}

func clone(s []string) models.Sequence {
	out := make(models.Sequence, len(s))
	copy(out, s)
	return out
}
