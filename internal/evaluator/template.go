package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tunesmith/tunesmith/internal/model"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Reserved template tokens. They are substituted before variable tokens so
// concurrent evaluations can name disjoint artifacts and address their
// assigned execution slot.
const (
	// TokenID expands to the evaluation ordinal.
	TokenID = "%%ID%%"
	// TokenSlot expands to the execution slot name handed out by the
	// scheduler.
	TokenSlot = "%%SLOT%%"
)

var tokenPattern = regexp.MustCompile(`%[A-Za-z_][A-Za-z0-9_]*%`)

// Substitute expands every template token in command and verifies that
// nothing is left unresolved. A leftover %name% token means the template
// references a variable the assignment does not carry (a typo, or a
// variable pruned by the branch that produced the assignment); that is a
// setup defect, reported before any process spawns.
func Substitute(command string, ordinal int64, slot string, a model.Assignment) (string, error) {
	out := strings.ReplaceAll(command, TokenID, fmt.Sprintf("%d", ordinal))
	out = strings.ReplaceAll(out, TokenSlot, slot)
	for name, value := range a {
		out = strings.ReplaceAll(out, "%"+name+"%", value)
	}

	if leftover := tokenPattern.FindString(out); leftover != "" {
		return "", tunesmitherrors.NewConfigurationError(
			"commands",
			fmt.Sprintf("unresolved token %s in %q", leftover, command),
			nil,
		)
	}
	return out, nil
}

// Tokens returns the variable names referenced by the command's %name%
// tokens, reserved tokens excluded, in order of first appearance.
func Tokens(command string) []string {
	stripped := strings.ReplaceAll(command, TokenID, "")
	stripped = strings.ReplaceAll(stripped, TokenSlot, "")

	var names []string
	seen := map[string]bool{}
	for _, match := range tokenPattern.FindAllString(stripped, -1) {
		name := strings.Trim(match, "%")
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
