package cache

import (
	"strconv"
	"strings"

	"tournament-tracker/internal/domain"
)

// Key derives the canonical signature for one engine request. The fresh flag
// is deliberately absent: it controls cache bypass, not request identity.
func Key(op string, scope domain.Scope, limit int, onlyCustom bool) string {
	return strings.Join([]string{
		op,
		scope.Canonical(),
		strconv.Itoa(limit),
		strconv.FormatBool(onlyCustom),
	}, "|")
}
