package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey is the case- and spacing-insensitive form of a display name used to
// detect duplicates. Casers are stateful, so one is built per call.
func NameKey(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
