package forms

import (
	"sort"
	"strings"
)

// FieldErrors maps a form field name to the messages raised against it.
// The key "__all__" carries errors that are not tied to a single field.
type FieldErrors map[string][]string

const NonFieldErrors = "__all__"

func (fe FieldErrors) Add(field string, messages ...string) {
	fe[field] = append(fe[field], messages...)
}

func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Error renders the errors in field order so the output is stable in logs.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return strings.Join(parts, "; ")
}
