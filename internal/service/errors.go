package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidTransition is returned when a request status change is not in the
// allowed transition set.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidationError maps field names to what is wrong with them. Validation is
// a pure check returning this value; nothing is written when it is non-empty.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, f := range fields {
		fmt.Fprintf(&b, " %s: %s;", f, e[f])
	}
	return strings.TrimSuffix(b.String(), ";")
}
