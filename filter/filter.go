// Package filter decides whether a catalog record satisfies a request's
// structured constraints, independently of text similarity.
//
// Dimensions combine with logical AND. Within the test type dimension any
// requested type is sufficient (logical OR), compared case-insensitively.
package filter

import (
	"golang.org/x/text/cases"

	"github.com/poiesic/assessor/core"
)

// Dimension identifies one filterable attribute of a record.
type Dimension int

const (
	// DimensionNone is reported when a record passes every dimension.
	DimensionNone Dimension = iota
	DimensionDuration
	DimensionAdaptiveSupport
	DimensionRemoteSupport
	DimensionTestType
)

func (d Dimension) String() string {
	switch d {
	case DimensionNone:
		return "none"
	case DimensionDuration:
		return "duration"
	case DimensionAdaptiveSupport:
		return "adaptive_support"
	case DimensionRemoteSupport:
		return "remote_support"
	case DimensionTestType:
		return "test_type"
	default:
		return "unknown"
	}
}

// Matches reports whether record satisfies every provided dimension of spec.
// A nil spec matches every record.
func Matches(record *core.Assessment, spec *core.FilterSpec) bool {
	ok, _ := Explain(record, spec)
	return ok
}

// Explain is Matches that also returns the first dimension that rejected the
// record, or DimensionNone when it passed.
func Explain(record *core.Assessment, spec *core.FilterSpec) (bool, Dimension) {
	if spec == nil {
		return true, DimensionNone
	}
	if !durationMatches(record, spec.MaxDuration) {
		return false, DimensionDuration
	}
	if !supportMatches(record.AdaptiveSupport, spec.AdaptiveSupport) {
		return false, DimensionAdaptiveSupport
	}
	if !supportMatches(record.RemoteSupport, spec.RemoteSupport) {
		return false, DimensionRemoteSupport
	}
	if !testTypeMatches(record.TestType, spec.TestType) {
		return false, DimensionTestType
	}
	return true, DimensionNone
}

func durationMatches(record *core.Assessment, maxDuration *int) bool {
	return maxDuration == nil || record.Duration <= *maxDuration
}

// supportMatches compares the stored enum exactly; "yes" does not match "Yes".
func supportMatches(value core.Support, want *core.Support) bool {
	return want == nil || value == *want
}

func testTypeMatches(have, want []string) bool {
	if len(want) == 0 {
		return true
	}

	// cases.Caser is stateful, so each call gets its own
	fold := cases.Fold()
	wanted := make(map[string]struct{}, len(want))
	for _, w := range want {
		wanted[fold.String(w)] = struct{}{}
	}
	for _, h := range have {
		if _, ok := wanted[fold.String(h)]; ok {
			return true
		}
	}
	return false
}
