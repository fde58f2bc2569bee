package recommend

import (
	"fmt"
	"strings"
)

// ScorePolicy decides which scored candidates are eligible for the result list.
type ScorePolicy int

const (
	// ScorePolicyAll ranks every surviving candidate regardless of score sign.
	ScorePolicyAll ScorePolicy = iota
	// ScorePolicyPositive drops candidates scoring zero or below.
	ScorePolicyPositive
)

func (p ScorePolicy) String() string {
	switch p {
	case ScorePolicyAll:
		return "all"
	case ScorePolicyPositive:
		return "positive"
	default:
		return fmt.Sprintf("ScorePolicy(%d)", int(p))
	}
}

// ParseScorePolicy parses "all" or "positive".
func ParseScorePolicy(s string) (ScorePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return ScorePolicyAll, nil
	case "positive":
		return ScorePolicyPositive, nil
	default:
		return ScorePolicyAll, fmt.Errorf("%w: %q", ErrUnknownScorePolicy, s)
	}
}

// admits reports whether a candidate with score may appear in results.
func (p ScorePolicy) admits(score float32) bool {
	if p == ScorePolicyPositive {
		return score > 0
	}
	return true
}
