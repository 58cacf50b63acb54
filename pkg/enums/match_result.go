package enums

import "fmt"

// MatchResult records the outcome of a 3-way invoice match.
type MatchResult string

const (
	MatchResultUnmatched  MatchResult = "UNMATCHED"
	MatchResultMatched    MatchResult = "MATCHED"
	MatchResultMismatched MatchResult = "MISMATCHED"
)

var validMatchResults = []MatchResult{
	MatchResultUnmatched,
	MatchResultMatched,
	MatchResultMismatched,
}

// String implements fmt.Stringer.
func (m MatchResult) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MatchResult.
func (m MatchResult) IsValid() bool {
	for _, candidate := range validMatchResults {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMatchResult converts raw input into a MatchResult.
func ParseMatchResult(value string) (MatchResult, error) {
	for _, candidate := range validMatchResults {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid match result %q", value)
}
