package evaluate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/poiesic/assessor/core"
)

var (
	// ErrNoCases is returned when a case file holds no cases.
	ErrNoCases = errors.New("no evaluation cases")
	// ErrInvalidCase is returned for a case without a query.
	ErrInvalidCase = errors.New("invalid evaluation case")
)

// Case is one labelled query.
type Case struct {
	Name     string       `json:"name"`
	Query    string       `json:"query"`
	Filters  *CaseFilters `json:"filters,omitempty"`
	Relevant []string     `json:"relevant,omitempty"`
}

// CaseFilters mirrors the request filter shape of the HTTP API.
type CaseFilters struct {
	Duration        *int     `json:"duration,omitempty"`
	AdaptiveSupport *string  `json:"adaptive_support,omitempty"`
	RemoteSupport   *string  `json:"remote_support,omitempty"`
	TestType        []string `json:"test_type,omitempty"`
}

// Labelled reports whether the case has ground truth.
func (c *Case) Labelled() bool {
	return len(c.Relevant) > 0
}

// FilterSpec converts the case filters, validating support values.
func (c *Case) FilterSpec() (*core.FilterSpec, error) {
	if c.Filters == nil {
		return nil, nil
	}
	spec := &core.FilterSpec{
		MaxDuration: c.Filters.Duration,
		TestType:    c.Filters.TestType,
	}
	var err error
	if spec.AdaptiveSupport, err = parseOptionalSupport(c.Filters.AdaptiveSupport); err != nil {
		return nil, fmt.Errorf("adaptive_support: %w", err)
	}
	if spec.RemoteSupport, err = parseOptionalSupport(c.Filters.RemoteSupport); err != nil {
		return nil, fmt.Errorf("remote_support: %w", err)
	}
	return spec, nil
}

func parseOptionalSupport(value *string) (*core.Support, error) {
	if value == nil {
		return nil, nil
	}
	s, err := core.ParseSupport(*value)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadCases reads a JSON array of cases from path.
func LoadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return ParseCases(data)
}

// ParseCases decodes and checks a JSON array of cases. Unnamed cases are
// named by position.
func ParseCases(data []byte) ([]Case, error) {
	var cases []Case
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrParse, err)
	}
	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	for i := range cases {
		c := &cases[i]
		if strings.TrimSpace(c.Query) == "" {
			return nil, fmt.Errorf("%w: case %d has no query", ErrInvalidCase, i)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("case-%d", i+1)
		}
		if _, err := c.FilterSpec(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCase, c.Name, err)
		}
	}
	return cases, nil
}
