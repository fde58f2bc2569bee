// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidateAssessment validates an Assessment according to catalog rules.
//
// Validation rules:
//   - URL must not be empty
//   - Description must not be empty
//   - Duration must not be negative
//   - AdaptiveSupport and RemoteSupport must be "Yes" or "No"
//
// NOT validated:
//   - TestType (an empty set is valid and matches nothing under a type filter)
func ValidateAssessment(record *Assessment) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidAssessment)
	}

	if strings.TrimSpace(record.URL) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAssessment, ErrEmptyURL)
	}

	if strings.TrimSpace(record.Description) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAssessment, ErrEmptyDescription)
	}

	if record.Duration < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidAssessment, ErrNegativeDuration, record.Duration)
	}

	if err := ValidateSupport(record.AdaptiveSupport); err != nil {
		return fmt.Errorf("%w: adaptive_support: %w", ErrInvalidAssessment, err)
	}

	if err := ValidateSupport(record.RemoteSupport); err != nil {
		return fmt.Errorf("%w: remote_support: %w", ErrInvalidAssessment, err)
	}

	return nil
}

// ValidateSupport validates that a Support has one of the two stored values.
// Matching is exact and case-sensitive.
func ValidateSupport(s Support) error {
	if s != SupportYes && s != SupportNo {
		return fmt.Errorf("%w: %q", ErrInvalidSupport, string(s))
	}
	return nil
}

// ParseSupport converts a raw string into a Support value.
func ParseSupport(raw string) (Support, error) {
	s := Support(raw)
	if err := ValidateSupport(s); err != nil {
		return "", err
	}
	return s, nil
}
