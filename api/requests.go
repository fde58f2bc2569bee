package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/poiesic/assessor/core"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Query   string         `json:"query" validate:"required,max=10000"`
	Filters *FilterRequest `json:"filters,omitempty" validate:"omitempty"`
}

// FilterRequest carries the optional filters. Duration is a maximum in minutes.
type FilterRequest struct {
	Duration        *int     `json:"duration,omitempty" validate:"omitempty,min=0"`
	AdaptiveSupport *string  `json:"adaptive_support,omitempty" validate:"omitempty,oneof=Yes No"`
	RemoteSupport   *string  `json:"remote_support,omitempty" validate:"omitempty,oneof=Yes No"`
	TestType        []string `json:"test_type,omitempty" validate:"omitempty,dive,required"`
}

// Validate checks field constraints and returns a readable error.
func (r *RecommendRequest) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "RecommendRequest.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// FilterSpec converts the request filters. Nil filters yield a nil spec.
func (r *RecommendRequest) FilterSpec() *core.FilterSpec {
	if r.Filters == nil {
		return nil
	}
	spec := &core.FilterSpec{
		MaxDuration: r.Filters.Duration,
		TestType:    r.Filters.TestType,
	}
	if r.Filters.AdaptiveSupport != nil {
		s := core.Support(*r.Filters.AdaptiveSupport)
		spec.AdaptiveSupport = &s
	}
	if r.Filters.RemoteSupport != nil {
		s := core.Support(*r.Filters.RemoteSupport)
		spec.RemoteSupport = &s
	}
	return spec
}
