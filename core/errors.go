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

import "errors"

// Domain validation errors
var (
	// ErrInvalidAssessment indicates an Assessment failed validation.
	ErrInvalidAssessment = errors.New("invalid assessment")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrEmptyDescription indicates the Description field is empty.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrNegativeDuration indicates a negative Duration.
	ErrNegativeDuration = errors.New("duration cannot be negative")

	// ErrInvalidSupport indicates a support flag other than "Yes" or "No".
	ErrInvalidSupport = errors.New("invalid support value")
)

// Catalog and request errors
var (
	// ErrDataUnavailable indicates the catalog file is missing or unreadable.
	ErrDataUnavailable = errors.New("catalog data unavailable")

	// ErrParse indicates the catalog file is malformed.
	ErrParse = errors.New("catalog parse error")

	// ErrInvalidQuery indicates an empty or whitespace-only query.
	ErrInvalidQuery = errors.New("query cannot be empty")
)
