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


// Package catalog holds the immutable list of assessment records that the
// recommender scores.
//
// The catalog is loaded once from a JSON file of the form
//
//	{"assessments": [{"url": ..., "description": ..., "duration": ..., ...}]}
//
// Entries that fail to decode or validate are quarantined individually: they
// are logged and skipped while the rest of the file loads normally. A missing
// or malformed file is reported as core.ErrDataUnavailable or core.ErrParse;
// LoadOrEmpty turns either into an empty, degraded store so the process keeps
// running.
package catalog
