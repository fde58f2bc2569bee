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


// Package recommend ranks catalog assessments against a free-text query.
//
// A Recommender embeds the query once, keeps the records that pass the
// request's filters, scores each survivor by the dot product of its
// description embedding with the query embedding, and returns the survivors
// ordered by score. Ties keep catalog order, so identical input always yields
// identical output.
//
// # Failure Model
//
//   - Empty or whitespace-only queries fail with core.ErrInvalidQuery before
//     any embedding work.
//   - A failed query embedding fails the request with ErrQueryEmbedding.
//   - A failed description embedding scores that one candidate 0.0; the
//     request continues.
//
// # Concurrency
//
// Recommend is safe for concurrent use. Candidates are scored on a shared
// ants worker pool; each task writes only its own result slot. Release frees
// the pool.
//
// # Usage
//
//	r, err := recommend.NewRecommender(store, provider,
//	    recommend.WithMaxResults(10),
//	    recommend.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Release()
//
//	results, err := r.Recommend(ctx, "Java developer who collaborates", &core.FilterSpec{
//	    MaxDuration: &maxMinutes,
//	})
package recommend
