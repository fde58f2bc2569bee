// Package evaluate measures ranking quality offline against labelled cases.
//
// A case pairs a query and optional filters with the URLs a reviewer judged
// relevant. Recall@K and average precision@K are computed per case; the report
// carries their means over labelled cases (MAP@K for precision).
package evaluate
