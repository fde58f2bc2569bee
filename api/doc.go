// Package api serves the recommendation engine over HTTP.
//
// Routes:
//
//	POST /recommend  rank assessments for a query and optional filters
//	GET  /health     liveness plus catalog and model status
//	GET  /metrics    Prometheus metrics
//
// Request:
//
//	{"query": "Java developer", "filters": {"duration": 40, "remote_support": "Yes", "test_type": ["Knowledge & Skills"]}}
//
// Response:
//
//	{"recommended_assessments": [{"url": ..., "similarity_score": 0.82, ...}]}
//
// Errors use a common envelope, {"error": {"code": ..., "message": ...}}:
//
//	400 INVALID_REQUEST      body is not valid JSON
//	400 VALIDATION_ERROR     a field failed validation
//	400 INVALID_QUERY        query is empty after trimming
//	404 NO_RECOMMENDATIONS   nothing passed the filters
//	502 EMBEDDING_FAILED     the query could not be embedded
//	503 NO_DATA              the catalog is empty or failed to load
//	504 TIMEOUT              the request ran out of time
package api
