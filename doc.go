// Package assessor recommends assessments from a product catalog for a
// free-text hiring query.
//
// An Engine loads the catalog, builds the embedding provider named in its
// ai.Config, and ranks catalog records by the dot product of their
// description embeddings with the query embedding, after applying optional
// duration, support and test type filters:
//
//	engine, err := assessor.NewEngine(ctx,
//	    assessor.WithAIConfig(ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))),
//	    assessor.WithCatalogPath("data/shl_products.json"),
//	    assessor.WithCache(assessor.CacheMemory),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	results, err := engine.Recommend(ctx, "Java developer, 40 minutes", nil)
//
// The api package serves an Engine over HTTP and cmd/assessor wraps both in a CLI.
package assessor
