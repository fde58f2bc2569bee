package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/breaker"
	"github.com/poiesic/assessor/api"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/evaluate"
	"github.com/poiesic/assessor/recommend"
)

// aiConfigFromFlags builds the provider configuration from engine flags.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.String("provider")),
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithONNXModel(c.String("onnx-model"), c.String("onnx-tokenizer")),
		ai.WithRuntimeLibrary(c.String("onnxruntime-lib")),
		ai.WithMaxSeqLen(c.Int("max-seq-len")),
		ai.WithBatchSize(c.Int("embed-batch-size")),
		ai.WithNormalizeVectors(c.Bool("normalize")),
	)
}

// engineOptionsFromFlags translates engine flags into engine options.
func engineOptionsFromFlags(c *cli.Context) ([]assessor.EngineOption, error) {
	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	policy, err := recommend.ParseScorePolicy(c.String("score-policy"))
	if err != nil {
		return nil, err
	}
	cacheKind, err := assessor.ParseCacheKind(c.String("cache"))
	if err != nil {
		return nil, err
	}

	recOpts := []recommend.Option{
		recommend.WithMaxResults(c.Int("max-results")),
		recommend.WithScorePolicy(policy),
		recommend.WithTimeout(c.Duration("timeout")),
	}
	if n := c.Int("pool-size"); n > 0 {
		recOpts = append(recOpts, recommend.WithPoolSize(n))
	}

	breakerConfig := breaker.DefaultConfig()
	breakerConfig.Name = aiConfig.ModelID()

	return []assessor.EngineOption{
		assessor.WithAIConfig(aiConfig),
		assessor.WithCatalogPath(c.String("catalog")),
		assessor.WithCache(cacheKind),
		assessor.WithCacheTTL(c.Duration("cache-ttl")),
		assessor.WithBreaker(c.Bool("breaker"), breakerConfig),
		assessor.WithWarmup(c.Int("warmup-attempts"), c.Duration("warmup-delay")),
		assessor.WithRecommendOptions(recOpts...),
	}, nil
}

func openEngine(ctx context.Context, c *cli.Context, extra ...assessor.EngineOption) (*assessor.Engine, error) {
	opts, err := engineOptionsFromFlags(c)
	if err != nil {
		return nil, err
	}
	engine, err := assessor.NewEngine(ctx, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	return engine, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var extra []assessor.EngineOption
	if c.Bool("prewarm") {
		extra = append(extra, assessor.WithPrewarm(recommend.DefaultPrewarmBatchSize, nil))
	}
	engine, err := openEngine(ctx, c, extra...)
	if err != nil {
		return err
	}
	defer engine.Close()

	apiConfig := api.DefaultConfig()
	apiConfig.Host = c.String("host")
	apiConfig.Port = c.Int("port")
	apiConfig.RequestTimeout = c.Duration("request-timeout")
	apiConfig.RateLimitRequests = c.Int("rate-limit")
	apiConfig.RateLimitWindow = c.Duration("rate-window")
	apiConfig.CORSAllowedOrigins = c.StringSlice("cors-origin")

	server, err := api.NewServer(engine, apiConfig)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

func recommendCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}
	spec, err := filterSpecFromFlags(c)
	if err != nil {
		return err
	}

	engine, err := openEngine(c.Context, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.Catalog().Degraded() {
		return fmt.Errorf("catalog unavailable: %w", engine.Catalog().Err())
	}

	results, err := engine.Recommend(c.Context, query, spec)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, &api.RecommendResponse{
			RecommendedAssessments: core.NewRecommendations(results),
		})
	}
	return writeResults(c.App.Writer, results)
}

func filterSpecFromFlags(c *cli.Context) (*core.FilterSpec, error) {
	spec := &core.FilterSpec{TestType: c.StringSlice("test-type")}
	if d := c.Int("duration"); d >= 0 {
		spec.MaxDuration = &d
	}
	for _, f := range []struct {
		flag string
		dst  **core.Support
	}{
		{"adaptive-support", &spec.AdaptiveSupport},
		{"remote-support", &spec.RemoteSupport},
	} {
		raw := c.String(f.flag)
		if raw == "" {
			continue
		}
		s, err := core.ParseSupport(raw)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", f.flag, err)
		}
		*f.dst = &s
	}
	if spec.IsEmpty() {
		return nil, nil
	}
	return spec, nil
}

func writeResults(w io.Writer, results []*core.ScoredCandidate) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No recommendations found")
		return nil
	}

	fmt.Fprintf(w, "Found %d recommendations\n", len(results))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tDURATION\tADAPTIVE\tREMOTE\tTYPES\tURL")
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%0.3f\t%d\t%s\t%s\t%s\t%s\n",
			i+1, r.Score, r.Record.Duration, r.Record.AdaptiveSupport, r.Record.RemoteSupport,
			strings.Join(r.Record.TestType, ", "), r.Record.URL)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func evaluateCommand(c *cli.Context) error {
	cases, err := evaluate.LoadCases(c.String("cases"))
	if err != nil {
		return err
	}

	engine, err := openEngine(c.Context, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if engine.Catalog().Degraded() {
		return fmt.Errorf("catalog unavailable: %w", engine.Catalog().Err())
	}

	progress := evaluate.NewProgressTracker(os.Stderr, "cases", len(cases), 1)
	runner, err := evaluate.NewRunner(engine,
		evaluate.WithK(c.Int("k")),
		evaluate.WithProgress(progress))
	if err != nil {
		return err
	}

	progress.Start()
	report, err := runner.Run(c.Context, cases)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, report)
	}
	return report.WriteText(c.App.Writer)
}

func prewarmCommand(c *cli.Context) error {
	engine, err := openEngine(c.Context, c)
	if err != nil {
		return err
	}
	defer engine.Close()

	store := engine.Catalog()
	if store.Degraded() {
		return fmt.Errorf("catalog unavailable: %w", store.Err())
	}

	fmt.Fprintf(os.Stderr, "Catalog: %s (%d records)\n", store.Source(), store.Len())
	fmt.Fprintf(os.Stderr, "Model: %s\n", engine.ModelID())
	fmt.Fprintln(os.Stderr)

	progress := evaluate.NewProgressTracker(os.Stderr, "descriptions", store.Len(), c.Int("report-interval"))
	progress.Start()
	report, err := engine.Prewarm(c.Context, c.Int("batch-size"), progress)
	progress.Finish()

	if report != nil {
		fmt.Fprintf(c.App.Writer, "Embedded %d/%d distinct descriptions in %s (%d failed)\n",
			report.Embedded, report.Descriptions, report.Elapsed, report.Failed)
		if report.Elapsed > 0 && report.Embedded > 0 {
			fmt.Fprintf(c.App.Writer, "Throughput: %.1f descriptions/s\n",
				float64(report.Embedded)/report.Elapsed.Seconds())
		}
	}
	if err != nil {
		return fmt.Errorf("prewarm incomplete: %w", err)
	}
	return nil
}
