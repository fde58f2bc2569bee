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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor"
	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/api"
	"github.com/poiesic/assessor/evaluate"
	"github.com/poiesic/assessor/recommend"
)

func main() {
	// Flag EnvVars are read during parsing, so .env has to be loaded first.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "assessor",
		Usage: "Recommend assessments from a catalog by semantic similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json)",
				Value:   "text",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Action: serveCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:    "host",
						Usage:   "Listen host",
						Value:   api.DefaultConfig().Host,
						EnvVars: []string{"API_HOST"},
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Listen port",
						Value:   api.DefaultConfig().Port,
						EnvVars: []string{"API_PORT"},
					},
					&cli.DurationFlag{
						Name:    "request-timeout",
						Usage:   "Upper bound on each HTTP request (0 disables)",
						Value:   api.DefaultConfig().RequestTimeout,
						EnvVars: []string{"API_REQUEST_TIMEOUT"},
					},
					&cli.IntFlag{
						Name:    "rate-limit",
						Usage:   "Requests per window allowed per client IP (0 disables)",
						Value:   api.DefaultConfig().RateLimitRequests,
						EnvVars: []string{"API_RATE_LIMIT"},
					},
					&cli.DurationFlag{
						Name:    "rate-window",
						Usage:   "Rate limit window",
						Value:   api.DefaultConfig().RateLimitWindow,
						EnvVars: []string{"API_RATE_WINDOW"},
					},
					&cli.StringSliceFlag{
						Name:    "cors-origin",
						Usage:   "Allowed CORS origin (repeatable)",
						Value:   cli.NewStringSlice(api.DefaultConfig().CORSAllowedOrigins...),
						EnvVars: []string{"API_CORS_ORIGINS"},
					},
					&cli.BoolFlag{
						Name:    "prewarm",
						Usage:   "Embed the whole catalog before listening",
						EnvVars: []string{"PREWARM"},
					},
				),
			},
			{
				Name:      "recommend",
				Usage:     "Print recommendations for a query",
				ArgsUsage: "<query>",
				Action:    recommendCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "duration",
						Usage: "Maximum duration in minutes (-1 for no limit)",
						Value: -1,
					},
					&cli.StringFlag{
						Name:  "adaptive-support",
						Usage: "Required adaptive support (Yes, No)",
					},
					&cli.StringFlag{
						Name:  "remote-support",
						Usage: "Required remote support (Yes, No)",
					},
					&cli.StringSliceFlag{
						Name:  "test-type",
						Usage: "Accepted test type (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the API response body instead of a table",
					},
				),
			},
			{
				Name:   "evaluate",
				Usage:  "Compute Recall@K and MAP@K over labelled cases",
				Action: evaluateCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:     "cases",
						Usage:    "Path to a JSON file of evaluation cases",
						Required: true,
						EnvVars:  []string{"EVAL_CASES"},
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Metric cut-off",
						Value: evaluate.DefaultK,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the report as JSON",
					},
				),
			},
			{
				Name:   "prewarm",
				Usage:  "Embed every catalog description and report timing",
				Action: prewarmCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of descriptions per embedding call",
						Value: recommend.DefaultPrewarmBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N descriptions",
						Value: 50,
					},
				),
			},
		},
	}
}

// engineFlags returns a fresh copy of the flags every engine-backed command takes.
func engineFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog",
			Aliases: []string{"c"},
			Usage:   "Path to the assessment catalog JSON file",
			Value:   "data/shl_products.json",
			EnvVars: []string{"CATALOG_PATH"},
		},
		&cli.StringFlag{
			Name:    "provider",
			Usage:   "Embedding provider (openai, gemini, onnx, mock)",
			Value:   defaults.Provider,
			EnvVars: []string{"EMBEDDING_PROVIDER"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL (openai provider)",
			Value:   defaults.EmbeddingHost,
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   defaults.EmbeddingModel,
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding service",
			EnvVars: []string{"EMBEDDING_API_KEY", "GEMINI_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "onnx-model",
			Usage:   "Path to the ONNX model file (onnx provider)",
			EnvVars: []string{"ONNX_MODEL_PATH"},
		},
		&cli.StringFlag{
			Name:    "onnx-tokenizer",
			Usage:   "Path to tokenizer.json (onnx provider)",
			EnvVars: []string{"ONNX_TOKENIZER_PATH"},
		},
		&cli.StringFlag{
			Name:    "onnxruntime-lib",
			Usage:   "Path to the onnxruntime shared library (onnx provider)",
			EnvVars: []string{"ONNXRUNTIME_LIB"},
		},
		&cli.IntFlag{
			Name:    "max-seq-len",
			Usage:   "Token limit per text (onnx provider)",
			Value:   defaults.MaxSeqLen,
			EnvVars: []string{"MAX_SEQ_LEN"},
		},
		&cli.IntFlag{
			Name:    "embed-batch-size",
			Usage:   "Texts per request to a remote embedding provider",
			Value:   defaults.BatchSize,
			EnvVars: []string{"EMBEDDING_BATCH_SIZE"},
		},
		&cli.BoolFlag{
			Name:    "normalize",
			Usage:   "L2-normalize vectors returned by the provider",
			Value:   defaults.NormalizeVectors,
			EnvVars: []string{"NORMALIZE_VECTORS"},
		},
		&cli.IntFlag{
			Name:    "max-results",
			Usage:   "Maximum recommendations per query (0 for unlimited)",
			Value:   recommend.DefaultMaxResults,
			EnvVars: []string{"MAX_RESULTS"},
		},
		&cli.StringFlag{
			Name:    "score-policy",
			Usage:   "Which scores to keep (all, positive)",
			Value:   recommend.ScorePolicyAll.String(),
			EnvVars: []string{"SCORE_POLICY"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Embedding time budget per recommendation (0 disables)",
			Value:   recommend.DefaultTimeout,
			EnvVars: []string{"RECOMMEND_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "pool-size",
			Usage:   "Concurrent candidate embeddings per request (0 uses the CPU count)",
			EnvVars: []string{"POOL_SIZE"},
		},
		&cli.StringFlag{
			Name:    "cache",
			Usage:   "Embedding cache (none, memory, badger)",
			Value:   string(assessor.CacheMemory),
			EnvVars: []string{"EMBEDDING_CACHE"},
		},
		&cli.DurationFlag{
			Name:    "cache-ttl",
			Usage:   "Expire cached vectors after this long (0 keeps them)",
			EnvVars: []string{"EMBEDDING_CACHE_TTL"},
		},
		&cli.BoolFlag{
			Name:    "breaker",
			Usage:   "Guard the embedding provider with a circuit breaker",
			Value:   true,
			EnvVars: []string{"EMBEDDING_BREAKER"},
		},
		&cli.IntFlag{
			Name:    "warmup-attempts",
			Usage:   "Attempts to reach the embedding model at startup (0 skips)",
			Value:   5,
			EnvVars: []string{"WARMUP_ATTEMPTS"},
		},
		&cli.DurationFlag{
			Name:    "warmup-delay",
			Usage:   "Base delay for warmup backoff",
			Value:   time.Second,
			EnvVars: []string{"WARMUP_DELAY"},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format := strings.ToLower(c.String("log-format")); format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}
	slog.SetDefault(slog.New(handler))

	return nil
}
