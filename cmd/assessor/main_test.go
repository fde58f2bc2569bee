package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/assessor/api"
	"github.com/poiesic/assessor/evaluate"
)

const testCatalog = `{"assessments": [
	{"url": "https://example.com/java", "adaptive_support": "No", "description": "Core Java programming knowledge test",
	 "duration": 20, "remote_support": "Yes", "test_type": ["Knowledge & Skills"]},
	{"url": "https://example.com/opq", "adaptive_support": "No", "description": "Occupational personality questionnaire",
	 "duration": 45, "remote_support": "Yes", "test_type": ["Personality & Behaviour"]},
	{"url": "https://example.com/verify", "adaptive_support": "Yes", "description": "Verify numerical reasoning ability test",
	 "duration": 90, "remote_support": "No", "test_type": ["Cognitive Ability"]}
]}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes the app with mock embeddings and returns stdout.
func run(t *testing.T, command string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out

	argv := []string{"assessor", "--log-level", "error", command,
		"--provider", "mock",
		"--catalog", writeFile(t, "catalog.json", testCatalog),
		"--warmup-attempts", "0",
	}
	err := app.Run(append(argv, args...))
	return out.String(), err
}

func TestRecommendCommand(t *testing.T) {
	out, err := run(t, "recommend", "Core Java programming knowledge test")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 3 recommendations")
	assert.Contains(t, out, "https://example.com/java")
}

func TestRecommendCommand_JSON(t *testing.T) {
	out, err := run(t, "recommend", "--json", "--duration", "45", "--remote-support", "Yes", "java")
	require.NoError(t, err)

	var resp api.RecommendResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.RecommendedAssessments, 2)
	for _, r := range resp.RecommendedAssessments {
		assert.LessOrEqual(t, r.Duration, 45)
	}
}

func TestRecommendCommand_Errors(t *testing.T) {
	t.Run("missing query", func(t *testing.T) {
		_, err := run(t, "recommend")
		assert.Error(t, err)
	})

	t.Run("bad support value", func(t *testing.T) {
		_, err := run(t, "recommend", "--adaptive-support", "maybe", "java")
		assert.ErrorContains(t, err, "adaptive-support")
	})

	t.Run("bad score policy", func(t *testing.T) {
		_, err := run(t, "recommend", "--score-policy", "best", "java")
		assert.Error(t, err)
	})

	t.Run("no matches", func(t *testing.T) {
		out, err := run(t, "recommend", "--duration", "5", "java")
		require.NoError(t, err)
		assert.Contains(t, out, "No recommendations found")
	})
}

func TestEvaluateCommand(t *testing.T) {
	cases := writeFile(t, "cases.json", `[
		{"name": "java", "query": "Core Java programming knowledge test", "relevant": ["https://example.com/java"]}
	]`)

	out, err := run(t, "evaluate", "--cases", cases, "--k", "1", "--json")
	require.NoError(t, err)

	var report evaluate.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.K)
	assert.Equal(t, 1, report.Labelled)
	assert.InDelta(t, 1.0, report.MeanRecall, 1e-9)
	assert.InDelta(t, 1.0, report.MAP, 1e-9)
}

func TestEvaluateCommand_CasesRequired(t *testing.T) {
	_, err := run(t, "evaluate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cases")
}

func TestPrewarmCommand(t *testing.T) {
	out, err := run(t, "prewarm", "--batch-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedded 3/3 distinct descriptions")
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "defaults", args: nil},
		{name: "json debug", args: []string{"--log-level", "DEBUG", "--log-format", "json"}},
		{name: "bad level", args: []string{"--log-level", "loud"}, wantErr: true},
		{name: "bad format", args: []string{"--log-format", "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			app.Commands = []*cli.Command{{Name: "noop", Action: func(*cli.Context) error { return nil }}}
			err := app.Run(append(append([]string{"assessor"}, tt.args...), "noop"))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestServeFlagsHaveEnvBindings(t *testing.T) {
	app := newApp()
	var serve *cli.Command
	for _, cmd := range app.Commands {
		if cmd.Name == "serve" {
			serve = cmd
		}
	}
	require.NotNil(t, serve)

	envs := map[string]bool{}
	for _, flag := range serve.Flags {
		if f, ok := flag.(interface{ GetEnvVars() []string }); ok {
			for _, env := range f.GetEnvVars() {
				envs[env] = true
			}
		}
	}
	for _, want := range []string{"API_HOST", "API_PORT", "CATALOG_PATH", "EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "GEMINI_API_KEY", "MAX_RESULTS", "SCORE_POLICY"} {
		assert.True(t, envs[want], want)
	}
}

func TestEngineFlagDefaults(t *testing.T) {
	defaults := map[string]string{}
	for _, flag := range engineFlags() {
		if f, ok := flag.(*cli.StringFlag); ok {
			defaults[f.Name] = f.Value
		}
	}

	assert.Equal(t, "data/shl_products.json", defaults["catalog"])
	assert.Equal(t, "memory", defaults["cache"])
	_, hasDir := defaults["cache-dir"]
	assert.False(t, hasDir, "embedding cache has no on-disk location")
}
