package evaluate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/assessor/core"
)

// fakeRecommender answers from a fixed query to URL table.
type fakeRecommender struct {
	answers map[string][]string
	errs    map[string]error
	specs   map[string]*core.FilterSpec
}

func (f *fakeRecommender) Recommend(ctx context.Context, query string, spec *core.FilterSpec) ([]*core.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.specs == nil {
		f.specs = make(map[string]*core.FilterSpec)
	}
	f.specs[query] = spec
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	var out []*core.ScoredCandidate
	for i, url := range f.answers[query] {
		out = append(out, &core.ScoredCandidate{
			Record: &core.Assessment{URL: url},
			Score:  1 - float32(i)/10,
		})
	}
	return out, nil
}

func TestParseCases(t *testing.T) {
	cases, err := ParseCases([]byte(`[
		{"name": "java", "query": "Java developer", "filters": {"duration": 40, "remote_support": "Yes"}, "relevant": ["u1"]},
		{"query": "analyst"}
	]`))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "java", cases[0].Name)
	assert.True(t, cases[0].Labelled())
	spec, err := cases[0].FilterSpec()
	require.NoError(t, err)
	require.NotNil(t, spec.MaxDuration)
	assert.Equal(t, 40, *spec.MaxDuration)
	require.NotNil(t, spec.RemoteSupport)
	assert.Equal(t, core.SupportYes, *spec.RemoteSupport)

	assert.Equal(t, "case-2", cases[1].Name)
	assert.False(t, cases[1].Labelled())
	spec, err = cases[1].FilterSpec()
	require.NoError(t, err)
	assert.Nil(t, spec)
}

func TestParseCases_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "not json", data: `{`, wantErr: core.ErrParse},
		{name: "empty", data: `[]`, wantErr: ErrNoCases},
		{name: "missing query", data: `[{"name": "x"}]`, wantErr: ErrInvalidCase},
		{name: "bad support", data: `[{"query": "x", "filters": {"adaptive_support": "maybe"}}]`, wantErr: ErrInvalidCase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCases([]byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"query": "java", "relevant": ["u1"]}]`), 0o644))

	cases, err := LoadCases(path)
	require.NoError(t, err)
	assert.Len(t, cases, 1)

	_, err = LoadCases(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadCases_Testdata(t *testing.T) {
	cases, err := LoadCases(filepath.Join("testdata", "cases.json"))
	require.NoError(t, err)
	require.Len(t, cases, 4)

	for _, c := range cases {
		assert.False(t, c.Labelled(), c.Name)
		spec, err := c.FilterSpec()
		require.NoError(t, err)
		require.NotNil(t, spec.MaxDuration, c.Name)
		assert.Len(t, spec.TestType, 2, c.Name)
	}
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner(nil)
	assert.ErrorIs(t, err, ErrRecommenderRequired)

	_, err = NewRunner(&fakeRecommender{}, WithK(0))
	assert.Error(t, err)

	r, err := NewRunner(&fakeRecommender{})
	require.NoError(t, err)
	assert.Equal(t, DefaultK, r.k)
}

func TestRunner_Run(t *testing.T) {
	rec := &fakeRecommender{
		answers: map[string][]string{
			"java":    {"u1", "x", "u2"},
			"analyst": {"y", "u3"},
			"demo":    {"z"},
		},
		errs: map[string]error{"broken": errors.New("embedding down")},
	}
	cases := []Case{
		{Name: "java", Query: "java", Relevant: []string{"u1", "u2"}, Filters: &CaseFilters{TestType: []string{"Knowledge & Skills"}}},
		{Name: "analyst", Query: "analyst", Relevant: []string{"u3"}},
		{Name: "demo", Query: "demo"},
		{Name: "broken", Query: "broken", Relevant: []string{"u9"}},
	}

	var buf bytes.Buffer
	progress := NewProgressTracker(&buf, "cases", len(cases), 1)
	progress.Start()

	runner, err := NewRunner(rec, WithK(3), WithProgress(progress))
	require.NoError(t, err)

	report, err := runner.Run(context.Background(), cases)
	require.NoError(t, err)
	progress.Finish()

	require.Len(t, report.Cases, 4)
	assert.Equal(t, 3, report.Labelled)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 4, progress.Current())

	java := report.Cases[0]
	assert.Equal(t, []string{"u1", "x", "u2"}, java.Recommended)
	assert.InDelta(t, 1.0, java.Recall, 1e-9)
	assert.InDelta(t, (1.0+2.0/3.0)/2, java.AveragePrecision, 1e-9)

	analyst := report.Cases[1]
	assert.InDelta(t, 1.0, analyst.Recall, 1e-9)
	assert.InDelta(t, 0.5, analyst.AveragePrecision, 1e-9)

	assert.False(t, report.Cases[2].Labelled)
	assert.Equal(t, "embedding down", report.Cases[3].Err)

	assert.InDelta(t, 2.0/3.0, report.MeanRecall, 1e-9)
	assert.InDelta(t, ((1.0+2.0/3.0)/2+0.5)/3, report.MAP, 1e-9)

	require.NotNil(t, rec.specs["java"])
	assert.Equal(t, []string{"Knowledge & Skills"}, rec.specs["java"].TestType)
	assert.Nil(t, rec.specs["analyst"])

	assert.Contains(t, buf.String(), "Progress: 4/4 (100.0%)")
}

func TestRunner_CanceledContext(t *testing.T) {
	runner, err := NewRunner(&fakeRecommender{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx, []Case{{Name: "a", Query: "a"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_WriteText(t *testing.T) {
	report := &Report{
		K: 10,
		Cases: []CaseResult{
			{Name: "java", Recommended: []string{"u1"}, Labelled: true, Recall: 1, AveragePrecision: 0.5},
			{Name: "demo", Recommended: []string{}},
		},
		Labelled:   1,
		MeanRecall: 1,
		MAP:        0.5,
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "RECALL@10")
	assert.Contains(t, out, "java")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "Labelled cases:")
	assert.NotContains(t, out, "Failed cases")
	assert.Equal(t, 1, strings.Count(out, "demo"))
}

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, "items", 10, 5)

	p.Increment(3)
	assert.Empty(t, buf.String(), "no output before Start")

	p.Start()
	p.Increment(3)
	assert.Empty(t, buf.String())
	p.Increment(3)
	assert.Contains(t, buf.String(), "Progress: 6/10")

	p.Increment(100)
	assert.Equal(t, 10, p.Current())
	p.Finish()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Greater(t, p.Elapsed(), time.Duration(0))
}
