package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/assessor/core"
)

func ptr[T any](v T) *T { return &v }

func record(duration int, adaptive, remote core.Support, types ...string) *core.Assessment {
	return &core.Assessment{
		URL:             "https://example.com/a",
		Description:     "desc",
		Duration:        duration,
		AdaptiveSupport: adaptive,
		RemoteSupport:   remote,
		TestType:        types,
	}
}

func TestMatches_NilSpec(t *testing.T) {
	r := record(90, core.SupportNo, core.SupportNo)
	assert.True(t, Matches(r, nil))
	assert.True(t, Matches(r, &core.FilterSpec{}))
}

func TestMatches_Duration(t *testing.T) {
	records := []*core.Assessment{
		record(20, core.SupportYes, core.SupportYes),
		record(45, core.SupportYes, core.SupportYes),
		record(90, core.SupportYes, core.SupportYes),
	}
	spec := &core.FilterSpec{MaxDuration: ptr(40)}

	got := make([]bool, len(records))
	for i, r := range records {
		got[i] = Matches(r, spec)
	}
	assert.Equal(t, []bool{true, false, false}, got)

	t.Run("boundary is inclusive", func(t *testing.T) {
		assert.True(t, Matches(record(40, core.SupportNo, core.SupportNo), spec))
	})
}

func TestMatches_Support(t *testing.T) {
	r := record(10, core.SupportYes, core.SupportNo)

	tests := []struct {
		name string
		spec *core.FilterSpec
		want bool
	}{
		{"adaptive equal", &core.FilterSpec{AdaptiveSupport: ptr(core.SupportYes)}, true},
		{"adaptive differs", &core.FilterSpec{AdaptiveSupport: ptr(core.SupportNo)}, false},
		{"adaptive case sensitive", &core.FilterSpec{AdaptiveSupport: ptr(core.Support("yes"))}, false},
		{"remote equal", &core.FilterSpec{RemoteSupport: ptr(core.SupportNo)}, true},
		{"remote differs", &core.FilterSpec{RemoteSupport: ptr(core.SupportYes)}, false},
		{"both equal", &core.FilterSpec{AdaptiveSupport: ptr(core.SupportYes), RemoteSupport: ptr(core.SupportNo)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(r, tt.spec))
		})
	}
}

func TestMatches_TestType(t *testing.T) {
	r := record(30, core.SupportNo, core.SupportYes, "Cognitive Ability", "Personality & Behaviour")

	tests := []struct {
		name  string
		types []string
		want  bool
	}{
		{"case-insensitive single", []string{"cognitive ability"}, true},
		{"any requested type suffices", []string{"Simulations", "PERSONALITY & BEHAVIOUR"}, true},
		{"no intersection", []string{"Knowledge & Skills"}, false},
		{"empty filter passes", []string{}, true},
		{"nil filter passes", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(r, &core.FilterSpec{TestType: tt.types}))
		})
	}

	t.Run("record without types matches nothing under a type filter", func(t *testing.T) {
		empty := record(30, core.SupportNo, core.SupportYes)
		assert.False(t, Matches(empty, &core.FilterSpec{TestType: []string{"Cognitive Ability"}}))
		assert.True(t, Matches(empty, &core.FilterSpec{}))
	})
}

func TestExplain_ReportsFirstFailingDimension(t *testing.T) {
	r := record(60, core.SupportNo, core.SupportNo, "Simulations")

	tests := []struct {
		name string
		spec *core.FilterSpec
		want Dimension
	}{
		{"passes", &core.FilterSpec{MaxDuration: ptr(60)}, DimensionNone},
		{"duration", &core.FilterSpec{MaxDuration: ptr(30), AdaptiveSupport: ptr(core.SupportYes)}, DimensionDuration},
		{"adaptive", &core.FilterSpec{AdaptiveSupport: ptr(core.SupportYes)}, DimensionAdaptiveSupport},
		{"remote", &core.FilterSpec{RemoteSupport: ptr(core.SupportYes)}, DimensionRemoteSupport},
		{"test type", &core.FilterSpec{TestType: []string{"Competencies"}}, DimensionTestType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, dim := Explain(r, tt.spec)
			assert.Equal(t, tt.want == DimensionNone, ok)
			assert.Equal(t, tt.want, dim)
			assert.NotEqual(t, "unknown", dim.String())
		})
	}
}

// Adding a constraint must never let a record through that was rejected before.
func TestMatches_Monotonic(t *testing.T) {
	records := []*core.Assessment{
		record(10, core.SupportYes, core.SupportYes, "Cognitive Ability"),
		record(25, core.SupportNo, core.SupportYes, "Knowledge & Skills"),
		record(40, core.SupportYes, core.SupportNo),
		record(60, core.SupportNo, core.SupportNo, "Personality & Behaviour", "Competencies"),
	}

	steps := []func(s *core.FilterSpec){
		func(s *core.FilterSpec) { s.MaxDuration = ptr(45) },
		func(s *core.FilterSpec) { s.RemoteSupport = ptr(core.SupportYes) },
		func(s *core.FilterSpec) { s.TestType = []string{"cognitive ability", "knowledge & skills"} },
		func(s *core.FilterSpec) { s.AdaptiveSupport = ptr(core.SupportYes) },
	}

	spec := &core.FilterSpec{}
	prev := survivors(records, spec)
	assert.Len(t, prev, len(records))

	for i, step := range steps {
		step(spec)
		cur := survivors(records, spec)
		for url := range cur {
			assert.Contains(t, prev, url, "step %d admitted a previously rejected record", i)
		}
		assert.LessOrEqual(t, len(cur), len(prev))
		prev = cur
	}
	assert.Len(t, prev, 1)
}

func survivors(records []*core.Assessment, spec *core.FilterSpec) map[int]struct{} {
	out := make(map[int]struct{})
	for i, r := range records {
		if Matches(r, spec) {
			out[i] = struct{}{}
		}
	}
	return out
}
