package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/fleethealth/core/model"
)

func fleet() []model.Vehicle {
	return []model.Vehicle{
		{ID: "KMH-001", CarType: "EV6", Grade: model.GradeExcellent, FinalScore: 90},
		{ID: "KMH-002", CarType: "IONIQ5", Grade: model.GradeGood, FinalScore: 75},
		{ID: "kna-003", CarType: "EV6", Grade: model.GradeBad, FinalScore: 40},
		{ID: "X-004", CarType: "", Grade: model.GradeNormal, FinalScore: 60},
		{ID: "X-005", CarType: "PORTER", Grade: model.GradeGood, FinalScore: 71},
	}
}

func ids(vs []model.Vehicle) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}

func TestApplyCriteria(t *testing.T) {
	cases := []struct {
		name  string
		state State
		want  []string
	}{
		{"default", Default(), []string{"KMH-001", "KMH-002", "kna-003", "X-004", "X-005"}},
		{"zero", State{}, []string{"KMH-001", "KMH-002", "kna-003", "X-004", "X-005"}},
		{"grade", State{Grade: "good", CarType: All}, []string{"KMH-002", "X-005"}},
		{"car type", State{Grade: All, CarType: "EV6"}, []string{"KMH-001", "kna-003"}},
		{"grade and car type", State{Grade: "bad", CarType: "EV6"}, []string{"kna-003"}},
		{"search id case insensitive", State{Search: "kna"}, []string{"kna-003"}},
		{"search car type", State{Search: "ioniq"}, []string{"KMH-002"}},
		{"search no match", State{Search: "zzz"}, []string{}},
		{"car type exact", State{CarType: "ev6"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Apply(fleet(), tc.state)))
		})
	}
}

func TestApplyEmptyInput(t *testing.T) {
	out := Apply(nil, State{Grade: "good"})
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestApplySubsetOrderAndIdempotence(t *testing.T) {
	states := []State{
		Default(),
		{Grade: "good"},
		{CarType: "EV6", Search: "k"},
		{Grade: "excellent", CarType: "PORTER"},
		{Search: "-00"},
	}
	in := fleet()
	for _, s := range states {
		once := Apply(in, s)
		// subsequence check
		j := 0
		for _, v := range in {
			if j < len(once) && once[j].ID == v.ID {
				j++
			}
		}
		assert.Equal(t, len(once), j, "output of %+v is not an ordered subset", s)
		assert.Equal(t, once, Apply(once, s), "filter %+v is not idempotent", s)
	}
}

func TestEmptyCarTypeNeverMatchesSearch(t *testing.T) {
	v := model.Vehicle{ID: "ABC", CarType: ""}
	assert.False(t, State{Search: "z"}.Matches(v))
	assert.True(t, State{Search: "b"}.Matches(v))
}

func TestCarTypes(t *testing.T) {
	assert.Equal(t, []string{"EV6", "IONIQ5", "PORTER"}, CarTypes(fleet()))
	assert.NotNil(t, CarTypes(nil))
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade(" Good ")
	require.NoError(t, err)
	assert.Equal(t, "good", g)
	g, err = ParseGrade("")
	require.NoError(t, err)
	assert.Equal(t, All, g)
	_, err = ParseGrade("great")
	assert.Error(t, err)
}

func TestQueryIgnoresSearch(t *testing.T) {
	q := State{Grade: All, CarType: "EV6", Search: "x"}.Query()
	assert.Equal(t, model.StatsQuery{CarType: "EV6"}, q)
	assert.True(t, Default().Query().IsZero())
}
