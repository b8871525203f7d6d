package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionScore(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    int
	}{
		{"empty", Profile{}, 0},
		{"skills only", Profile{Skills: []string{"go", "sql"}}, 12},
		{"skills capped", Profile{Skills: []string{"a", "b", "c", "d", "e", "f", "g"}}, 30},
		{"location by country", Profile{Country: "DE"}, 15},
		{
			"complete",
			Profile{
				Bio:          "backend dev",
				City:         "Berlin",
				Experience:   []Experience{{Title: "dev", DurationYears: 3}},
				Skills:       []string{"a", "b", "c", "d", "e"},
				Embedding:    []float32{0.1},
				Technologies: []string{"Go"},
			},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompletionScore(&tt.profile))
		})
	}
}

func TestProfile_Helpers(t *testing.T) {
	p := Profile{
		Skills:     []string{"React", " Node "},
		Experience: []Experience{{DurationYears: 1.5}, {DurationYears: 2}},
	}

	assert.True(t, p.HasSkill("react"))
	assert.True(t, p.HasSkill("NODE"))
	assert.False(t, p.HasSkill("python"))
	assert.InDelta(t, 3.5, p.TotalExperienceYears(), 1e-9)
}
