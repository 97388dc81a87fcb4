package models

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	t.Parallel()
	owner := NewID()
	p := NewProfile(owner)

	assert.Equal(t, owner, p.User)
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, p.Skills)
	assert.NotNil(t, p.Social)
	assert.NotNil(t, p.Experience)
	assert.NotNil(t, p.Education)
}

func TestProfile_ExperienceNewestFirst(t *testing.T) {
	t.Parallel()
	p := NewProfile(NewID())
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	a := p.AddExperience(Experience{Title: "A", Company: "X", From: from})
	b := p.AddExperience(Experience{Title: "B", Company: "Y", From: from})

	titles := func() []string {
		var out []string
		for _, e := range p.Experience {
			out = append(out, e.Title)
		}
		return out
	}
	if diff := cmp.Diff([]string{"B", "A"}, titles()); diff != "" {
		t.Errorf("experience order (-want +got):\n%s", diff)
	}

	assert.False(t, p.RemoveExperience(NewID()))
	assert.Len(t, p.Experience, 2)

	require.True(t, p.RemoveExperience(b.ID))
	if diff := cmp.Diff([]string{"A"}, titles()); diff != "" {
		t.Errorf("experience after removal (-want +got):\n%s", diff)
	}
	assert.Equal(t, a.ID, p.Experience[0].ID)
}

func TestProfile_Education(t *testing.T) {
	t.Parallel()
	p := NewProfile(NewID())

	e := p.AddEducation(Education{School: "S", Degree: "BSc", FieldOfStudy: "CS", From: time.Now()})
	p.AddEducation(Education{School: "T", Degree: "MSc", FieldOfStudy: "CS", From: time.Now()})
	require.Len(t, p.Education, 2)
	assert.Equal(t, "T", p.Education[0].School)

	assert.True(t, p.RemoveEducation(e.ID))
	assert.False(t, p.RemoveEducation(e.ID))
	assert.Len(t, p.Education, 1)
}

func TestSameID(t *testing.T) {
	t.Parallel()
	id := NewID()
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", id, id, true},
		{"case-insensitive uuid", id, "  " + strings.ToUpper(id), true},
		{"different", id, NewID(), false},
		{"empty left", "", id, false},
		{"both empty", "", "", false},
		{"non-uuid values", "abc", "abc", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SameID(tt.a, tt.b))
		})
	}
}
