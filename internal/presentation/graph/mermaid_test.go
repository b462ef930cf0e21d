package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/autograde/internal/presentation/graph"
	"github.com/aretw0/autograde/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func noopHook(context.Context, domain.Exercise, domain.UserState) (bool, error) {
	return true, nil
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name      string
		exercises []*domain.Exercise
		contains  []string
	}{
		{
			name:      "Regex Exercise Shape",
			exercises: []*domain.Exercise{{Name: "pwd"}},
			contains: []string{
				"start((\"start\"))",
				"pwd[\"pwd\"]",
				"start --> pwd",
			},
		},
		{
			name:      "Hook Exercise Shape",
			exercises: []*domain.Exercise{{Name: "custom", Eject: noopHook}},
			contains:  []string{"custom[[\"custom\"]]"},
		},
		{
			name: "Condition Exercise Shape",
			exercises: []*domain.Exercise{{
				Name:             "set-env",
				EnvVarConditions: []domain.EnvVarCondition{{Name: "X", State: domain.Present}},
			}},
			contains: []string{"set_env[/\"set-env\"/]"},
		},
		{
			name:      "Chained In Order",
			exercises: []*domain.Exercise{{Name: "a"}, {Name: "b.c"}, {Name: "d/e"}},
			contains: []string{
				"start --> a",
				"a --> b_c",
				"b_c --> d_e",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.exercises, nil)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			assert.NotContains(t, got, "classDef")
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	exercises := []*domain.Exercise{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	got := graph.GenerateMermaid(exercises, &graph.Overlay{
		Completed: []string{"a", "a"},
		Active:    "b",
	})

	assert.Contains(t, got, "classDef complete")
	assert.Equal(t, 1, strings.Count(got, "class a complete;"))
	assert.Contains(t, got, "class b active;")
	assert.NotContains(t, got, "class c")
}
