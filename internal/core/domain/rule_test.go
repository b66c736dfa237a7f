package domain_test

import (
	"testing"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_Predicates(t *testing.T) {
	scripted := &domain.Rule{Targets: []string{"prog"}, Script: "cc -o prog"}
	assert.False(t, scripted.Generic())
	assert.False(t, scripted.Transparent())
	assert.False(t, scripted.Empty())

	generic := &domain.Rule{Targets: []string{"%.o"}, Script: "cc -c $<"}
	assert.True(t, generic.Generic())

	transparent := &domain.Rule{Targets: []string{"prog"}, Prereqs: []string{"main.o"}}
	assert.True(t, transparent.Transparent())

	empty := &domain.Rule{}
	assert.True(t, empty.Empty())
}

func TestRule_CheckGenericity(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		wantErr bool
	}{
		{name: "AllLiteral", targets: []string{"a", "b"}},
		{name: "SingleWildcard", targets: []string{"%.o"}},
		{name: "AllWildcard", targets: []string{"%.tab.c", "%.tab.h"}},
		{name: "MixedLiteralAndWildcard", targets: []string{"%.o", "all"}, wantErr: true},
		{name: "DoubleWildcard", targets: []string{"%.%.o"}, wantErr: true},
		{name: "SecondTargetDoubleWildcard", targets: []string{"%.c", "%%.h"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &domain.Rule{Targets: tt.targets}
			err := r.CheckGenericity()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrBadGenericity)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRule_Clone(t *testing.T) {
	r := &domain.Rule{
		Targets: []string{"a"},
		Prereqs: []string{"b"},
		Assigns: []domain.Assignment{{Name: "v", Value: []string{"x"}}},
		Script:  "touch a",
	}
	c := r.Clone()
	require.Equal(t, r, c)

	c.Targets[0] = "z"
	c.Prereqs[0] = "z"
	c.Assigns[0].Value[0] = "z"
	assert.Equal(t, "a", r.Targets[0])
	assert.Equal(t, "b", r.Prereqs[0])
	assert.Equal(t, "x", r.Assigns[0].Value[0])
}
