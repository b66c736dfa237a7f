package domain_test

import (
	"testing"

	"github.com/remake-build/remake/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_RegisterScripted(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()

	// A dynamic edge persisted by an earlier run must survive
	// re-registration of the rule.
	deps.Bind("a.o", domain.NewDependencyRecord([]string{"a.o"}, []string{"gen.h"}))

	r := &domain.Rule{Targets: []string{"a.o", "b.o"}, Prereqs: []string{"common.c"}, Script: "cc -c common.c"}
	require.NoError(t, rs.RegisterScripted(r, deps))

	ra, ok := deps.Lookup("a.o")
	require.True(t, ok)
	rb, ok := deps.Lookup("b.o")
	require.True(t, ok)
	require.Same(t, ra, rb)
	assert.True(t, ra.HasPrereq("common.c"))
	assert.True(t, ra.HasPrereq("gen.h"))
	assert.Equal(t, "a.o", rs.DefaultTarget())
}

func TestRuleSet_RegisterScripted_Duplicate(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"a"}, Script: "touch a"}, deps))

	err := rs.RegisterScripted(&domain.Rule{Targets: []string{"b", "a"}, Script: "touch b a"}, deps)
	require.ErrorIs(t, err, domain.ErrDuplicateRule)
}

func TestRuleSet_RegisterScripted_OverTransparent(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{Targets: []string{"a"}, Prereqs: []string{"x"}}, deps))

	err := rs.RegisterScripted(&domain.Rule{Targets: []string{"a"}, Script: "touch a"}, deps)
	require.ErrorIs(t, err, domain.ErrDuplicateRule)
}

func TestRuleSet_RegisterTransparent_OverScripted(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"a"}, Script: "touch a"}, deps))

	err := rs.RegisterTransparent(&domain.Rule{Targets: []string{"a"}, Prereqs: []string{"x"}}, deps)
	require.ErrorIs(t, err, domain.ErrDuplicateRule)
}

func TestRuleSet_LocalAssignmentRejected(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	assigns := []domain.Assignment{{Name: "v", Value: []string{"x"}}}

	err := rs.RegisterScripted(&domain.Rule{Targets: []string{"a"}, Assigns: assigns, Script: "touch a"}, deps)
	require.ErrorIs(t, err, domain.ErrLocalAssignment)

	err = rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.o"}, Assigns: assigns, Script: "cc"})
	require.ErrorIs(t, err, domain.ErrLocalAssignment)
}

func TestRuleSet_TransparentAccumulates(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{Targets: []string{"prog"}, Prereqs: []string{"a.o"}}, deps))
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{
		Targets: []string{"prog"},
		Prereqs: []string{"b.o"},
		Assigns: []domain.Assignment{{Name: "libs", Value: []string{"-lm"}}},
	}, deps))

	r, ok := rs.Resolve("prog")
	require.True(t, ok)
	assert.True(t, r.Transparent())
	assert.Equal(t, []string{"a.o", "b.o"}, r.Prereqs)
	require.Len(t, r.Assigns, 1)
	assert.Equal(t, "libs", r.Assigns[0].Name)

	rec, ok := deps.Lookup("prog")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"a.o", "b.o"}, rec.Prereqs())
}

func TestRuleSet_DefaultTargetIsFirstSpecific(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.o"}, Script: "cc"}))
	require.Empty(t, rs.DefaultTarget(), "generic rules never set the default target")

	require.NoError(t, rs.RegisterTransparent(&domain.Rule{Targets: []string{"all"}, Prereqs: []string{"prog"}}, deps))
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"prog"}, Script: "touch prog"}, deps))
	assert.Equal(t, "all", rs.DefaultTarget())
}

func TestRuleSet_Resolve_ScriptedWins(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.o"}, Prereqs: []string{"%.c"}, Script: "generic"}))
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"main.o"}, Prereqs: []string{"main.c"}, Script: "specific"}, deps))

	r, ok := rs.Resolve("main.o")
	require.True(t, ok)
	assert.Equal(t, "specific", r.Script)
}

func TestRuleSet_Resolve_GenericExpansion(t *testing.T) {
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{
		Targets: []string{"%.o"},
		Prereqs: []string{"%.c", "defs.h"},
		Script:  "cc -c $<",
	}))

	r, ok := rs.Resolve("main.o")
	require.True(t, ok)
	assert.Equal(t, []string{"main.o"}, r.Targets)
	assert.Equal(t, []string{"main.c", "defs.h"}, r.Prereqs)
	assert.Equal(t, "cc -c $<", r.Script)
}

func TestRuleSet_Resolve_ShortestStemWins(t *testing.T) {
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.a"}, Script: "broad"}))
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"lib%.a"}, Script: "narrow"}))

	r, ok := rs.Resolve("libfoo.a")
	require.True(t, ok)
	assert.Equal(t, "narrow", r.Script, "the longer pattern leaves the shorter stem")

	r, ok = rs.Resolve("other.a")
	require.True(t, ok)
	assert.Equal(t, "broad", r.Script)
}

func TestRuleSet_Resolve_TieKeepsEarliestDeclaration(t *testing.T) {
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"a%.x"}, Script: "first"}))
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%b.x"}, Script: "second"}))

	// Both patterns match with a one-byte stem; only a strictly shorter
	// stem may displace the earlier declaration.
	r, ok := rs.Resolve("ab.x")
	require.True(t, ok)
	assert.Equal(t, "first", r.Script)
}

func TestRuleSet_Resolve_StemNeverEmpty(t *testing.T) {
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.o"}, Script: "cc"}))

	_, ok := rs.Resolve(".o")
	assert.False(t, ok)
}

func TestRuleSet_Resolve_FirstPatternOfRuleDecides(t *testing.T) {
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{
		Targets: []string{"%.tab.c", "%.tab.h"},
		Prereqs: []string{"%.y"},
		Script:  "yacc $<",
	}))

	r, ok := rs.Resolve("parse.tab.h")
	require.True(t, ok)
	assert.Equal(t, []string{"parse.tab.c", "parse.tab.h"}, r.Targets)
	assert.Equal(t, []string{"parse.y"}, r.Prereqs)
}

func TestRuleSet_Resolve_TransparentFoldsIntoGeneric(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{Targets: []string{"%.o"}, Prereqs: []string{"%.c"}, Script: "cc -c $<"}))
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{
		Targets: []string{"main.o"},
		Prereqs: []string{"defs.h"},
		Assigns: []domain.Assignment{{Name: "cflags", Append: true, Value: []string{"-O2"}}},
	}, deps))

	r, ok := rs.Resolve("main.o")
	require.True(t, ok)
	assert.Equal(t, []string{"main.c", "defs.h"}, r.Prereqs)
	require.Len(t, r.Assigns, 1)
	assert.Equal(t, "cflags", r.Assigns[0].Name)
	assert.Equal(t, "cc -c $<", r.Script)
}

func TestRuleSet_Resolve_SiblingTransparentContributesPrereqsOnly(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{
		Targets: []string{"%.tab.c", "%.tab.h"},
		Prereqs: []string{"%.y"},
		Script:  "yacc $<",
	}))
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{
		Targets: []string{"parse.tab.c"},
		Prereqs: []string{"lemon.cfg"},
		Assigns: []domain.Assignment{{Name: "only_c", Value: []string{"yes"}}},
	}, deps))

	r, ok := rs.Resolve("parse.tab.h")
	require.True(t, ok)
	assert.Equal(t, []string{"parse.y", "lemon.cfg"}, r.Prereqs)
	assert.Empty(t, r.Assigns, "sibling assignments stay local to their own target")

	r, ok = rs.Resolve("parse.tab.c")
	require.True(t, ok)
	require.Len(t, r.Assigns, 1)
	assert.Equal(t, "only_c", r.Assigns[0].Name)
}

func TestRuleSet_Resolve_ScriptedSiblingIsIllFormed(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterGeneric(&domain.Rule{
		Targets: []string{"%.c", "%.h"},
		Prereqs: []string{"%.y"},
		Script:  "yacc $<",
	}))
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"parse.h"}, Script: "touch parse.h"}, deps))

	_, ok := rs.Resolve("parse.c")
	assert.False(t, ok, "a scripted sibling makes the expansion ill-formed")

	r, ok := rs.Resolve("parse.h")
	require.True(t, ok)
	assert.Equal(t, "touch parse.h", r.Script)
}

func TestRuleSet_Resolve_TransparentWithoutGeneric(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterTransparent(&domain.Rule{Targets: []string{"all"}, Prereqs: []string{"prog"}}, deps))

	r, ok := rs.Resolve("all")
	require.True(t, ok)
	assert.True(t, r.Transparent())
	assert.Equal(t, []string{"prog"}, r.Prereqs)
}

func TestRuleSet_Resolve_NoRule(t *testing.T) {
	rs := domain.NewRuleSet()
	_, ok := rs.Resolve("unknown")
	assert.False(t, ok)
}

func TestRuleSet_Resolve_ReturnsCopies(t *testing.T) {
	deps := domain.NewDependencySet()
	rs := domain.NewRuleSet()
	require.NoError(t, rs.RegisterScripted(&domain.Rule{Targets: []string{"a"}, Prereqs: []string{"b"}, Script: "touch a"}, deps))

	r1, _ := rs.Resolve("a")
	r1.Prereqs[0] = "mutated"
	r2, _ := rs.Resolve("a")
	assert.Equal(t, "b", r2.Prereqs[0])
}
