package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

func newSubject(id int64, code string) *models.Subject {
	return &models.Subject{ID: id, Code: code, Name: "Subject " + code, Credits: 4}
}

func buildGraph(t *testing.T, n int64) *Graph {
	t.Helper()
	g := NewGraph()
	codes := []string{"", "MAT101", "MAT201", "FIS101", "FIS201", "QUI101", "BIO101"}
	for id := int64(1); id <= n; id++ {
		require.NoError(t, g.AddSubject(newSubject(id, codes[id])))
	}
	return g
}

func TestAddSubjectDuplicates(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddSubject(newSubject(1, "MAT101")))

	err := g.AddSubject(newSubject(1, "FIS101"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)

	err = g.AddSubject(newSubject(2, "MAT101"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)

	assert.Equal(t, 1, g.Len())
}

func TestAddSubjectNegativeCredits(t *testing.T) {
	g := NewGraph()
	err := g.AddSubject(&models.Subject{ID: 1, Code: "MAT101", Credits: -1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestAddPrerequisiteUnknownSubject(t *testing.T) {
	g := buildGraph(t, 1)

	assert.ErrorIs(t, g.AddPrerequisite(1, 99), apperrors.ErrSubjectNotFound)
	assert.ErrorIs(t, g.AddPrerequisite(99, 1), apperrors.ErrSubjectNotFound)
}

func TestAddPrerequisiteRejectsCycles(t *testing.T) {
	g := buildGraph(t, 3)

	// B requires A, C requires B.
	require.NoError(t, g.AddPrerequisite(2, 1))
	require.NoError(t, g.AddPrerequisite(3, 2))

	// Making A require B or C would close a cycle.
	assert.ErrorIs(t, g.AddPrerequisite(1, 2), apperrors.ErrCycleDetected)
	assert.ErrorIs(t, g.AddPrerequisite(1, 3), apperrors.ErrCycleDetected)
	assert.ErrorIs(t, g.AddPrerequisite(1, 1), apperrors.ErrCycleDetected)

	// Rejection leaves the graph unchanged: no partial edge on either side.
	a, err := g.Get(1)
	require.NoError(t, err)
	assert.Empty(t, a.Prerequisites)
	b, err := g.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, b.Prerequisites)
	assert.Equal(t, []int64{3}, b.Dependents)
}

func TestAddPrerequisiteAllowsRedundantTransitiveEdge(t *testing.T) {
	g := buildGraph(t, 3)

	// B requires A, C requires B. A direct "C requires A" edge is already
	// implied transitively but must still be accepted.
	require.NoError(t, g.AddPrerequisite(2, 1))
	require.NoError(t, g.AddPrerequisite(3, 2))
	require.NoError(t, g.AddPrerequisite(3, 1))

	// The reverse direction closes a cycle and must be rejected.
	assert.ErrorIs(t, g.AddPrerequisite(1, 3), apperrors.ErrCycleDetected)
	assert.ErrorIs(t, g.AddPrerequisite(1, 2), apperrors.ErrCycleDetected)

	c, err := g.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, c.Prerequisites)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, int64(1), order[0].ID)
}

func TestEdgeMirroring(t *testing.T) {
	g := buildGraph(t, 3)
	require.NoError(t, g.AddPrerequisite(3, 1))
	require.NoError(t, g.AddPrerequisite(3, 2))

	c, err := g.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, c.Prerequisites)

	a, err := g.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, a.Dependents)

	require.NoError(t, g.RemovePrerequisite(3, 1))
	a, err = g.Get(1)
	require.NoError(t, err)
	assert.Empty(t, a.Dependents)
}

func TestRemoveSubjectBlockedWhileReferenced(t *testing.T) {
	g := buildGraph(t, 2)
	require.NoError(t, g.AddPrerequisite(2, 1))

	assert.ErrorIs(t, g.RemoveSubject(1), apperrors.ErrSubjectInUse)

	// Removing the dependent is fine and clears the reverse edge.
	require.NoError(t, g.RemoveSubject(2))
	require.NoError(t, g.RemoveSubject(1))
	assert.Equal(t, 0, g.Len())
}

func TestEligibleSubjects(t *testing.T) {
	g := buildGraph(t, 4)
	require.NoError(t, g.AddPrerequisite(2, 1)) // MAT201 requires MAT101
	require.NoError(t, g.AddPrerequisite(4, 3)) // FIS201 requires FIS101
	require.NoError(t, g.AddPrerequisite(4, 1)) // ... and MAT101

	ids := func(subjects []*models.Subject) []int64 {
		out := make([]int64, 0, len(subjects))
		for _, s := range subjects {
			out = append(out, s.ID)
		}
		return out
	}

	// Empty completed set: exactly the subjects with no prerequisites.
	assert.Equal(t, []int64{1, 3}, ids(g.EligibleSubjects(nil)))

	completed := map[int64]struct{}{1: {}}
	assert.Equal(t, []int64{2, 3}, ids(g.EligibleSubjects(completed)))

	completed[3] = struct{}{}
	assert.Equal(t, []int64{2, 4}, ids(g.EligibleSubjects(completed)))
}

func TestEligibleSubjectsScenario(t *testing.T) {
	// Subjects A (no prerequisites) and B (requires A).
	g := buildGraph(t, 2)
	require.NoError(t, g.AddPrerequisite(2, 1))

	// Making A depend on B must be rejected.
	assert.ErrorIs(t, g.AddPrerequisite(1, 2), apperrors.ErrCycleDetected)

	eligible := g.EligibleSubjects(map[int64]struct{}{})
	require.Len(t, eligible, 1)
	assert.Equal(t, int64(1), eligible[0].ID)

	eligible = g.EligibleSubjects(map[int64]struct{}{1: {}})
	require.Len(t, eligible, 1)
	assert.Equal(t, int64(2), eligible[0].ID)
}

func TestTopologicalOrder(t *testing.T) {
	g := buildGraph(t, 6)
	edges := [][2]int64{{2, 1}, {4, 3}, {4, 2}, {5, 4}, {6, 5}, {6, 1}}
	for _, e := range edges {
		require.NoError(t, g.AddPrerequisite(e[0], e[1]))
	}

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 6)

	position := make(map[int64]int, len(order))
	for i, s := range order {
		position[s.ID] = i
	}
	for _, e := range edges {
		assert.Less(t, position[e[1]], position[e[0]],
			"prerequisite %d must come before %d", e[1], e[0])
	}
}

func TestTopologicalOrderReportsCorruption(t *testing.T) {
	g := buildGraph(t, 2)

	// Plant a two-cycle directly in the adjacency maps, bypassing the
	// mutation methods, to model external corruption of the invariant.
	g.prereqs[1][2] = struct{}{}
	g.dependents[2][1] = struct{}{}
	g.prereqs[2][1] = struct{}{}
	g.dependents[1][2] = struct{}{}

	_, err := g.TopologicalOrder()
	assert.ErrorIs(t, err, apperrors.ErrGraphCorrupted)
}

func TestTopologicalOrderDeterministicTies(t *testing.T) {
	g := buildGraph(t, 4)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	var got []int64
	for _, s := range order {
		got = append(got, s.ID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, got)
}
