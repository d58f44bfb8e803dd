// Package catalog owns the in-process subject catalog and its prerequisite
// graph. The graph is the single authority for edge mutations: both adjacency
// directions are updated under one write lock, so the acyclicity invariant
// and the prerequisites/dependents mirror can never diverge.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mvarela/uniregistro/internal/app/models"
	"github.com/mvarela/uniregistro/internal/pkg/apperrors"
)

// Graph holds the subject catalog and the prerequisite edges. Reads take the
// read lock and never block each other; edge mutations take the write lock
// for the duration of the atomic update of both adjacency maps.
type Graph struct {
	mu         sync.RWMutex
	subjects   map[int64]models.Subject
	byCode     map[string]int64
	prereqs    map[int64]map[int64]struct{} // subject -> its prerequisites
	dependents map[int64]map[int64]struct{} // subject -> subjects that require it
}

// NewGraph creates an empty subject graph
func NewGraph() *Graph {
	return &Graph{
		subjects:   make(map[int64]models.Subject),
		byCode:     make(map[string]int64),
		prereqs:    make(map[int64]map[int64]struct{}),
		dependents: make(map[int64]map[int64]struct{}),
	}
}

// AddSubject registers a subject in the catalog
func (g *Graph) AddSubject(subject *models.Subject) error {
	if subject == nil {
		return apperrors.NewValidationError("subject is nil")
	}
	if subject.Credits < 0 {
		return apperrors.NewValidationError("credits must be non-negative")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.subjects[subject.ID]; ok {
		return fmt.Errorf("%w: subject id %d", apperrors.ErrDuplicateKey, subject.ID)
	}
	if _, ok := g.byCode[subject.Code]; ok {
		return fmt.Errorf("%w: subject code %q", apperrors.ErrDuplicateKey, subject.Code)
	}

	g.subjects[subject.ID] = models.Subject{
		ID:      subject.ID,
		Code:    subject.Code,
		Name:    subject.Name,
		Credits: subject.Credits,
	}
	g.byCode[subject.Code] = subject.ID
	g.prereqs[subject.ID] = make(map[int64]struct{})
	g.dependents[subject.ID] = make(map[int64]struct{})
	return nil
}

// AddPrerequisite adds the edge "prerequisiteID must be completed before
// subjectID". The edge is rejected with ErrCycleDetected when subjectID is
// already reachable from prerequisiteID through existing prerequisite edges;
// on rejection the graph is left untouched. An edge that is merely redundant,
// because the prerequisite is already required transitively, stays legal.
func (g *Graph) AddPrerequisite(subjectID, prerequisiteID int64) error {
	if subjectID == prerequisiteID {
		return fmt.Errorf("%w: subject cannot require itself", apperrors.ErrCycleDetected)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.subjects[subjectID]; !ok {
		return fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, subjectID)
	}
	if _, ok := g.subjects[prerequisiteID]; !ok {
		return fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, prerequisiteID)
	}

	// Reachability check before inserting: if the subject can already be
	// reached from the prerequisite, the new edge would close a cycle.
	if g.reachableLocked(subjectID, prerequisiteID) {
		return fmt.Errorf("%w: %d is reachable from %d", apperrors.ErrCycleDetected, subjectID, prerequisiteID)
	}

	g.prereqs[subjectID][prerequisiteID] = struct{}{}
	g.dependents[prerequisiteID][subjectID] = struct{}{}
	return nil
}

// RemovePrerequisite removes a prerequisite edge
func (g *Graph) RemovePrerequisite(subjectID, prerequisiteID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.subjects[subjectID]; !ok {
		return fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, subjectID)
	}
	if _, ok := g.prereqs[subjectID][prerequisiteID]; !ok {
		return fmt.Errorf("%w: no such prerequisite edge", apperrors.ErrNotFound)
	}

	delete(g.prereqs[subjectID], prerequisiteID)
	delete(g.dependents[prerequisiteID], subjectID)
	return nil
}

// RemoveSubject deletes a subject from the catalog. Deletion is blocked while
// other subjects still list it as a prerequisite; callers must unlink those
// edges explicitly first.
func (g *Graph) RemoveSubject(subjectID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	subject, ok := g.subjects[subjectID]
	if !ok {
		return fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, subjectID)
	}
	if len(g.dependents[subjectID]) > 0 {
		return fmt.Errorf("%w: subject %d", apperrors.ErrSubjectInUse, subjectID)
	}

	for prereqID := range g.prereqs[subjectID] {
		delete(g.dependents[prereqID], subjectID)
	}
	delete(g.prereqs, subjectID)
	delete(g.dependents, subjectID)
	delete(g.byCode, subject.Code)
	delete(g.subjects, subjectID)
	return nil
}

// reachableLocked reports whether target is reachable from start following
// prerequisite edges. Caller must hold at least the read lock.
func (g *Graph) reachableLocked(target, start int64) bool {
	if target == start {
		return true
	}
	visited := make(map[int64]struct{})
	stack := []int64{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}
		for next := range g.prereqs[current] {
			if next == target {
				return true
			}
			stack = append(stack, next)
		}
	}
	return false
}

// Contains reports whether the subject exists in the catalog
func (g *Graph) Contains(subjectID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.subjects[subjectID]
	return ok
}

// Get returns a copy of the subject with both edge sets populated
func (g *Graph) Get(subjectID int64) (*models.Subject, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	subject, ok := g.subjects[subjectID]
	if !ok {
		return nil, fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, subjectID)
	}
	return g.exportLocked(subject), nil
}

// GetByCode returns a copy of the subject identified by its unique code
func (g *Graph) GetByCode(code string) (*models.Subject, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: subject code %q", apperrors.ErrSubjectNotFound, code)
	}
	return g.exportLocked(g.subjects[id]), nil
}

// All returns every subject ordered by ascending id
func (g *Graph) All() []*models.Subject {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*models.Subject, 0, len(g.subjects))
	for _, subject := range g.subjects {
		out = append(out, g.exportLocked(subject))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Prerequisites returns the prerequisite ids of a subject
func (g *Graph) Prerequisites(subjectID int64) ([]int64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.subjects[subjectID]; !ok {
		return nil, fmt.Errorf("%w: subject %d", apperrors.ErrSubjectNotFound, subjectID)
	}
	return sortedIDs(g.prereqs[subjectID]), nil
}

// EligibleSubjects returns the subjects not yet completed whose entire
// prerequisite set is contained in completed. A pure read over the current
// graph; with an empty set it returns exactly the subjects with no
// prerequisites.
func (g *Graph) EligibleSubjects(completed map[int64]struct{}) []*models.Subject {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []*models.Subject
	for id, subject := range g.subjects {
		if _, done := completed[id]; done {
			continue
		}
		eligible := true
		for prereqID := range g.prereqs[id] {
			if _, done := completed[prereqID]; !done {
				eligible = false
				break
			}
		}
		if eligible {
			out = append(out, g.exportLocked(subject))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TopologicalOrder returns all subjects so that every subject appears after
// all of its prerequisites, ties broken by ascending id. A cycle here means
// the acyclicity invariant was corrupted outside the graph's mutation
// methods; it is reported as ErrGraphCorrupted, an integrity failure rather
// than an ordinary outcome.
func (g *Graph) TopologicalOrder() ([]*models.Subject, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	indegree := make(map[int64]int, len(g.subjects))
	for id := range g.subjects {
		indegree[id] = len(g.prereqs[id])
	}

	var ready []int64
	for id, degree := range indegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]*models.Subject, 0, len(g.subjects))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		id := ready[0]
		ready = ready[1:]
		out = append(out, g.exportLocked(g.subjects[id]))

		for dependentID := range g.dependents[id] {
			indegree[dependentID]--
			if indegree[dependentID] == 0 {
				ready = append(ready, dependentID)
			}
		}
	}

	if len(out) != len(g.subjects) {
		return nil, fmt.Errorf("%w: topological order impossible", apperrors.ErrGraphCorrupted)
	}
	return out, nil
}

// Len returns the number of subjects in the catalog
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.subjects)
}

// exportLocked builds the outward subject value with sorted edge slices.
// Caller must hold at least the read lock.
func (g *Graph) exportLocked(subject models.Subject) *models.Subject {
	subject.Prerequisites = sortedIDs(g.prereqs[subject.ID])
	subject.Dependents = sortedIDs(g.dependents[subject.ID])
	return &subject
}

func sortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
