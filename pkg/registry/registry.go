package registry

import (
	"fmt"
	"sort"

	"github.com/aretw0/autograde/pkg/domain"
)

// NoActive is the index reported when the registry has no active exercise,
// either because it is empty or because every exercise is complete.
const NoActive = -1

// Registry is the ordered catalogue of exercises of one learner session.
// It owns the completion flags of its exercises.
//
// Registry is not safe for concurrent use; callers serialize access
// (see session.Manager).
type Registry struct {
	exercises []*domain.Exercise
	index     map[string]int
}

// New creates a registry from exercise definitions.
// Definitions are copied, ordered by Sequence (ties keep declaration order)
// and must have unique, non-empty names.
func New(exercises ...domain.Exercise) (*Registry, error) {
	r := &Registry{
		exercises: make([]*domain.Exercise, 0, len(exercises)),
		index:     make(map[string]int, len(exercises)),
	}

	for i := range exercises {
		ex := exercises[i]
		if ex.Name == "" {
			return nil, fmt.Errorf("exercise at position %d has no name", i)
		}
		r.exercises = append(r.exercises, &ex)
	}

	sort.SliceStable(r.exercises, func(i, j int) bool {
		return r.exercises[i].Sequence < r.exercises[j].Sequence
	})

	for i, ex := range r.exercises {
		if _, dup := r.index[ex.Name]; dup {
			return nil, fmt.Errorf("duplicate exercise name %q", ex.Name)
		}
		r.index[ex.Name] = i
	}
	return r, nil
}

// Find returns the exercise with the given name and its index.
// Returns domain.ErrExerciseNotFound if there is none.
func (r *Registry) Find(name string) (*domain.Exercise, int, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, NoActive, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, name)
	}
	return r.exercises[i], i, nil
}

// All returns the exercises in sequence order. The slice is a copy; the
// exercises are shared.
func (r *Registry) All() []*domain.Exercise {
	out := make([]*domain.Exercise, len(r.exercises))
	copy(out, r.exercises)
	return out
}

// Len returns the number of exercises.
func (r *Registry) Len() int {
	return len(r.exercises)
}

// At returns the exercise at index i.
func (r *Registry) At(i int) *domain.Exercise {
	return r.exercises[i]
}

// Active returns the first incomplete exercise in sequence order.
// Returns domain.ErrAllComplete when there is none.
func (r *Registry) Active() (int, *domain.Exercise, error) {
	for i, ex := range r.exercises {
		if !ex.Complete {
			return i, ex, nil
		}
	}
	return NoActive, nil, domain.ErrAllComplete
}

// IsAllComplete reports whether every exercise is complete.
// An empty registry is trivially complete.
func (r *Registry) IsAllComplete() bool {
	_, _, err := r.Active()
	return err != nil
}

// Reset marks every exercise incomplete and returns the resulting active
// index: 0, or NoActive when the registry is empty.
func (r *Registry) Reset() int {
	for _, ex := range r.exercises {
		ex.Complete = false
	}
	if len(r.exercises) == 0 {
		return NoActive
	}
	return 0
}

// MarkComplete sets the completion flag of the named exercise.
func (r *Registry) MarkComplete(name string) error {
	ex, _, err := r.Find(name)
	if err != nil {
		return err
	}
	ex.Complete = true
	return nil
}

// Completed returns the names of the complete exercises in sequence order.
func (r *Registry) Completed() []string {
	names := make([]string, 0, len(r.exercises))
	for _, ex := range r.exercises {
		if ex.Complete {
			names = append(names, ex.Name)
		}
	}
	return names
}

// Restore resets the registry and marks the named exercises complete.
// Names that are not in the registry are skipped and returned.
func (r *Registry) Restore(completed []string) (unknown []string) {
	r.Reset()
	for _, name := range completed {
		if i, ok := r.index[name]; ok {
			r.exercises[i].Complete = true
			continue
		}
		unknown = append(unknown, name)
	}
	return unknown
}
