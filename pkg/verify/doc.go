// Package verify implements the verification pipeline that grades one
// learner snapshot against one exercise.
//
// The pipeline runs in a fixed order: resolve the exercise, check that every
// earlier exercise is complete, then either run the exercise's eject hook or
// its rule checks (command, output, cwd, filesystem, environment). The first
// failing rule short-circuits with a *domain.RejectionError whose reason is
// shown to the learner verbatim.
//
// Eject hooks run behind a fault boundary: panics, errors, non-boolean
// results and timeouts are logged and leave the exercise incomplete. They are
// never returned to the caller.
package verify
