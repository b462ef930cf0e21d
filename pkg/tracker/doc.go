// Package tracker exposes the learner-facing views of a session: start and
// end messages, hints, status, reset and submission.
package tracker
