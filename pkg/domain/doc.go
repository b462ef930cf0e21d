/*
Package domain contains the core domain models of the autograde engine.

It defines the exercises a learner works through, the conditions an exercise
declares, and the snapshot of a terminal session that is graded against them.
This package is kept pure and free of I/O or persistence concerns, following
Hexagonal Architecture principles.

# Key Entities

  - Exercise: One gradable unit of an ordered curriculum, verified either by rules or by an eject hook.
  - Condition: A closed set of rule variants (regex, filesystem, environment variable).
  - UserState: The immutable snapshot of a learner's terminal at the moment of a grading attempt.
  - Progress: The durable projection of which exercises a session has completed.
*/
package domain
