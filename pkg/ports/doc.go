/*
Package ports defines the driven ports (interfaces) for the grading engine.

These interfaces decouple sessions from external implementations, allowing
progress to live in memory, on disk, in SQLite or in Redis.

# Key Interfaces

  - ProgressStore: Responsible for persisting and loading session Progress.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
