/*
Package session implements session management and persistence orchestration.

Every learner session owns its own exercise registry, rebuilt from the shared
catalogue and the session's stored progress on each call. Calls for the same
session are serialized with a reference-counted local mutex and, optionally,
a distributed lock so that several replicas can share one progress store.
*/
package session
