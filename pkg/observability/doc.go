/*
Package observability provides tools for monitoring the grading engine.

It turns the verifier's lifecycle hooks into Prometheus metrics and
structured log records, and instruments HTTP routers with request counters.
*/
package observability
