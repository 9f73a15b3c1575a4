// Package jobs runs short background jobs on a bounded worker pool so slow
// side effects, such as publishing events to Redis, never hold up the
// request that caused them.
//
// Jobs are in-memory only. A full queue rejects new jobs instead of blocking,
// and Stop drains what was already queued.
package jobs
