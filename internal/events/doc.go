// Package events provides an in-process publish/subscribe mechanism for
// scheduling events: task creation, raised conflicts, and resolved conflicts.
//
// Services emit events after their unit of work commits. Handlers such as the
// Redis publisher subscribe without the services knowing about them.
package events
