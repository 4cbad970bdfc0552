// Package task defines the Task Tree: an immutable, composable description of
// deferred work returned by a store reducer.
//
// A tree is built from five variants:
//
//   - Empty performs no work and is the identity of both composition operators.
//   - Run is a single unit of asynchronous work identified by an id.
//   - Cancel requests cancellation of running work by id.
//   - Merged runs both sides concurrently and completes when both complete.
//   - Concatenated runs the right side only after the left side completes.
//
// Trees are composed with Merge and Concatenate, which drop Empty operands
// instead of wrapping them:
//
//	t := task.Concatenate(
//	    task.Run(fetchProfile, task.WithID("profile"), task.CancelInFlight()),
//	    task.Merge(task.Run(fetchA), task.Run(fetchB)),
//	)
//
// Nodes are never mutated after construction. Modifiers such as
// WithErrorHandler return a new Run node and leave every other variant
// unchanged.
//
// Operations receive a context that is cancelled when the work is cancelled
// and a Mutator that applies changes to the store's owned state under the
// store's single-writer lock. Cancellation is cooperative: an operation must
// observe ctx.Done() at its own suspension points.
package task
