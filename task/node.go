package task

import (
	"context"
	"slices"
)

// Kind identifies a Task Tree variant.
type Kind int

const (
	KindEmpty Kind = iota
	KindRun
	KindCancel
	KindMerged
	KindConcatenated
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindRun:
		return "run"
	case KindCancel:
		return "cancel"
	case KindMerged:
		return "merged"
	case KindConcatenated:
		return "concatenated"
	default:
		return "unknown"
	}
}

// Mutator applies fn to the owned state while holding the store's state lock.
type Mutator[S any] func(fn func(state *S))

// Operation is the deferred work carried by a Run node.
type Operation[S any] func(ctx context.Context, mutate Mutator[S]) error

// ErrorHandler recovers a failed Run operation. Cancellation is reported as a
// *CancellationError; use IsCancellation to tell it apart from application
// failures.
type ErrorHandler[S any] func(err error, mutate Mutator[S])

// Node is a Task Tree node. The interface is sealed: the only implementations
// are EmptyNode, RunNode, CancelNode, MergedNode and ConcatenatedNode.
type Node[S any] interface {
	Kind() Kind

	// WithErrorHandler returns a Run node with its error handler replaced.
	// Other variants return themselves.
	WithErrorHandler(h ErrorHandler[S]) Node[S]

	// Cancellable returns a Run node with its id and cancel-in-flight flag
	// replaced. Other variants return themselves.
	Cancellable(id any, cancelInFlight bool) Node[S]

	// WithPriority returns a Run node with its priority replaced.
	// Other variants return themselves.
	WithPriority(p Priority) Node[S]

	// FlattenMerged returns the ordered leaves of the Merged tree rooted at
	// this node. Subtrees of any other kind are returned intact.
	FlattenMerged() []Node[S]

	// FlattenConcatenated returns the ordered leaves of the Concatenated
	// tree rooted at this node. Subtrees of any other kind are returned intact.
	FlattenConcatenated() []Node[S]

	sealed()
}

// EmptyNode performs no work.
type EmptyNode[S any] struct{}

func (EmptyNode[S]) Kind() Kind                                 { return KindEmpty }
func (n EmptyNode[S]) WithErrorHandler(ErrorHandler[S]) Node[S] { return n }
func (n EmptyNode[S]) Cancellable(any, bool) Node[S]            { return n }
func (n EmptyNode[S]) WithPriority(Priority) Node[S]            { return n }
func (EmptyNode[S]) FlattenMerged() []Node[S]                   { return nil }
func (EmptyNode[S]) FlattenConcatenated() []Node[S]             { return nil }
func (EmptyNode[S]) sealed()                                    {}

// RunNode is a single deferred unit of work. An empty ID means the store
// assigns a generated id when the node is interpreted.
type RunNode[S any] struct {
	id             string
	operation      Operation[S]
	onError        ErrorHandler[S]
	cancelInFlight bool
	priority       Priority
}

func (n *RunNode[S]) ID() string                     { return n.id }
func (n *RunNode[S]) Operation() Operation[S]        { return n.operation }
func (n *RunNode[S]) ErrorHandler() ErrorHandler[S]  { return n.onError }
func (n *RunNode[S]) CancelInFlight() bool           { return n.cancelInFlight }
func (n *RunNode[S]) Priority() Priority             { return n.priority }
func (n *RunNode[S]) Kind() Kind                     { return KindRun }
func (n *RunNode[S]) FlattenMerged() []Node[S]       { return []Node[S]{n} }
func (n *RunNode[S]) FlattenConcatenated() []Node[S] { return []Node[S]{n} }
func (n *RunNode[S]) sealed()                        {}

func (n *RunNode[S]) WithErrorHandler(h ErrorHandler[S]) Node[S] {
	c := *n
	c.onError = h
	return &c
}

func (n *RunNode[S]) Cancellable(id any, cancelInFlight bool) Node[S] {
	c := *n
	c.id = ID(id)
	c.cancelInFlight = cancelInFlight
	return &c
}

func (n *RunNode[S]) WithPriority(p Priority) Node[S] {
	c := *n
	c.priority = p
	return &c
}

// CancelNode requests cancellation of the listed ids. Ids that are not
// running are ignored.
type CancelNode[S any] struct {
	ids []string
}

// IDs returns a copy of the ids to cancel, in request order.
func (n *CancelNode[S]) IDs() []string                            { return slices.Clone(n.ids) }
func (n *CancelNode[S]) Kind() Kind                               { return KindCancel }
func (n *CancelNode[S]) WithErrorHandler(ErrorHandler[S]) Node[S] { return n }
func (n *CancelNode[S]) Cancellable(any, bool) Node[S]            { return n }
func (n *CancelNode[S]) WithPriority(Priority) Node[S]            { return n }
func (n *CancelNode[S]) FlattenMerged() []Node[S]                 { return []Node[S]{n} }
func (n *CancelNode[S]) FlattenConcatenated() []Node[S]           { return []Node[S]{n} }
func (n *CancelNode[S]) sealed()                                  {}

// MergedNode runs Left and Right concurrently.
type MergedNode[S any] struct {
	left, right Node[S]
}

func (n *MergedNode[S]) Left() Node[S]                            { return n.left }
func (n *MergedNode[S]) Right() Node[S]                           { return n.right }
func (n *MergedNode[S]) Kind() Kind                               { return KindMerged }
func (n *MergedNode[S]) WithErrorHandler(ErrorHandler[S]) Node[S] { return n }
func (n *MergedNode[S]) Cancellable(any, bool) Node[S]            { return n }
func (n *MergedNode[S]) WithPriority(Priority) Node[S]            { return n }
func (n *MergedNode[S]) FlattenMerged() []Node[S]                 { return flatten[S](n, KindMerged) }
func (n *MergedNode[S]) FlattenConcatenated() []Node[S]           { return []Node[S]{n} }
func (n *MergedNode[S]) sealed()                                  {}

// ConcatenatedNode runs Right after Left completes.
type ConcatenatedNode[S any] struct {
	left, right Node[S]
}

func (n *ConcatenatedNode[S]) Left() Node[S]                            { return n.left }
func (n *ConcatenatedNode[S]) Right() Node[S]                           { return n.right }
func (n *ConcatenatedNode[S]) Kind() Kind                               { return KindConcatenated }
func (n *ConcatenatedNode[S]) WithErrorHandler(ErrorHandler[S]) Node[S] { return n }
func (n *ConcatenatedNode[S]) Cancellable(any, bool) Node[S]            { return n }
func (n *ConcatenatedNode[S]) WithPriority(Priority) Node[S]            { return n }
func (n *ConcatenatedNode[S]) FlattenMerged() []Node[S]                 { return []Node[S]{n} }
func (n *ConcatenatedNode[S]) FlattenConcatenated() []Node[S]           { return flatten[S](n, KindConcatenated) }
func (n *ConcatenatedNode[S]) sealed()                                  {}
