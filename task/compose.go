package task

import "context"

// RunOption configures a Run node at construction.
type RunOption func(*runSettings)

type runSettings struct {
	id             string
	cancelInFlight bool
	priority       Priority
}

// WithID sets the node id. Any value is accepted and normalized with ID.
func WithID(id any) RunOption {
	return func(s *runSettings) { s.id = ID(id) }
}

// CancelInFlight makes the node pre-empt running work that shares its id.
func CancelInFlight() RunOption {
	return func(s *runSettings) { s.cancelInFlight = true }
}

// AtPriority sets the scheduling hint for the node.
func AtPriority(p Priority) RunOption {
	return func(s *runSettings) { s.priority = p }
}

// Empty returns the node that performs no work.
func Empty[S any]() Node[S] {
	return EmptyNode[S]{}
}

// Run returns a node that executes op. Run panics if op is nil.
func Run[S any](op Operation[S], opts ...RunOption) Node[S] {
	return RunCatching(op, nil, opts...)
}

// RunCatching returns a node that executes op and hands any failure to
// onError. A nil onError discards failures.
func RunCatching[S any](op Operation[S], onError ErrorHandler[S], opts ...RunOption) Node[S] {
	if op == nil {
		panic("task: nil operation")
	}

	var settings runSettings
	for _, opt := range opts {
		opt(&settings)
	}

	return &RunNode[S]{
		id:             settings.id,
		operation:      op,
		onError:        onError,
		cancelInFlight: settings.cancelInFlight,
		priority:       settings.priority,
	}
}

// Update returns a Run node that applies fn to the owned state and finishes.
func Update[S any](fn func(state *S), opts ...RunOption) Node[S] {
	return Run(func(ctx context.Context, mutate Mutator[S]) error {
		mutate(fn)
		return nil
	}, opts...)
}

// Cancel returns a node that cancels the given ids, in order.
func Cancel[S any](ids ...any) Node[S] {
	normalized := make([]string, 0, len(ids))
	for _, id := range ids {
		normalized = append(normalized, ID(id))
	}
	return &CancelNode[S]{ids: normalized}
}

// Merge composes nodes for concurrent execution. An empty list yields Empty,
// a single node is returned unchanged, and Empty operands are dropped.
func Merge[S any](nodes ...Node[S]) Node[S] {
	return fold(nodes, merged[S])
}

// Concatenate composes nodes for sequential execution. An empty list yields
// Empty, a single node is returned unchanged, and Empty operands are dropped.
func Concatenate[S any](nodes ...Node[S]) Node[S] {
	return fold(nodes, concatenated[S])
}

func fold[S any](nodes []Node[S], combine func(l, r Node[S]) Node[S]) Node[S] {
	switch len(nodes) {
	case 0:
		return Empty[S]()
	case 1:
		if nodes[0] == nil {
			return Empty[S]()
		}
		return nodes[0]
	}

	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = combine(acc, n)
	}
	return acc
}

func merged[S any](l, r Node[S]) Node[S] {
	if isEmpty(l) {
		return orEmpty(r)
	}
	if isEmpty(r) {
		return l
	}
	return &MergedNode[S]{left: l, right: r}
}

func concatenated[S any](l, r Node[S]) Node[S] {
	if isEmpty(l) {
		return orEmpty(r)
	}
	if isEmpty(r) {
		return l
	}
	return &ConcatenatedNode[S]{left: l, right: r}
}

func isEmpty[S any](n Node[S]) bool {
	return n == nil || n.Kind() == KindEmpty
}

func orEmpty[S any](n Node[S]) Node[S] {
	if n == nil {
		return Empty[S]()
	}
	return n
}
