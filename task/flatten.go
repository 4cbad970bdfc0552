package task

import (
	"strings"
)

// flatten walks the tree rooted at root with an explicit stack, descending
// only through nodes of the given kind. Depth is bounded by heap, not by the
// goroutine stack.
func flatten[S any](root Node[S], kind Kind) []Node[S] {
	if isEmpty(root) {
		return nil
	}

	var out []Node[S]
	stack := []Node[S]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		left, right, ok := children(n, kind)
		if !ok {
			if !isEmpty(n) {
				out = append(out, n)
			}
			continue
		}
		stack = append(stack, right, left)
	}
	return out
}

func children[S any](n Node[S], kind Kind) (Node[S], Node[S], bool) {
	switch v := n.(type) {
	case *MergedNode[S]:
		if kind == KindMerged {
			return v.left, v.right, true
		}
	case *ConcatenatedNode[S]:
		if kind == KindConcatenated {
			return v.left, v.right, true
		}
	}
	return nil, nil, false
}

// Leaves counts the Run and Cancel nodes in the tree.
func Leaves[S any](root Node[S]) int {
	count := 0
	stack := []Node[S]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := n.(type) {
		case *RunNode[S], *CancelNode[S]:
			count++
		case *MergedNode[S]:
			stack = append(stack, v.right, v.left)
		case *ConcatenatedNode[S]:
			stack = append(stack, v.right, v.left)
		}
	}
	return count
}

const describeLimit = 512

// Describe renders a compact form of the tree for logs, e.g.
// "concat(run(a), merge(run, cancel(c)))". Unnamed Run nodes appear as "run".
// Output longer than an internal limit is truncated with "...".
func Describe[S any](root Node[S]) string {
	type frame struct {
		node Node[S]
		text string
	}

	var b strings.Builder
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		if b.Len() > describeLimit {
			b.WriteString("...")
			break
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.node == nil {
			b.WriteString(f.text)
			continue
		}

		var (
			name  string
			items []Node[S]
		)
		switch v := f.node.(type) {
		case EmptyNode[S]:
			b.WriteString("empty")
			continue
		case *RunNode[S]:
			if v.id == "" {
				b.WriteString("run")
			} else {
				b.WriteString("run(" + v.id + ")")
			}
			continue
		case *CancelNode[S]:
			b.WriteString("cancel(" + strings.Join(v.ids, ",") + ")")
			continue
		case *MergedNode[S]:
			name, items = "merge(", v.FlattenMerged()
		case *ConcatenatedNode[S]:
			name, items = "concat(", v.FlattenConcatenated()
		default:
			continue
		}

		b.WriteString(name)
		stack = append(stack, frame{text: ")"})
		for i := len(items) - 1; i >= 0; i-- {
			stack = append(stack, frame{node: items[i]})
			if i > 0 {
				stack = append(stack, frame{text: ", "})
			}
		}
	}
	return b.String()
}
