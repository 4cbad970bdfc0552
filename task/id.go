package task

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// ID normalizes an identifier to its string token. Strings are used as-is and
// everything else is formatted with fmt.Sprint, which calls String on
// fmt.Stringer values. A nil id normalizes to "", and a nil pointer whose
// String method cannot handle it normalizes to "<nil>".
func ID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	default:
		return fmt.Sprint(v)
	}
}

// IDGenerator produces ids for Run nodes that were built without one.
// Implementations must be safe for concurrent use and never repeat an id.
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator issues time-ordered UUIDv7 tokens.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CounterGenerator issues prefix-qualified monotonically increasing ids.
type CounterGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewCounterGenerator creates a CounterGenerator whose first id is prefix+"1".
func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix}
}

func (g *CounterGenerator) NextID() string {
	return g.prefix + strconv.FormatUint(g.next.Add(1), 10)
}
