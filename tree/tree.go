package tree

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Value is either a Scalar or a Node.
type Value interface {
	isValue()
}

// Scalar is a leaf value, already rendered as the string that ends up in the environment.
type Scalar string

// Node is a mapping whose fields keep source document order.
type Node []Field

// Field is a single key/value pair of a Node.
type Field struct {
	Key   string
	Value Value
}

func (Scalar) isValue() {}
func (Node) isValue()   {}

// Get returns the value of the first field named key.
func (n Node) Get(key string) (Value, bool) {
	for _, f := range n {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// FromMap converts a decoded map into a Node. Map keys have no order of their own,
// so fields are sorted by key to keep traversal deterministic.
func FromMap(m map[string]any) Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := make(Node, 0, len(keys))
	for _, k := range keys {
		node = append(node, Field{Key: k, Value: fromAny(m[k])})
	}
	return node
}

func fromAny(value any) Value {
	switch v := value.(type) {
	case nil:
		return Node(nil)
	case map[string]any:
		return FromMap(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, val := range v {
			converted[fmt.Sprint(key)] = val
		}
		return FromMap(converted)
	case []any:
		node := make(Node, 0, len(v))
		for i, item := range v {
			node = append(node, Field{Key: strconv.Itoa(i), Value: fromAny(item)})
		}
		return node
	default:
		return Scalar(stringify(v))
	}
}

// stringify renders a decoded leaf the way it should read in an environment variable.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
