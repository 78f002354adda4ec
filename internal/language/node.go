package language

import "reflect"

// Node is any syntax node that may carry a location. Selections from the
// parser satisfy it directly; other nodes are adapted with NodeAt.
type Node interface {
	GetPosition() *Position
}

type positioned struct{ pos *Position }

func (p positioned) GetPosition() *Position { return p.pos }

// NodeAt adapts a bare position (an operation, fragment definition, type
// reference, ...) into a Node. A nil position yields a node without location.
func NodeAt(pos *Position) Node { return positioned{pos: pos} }

// FieldNodes converts merged field nodes into a node list.
func FieldNodes(fields []*Field) []Node {
	nodes := make([]Node, len(fields))
	for i, f := range fields {
		nodes[i] = f
	}
	return nodes
}

// Span is the resolved location of a node.
type Span struct {
	Start  int
	End    int
	Source *Source
}

// SpanOf returns the location span of n. Nodes built without a position, or
// whose position has no source, report false.
func SpanOf(n Node) (Span, bool) {
	if n == nil {
		return Span{}, false
	}
	if rv := reflect.ValueOf(n); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return Span{}, false
	}
	pos := n.GetPosition()
	if pos == nil || pos.Src == nil {
		return Span{}, false
	}
	return Span{Start: pos.Start, End: pos.End, Source: SourceOf(pos.Src)}, true
}
