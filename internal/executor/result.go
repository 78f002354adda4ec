package executor

import (
	"bytes"
	"encoding/json"

	"github.com/elliotchance/orderedmap/v3"
	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
)

// ExecutionResult represents the result of executing a GraphQL query.
// Data is nil or an *Object. Errors marshal to their wire representation.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors gqlerrors.List `json:"errors,omitempty"`
}

// Response is the wire form of an ExecutionResult.
type Response struct {
	Data   any                   `json:"data"`
	Errors []gqlerrors.Formatted `json:"errors,omitempty"`
}

// Response converts r into its wire form. Data keeps its response-key
// order when marshalled.
func (r *ExecutionResult) Response() Response {
	out := Response{Data: r.Data}
	if len(r.Errors) > 0 {
		out.Errors = r.Errors.Formatted()
	}
	return out
}

// Object is a completed object value. Entries keep the order in which their
// response keys were collected.
type Object struct {
	entries *orderedmap.OrderedMap[string, any]
}

func NewObject() *Object {
	return &Object{entries: orderedmap.NewOrderedMap[string, any]()}
}

// Set stores value under key. Replacing a key keeps its position.
func (o *Object) Set(key string, value any) { o.entries.Set(key, value) }

func (o *Object) Get(key string) (any, bool) { return o.entries.Get(key) }

func (o *Object) Len() int { return o.entries.Len() }

func (o *Object) Keys() []string {
	keys := make([]string, 0, o.entries.Len())
	for el := o.entries.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for el := o.entries.Front(); el != nil; el = el.Next() {
		if el != o.entries.Front() {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(el.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(el.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain converts completed data into plain maps and slices, dropping key
// order. Other values are returned as they are.
func Plain(v any) any {
	switch v := v.(type) {
	case *Object:
		if v == nil {
			return nil
		}
		out := make(map[string]any, v.Len())
		for el := v.entries.Front(); el != nil; el = el.Next() {
			out[el.Key] = Plain(el.Value)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}
