package tool

import (
	"encoding/json"
	"math"
	"strconv"
)

// Params is the parameter object of a tool invocation, as decoded from JSON.
type Params map[string]any

// String returns the named parameter if it is a string, "" otherwise.
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Int returns the named parameter as an integer.
// JSON numbers and numeric strings are accepted; anything else yields 0.
func (p Params) Int(name string) int {
	switch v := p[name].(type) {
	case float64:
		return int(math.Trunc(v))
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(math.Trunc(f))
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return 0
}

// clone returns a shallow copy, so that applying defaults never touches the caller's map.
func (p Params) clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
