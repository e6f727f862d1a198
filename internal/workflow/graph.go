package workflow

import (
	"fmt"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
)

// Node is one step in a rendering job graph. Inputs hold either literal
// values or references to another node's output.
type Node struct {
	ClassType string                 `json:"class_type"`
	Inputs    map[string]interface{} `json:"inputs"`
}

// Graph is the node-and-edge computation graph submitted to the rendering
// backend, keyed by node id. It must stay a DAG: every reference resolves
// to an existing node and no reference chain loops back on itself.
type Graph map[string]*Node

// Ref builds a node-output reference in the backend's wire shape:
// a two element array of [nodeID, outputIndex].
func Ref(nodeID string, output int) []interface{} {
	return []interface{}{nodeID, output}
}

// AsRef inspects an input value and returns the referenced node id and
// output index when the value is a reference.
func AsRef(v interface{}) (string, int, bool) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 2 {
		return "", 0, false
	}
	id, ok := arr[0].(string)
	if !ok {
		return "", 0, false
	}
	switch idx := arr[1].(type) {
	case int:
		return id, idx, true
	case float64:
		return id, int(idx), true
	}
	return "", 0, false
}

// Clone deep-copies the graph so instantiation never mutates a template.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for id, node := range g {
		inputs := make(map[string]interface{}, len(node.Inputs))
		for name, v := range node.Inputs {
			if arr, ok := v.([]interface{}); ok {
				copied := make([]interface{}, len(arr))
				copy(copied, arr)
				inputs[name] = copied
			} else {
				inputs[name] = v
			}
		}
		out[id] = &Node{ClassType: node.ClassType, Inputs: inputs}
	}
	return out
}

// Validate checks the DAG invariant: every reference resolves and no
// node reaches itself through reference edges.
func (g Graph) Validate() error {
	for id, node := range g {
		for name, v := range node.Inputs {
			ref, _, ok := AsRef(v)
			if !ok {
				continue
			}
			if _, exists := g[ref]; !exists {
				return &domain.TemplateError{
					Reason: fmt.Sprintf("node %s input %q references missing node %s", id, name, ref),
				}
			}
		}
	}

	// Cycle detection with the usual three-color DFS.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g))
	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for name, v := range g[id].Inputs {
			ref, _, ok := AsRef(v)
			if !ok {
				continue
			}
			switch color[ref] {
			case gray:
				return &domain.TemplateError{
					Reason: fmt.Sprintf("cycle through node %s input %q", id, name),
				}
			case white:
				if err := visit(ref); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}
	for id := range g {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
