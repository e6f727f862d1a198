package workflow

import (
	"fmt"

	"github.com/Shadota/VN-Background-Generator/internal/domain"
)

// OptionalNode declares an enhancement node that may be absent from an
// instantiated graph. Controls names the placeholder whose resolved value
// decides selection: empty (or the LoraNone sentinel) removes the node.
// PassThrough maps each of the node's output indexes to the input name it
// forwards unchanged from upstream, which is what makes removal a generic
// graph rewiring instead of per-component logic.
type OptionalNode struct {
	NodeID      string
	Controls    Placeholder
	PassThrough map[int]string
}

// Template is a parametric rendering job graph. The graph held here is
// never mutated: Instantiate always works on a deep copy.
type Template struct {
	graph     Graph
	optionals []OptionalNode
}

// NewTemplate wraps a graph and its optional-node declarations.
func NewTemplate(g Graph, optionals ...OptionalNode) *Template {
	return &Template{graph: g, optionals: optionals}
}

// Instantiate produces a fully-resolved graph for one job: deep copy,
// optional-node removal with edge rewiring, placeholder substitution,
// then DAG validation. The returned seed is the one substituted into the
// graph (relevant when the caller requested a random seed).
func (t *Template) Instantiate(p Params) (Graph, int64, error) {
	g := t.graph.Clone()
	seed := p.EffectiveSeed()

	for _, opt := range t.optionals {
		selected, err := t.optionalSelected(opt, &p, seed)
		if err != nil {
			return nil, 0, err
		}
		if selected {
			continue
		}
		if err := removeNode(g, opt); err != nil {
			return nil, 0, err
		}
	}

	for id, node := range g {
		for name, v := range node.Inputs {
			ph, ok := isPlaceholder(v)
			if !ok {
				continue
			}
			resolved, err := p.resolve(ph, seed)
			if err != nil {
				return nil, 0, &domain.TemplateError{
					Reason: fmt.Sprintf("node %s input %q: %v", id, name, err),
				}
			}
			node.Inputs[name] = resolved
		}
	}

	if err := g.Validate(); err != nil {
		return nil, 0, err
	}
	return g, seed, nil
}

func (t *Template) optionalSelected(opt OptionalNode, p *Params, seed int64) (bool, error) {
	v, err := p.resolve(opt.Controls, seed)
	if err != nil {
		return false, err
	}
	s, ok := v.(string)
	if !ok {
		return false, &domain.TemplateError{
			Reason: fmt.Sprintf("optional node %s is controlled by non-string placeholder %s", opt.NodeID, opt.Controls),
		}
	}
	return s != "" && s != LoraNone, nil
}

// removeNode drops an optional node and rewires every consumer of its
// outputs to the node's own upstream producer, per the declared
// pass-through mapping. Connectivity and acyclicity are preserved because
// the substituted reference already existed in the graph.
func removeNode(g Graph, opt OptionalNode) error {
	node, exists := g[opt.NodeID]
	if !exists {
		return &domain.TemplateError{Reason: "optional node " + opt.NodeID + " not in graph"}
	}

	for id, consumer := range g {
		if id == opt.NodeID {
			continue
		}
		for name, v := range consumer.Inputs {
			ref, out, ok := AsRef(v)
			if !ok || ref != opt.NodeID {
				continue
			}
			inputName, declared := opt.PassThrough[out]
			if !declared {
				return &domain.TemplateError{
					Reason: fmt.Sprintf("node %s input %q references output %d of removed node %s with no pass-through", id, name, out, opt.NodeID),
				}
			}
			upstream, exists := node.Inputs[inputName]
			if !exists {
				return &domain.TemplateError{
					Reason: fmt.Sprintf("removed node %s has no input %q to forward", opt.NodeID, inputName),
				}
			}
			if _, _, isRef := AsRef(upstream); !isRef {
				return &domain.TemplateError{
					Reason: fmt.Sprintf("removed node %s input %q is not a reference", opt.NodeID, inputName),
				}
			}
			consumer.Inputs[name] = upstream
		}
	}

	delete(g, opt.NodeID)
	return nil
}
