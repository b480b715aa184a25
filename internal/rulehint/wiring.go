package rulehint

import (
	"encoding/json"
	"errors"
	"fmt"
)

// #region wiring-types

// Component names accepted in wiring diagrams.
const (
	ComponentPred            = "context-pred"
	ComponentSelf            = "context-self"
	ComponentSucc            = "context-succ"
	ComponentOutput          = "output-sigil"
	ComponentOutputWithState = "output-with-state"
	ComponentAnd             = "bit-and"
	ComponentOr              = "bit-or"
	ComponentXor             = "bit-xor"
	ComponentNot             = "bit-not"
)

// ErrCycle is returned when a wiring diagram is not a DAG.
var ErrCycle = errors.New("wiring diagram has a cycle")

// Node is one gate or terminal of a wiring diagram.
type Node struct {
	ID        string `json:"id"`
	Component string `json:"component"`
}

// Edge feeds From's output into To. Port is "a" or "b" for binary gates.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Port string `json:"to-port,omitempty"`
}

// Diagram is a boolean circuit over the (pred, self, succ) neighborhood.
type Diagram struct {
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
	Output string `json:"output"`
}

// WiringMeta identifies a diagram.
type WiringMeta struct {
	ID      string `json:"id"`
	Formula string `json:"formula"`
}

// Wiring is the document form of a diagram.
type Wiring struct {
	Meta    WiringMeta `json:"meta"`
	Diagram Diagram    `json:"diagram"`
}

// #endregion wiring-types

// #region evaluate

// TruthTable evaluates the diagram on all eight neighborhoods.
func (d Diagram) TruthTable() (TruthTable, error) {
	var tt TruthTable
	order, err := d.order()
	if err != nil {
		return tt, err
	}
	output := d.Output
	if output == "" {
		output = "output"
	}
	for i := 0; i < 8; i++ {
		v, err := d.eval(order, output, neighborhoodOf(i))
		if err != nil {
			return tt, err
		}
		tt[7-i] = v
	}
	return tt, nil
}

// order returns node IDs in dependency order (Kahn's algorithm).
func (d Diagram) order() ([]string, error) {
	inDegree := make(map[string]int, len(d.Nodes))
	for _, n := range d.Nodes {
		inDegree[n.ID] = 0
	}
	adj := make(map[string][]string)
	for _, e := range d.Edges {
		if _, ok := inDegree[e.To]; ok {
			inDegree[e.To]++
		}
		adj[e.From] = append(adj[e.From], e.To)
	}

	var queue, order []string
	for _, n := range d.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(order) != len(d.Nodes) {
		return nil, fmt.Errorf("sorted %d of %d nodes: %w", len(order), len(d.Nodes), ErrCycle)
	}
	return order, nil
}

func (d Diagram) eval(order []string, output string, n Neighborhood) (int, error) {
	components := make(map[string]string, len(d.Nodes))
	for _, node := range d.Nodes {
		components[node.ID] = node.Component
	}
	inputs := make(map[string][]Edge)
	for _, e := range d.Edges {
		inputs[e.To] = append(inputs[e.To], e)
	}

	values := make(map[string]int, len(order))
	for _, id := range order {
		in := inputs[id]
		switch c := components[id]; c {
		case ComponentPred:
			values[id] = n.L
		case ComponentSelf:
			values[id] = n.C
		case ComponentSucc:
			values[id] = n.R
		case ComponentOutput, ComponentOutputWithState:
			if len(in) == 0 {
				return 0, fmt.Errorf("output node %q has no inputs", id)
			}
			values[id] = values[in[0].From]
		case ComponentNot:
			if len(in) == 0 {
				return 0, fmt.Errorf("%s node %q has no inputs", c, id)
			}
			values[id] = 1 - values[in[0].From]
		case ComponentAnd, ComponentOr, ComponentXor:
			if len(in) < 2 {
				return 0, fmt.Errorf("%s node %q needs 2 inputs, got %d", c, id, len(in))
			}
			a, b := ports(in, values)
			switch c {
			case ComponentAnd:
				values[id] = a & b
			case ComponentOr:
				values[id] = a | b
			default:
				values[id] = a ^ b
			}
		default:
			return 0, fmt.Errorf("node %q: unknown component %q", id, c)
		}
	}

	v, ok := values[output]
	if !ok {
		return 0, fmt.Errorf("output node %q not evaluated", output)
	}
	return v, nil
}

// ports resolves a binary gate's operands by port name, falling back to
// edge order when either port is unnamed.
func ports(in []Edge, values map[string]int) (int, int) {
	var a, b *int
	for _, e := range in {
		v := values[e.From]
		switch e.Port {
		case "a":
			a = &v
		case "b":
			b = &v
		}
	}
	if a == nil || b == nil {
		return values[in[0].From], values[in[1].From]
	}
	return *a, *b
}

// #endregion evaluate

// #region analyze-wiring

// ParseWiring decodes either a bare Wiring or one wrapped as {"wiring": ...}.
func ParseWiring(data []byte) (Wiring, error) {
	var wrapped struct {
		Wiring *Wiring `json:"wiring"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return Wiring{}, fmt.Errorf("parse wiring: %w", err)
	}
	if wrapped.Wiring != nil {
		return *wrapped.Wiring, nil
	}
	var w Wiring
	if err := json.Unmarshal(data, &w); err != nil {
		return Wiring{}, fmt.Errorf("parse wiring: %w", err)
	}
	return w, nil
}

// AnalyzeWiring evaluates the diagram and analyzes the resulting rule.
func AnalyzeWiring(w Wiring) (Report, error) {
	tt, err := w.Diagram.TruthTable()
	if err != nil {
		return Report{}, fmt.Errorf("evaluate wiring %q: %w", w.Meta.ID, err)
	}
	r := Analyze(tt)
	r.WiringID = w.Meta.ID
	r.Formula = w.Meta.Formula
	return r, nil
}

// #endregion analyze-wiring
