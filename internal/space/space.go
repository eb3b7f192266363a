package space

import (
	"fmt"
	"math"

	"github.com/tunesmith/tunesmith/internal/model"
	tunesmitherrors "github.com/tunesmith/tunesmith/pkg/errors"
)

// Kind discriminates the three node variants of a configuration space.
type Kind int

const (
	// KindLeaf wraps a single variable and its candidate values.
	KindLeaf Kind = iota
	// KindProduct combines independent children; every combination of child
	// assignments is a candidate.
	KindProduct
	// KindChoice selects exactly one child branch per candidate.
	KindChoice
)

// Variable is a named, ordered, non-empty set of candidate values. Immutable
// after the space is built.
type Variable struct {
	Name   string
	Values []string
}

// Node is one vertex of the configuration tree. The kind field is the single
// dispatch point for counting, enumeration and indexing.
type Node struct {
	kind     Kind
	variable Variable
	children []*Node
	count    int64
}

// Kind returns the node variant.
func (n *Node) Kind() Kind {
	return n.kind
}

// Count returns the number of concrete assignments this subtree describes.
// The value is computed once at construction.
func (n *Node) Count() int64 {
	return n.count
}

// NewLeaf builds a leaf node. A leaf with no values describes nothing and is
// rejected.
func NewLeaf(name string, values []string) (*Node, error) {
	if name == "" {
		return nil, tunesmitherrors.NewConfigurationError("space", "variable with empty name", nil)
	}
	if len(values) == 0 {
		return nil, tunesmitherrors.NewConfigurationError("space", fmt.Sprintf("variable %q has no values", name), nil)
	}
	vals := make([]string, len(values))
	copy(vals, values)
	return &Node{
		kind:     KindLeaf,
		variable: Variable{Name: name, Values: vals},
		count:    int64(len(vals)),
	}, nil
}

// NewProduct builds a product node. Children must not share variable names:
// a variable may only be assigned once along any path.
func NewProduct(children ...*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, tunesmitherrors.NewConfigurationError("space", "product with no children", nil)
	}
	if len(children) == 1 {
		return children[0], nil
	}

	seen := map[string]bool{}
	for _, child := range children {
		for _, v := range child.variables() {
			if seen[v.Name] {
				return nil, tunesmitherrors.NewConfigurationError("space", fmt.Sprintf("variable %q appears twice within one combination", v.Name), nil)
			}
			seen[v.Name] = true
		}
	}

	count := int64(1)
	for _, child := range children {
		if child.count != 0 && count > math.MaxInt64/child.count {
			return nil, tunesmitherrors.NewConfigurationError("space", "combination count overflows int64", nil)
		}
		count *= child.count
	}
	if count <= 0 {
		return nil, tunesmitherrors.NewConfigurationError("space", "product describes no assignments", nil)
	}
	return &Node{kind: KindProduct, children: children, count: count}, nil
}

// NewChoice builds a choice node. Branches are alternatives; their variable
// sets may overlap or differ entirely.
func NewChoice(children ...*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, tunesmitherrors.NewConfigurationError("space", "choice with no branches", nil)
	}
	if len(children) == 1 {
		return children[0], nil
	}

	count := int64(0)
	for _, child := range children {
		if count > math.MaxInt64-child.count {
			return nil, tunesmitherrors.NewConfigurationError("space", "combination count overflows int64", nil)
		}
		count += child.count
	}
	if count <= 0 {
		return nil, tunesmitherrors.NewConfigurationError("space", "choice describes no assignments", nil)
	}
	return &Node{kind: KindChoice, children: children, count: count}, nil
}

// variables walks the subtree left to right and returns every variable
// occurrence in declaration order, duplicates included.
func (n *Node) variables() []Variable {
	switch n.kind {
	case KindLeaf:
		return []Variable{n.variable}
	default:
		var out []Variable
		for _, child := range n.children {
			out = append(out, child.variables()...)
		}
		return out
	}
}

// Space is an immutable configuration space: a tree of variables plus the
// derived variable list. Built once, then shared read-only across goroutines.
type Space struct {
	root *Node
	vars []Variable
}

// New wraps a root node into a Space.
func New(root *Node) (*Space, error) {
	if root == nil {
		return nil, tunesmitherrors.NewConfigurationError("space", "empty space", nil)
	}
	return &Space{root: root, vars: dedupeVariables(root.variables())}, nil
}

// dedupeVariables keeps first-occurrence order and merges the value sets of
// repeated names (a variable may recur across choice branches).
func dedupeVariables(all []Variable) []Variable {
	index := map[string]int{}
	var out []Variable
	for _, v := range all {
		i, ok := index[v.Name]
		if !ok {
			index[v.Name] = len(out)
			out = append(out, Variable{Name: v.Name, Values: append([]string(nil), v.Values...)})
			continue
		}
		for _, val := range v.Values {
			if !containsValue(out[i].Values, val) {
				out[i].Values = append(out[i].Values, val)
			}
		}
	}
	return out
}

func containsValue(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

// Count returns the total number of candidate assignments.
func (s *Space) Count() int64 {
	return s.root.count
}

// Variables returns every variable of the space in declaration order, first
// occurrence first. Repeated names carry the union of their value sets. The
// result log derives its column order from this list.
func (s *Space) Variables() []Variable {
	return s.vars
}

// HasVariable reports whether any path of the space assigns name.
func (s *Space) HasVariable(name string) bool {
	for _, v := range s.vars {
		if v.Name == name {
			return true
		}
	}
	return false
}

// At returns the assignment at the given position in the deterministic
// enumeration order. Positions run from 0 to Count()-1.
func (s *Space) At(index int64) (model.Assignment, error) {
	if index < 0 || index >= s.root.count {
		return nil, fmt.Errorf("assignment index %d out of range [0,%d)", index, s.root.count)
	}
	a := model.Assignment{}
	s.root.at(index, a)
	return a, nil
}

// at fills a with the assignment at position index within this subtree.
// Product children vary with the rightmost child fastest; choice branches
// are concatenated in declaration order.
func (n *Node) at(index int64, a model.Assignment) {
	switch n.kind {
	case KindLeaf:
		a[n.variable.Name] = n.variable.Values[index]
	case KindProduct:
		for i := len(n.children) - 1; i >= 0; i-- {
			child := n.children[i]
			child.at(index%child.count, a)
			index /= child.count
		}
	case KindChoice:
		for _, child := range n.children {
			if index < child.count {
				child.at(index, a)
				return
			}
			index -= child.count
		}
	}
}
