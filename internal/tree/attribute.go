package tree

import (
	"errors"
	"fmt"
	"sort"
)

// Kind identifies an attribute. Built-in kinds are declared below; other
// packages may define their own and Register an Attribute for them.
type Kind string

const (
	KindArea           Kind = "area"
	KindSum            Kind = "sum"
	KindEnergy         Kind = "energy"
	KindPerimeter      Kind = "perimeter"
	KindVolume         Kind = "volume"
	KindCompactness    Kind = "compactness"
	KindComplexity     Kind = "complexity"
	KindSimplicity     Kind = "simplicity"
	KindEnergyPerPixel Kind = "energy_per_pixel"
)

var (
	// ErrAttributeNotFound is matched by every *AttributeNotFoundError.
	ErrAttributeNotFound = errors.New("tree: attribute not found")
	// ErrMergeUnsupported is returned by attributes that cannot fuse two values.
	ErrMergeUnsupported = errors.New("tree: attribute does not support merging")
	// ErrUnknownKind is returned by ComputeAttributes for unregistered kinds.
	ErrUnknownKind = errors.New("tree: unknown attribute kind")
)

// AttributeNotFoundError reports a node lacking a required attribute.
type AttributeNotFoundError struct {
	Kind Kind
	Node NodeID
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("tree: node %d has no %q attribute", e.Node, e.Kind)
}

func (e *AttributeNotFoundError) Unwrap() error {
	return ErrAttributeNotFound
}

// Attribute computes a per-node value in one pass over the tree.
type Attribute interface {
	Kind() Kind
	// Compute attaches a value to every reachable node.
	Compute(t *Tree) error
	// MergeWith fuses from's value into into's.
	MergeWith(t *Tree, into, from NodeID) error
}

var registry = map[Kind]Attribute{
	KindArea:           Area{},
	KindSum:            Sum{},
	KindEnergy:         Energy{},
	KindPerimeter:      Perimeter{},
	KindVolume:         Volume{},
	KindCompactness:    Compactness{},
	KindComplexity:     Complexity{},
	KindSimplicity:     Simplicity{},
	KindEnergyPerPixel: EnergyPerPixel{},
}

// Register makes a for its kind available to ComputeAttributes, replacing
// any previous registration. It is not safe for concurrent use with Lookup.
func Register(a Attribute) {
	registry[a.Kind()] = a
}

// Lookup returns the attribute registered for kind.
func Lookup(kind Kind) (Attribute, bool) {
	a, ok := registry[kind]
	return a, ok
}

// Kinds lists the registered kinds in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ComputeAttributes runs the registered attributes for kinds in the given
// order, so prerequisites must come first.
func (t *Tree) ComputeAttributes(kinds ...Kind) error {
	for _, k := range kinds {
		a, ok := Lookup(k)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
		if err := a.Compute(t); err != nil {
			return fmt.Errorf("compute %s: %w", k, err)
		}
	}
	return nil
}

// SetAttribute attaches v to node id under kind. The slice is retained.
func (t *Tree) SetAttribute(kind Kind, id NodeID, v []float64) {
	col, ok := t.attrs[kind]
	if !ok || len(col) < len(t.nodes) {
		grown := make([][]float64, len(t.nodes))
		copy(grown, col)
		col = grown
		t.attrs[kind] = col
	}
	col[id] = v
}

// Attribute returns the value attached to id under kind.
func (t *Tree) Attribute(kind Kind, id NodeID) ([]float64, error) {
	if col, ok := t.attrs[kind]; ok && int(id) < len(col) && id >= 0 && col[id] != nil {
		return col[id], nil
	}
	return nil, &AttributeNotFoundError{Kind: kind, Node: id}
}

// Scalar returns the first component of the value attached to id under kind.
func (t *Tree) Scalar(kind Kind, id NodeID) (float64, error) {
	v, err := t.Attribute(kind, id)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// HasAttribute reports whether id carries a value for kind.
func (t *Tree) HasAttribute(kind Kind, id NodeID) bool {
	_, err := t.Attribute(kind, id)
	return err == nil
}

// DropAttribute removes every value of kind.
func (t *Tree) DropAttribute(kind Kind) {
	delete(t.attrs, kind)
}
