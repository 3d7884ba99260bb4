package tree

// Filter selects nodes for pruning.
type Filter interface {
	Filter(t *Tree, id NodeID) (bool, error)
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(t *Tree, id NodeID) (bool, error)

func (f FilterFunc) Filter(t *Tree, id NodeID) (bool, error) {
	return f(t, id)
}

// AreaBelow selects nodes with fewer pixels than the threshold. Pruning with
// it on a max-tree is an area opening.
type AreaBelow int

func (a AreaBelow) Filter(t *Tree, id NodeID) (bool, error) {
	return t.nodes[id].area < int(a), nil
}

// AreaAbove selects nodes with more pixels than the threshold.
type AreaAbove int

func (a AreaAbove) Filter(t *Tree, id NodeID) (bool, error) {
	return t.nodes[id].area > int(a), nil
}

// AttributeAtLeast selects nodes whose attribute is at least Threshold. The
// attribute must already be computed.
type AttributeAtLeast struct {
	Kind      Kind
	Threshold float64
}

func (f AttributeAtLeast) Filter(t *Tree, id NodeID) (bool, error) {
	v, err := t.Scalar(f.Kind, id)
	if err != nil {
		return false, err
	}
	return v >= f.Threshold, nil
}

// AttributeBelow selects nodes whose attribute is strictly below Threshold.
type AttributeBelow struct {
	Kind      Kind
	Threshold float64
}

func (f AttributeBelow) Filter(t *Tree, id NodeID) (bool, error) {
	v, err := t.Scalar(f.Kind, id)
	if err != nil {
		return false, err
	}
	return v < f.Threshold, nil
}
