package label

import (
	"github.com/ironsheep/morph-tools-mcp/internal/grid"
)

// maxCausal bounds the causal half of any predefined adjacency (Conn10T has 5).
const maxCausal = 8

type scanner struct {
	g          *grid.Grid
	equal      func(i, j int) bool
	background func(i int) bool // nil when every pixel is labeled

	prov  []int32 // provisional label per pixel, NoLabel for background
	table []int32 // equivalence table: table[l] points toward l's representative
}

func (s *scanner) run(adj grid.Adjacency) *Result {
	g := s.g
	causal := adj.Causal()
	s.prov = make([]int32, g.Len())
	s.table = s.table[:0]

	var matches [maxCausal]int32
	i := 0
	for t := 0; t < g.Duration; t++ {
		for z := 0; z < g.Depth; z++ {
			for y := 0; y < g.Height; y++ {
				for x := 0; x < g.Width; x++ {
					s.visit(i, x, y, z, t, causal, matches[:0])
					i++
				}
			}
		}
	}

	dense, count := s.compact()

	out := g.NewLike(1)
	for i, l := range s.prov {
		if l == NoLabel {
			out.Pix[i] = NoLabel
			continue
		}
		out.Pix[i] = float64(dense[l])
	}
	return &Result{Labels: out, Count: count}
}

func (s *scanner) visit(i, x, y, z, t int, causal []grid.Offset, matches []int32) {
	if s.background != nil && s.background(i) {
		s.prov[i] = NoLabel
		return
	}

	min := int32(NoLabel)
	for _, o := range causal {
		j, ok := s.g.Shift(x, y, z, t, o)
		if !ok {
			continue
		}
		l := s.prov[j]
		if l == NoLabel || !s.equal(i, j) {
			continue
		}
		matches = append(matches, l)
		if min == NoLabel || l < min {
			min = l
		}
	}

	if min == NoLabel {
		min = int32(len(s.table))
		s.table = append(s.table, min)
	} else {
		for _, l := range matches {
			if l != min {
				s.setTableMin(l, min)
			}
		}
	}
	s.prov[i] = min
}

// setTableMin rewrites every link on u's chain, endpoint included, to min.
func (s *scanner) setTableMin(u, min int32) {
	for {
		next := s.table[u]
		s.table[u] = min
		if next == u || next == min {
			return
		}
		u = next
	}
}

// compact resolves every provisional label to a fixed point of the table and
// numbers the fixed points densely.
//
// Chains are followed from the highest label down. Redirecting a chain's
// endpoint to a larger minimum in setTableMin can close a loop, so a label seen
// twice while resolving one chain means a cycle: every label on it is collapsed
// onto the label currently being resolved.
func (s *scanner) compact() ([]int32, int) {
	table := s.table
	n := len(table)
	seen := make([]int32, n)
	path := make([]int32, 0, 16)

	for i := n - 1; i >= 0; i-- {
		stamp := int32(i + 1)
		path = path[:0]
		j := int32(i)
		for table[j] != j {
			if seen[j] == stamp {
				j = int32(i)
				table[j] = j
				break
			}
			seen[j] = stamp
			path = append(path, j)
			j = table[j]
		}
		for _, k := range path {
			table[k] = j
		}
	}

	dense := make([]int32, n)
	count := 0
	for l := 0; l < n; l++ {
		if table[l] == int32(l) {
			dense[l] = int32(count)
			count++
		}
	}
	for l := 0; l < n; l++ {
		if table[l] != int32(l) {
			dense[l] = dense[table[l]]
		}
	}
	return dense, count
}
