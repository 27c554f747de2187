package force

import "math"

// maxDepth bounds subdivision so that nearly coincident points share a leaf.
const maxDepth = 32

// quad is a quadtree cell. Leaves hold node indices; all indices in a
// leaf share the same coordinates unless the depth limit was reached.
type quad struct {
	x0, y0, x1, y1 float64
	children       [4]*quad
	items          []int

	// aggregates filled in by the forces that walk the tree
	value  float64
	cx, cy float64
	r      float64
}

func (q *quad) leaf() bool {
	return q.children == [4]*quad{}
}

type quadtree struct {
	root   *quad
	xs, ys []float64
}

// newQuadtree indexes n points given by pos.
func newQuadtree(n int, pos func(i int) (x, y float64)) *quadtree {
	t := &quadtree{xs: make([]float64, n), ys: make([]float64, n)}
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for i := range n {
		x, y := pos(i)
		t.xs[i], t.ys[i] = x, y
		x0, y0 = math.Min(x0, x), math.Min(y0, y)
		x1, y1 = math.Max(x1, x), math.Max(y1, y)
	}
	if n == 0 {
		x0, y0, x1, y1 = 0, 0, 1, 1
	}
	size := math.Max(x1-x0, y1-y0)
	if size <= 0 {
		size = 1
	}
	// pad so points on the max edge fall strictly inside
	size *= 1 + 1e-9
	t.root = &quad{x0: x0, y0: y0, x1: x0 + size, y1: y0 + size}
	for i := range n {
		t.insert(t.root, i, 0)
	}
	return t
}

func (t *quadtree) insert(q *quad, i, depth int) {
	if q.leaf() {
		if len(q.items) == 0 || depth >= maxDepth || t.coincident(q.items[0], i) {
			q.items = append(q.items, i)
			return
		}
		existing := q.items
		q.items = nil
		for _, j := range existing {
			t.insertChild(q, j, depth)
		}
	}
	t.insertChild(q, i, depth)
}

func (t *quadtree) insertChild(q *quad, i, depth int) {
	xm, ym := (q.x0+q.x1)/2, (q.y0+q.y1)/2
	idx := 0
	x0, y0, x1, y1 := q.x0, q.y0, xm, ym
	if t.xs[i] >= xm {
		idx |= 1
		x0, x1 = xm, q.x1
	}
	if t.ys[i] >= ym {
		idx |= 2
		y0, y1 = ym, q.y1
	}
	if q.children[idx] == nil {
		q.children[idx] = &quad{x0: x0, y0: y0, x1: x1, y1: y1}
	}
	t.insert(q.children[idx], i, depth+1)
}

func (t *quadtree) coincident(i, j int) bool {
	return t.xs[i] == t.xs[j] && t.ys[i] == t.ys[j]
}

// visit walks the tree in pre-order. Children of a cell are skipped when
// fn returns true.
func (t *quadtree) visit(fn func(q *quad) bool) {
	stack := []*quad{t.root}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(q) {
			continue
		}
		for c := 3; c >= 0; c-- {
			if q.children[c] != nil {
				stack = append(stack, q.children[c])
			}
		}
	}
}

// visitAfter walks the tree in post-order.
func (t *quadtree) visitAfter(fn func(q *quad)) {
	var walk func(q *quad)
	walk = func(q *quad) {
		for _, c := range q.children {
			if c != nil {
				walk(c)
			}
		}
		fn(q)
	}
	walk(t.root)
}
