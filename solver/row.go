package solver

const (
	epsilon   = 1.0e-8
	tolerance = 1.0e-6
)

func nearZero(v float64) bool {
	if v < 0 {
		return -v < epsilon
	}
	return v < epsilon
}

type symbolKind uint8

const (
	symInvalid symbolKind = iota
	symExternal
	symSlack
	symError
	symDummy
)

// symbol identifies a tableau column. Ids increase with creation order and
// are used to break pivoting ties deterministically.
type symbol struct {
	id   uint64
	kind symbolKind
}

func (s symbol) valid() bool { return s.kind != symInvalid }

// before reports whether s was created before o.
func (s symbol) before(o symbol) bool { return s.id < o.id }

// row is one tableau row: basic = constant + sum(coefficient * symbol).
type row struct {
	cells    map[symbol]float64
	constant float64
}

func newRow(constant float64) *row {
	return &row{cells: make(map[symbol]float64), constant: constant}
}

func (r *row) copy() *row {
	c := &row{cells: make(map[symbol]float64, len(r.cells)), constant: r.constant}
	for s, v := range r.cells {
		c.cells[s] = v
	}
	return c
}

// add adds v to the constant and returns the new constant.
func (r *row) add(v float64) float64 {
	r.constant += v
	return r.constant
}

func (r *row) insertSymbol(s symbol, coefficient float64) {
	v := r.cells[s] + coefficient
	if nearZero(v) {
		delete(r.cells, s)
		return
	}
	r.cells[s] = v
}

// insertRow adds other scaled by coefficient. other must not be r.
func (r *row) insertRow(other *row, coefficient float64) {
	r.constant += other.constant * coefficient
	for s, v := range other.cells {
		r.insertSymbol(s, v*coefficient)
	}
}

func (r *row) remove(s symbol) {
	delete(r.cells, s)
}

func (r *row) reverseSign() {
	r.constant = -r.constant
	for s, v := range r.cells {
		r.cells[s] = -v
	}
}

// solveFor rewrites the row so that s is its basic symbol. s must be in the
// row.
func (r *row) solveFor(s symbol) {
	coefficient := -1.0 / r.cells[s]
	delete(r.cells, s)
	r.constant *= coefficient
	for k, v := range r.cells {
		r.cells[k] = v * coefficient
	}
}

// solveForSymbols rewrites "lhs = row" in terms of rhs.
func (r *row) solveForSymbols(lhs, rhs symbol) {
	r.insertSymbol(lhs, -1)
	r.solveFor(rhs)
}

func (r *row) coefficientFor(s symbol) float64 {
	return r.cells[s]
}

// substitute replaces s by the expression in other.
func (r *row) substitute(s symbol, other *row) {
	if c, ok := r.cells[s]; ok {
		delete(r.cells, s)
		r.insertRow(other, c)
	}
}
