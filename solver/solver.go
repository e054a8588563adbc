// Package solver implements an incremental Cassowary linear constraint solver.
//
// Constraints and edit variables can be added and removed at any time; each
// change re-optimises the existing tableau instead of solving from scratch.
// Required constraints are hard; weaker constraints are satisfied as far as
// the required ones and the strength ordering allow.
package solver

import (
	"fmt"
	"math"
	"sort"
)

type tag struct {
	marker symbol
	other  symbol
}

type editInfo struct {
	tag        tag
	constraint *Constraint
	constant   float64
}

// Solver holds a simplex tableau. It is not safe for concurrent use.
type Solver struct {
	constraints map[*Constraint]tag
	rows        map[symbol]*row
	vars        map[*Variable]symbol
	edits       map[*Variable]*editInfo
	infeasible  []symbol
	objective   *row
	artificial  *row
	tick        uint64

	// last reported value per variable, for FetchChanges
	reported map[*Variable]float64
}

// New returns an empty solver.
func New() *Solver {
	s := &Solver{}
	s.Reset()
	return s
}

// Reset discards every constraint and edit variable.
func (s *Solver) Reset() {
	s.constraints = make(map[*Constraint]tag)
	s.rows = make(map[symbol]*row)
	s.vars = make(map[*Variable]symbol)
	s.edits = make(map[*Variable]*editInfo)
	s.infeasible = nil
	s.objective = newRow(0)
	s.artificial = nil
	s.reported = make(map[*Variable]float64)
}

// NumConstraints returns the number of constraints in the solver, including
// the implicit constraints backing edit variables.
func (s *Solver) NumConstraints() int {
	return len(s.constraints)
}

// HasConstraint reports whether c has been added.
func (s *Solver) HasConstraint(c *Constraint) bool {
	_, ok := s.constraints[c]
	return ok
}

// AddConstraint adds c to the solver. A required constraint that conflicts
// with the existing required constraints is rejected with
// ErrUnsatisfiableConstraint and leaves the solver unchanged.
func (s *Solver) AddConstraint(c *Constraint) error {
	if _, ok := s.constraints[c]; ok {
		return fmt.Errorf("add %s: %w", c, ErrDuplicateConstraint)
	}

	r, t := s.createRow(c)
	subject := s.chooseSubject(r, t)

	if !subject.valid() && allDummies(r) {
		if !nearZero(r.constant) {
			s.dropUnusedVars(c)
			return fmt.Errorf("add %s: %w", c, ErrUnsatisfiableConstraint)
		}
		subject = t.marker
	}

	if !subject.valid() {
		// Only required rows reach this point and createRow has not touched
		// the tableau for them, so a snapshot here is the pre-add state.
		saved := s.snapshot()
		ok, err := s.addWithArtificialVariable(r)
		if err != nil || !ok {
			s.restore(saved)
			s.dropUnusedVars(c)
		}
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("add %s: %w", c, ErrUnsatisfiableConstraint)
		}
	} else {
		r.solveFor(subject)
		s.substitute(subject, r)
		s.rows[subject] = r
	}

	s.constraints[c] = t
	return s.optimize(s.objective)
}

// RemoveConstraint removes a previously added constraint.
func (s *Solver) RemoveConstraint(c *Constraint) error {
	t, ok := s.constraints[c]
	if !ok {
		return fmt.Errorf("remove %s: %w", c, ErrUnknownConstraint)
	}
	delete(s.constraints, c)
	s.removeConstraintEffects(c, t)

	if _, ok := s.rows[t.marker]; ok {
		delete(s.rows, t.marker)
	} else {
		leaving, r := s.markerLeavingRow(t.marker)
		if r == nil {
			return fmt.Errorf("remove %s: no leaving row for marker: %w", c, ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForSymbols(leaving, t.marker)
		s.substitute(t.marker, r)
	}
	if err := s.optimize(s.objective); err != nil {
		return err
	}
	s.dropUnusedVars(c)
	return nil
}

// AddEditVariable makes v suggestible at the given non-required strength.
func (s *Solver) AddEditVariable(v *Variable, strength Strength) error {
	if _, ok := s.edits[v]; ok {
		return fmt.Errorf("edit %s: %w", v.name, ErrDuplicateEditVariable)
	}
	strength = strength.Clip()
	if strength.IsRequired() {
		return fmt.Errorf("edit %s: %w", v.name, ErrBadRequiredStrength)
	}
	c := NewConstraint(v.Expression(), OpEQ, strength)
	if err := s.AddConstraint(c); err != nil {
		return err
	}
	s.edits[v] = &editInfo{tag: s.constraints[c], constraint: c}
	return nil
}

// RemoveEditVariable removes the edit constraint on v.
func (s *Solver) RemoveEditVariable(v *Variable) error {
	info, ok := s.edits[v]
	if !ok {
		return fmt.Errorf("remove edit %s: %w", v.name, ErrUnknownEditVariable)
	}
	delete(s.edits, v)
	return s.RemoveConstraint(info.constraint)
}

// HasEditVariable reports whether v is an edit variable.
func (s *Solver) HasEditVariable(v *Variable) bool {
	_, ok := s.edits[v]
	return ok
}

// EditVariables returns the edit variables with their current suggested
// values.
func (s *Solver) EditVariables() map[*Variable]float64 {
	out := make(map[*Variable]float64, len(s.edits))
	for v, info := range s.edits {
		out[v] = info.constant
	}
	return out
}

// EditStrength returns the strength v was registered with.
func (s *Solver) EditStrength(v *Variable) (Strength, bool) {
	info, ok := s.edits[v]
	if !ok {
		return 0, false
	}
	return info.constraint.strength, true
}

// SuggestValue suggests value for the edit variable v. The suggestion is
// honoured as far as the edit strength allows.
func (s *Solver) SuggestValue(v *Variable, value float64) error {
	info, ok := s.edits[v]
	if !ok {
		return fmt.Errorf("suggest %s: %w", v.name, ErrUnknownEditVariable)
	}
	delta := value - info.constant
	info.constant = value

	if r, ok := s.rows[info.tag.marker]; ok {
		if r.add(-delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.marker)
		}
		return s.dualOptimize()
	}
	if r, ok := s.rows[info.tag.other]; ok {
		if r.add(delta) < 0 {
			s.infeasible = append(s.infeasible, info.tag.other)
		}
		return s.dualOptimize()
	}
	for _, sym := range s.sortedRowSymbols() {
		r := s.rows[sym]
		c := r.coefficientFor(info.tag.marker)
		if c != 0 && r.add(delta*c) < 0 && sym.kind != symExternal {
			s.infeasible = append(s.infeasible, sym)
		}
	}
	return s.dualOptimize()
}

// UpdateVariables writes the solved value into every known variable.
func (s *Solver) UpdateVariables() {
	for v, sym := range s.vars {
		if r, ok := s.rows[sym]; ok {
			v.value = cleanZero(r.constant)
		} else {
			v.value = 0
		}
	}
}

// FetchChanges updates every variable and returns those whose value moved
// since the previous call, ordered by creation. A second call with no
// intervening change returns nil.
func (s *Solver) FetchChanges() []*Variable {
	s.UpdateVariables()
	var changed []*Variable
	for v := range s.vars {
		last, seen := s.reported[v]
		if seen && nearZero(v.value-last) {
			continue
		}
		if !seen && nearZero(v.value) {
			// a fresh variable at zero has not moved from its initial value
			s.reported[v] = v.value
			continue
		}
		s.reported[v] = v.value
		changed = append(changed, v)
	}
	for v, last := range s.reported {
		if _, live := s.vars[v]; !live {
			delete(s.reported, v)
			if !nearZero(last) {
				v.value = 0
				changed = append(changed, v)
			}
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].id < changed[j].id })
	return changed
}

func (s *Solver) newSymbol(kind symbolKind) symbol {
	s.tick++
	return symbol{id: s.tick, kind: kind}
}

func (s *Solver) varSymbol(v *Variable) symbol {
	if sym, ok := s.vars[v]; ok {
		return sym
	}
	sym := s.newSymbol(symExternal)
	s.vars[v] = sym
	return sym
}

// dropUnusedVars forgets the external symbols of c's variables once no row
// refers to them any more.
func (s *Solver) dropUnusedVars(c *Constraint) {
	for _, t := range c.expr.Terms {
		sym, ok := s.vars[t.Variable]
		if !ok {
			continue
		}
		if s.symbolInUse(sym) {
			continue
		}
		delete(s.vars, t.Variable)
	}
}

func (s *Solver) symbolInUse(sym symbol) bool {
	if _, ok := s.rows[sym]; ok {
		return true
	}
	for _, r := range s.rows {
		if _, ok := r.cells[sym]; ok {
			return true
		}
	}
	_, ok := s.objective.cells[sym]
	return ok
}

type tableau struct {
	rows       map[symbol]*row
	objective  *row
	infeasible []symbol
}

func (s *Solver) snapshot() tableau {
	t := tableau{
		rows:       make(map[symbol]*row, len(s.rows)),
		objective:  s.objective.copy(),
		infeasible: append([]symbol(nil), s.infeasible...),
	}
	for sym, r := range s.rows {
		t.rows[sym] = r.copy()
	}
	return t
}

func (s *Solver) restore(t tableau) {
	s.rows = t.rows
	s.objective = t.objective
	s.infeasible = t.infeasible
	s.artificial = nil
}

func (s *Solver) createRow(c *Constraint) (*row, tag) {
	r := newRow(c.expr.Constant)
	for _, term := range c.expr.Terms {
		if nearZero(term.Coefficient) {
			continue
		}
		sym := s.varSymbol(term.Variable)
		if basic, ok := s.rows[sym]; ok {
			r.insertRow(basic, term.Coefficient)
		} else {
			r.insertSymbol(sym, term.Coefficient)
		}
	}

	var t tag
	strength := float64(c.strength)
	switch c.op {
	case OpLE, OpGE:
		coefficient := 1.0
		if c.op == OpGE {
			coefficient = -1.0
		}
		slack := s.newSymbol(symSlack)
		t.marker = slack
		r.insertSymbol(slack, coefficient)
		if !c.strength.IsRequired() {
			errSym := s.newSymbol(symError)
			t.other = errSym
			r.insertSymbol(errSym, -coefficient)
			s.objective.insertSymbol(errSym, strength)
		}
	case OpEQ:
		if !c.strength.IsRequired() {
			plus := s.newSymbol(symError)
			minus := s.newSymbol(symError)
			t.marker = plus
			t.other = minus
			r.insertSymbol(plus, -1)
			r.insertSymbol(minus, 1)
			s.objective.insertSymbol(plus, strength)
			s.objective.insertSymbol(minus, strength)
		} else {
			dummy := s.newSymbol(symDummy)
			t.marker = dummy
			r.insertSymbol(dummy, 1)
		}
	}

	if r.constant < 0 {
		r.reverseSign()
	}
	return r, t
}

// chooseSubject picks the symbol the new row is solved for: the oldest
// external symbol, else a negative slack or error marker.
func (s *Solver) chooseSubject(r *row, t tag) symbol {
	var subject symbol
	for sym := range r.cells {
		if sym.kind == symExternal && (!subject.valid() || sym.before(subject)) {
			subject = sym
		}
	}
	if subject.valid() {
		return subject
	}
	if t.marker.kind == symSlack || t.marker.kind == symError {
		if r.coefficientFor(t.marker) < 0 {
			return t.marker
		}
	}
	if t.other.kind == symSlack || t.other.kind == symError {
		if r.coefficientFor(t.other) < 0 {
			return t.other
		}
	}
	return symbol{}
}

func allDummies(r *row) bool {
	for sym := range r.cells {
		if sym.kind != symDummy {
			return false
		}
	}
	return true
}

func (s *Solver) addWithArtificialVariable(r *row) (bool, error) {
	art := s.newSymbol(symSlack)
	s.rows[art] = r.copy()
	s.artificial = r.copy()

	if err := s.optimize(s.artificial); err != nil {
		s.artificial = nil
		return false, err
	}
	success := nearZero(s.artificial.constant)
	s.artificial = nil

	if basic, ok := s.rows[art]; ok {
		delete(s.rows, art)
		if len(basic.cells) == 0 {
			return success, nil
		}
		entering := anyPivotableSymbol(basic)
		if !entering.valid() {
			return false, nil
		}
		basic.solveForSymbols(art, entering)
		s.substitute(entering, basic)
		s.rows[entering] = basic
	}

	for _, other := range s.rows {
		other.remove(art)
	}
	s.objective.remove(art)
	return success, nil
}

func anyPivotableSymbol(r *row) symbol {
	var best symbol
	for sym := range r.cells {
		if sym.kind == symSlack || sym.kind == symError {
			if !best.valid() || sym.before(best) {
				best = sym
			}
		}
	}
	return best
}

func (s *Solver) substitute(sym symbol, r *row) {
	for _, basic := range s.sortedRowSymbols() {
		other := s.rows[basic]
		other.substitute(sym, r)
		if basic.kind != symExternal && other.constant < 0 {
			s.infeasible = append(s.infeasible, basic)
		}
	}
	s.objective.substitute(sym, r)
	if s.artificial != nil {
		s.artificial.substitute(sym, r)
	}
}

func (s *Solver) optimize(objective *row) error {
	for {
		entering := enteringSymbol(objective)
		if !entering.valid() {
			return nil
		}
		leaving, r := s.leavingRow(entering)
		if r == nil {
			return fmt.Errorf("objective function is unbounded: %w", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForSymbols(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
}

func (s *Solver) dualOptimize() error {
	for len(s.infeasible) > 0 {
		leaving := s.infeasible[len(s.infeasible)-1]
		s.infeasible = s.infeasible[:len(s.infeasible)-1]

		r, ok := s.rows[leaving]
		if !ok || nearZero(r.constant) || r.constant >= 0 {
			continue
		}
		entering := s.dualEnteringSymbol(r)
		if !entering.valid() {
			return fmt.Errorf("dual optimize failed: %w", ErrInternal)
		}
		delete(s.rows, leaving)
		r.solveForSymbols(leaving, entering)
		s.substitute(entering, r)
		s.rows[entering] = r
	}
	return nil
}

// enteringSymbol returns the oldest non-dummy symbol with a negative
// objective coefficient.
func enteringSymbol(objective *row) symbol {
	var best symbol
	for sym, c := range objective.cells {
		if sym.kind != symDummy && c < 0 && (!best.valid() || sym.before(best)) {
			best = sym
		}
	}
	return best
}

func (s *Solver) dualEnteringSymbol(r *row) symbol {
	var entering symbol
	ratio := math.MaxFloat64
	for sym, c := range r.cells {
		if c <= 0 || sym.kind == symDummy {
			continue
		}
		v := s.objective.coefficientFor(sym) / c
		if v < ratio || (v == ratio && sym.before(entering)) {
			ratio = v
			entering = sym
		}
	}
	return entering
}

func (s *Solver) leavingRow(entering symbol) (symbol, *row) {
	ratio := math.MaxFloat64
	var found symbol
	var foundRow *row
	for sym, r := range s.rows {
		if sym.kind == symExternal {
			continue
		}
		c := r.coefficientFor(entering)
		if c >= 0 {
			continue
		}
		v := -r.constant / c
		if v < ratio || (v == ratio && sym.before(found)) {
			ratio = v
			found = sym
			foundRow = r
		}
	}
	return found, foundRow
}

// markerLeavingRow finds the row to pivot out when removing a constraint
// whose marker is not basic.
func (s *Solver) markerLeavingRow(marker symbol) (symbol, *row) {
	r1, r2 := math.MaxFloat64, math.MaxFloat64
	var first, second, third symbol
	for sym, r := range s.rows {
		c := r.coefficientFor(marker)
		if c == 0 {
			continue
		}
		switch {
		case sym.kind == symExternal:
			if !third.valid() || sym.before(third) {
				third = sym
			}
		case c < 0:
			v := -r.constant / c
			if v < r1 || (v == r1 && sym.before(first)) {
				r1 = v
				first = sym
			}
		default:
			v := r.constant / c
			if v < r2 || (v == r2 && sym.before(second)) {
				r2 = v
				second = sym
			}
		}
	}
	for _, sym := range []symbol{first, second, third} {
		if sym.valid() {
			return sym, s.rows[sym]
		}
	}
	return symbol{}, nil
}

func (s *Solver) removeConstraintEffects(c *Constraint, t tag) {
	if t.marker.kind == symError {
		s.removeMarkerEffects(t.marker, c.strength)
	}
	if t.other.kind == symError {
		s.removeMarkerEffects(t.other, c.strength)
	}
}

func (s *Solver) removeMarkerEffects(marker symbol, strength Strength) {
	if r, ok := s.rows[marker]; ok {
		s.objective.insertRow(r, -float64(strength))
	} else {
		s.objective.insertSymbol(marker, -float64(strength))
	}
}

func (s *Solver) sortedRowSymbols() []symbol {
	syms := make([]symbol, 0, len(s.rows))
	for sym := range s.rows {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i].id < syms[j].id })
	return syms
}

func cleanZero(v float64) float64 {
	if nearZero(v) {
		return 0
	}
	return v
}
