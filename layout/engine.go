package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/solver"
)

// Config controls an Engine.
type Config struct {
	// EditStrength is the strength edit variables are created with by
	// UpdateVariable. It must not be Required.
	EditStrength solver.Strength

	Logger *slog.Logger
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{EditStrength: solver.Strong}
}

// Changes is the result of Solve: the variables whose value moved and the
// nodes they belong to, both in a deterministic order.
type Changes struct {
	Nodes []NodeID
	Vars  []*solver.Variable
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool { return len(c.Vars) == 0 }

type record struct {
	owner NodeID
	seq   uint64
}

// Engine owns the solver and tracks which node every constraint belongs to,
// so a node's constraints can be removed with it. It is not safe for
// concurrent use; all calls happen on the UI goroutine.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	solver *solver.Solver

	nodes   map[NodeID]*Node
	varNode map[*solver.Variable]NodeID

	records map[*solver.Constraint]record
	owned   map[NodeID][]*solver.Constraint
	refs    map[NodeID]map[*solver.Constraint]struct{}
	seq     uint64

	// suggested values of edit variables, replayed by rebuild
	edits map[*solver.Variable]float64
}

// NewEngine creates an empty engine.
func NewEngine(cfg Config) *Engine {
	if cfg.EditStrength <= 0 || cfg.EditStrength.IsRequired() {
		cfg.EditStrength = DefaultConfig().EditStrength
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:     cfg,
		log:     log.With("component", "layout"),
		solver:  solver.New(),
		nodes:   make(map[NodeID]*Node),
		varNode: make(map[*solver.Variable]NodeID),
		records: make(map[*solver.Constraint]record),
		owned:   make(map[NodeID][]*solver.Constraint),
		refs:    make(map[NodeID]map[*solver.Constraint]struct{}),
		edits:   make(map[*solver.Variable]float64),
	}
}

// NumConstraints returns the number of constraints in the solver, edit
// constraints included.
func (e *Engine) NumConstraints() int {
	return e.solver.NumConstraints()
}

// Node returns a registered node.
func (e *Engine) Node(id NodeID) (*Node, bool) {
	n, ok := e.nodes[id]
	return n, ok
}

// ConstraintsOf returns the constraints owned by a node in the order they
// were added, intrinsic ones first.
func (e *Engine) ConstraintsOf(id NodeID) []*solver.Constraint {
	return append([]*solver.Constraint(nil), e.owned[id]...)
}

// Register adds a node with its intrinsic and pending constraints. Either all
// of them are added or none are.
func (e *Engine) Register(n *Node) error {
	if n.engine != nil {
		return &Error{Op: "register", Node: n.id, Name: n.name, Err: ErrAlreadyRegistered}
	}
	if _, ok := e.nodes[n.id]; ok {
		return &Error{Op: "register", Node: n.id, Name: n.name, Err: ErrAlreadyRegistered}
	}

	e.nodes[n.id] = n
	for _, v := range n.Vars() {
		e.varNode[v] = n.id
	}

	cs := append(n.intrinsic(), n.pending...)
	if err := e.addAll("register", n.id, cs); err != nil {
		for _, v := range n.Vars() {
			delete(e.varNode, v)
		}
		delete(e.nodes, n.id)
		delete(e.owned, n.id)
		delete(e.refs, n.id)
		return err
	}

	n.pending = nil
	n.engine = e
	e.log.Debug("node registered", "node", n.name, "id", n.id, "constraints", len(cs))
	return nil
}

// Unregister removes a node, every constraint it owns, every constraint of
// another node that refers to it, and its edit variables.
func (e *Engine) Unregister(id NodeID) error {
	n, ok := e.nodes[id]
	if !ok {
		return &Error{Op: "unregister", Node: id, Err: ErrNotRegistered}
	}

	var doomed []*solver.Constraint
	doomed = append(doomed, e.owned[id]...)
	for c := range e.refs[id] {
		if e.records[c].owner != id {
			doomed = append(doomed, c)
		}
	}
	e.sortBySeq(doomed)

	var rebuild bool
	for _, v := range n.Vars() {
		if !e.solver.HasEditVariable(v) {
			continue
		}
		delete(e.edits, v)
		if err := e.solver.RemoveEditVariable(v); err != nil {
			if !errors.Is(err, solver.ErrInternal) {
				return e.wrap("unregister", id, nil, err)
			}
			rebuild = true
		}
	}
	for _, c := range doomed {
		if err := e.solver.RemoveConstraint(c); err != nil {
			if !errors.Is(err, solver.ErrInternal) {
				return e.wrap("unregister", id, c, err)
			}
			rebuild = true
		}
		e.forget(c)
	}

	for _, v := range n.Vars() {
		delete(e.varNode, v)
	}
	delete(e.nodes, id)
	delete(e.owned, id)
	delete(e.refs, id)
	n.engine = nil

	e.log.Debug("node unregistered", "node", n.name, "id", id, "constraints", len(doomed))
	if rebuild {
		return e.rebuild()
	}
	return nil
}

// AddConstraints adds constraints owned by a registered node. The batch is
// atomic: on the first failure the constraints already added are removed
// again and the error names the offending constraint and its axis.
func (e *Engine) AddConstraints(owner NodeID, cs ...*solver.Constraint) error {
	if _, ok := e.nodes[owner]; !ok {
		return &Error{Op: "add", Node: owner, Err: ErrNotRegistered}
	}
	return e.addAll("add", owner, cs)
}

// RemoveConstraints removes previously added constraints. An unknown
// constraint fails before anything is removed.
func (e *Engine) RemoveConstraints(cs ...*solver.Constraint) error {
	for _, c := range cs {
		if _, ok := e.records[c]; !ok {
			return e.wrap("remove", 0, c, solver.ErrUnknownConstraint)
		}
	}
	var rebuild bool
	for _, c := range cs {
		owner := e.records[c].owner
		if err := e.solver.RemoveConstraint(c); err != nil {
			if !errors.Is(err, solver.ErrInternal) {
				return e.wrap("remove", owner, c, err)
			}
			rebuild = true
		}
		e.forget(c)
	}
	if rebuild {
		return e.rebuild()
	}
	return nil
}

// UpdateVariable suggests a value for a node variable. The variable becomes
// an edit variable at the configured strength on first use, so the value is
// honoured only as far as stronger constraints allow.
func (e *Engine) UpdateVariable(v *solver.Variable, value float64) error {
	id, ok := e.varNode[v]
	if !ok {
		return &Error{Op: "update", Err: fmt.Errorf("%s: %w", v.Name(), ErrUnknownVariable)}
	}
	if !e.solver.HasEditVariable(v) {
		if err := e.solver.AddEditVariable(v, e.cfg.EditStrength); err != nil {
			return e.wrapVar("update", id, v, err)
		}
	}
	if err := e.solver.SuggestValue(v, value); err != nil {
		if !errors.Is(err, solver.ErrInternal) {
			return e.wrapVar("update", id, v, err)
		}
		e.edits[v] = value
		return e.rebuild()
	}
	e.edits[v] = value
	return nil
}

// FetchBounds returns the solved rectangle of a registered node.
func (e *Engine) FetchBounds(id NodeID) (geom.Rect, bool) {
	n, ok := e.nodes[id]
	if !ok {
		return geom.Rect{}, false
	}
	return n.Bounds(), true
}

// Solve publishes the current solution into the variables and returns what
// changed since the previous Solve. A second call without any mutation in
// between returns an empty Changes.
func (e *Engine) Solve() Changes {
	vars := e.solver.FetchChanges()
	if len(vars) == 0 {
		return Changes{}
	}
	seen := make(map[NodeID]bool, len(vars))
	var nodes []NodeID
	for _, v := range vars {
		id, ok := e.varNode[v]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	return Changes{Nodes: nodes, Vars: vars}
}

func (e *Engine) addAll(op string, owner NodeID, cs []*solver.Constraint) error {
	added := make([]*solver.Constraint, 0, len(cs))
	for _, c := range cs {
		if err := e.add(owner, c); err != nil {
			for i := len(added) - 1; i >= 0; i-- {
				if rerr := e.solver.RemoveConstraint(added[i]); rerr != nil {
					e.log.Error("rollback failed", "constraint", added[i].String(), "error", rerr)
				}
				e.forget(added[i])
			}
			return e.wrap(op, owner, c, err)
		}
		added = append(added, c)
	}
	return nil
}

func (e *Engine) add(owner NodeID, c *solver.Constraint) error {
	if _, ok := e.records[c]; ok {
		return solver.ErrDuplicateConstraint
	}
	for _, v := range c.Variables() {
		if _, ok := e.varNode[v]; !ok {
			return fmt.Errorf("%s: %w", v.Name(), ErrUnknownVariable)
		}
	}
	if err := e.solver.AddConstraint(c); err != nil {
		return err
	}
	e.seq++
	e.records[c] = record{owner: owner, seq: e.seq}
	e.owned[owner] = append(e.owned[owner], c)
	for _, v := range c.Variables() {
		id := e.varNode[v]
		if e.refs[id] == nil {
			e.refs[id] = make(map[*solver.Constraint]struct{})
		}
		e.refs[id][c] = struct{}{}
	}
	return nil
}

// forget drops the bookkeeping for a constraint that left the solver.
func (e *Engine) forget(c *solver.Constraint) {
	rec, ok := e.records[c]
	if !ok {
		return
	}
	delete(e.records, c)
	owned := e.owned[rec.owner]
	for i, oc := range owned {
		if oc == c {
			e.owned[rec.owner] = append(owned[:i:i], owned[i+1:]...)
			break
		}
	}
	for _, v := range c.Variables() {
		if id, ok := e.varNode[v]; ok {
			delete(e.refs[id], c)
		}
	}
}

// rebuild recreates the solver from the recorded constraints and edits. It
// runs only when incremental removal hit an internal solver failure.
func (e *Engine) rebuild() error {
	e.log.Warn("rebuilding layout solver", "constraints", len(e.records))
	all := make([]*solver.Constraint, 0, len(e.records))
	for c := range e.records {
		all = append(all, c)
	}
	e.sortBySeq(all)

	e.solver = solver.New()
	for _, c := range all {
		if err := e.solver.AddConstraint(c); err != nil {
			return e.wrap("rebuild", e.records[c].owner, c, err)
		}
	}

	vars := make([]*solver.Variable, 0, len(e.edits))
	for v := range e.edits {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].ID() < vars[j].ID() })
	for _, v := range vars {
		if err := e.solver.AddEditVariable(v, e.cfg.EditStrength); err != nil {
			return e.wrapVar("rebuild", e.varNode[v], v, err)
		}
		if err := e.solver.SuggestValue(v, e.edits[v]); err != nil {
			return e.wrapVar("rebuild", e.varNode[v], v, err)
		}
	}
	return nil
}

func (e *Engine) sortBySeq(cs []*solver.Constraint) {
	sort.Slice(cs, func(i, j int) bool { return e.records[cs[i]].seq < e.records[cs[j]].seq })
}

func (e *Engine) wrap(op string, id NodeID, c *solver.Constraint, err error) error {
	le := &Error{Op: op, Node: id, Constraint: c, Err: err}
	if n, ok := e.nodes[id]; ok {
		le.Name = n.name
	}
	if c != nil {
		for _, v := range c.Variables() {
			if n, ok := e.nodes[e.varNode[v]]; ok {
				le.Axis = le.Axis.merge(n.axisOf(v))
			}
		}
	}
	return le
}

func (e *Engine) wrapVar(op string, id NodeID, v *solver.Variable, err error) error {
	le := &Error{Op: op, Node: id, Err: fmt.Errorf("%s: %w", v.Name(), err)}
	if n, ok := e.nodes[id]; ok {
		le.Name = n.name
		le.Axis = n.axisOf(v)
	}
	return le
}
