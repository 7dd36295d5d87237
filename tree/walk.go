package tree

import (
	"fmt"
	"iter"

	ie "github.com/sahib/arbor/errors"
)

// Order defines in which sequence nodes are visited.
type Order uint8

const (
	// PreOrder is depth-first: a node, then its children left to right.
	PreOrder = Order(iota)
	// PostOrder is depth-first: the children left to right, then the node.
	PostOrder
	// LevelOrder is breadth-first, one level after the other.
	LevelOrder
	// LevelOrderRTL is breadth-first, each level right to left.
	LevelOrderRTL
	// ZigZag is breadth-first, alternating direction on every level.
	ZigZag
	// ZigZagRTL is ZigZag starting right to left.
	ZigZagRTL
	// Unordered iterates in registry order. It is only valid for whole
	// trees in pull mode and is the fastest way to see every node.
	Unordered
)

var orderToString = map[Order]string{
	PreOrder:      "pre",
	PostOrder:     "post",
	LevelOrder:    "level",
	LevelOrderRTL: "level_rtl",
	ZigZag:        "zigzag",
	ZigZagRTL:     "zigzag_rtl",
	Unordered:     "unordered",
}

func (o Order) String() string {
	if name, ok := orderToString[o]; ok {
		return name
	}

	return "unknown"
}

////////////// SIGNALS //////////////

type signalKind uint8

const (
	signalContinue = signalKind(iota)
	signalSkip
	signalStop
)

// Signal is what a VisitFunc returns to steer the traversal.
// The zero value continues.
type Signal struct {
	kind  signalKind
	value interface{}
}

var (
	// Continue proceeds with the walk.
	Continue = Signal{}

	// SkipSubtree does not descend into the children of the current node.
	// It is not valid in post-order walks.
	SkipSubtree = Signal{kind: signalSkip}
)

// Stop aborts the walk; `value` is handed back to the caller of Visit.
func Stop(value interface{}) Signal {
	return Signal{kind: signalStop, value: value}
}

// IsStop reports whether the signal aborts the walk.
func (sig Signal) IsStop() bool {
	return sig.kind == signalStop
}

// IsSkip reports whether the signal skips a subtree.
func (sig Signal) IsSkip() bool {
	return sig.kind == signalSkip
}

// Value is the result value of a Stop signal.
func (sig Signal) Value() interface{} {
	return sig.value
}

func (sig Signal) String() string {
	switch sig.kind {
	case signalSkip:
		return "skip"
	case signalStop:
		return fmt.Sprintf("stop(%v)", sig.value)
	default:
		return "continue"
	}
}

// NormalizeSignal converts a loosely typed callback result into a Signal:
// nil continues, false stops without value, a Signal is passed on.
// Everything else is a usage error.
func NormalizeSignal(result interface{}) (Signal, error) {
	switch v := result.(type) {
	case nil:
		return Continue, nil
	case Signal:
		return v, nil
	case *Signal:
		if v == nil {
			return Continue, nil
		}
		return *v, nil
	case bool:
		if !v {
			return Stop(nil), nil
		}
	}

	return Continue, ie.Usage(
		"visit callbacks may only return nil, false or a Signal; got %v (%T)",
		result, result,
	)
}

////////////// PUSH MODE //////////////

// Memo is threaded through all callback invocations of a single walk.
type Memo map[string]interface{}

// VisitFunc is called for every visited node.
type VisitFunc func(nd *Node, memo Memo) Signal

// VisitOptions configures Visit.
type VisitOptions struct {
	// Order of the walk; only PreOrder, PostOrder and LevelOrder are supported.
	Order Order

	// AddSelf also visits the origin node (first for pre/level order,
	// last for post-order).
	AddSelf bool

	// Memo is passed to each callback. A fresh one is created if nil.
	Memo Memo
}

// stopWalk unwinds recursive walks.
type stopWalk struct {
	value interface{}
}

// Visit calls `fn` for the descendants of `nd` in the configured order.
// If a callback returns Stop(value), the walk ends at once and
// `value` is returned.
func (nd *Node) Visit(fn VisitFunc, opts VisitOptions) (interface{}, error) {
	memo := opts.Memo
	if memo == nil {
		memo = make(Memo)
	}

	var stop *stopWalk
	var err error

	switch opts.Order {
	case PreOrder:
		stop, err = nd.visitPre(fn, memo, opts.AddSelf)
	case PostOrder:
		stop, err = nd.visitPost(fn, memo, opts.AddSelf)
	case LevelOrder:
		stop, err = nd.visitLevel(fn, memo, opts.AddSelf)
	default:
		return nil, ie.Usage("visit does not support %s order", opts.Order)
	}

	if err != nil {
		return nil, err
	}

	if stop != nil {
		return stop.value, nil
	}

	return nil, nil
}

// VisitAny is like Visit but takes a loosely typed callback whose result
// is converted with NormalizeSignal.
func (nd *Node) VisitAny(fn func(nd *Node, memo Memo) interface{}, opts VisitOptions) (interface{}, error) {
	var cbErr error
	res, err := nd.Visit(func(curr *Node, memo Memo) Signal {
		sig, err := NormalizeSignal(fn(curr, memo))
		if err != nil {
			cbErr = err
			return Stop(nil)
		}

		return sig
	}, opts)

	if cbErr != nil {
		return nil, cbErr
	}

	return res, err
}

func (nd *Node) visitPre(fn VisitFunc, memo Memo, addSelf bool) (*stopWalk, error) {
	if addSelf {
		switch sig := fn(nd, memo); sig.kind {
		case signalStop:
			return &stopWalk{sig.value}, nil
		case signalSkip:
			return nil, nil
		}
	}

	for _, child := range nd.children {
		if stop, err := child.visitPre(fn, memo, true); stop != nil || err != nil {
			return stop, err
		}
	}

	return nil, nil
}

func (nd *Node) visitPost(fn VisitFunc, memo Memo, addSelf bool) (*stopWalk, error) {
	for _, child := range nd.children {
		if stop, err := child.visitPost(fn, memo, true); stop != nil || err != nil {
			return stop, err
		}
	}

	if !addSelf {
		return nil, nil
	}

	switch sig := fn(nd, memo); sig.kind {
	case signalStop:
		return &stopWalk{sig.value}, nil
	case signalSkip:
		return nil, ie.Usage("SkipSubtree is not supported in post-order walks")
	}

	return nil, nil
}

func (nd *Node) visitLevel(fn VisitFunc, memo Memo, addSelf bool) (*stopWalk, error) {
	if addSelf {
		switch sig := fn(nd, memo); sig.kind {
		case signalStop:
			return &stopWalk{sig.value}, nil
		case signalSkip:
			return nil, nil
		}
	}

	level := nd.children
	for len(level) > 0 {
		next := []*Node{}
		for _, curr := range level {
			switch sig := fn(curr, memo); sig.kind {
			case signalStop:
				return &stopWalk{sig.value}, nil
			case signalSkip:
				continue
			}

			next = append(next, curr.children...)
		}

		level = next
	}

	return nil, nil
}

// Visit walks all nodes of the tree (the hidden root is not visited).
func (t *Tree) Visit(fn VisitFunc, opts VisitOptions) (interface{}, error) {
	opts.AddSelf = false
	return t.root.Visit(fn, opts)
}

////////////// PULL MODE //////////////

// Iter returns a lazy sequence over the descendants of `nd`. Each call
// produces a fresh sequence. The tree must not be modified structurally
// while the sequence is consumed.
func (nd *Node) Iter(order Order, addSelf bool) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if addSelf && order != PostOrder {
			if !yield(nd) {
				return
			}
		}

		var more bool
		switch order {
		case PreOrder:
			more = nd.iterPre(yield)
		case PostOrder:
			more = nd.iterPost(yield)
		case LevelOrder:
			more = nd.iterLevel(yield, false, false)
		case LevelOrderRTL:
			more = nd.iterLevel(yield, true, false)
		case ZigZag:
			more = nd.iterLevel(yield, false, true)
		case ZigZagRTL:
			more = nd.iterLevel(yield, true, true)
		case Unordered:
			more = nd.iterUnordered(yield)
		default:
			return
		}

		if more && addSelf && order == PostOrder {
			yield(nd)
		}
	}
}

// All is a shortcut for Iter(PreOrder, false).
func (nd *Node) All() iter.Seq[*Node] {
	return nd.Iter(PreOrder, false)
}

func (nd *Node) iterPre(yield func(*Node) bool) bool {
	for _, child := range nd.children {
		if !yield(child) || !child.iterPre(yield) {
			return false
		}
	}

	return true
}

func (nd *Node) iterPost(yield func(*Node) bool) bool {
	for _, child := range nd.children {
		if !child.iterPost(yield) || !yield(child) {
			return false
		}
	}

	return true
}

func (nd *Node) iterLevel(yield func(*Node) bool, reverse, toggle bool) bool {
	level := nd.children
	for len(level) > 0 {
		next := []*Node{}
		for _, curr := range level {
			next = append(next, curr.children...)
		}

		for idx := range level {
			curr := level[idx]
			if reverse {
				curr = level[len(level)-idx-1]
			}

			if !yield(curr) {
				return false
			}
		}

		if toggle {
			reverse = !reverse
		}

		level = next
	}

	return true
}

func (nd *Node) iterUnordered(yield func(*Node) bool) bool {
	if !nd.IsRoot() {
		// Registry order only makes sense for the whole tree.
		return nd.iterPre(yield)
	}

	for _, curr := range nd.tree.reg.byKey {
		if !yield(curr) {
			return false
		}
	}

	return true
}

// Iter iterates over all nodes of the tree in `order`.
func (t *Tree) Iter(order Order) iter.Seq[*Node] {
	return t.root.Iter(order, false)
}

// All iterates over all nodes of the tree in pre-order.
func (t *Tree) All() iter.Seq[*Node] {
	return t.root.All()
}
