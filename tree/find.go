package tree

import (
	"fmt"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
	e "github.com/pkg/errors"
	ie "github.com/sahib/arbor/errors"
)

// Matcher decides if a node is part of a search result.
type Matcher func(nd *Node) bool

var (
	programCache = mustCache[*vm.Program](256)
	patternCache = mustCache[*regexp.Regexp](256)
)

func mustCache[V any](size int) *lru.Cache[string, V] {
	cache, err := lru.New[string, V](size)
	if err != nil {
		panic(fmt.Sprintf("failed to create match cache: %v", err))
	}

	return cache
}

// MatchPayload matches nodes that reference the very same payload.
func MatchPayload(payload interface{}) Matcher {
	return func(nd *Node) bool {
		return sameRef(nd.payload, payload)
	}
}

// MatchIdentity matches all clones with identity `id`.
func MatchIdentity(id IdentityKey) Matcher {
	return func(nd *Node) bool {
		return nd.identity == id
	}
}

// MatchKind matches nodes tagged with `kind`.
func MatchKind(kind string) Matcher {
	return func(nd *Node) bool {
		return nd.kind == kind
	}
}

// MatchRegexp matches nodes whose whole Name() matches `pattern`.
func MatchRegexp(pattern string) (Matcher, error) {
	rx, ok := patternCache.Get(pattern)
	if !ok {
		var err error
		rx, err = regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return nil, e.Wrapf(ie.ErrUsage, "bad pattern %q: %v", pattern, err)
		}

		patternCache.Add(pattern, rx)
	}

	return func(nd *Node) bool {
		return rx.MatchString(nd.Name())
	}, nil
}

// MustMatchRegexp is MatchRegexp but panics on bad patterns.
func MustMatchRegexp(pattern string) Matcher {
	match, err := MatchRegexp(pattern)
	if err != nil {
		panic(err)
	}

	return match
}

// MatchEnv is what expressions given to MatchExpr can refer to.
type MatchEnv struct {
	Name     string
	Kind     string
	Identity string
	Key      uint64
	Depth    int
	Index    int
	Children int
	IsLeaf   bool
	IsClone  bool
	Meta     map[string]interface{}
}

func newMatchEnv(nd *Node) MatchEnv {
	return MatchEnv{
		Name:     nd.Name(),
		Kind:     nd.kind,
		Identity: string(nd.identity),
		Key:      uint64(nd.key),
		Depth:    nd.Depth(),
		Index:    nd.Index(),
		Children: len(nd.children),
		IsLeaf:   nd.IsLeaf(),
		IsClone:  nd.IsClone(),
		Meta:     nd.meta,
	}
}

// MatchExpr compiles `code` to a boolean expression over MatchEnv,
// e.g. `Name startsWith "a" && Depth > 1`.
func MatchExpr(code string) (Matcher, error) {
	program, ok := programCache.Get(code)
	if !ok {
		var err error
		program, err = expr.Compile(code, expr.Env(MatchEnv{}), expr.AsBool())
		if err != nil {
			return nil, e.Wrapf(ie.ErrUsage, "bad expression %q: %v", code, err)
		}

		programCache.Add(code, program)
	}

	return func(nd *Node) bool {
		out, err := expr.Run(program, newMatchEnv(nd))
		if err != nil {
			return false
		}

		matched, ok := out.(bool)
		return ok && matched
	}, nil
}

// FindAll returns the pre-order matches below `nd` (including `nd`
// itself if `addSelf`). At most `max` nodes are returned if max > 0.
func (nd *Node) FindAll(match Matcher, max int, addSelf bool) []*Node {
	results := []*Node{}
	if match == nil {
		return results
	}

	for curr := range nd.Iter(PreOrder, addSelf && !nd.IsRoot()) {
		if !match(curr) {
			continue
		}

		results = append(results, curr)
		if max > 0 && len(results) >= max {
			break
		}
	}

	return results
}

// FindFirst returns the first pre-order match or nil.
func (nd *Node) FindFirst(match Matcher, addSelf bool) *Node {
	if results := nd.FindAll(match, 1, addSelf); len(results) > 0 {
		return results[0]
	}

	return nil
}
