package canvas

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dpotapov/go-canvas/markup"
)

// Session operations.
const (
	OpParse      = "parse"
	OpSerialize  = "serialize"
	OpInsert     = "insert"
	OpRemove     = "remove"
	OpMove       = "move"
	OpSetAttr    = "set_attr"
	OpDeleteAttr = "delete_attr"
)

// Request is an edit operation sent by a client.
type Request struct {
	Op string `json:"op"`

	// ID is the node the operation applies to.
	ID string `json:"id,omitempty"`

	// Parent and Index give the target position for insert and move. An empty Parent means
	// the root level; a missing Index appends.
	Parent string `json:"parent,omitempty"`
	Index  *int   `json:"index,omitempty"`

	// Key and Value are used by set_attr and delete_attr. Value is a JSON encoded markup.Value.
	Key   string          `json:"key,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`

	// Node is the subtree to insert. If it is nil, Markup is parsed and its roots are inserted.
	Node *markup.Node `json:"node,omitempty"`

	// Markup is the source for parse, or the snippet for insert.
	Markup string `json:"markup,omitempty"`
}

// Response is the state of a session after an operation.
type Response struct {
	Roots    []*markup.Node `json:"roots"`
	Markup   string         `json:"markup"`
	Warnings []string       `json:"warnings"`
	Errors   []string       `json:"errors"`
	Symbols  []string       `json:"symbols"`

	// Error is set when the operation failed. The tree is left unchanged in that case.
	Error string `json:"error,omitempty"`
}

var errUnknownOp = errors.New("unknown operation")

// Session owns one editable tree. Every edit replaces the root list, so a Response never
// observes a partially applied operation. A Session is not safe for concurrent use.
type Session struct {
	resolver markup.Resolver
	inverse  markup.InverseResolver
	ids      *markup.SeqIDGen

	roots    []*markup.Node
	warnings []string
	errors   []string
}

// NewSession parses src and returns a session editing the resulting tree. Either resolver may be
// nil.
func NewSession(src string, r markup.Resolver, inv markup.InverseResolver) *Session {
	s := &Session{
		resolver: r,
		inverse:  inv,
		ids:      markup.NewIDGen("el"),
	}
	s.parse(src)
	return s
}

// Roots returns the current tree.
func (s *Session) Roots() []*markup.Node {
	return s.roots
}

// Apply executes req and returns the resulting state.
func (s *Session) Apply(req Request) Response {
	if err := s.apply(req); err != nil {
		resp := s.state()
		resp.Error = fmt.Sprintf("%s: %v", req.Op, err)
		return resp
	}
	return s.state()
}

func (s *Session) apply(req Request) error {
	index := -1
	if req.Index != nil {
		index = *req.Index
	}

	var (
		roots []*markup.Node
		err   error
	)
	switch req.Op {
	case OpParse:
		s.parse(req.Markup)
		return nil
	case OpSerialize:
		return nil
	case OpInsert:
		roots, err = s.insert(req, index)
	case OpRemove:
		var removed *markup.Node
		roots, removed = markup.Remove(s.roots, req.ID)
		if removed == nil {
			err = fmt.Errorf("%q: %w", req.ID, markup.ErrNodeNotFound)
		}
	case OpMove:
		roots, err = markup.Move(s.roots, req.ID, req.Parent, index)
	case OpSetAttr:
		if req.Key == "" {
			return errors.New("attribute key is required")
		}
		var v markup.Value
		if v, err = markup.UnmarshalValue(req.Value); err != nil {
			return fmt.Errorf("attribute %q: %w", req.Key, err)
		}
		roots, err = markup.SetAttr(s.roots, req.ID, req.Key, v)
	case OpDeleteAttr:
		roots, err = markup.DeleteAttr(s.roots, req.ID, req.Key)
	default:
		return fmt.Errorf("%w %q", errUnknownOp, req.Op)
	}
	if err != nil {
		return err
	}
	s.roots = roots
	return nil
}

func (s *Session) insert(req Request, index int) ([]*markup.Node, error) {
	nodes := []*markup.Node{req.Node}
	if req.Node == nil {
		res := markup.Parse(req.Markup, s.resolver, s.ids)
		if err := res.Err(); err != nil {
			return nil, err
		}
		nodes = res.Roots
	}

	roots := s.roots
	for i, n := range nodes {
		at := index
		if at >= 0 {
			at += i
		}
		var err error
		if roots, err = markup.Insert(roots, n, req.Parent, at); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

func (s *Session) parse(src string) {
	res := markup.Parse(src, s.resolver, s.ids)
	s.roots = res.Roots
	s.warnings = res.Warnings
	s.errors = res.Errors
}

func (s *Session) state() Response {
	return Response{
		Roots:    s.roots,
		Markup:   markup.Serialize(s.roots, s.inverse),
		Warnings: s.warnings,
		Errors:   s.errors,
		Symbols:  markup.Symbols(s.roots),
	}
}
