package markup

import "strconv"

// OtherCategory is assigned to elements the resolver does not know.
const OtherCategory = "Other"

// Element is the resolved identity of a tag.
type Element struct {
	Type        string
	DisplayName string
	Category    string
}

// Resolver maps a literal tag name to its canonical element type and category.
type Resolver interface {
	Resolve(tag string) (Element, bool)
}

// InverseResolver maps a canonical type back to the literal tag name used in markup.
type InverseResolver interface {
	TagName(typ string) (string, bool)
}

// ResolverFunc is an adapter to allow the use of ordinary functions as resolvers.
type ResolverFunc func(tag string) (Element, bool)

func (f ResolverFunc) Resolve(tag string) (Element, bool) { return f(tag) }

// InverseResolverFunc is an adapter to allow the use of ordinary functions as inverse resolvers.
type InverseResolverFunc func(typ string) (string, bool)

func (f InverseResolverFunc) TagName(typ string) (string, bool) { return f(typ) }

// resolve never fails: unknown tags pass through with the Other category.
func resolve(r Resolver, tag string) Element {
	if r != nil {
		if el, ok := r.Resolve(tag); ok {
			if el.Type == "" {
				el.Type = tag
			}
			if el.DisplayName == "" {
				el.DisplayName = el.Type
			}
			if el.Category == "" {
				el.Category = OtherCategory
			}
			return el
		}
	}
	return Element{Type: tag, DisplayName: tag, Category: OtherCategory}
}

func tagName(inv InverseResolver, typ string) string {
	if inv != nil {
		if tag, ok := inv.TagName(typ); ok && tag != "" {
			return tag
		}
	}
	return typ
}

// IDGen generates node ids. A generator is passed per parse call, so there is no shared counter
// between concurrent parses.
type IDGen interface {
	NextID() string
}

// SeqIDGen generates sequential ids with a fixed prefix. It is not safe for concurrent use.
type SeqIDGen struct {
	Prefix string
	n      int
}

// NewIDGen returns a generator producing prefix-1, prefix-2, ...
func NewIDGen(prefix string) *SeqIDGen {
	return &SeqIDGen{Prefix: prefix}
}

func (g *SeqIDGen) NextID() string {
	g.n++
	return g.Prefix + "-" + strconv.Itoa(g.n)
}
