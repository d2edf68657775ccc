// Package box defines the box tree shared by the parser, the cascade, the
// layout engine and the painter.
package box

import (
	"image"

	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// ContentKind selects the content variant of a box.
type ContentKind uint8

const (
	ContentChildren ContentKind = iota
	ContentBuffer
	ContentString
	ContentImage
)

func (k ContentKind) String() string {
	switch k {
	case ContentChildren:
		return "children"
	case ContentBuffer:
		return "buffer"
	case ContentString:
		return "string"
	case ContentImage:
		return "image"
	}
	return "?"
}

// Generated tells which pseudo element produced a box.
type Generated uint8

const (
	GenNone Generated = iota
	GenBefore
	GenAfter
	GenMarker
	GenFirstLetter
	GenAnonymous
)

// Attr is one attribute of an element.
type Attr struct {
	Name  ident.ID
	Value string
}

// Box is a node of the box tree.
//
// Content is one of: a child list, a half-open byte range [Start, End) of
// the source buffer, an owned string (Start and End then index Text), or an
// image stub whose Text is the alt text. A box never holds children
// together with another content variant.
type Box struct {
	Tag   ident.ID
	Attrs []Attr
	// Props are the declarations produced by legacy attributes and the
	// style attribute. They apply after every style sheet rule.
	Props css.Declarations
	Style *css.ComputedStyle

	Kind     ContentKind
	Children []*Box
	Start    int
	End      int
	Text     string
	// HasAlt distinguishes an empty alt attribute from a missing one.
	HasAlt bool

	Parent *Box

	// Geometry, in document coordinates, filled by layout. X, Y, Width and
	// Height describe the border box.
	X, Y          int
	Width, Height int
	Ascent        int
	PaddingTop    int
	PaddingBottom int
	BBox          image.Rectangle
	Level         uint8

	// Split is set on boxes produced by cutting a text box at a line or
	// embedding level boundary. They share the buffer range of the box they
	// were cut from.
	Split bool
	// AbsolutePos marks boxes positioned out of flow.
	AbsolutePos bool
	// LastSpace carries white-space collapsing state into the box.
	LastSpace bool
	// EOL is set when the box ends with a logical newline.
	EOL bool

	Generated Generated

	// Run is the shaped text of a terminal text box, set by layout.
	Run *Run
	// Fragments are the per-line rectangles of an inline box with
	// children, set by layout.
	Fragments []image.Rectangle
	// FirstLine is the ::first-line style of a block container.
	FirstLine *css.ComputedStyle
	// BaseStyle keeps the cascaded style of a box whose Style layout
	// replaced with a ::first-line variant.
	BaseStyle *css.ComputedStyle
}

// New creates an element box with an empty child list.
func New(tag ident.ID) *Box {
	return &Box{Tag: tag, Kind: ContentChildren}
}

// NewText creates a box referencing the buffer range [start, end).
func NewText(start, end int) *Box {
	return &Box{Kind: ContentBuffer, Start: start, End: end}
}

// NewString creates a box owning s.
func NewString(s string) *Box {
	return &Box{Kind: ContentString, Text: s, End: len(s)}
}

// NewImage creates an image stub. alt is shown in place of the image.
func NewImage(tag ident.ID, alt string, hasAlt bool) *Box {
	return &Box{Tag: tag, Kind: ContentImage, Text: alt, HasAlt: hasAlt}
}

// Attr returns the value of attribute name.
func (b *Box) Attr(name ident.ID) (string, bool) {
	for _, a := range b.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute.
func (b *Box) SetAttr(name ident.ID, value string) {
	for i := range b.Attrs {
		if b.Attrs[i].Name == name {
			b.Attrs[i].Value = value
			return
		}
	}
	b.Attrs = append(b.Attrs, Attr{Name: name, Value: value})
}

// IsTerminal reports whether the box has no child list.
func (b *Box) IsTerminal() bool { return b.Kind != ContentChildren }

// IsText reports whether the box holds text (buffer or string).
func (b *Box) IsText() bool { return b.Kind == ContentBuffer || b.Kind == ContentString }

// Display returns the computed display, or inline before the cascade.
func (b *Box) Display() css.Display {
	if b.Style == nil {
		return css.DisplayInline
	}
	return b.Style.Display
}

// AppendChild adds c as the last child. Terminal content is first wrapped
// into an anonymous child so that the box keeps a single content variant.
func (b *Box) AppendChild(c *Box) {
	b.ensureChildren()
	c.Parent = b
	b.Children = append(b.Children, c)
}

// PrependChild adds c as the first child.
func (b *Box) PrependChild(c *Box) {
	b.InsertChild(0, c)
}

// InsertChild inserts c at index i.
func (b *Box) InsertChild(i int, c *Box) {
	b.ensureChildren()
	c.Parent = b
	b.Children = append(b.Children, nil)
	copy(b.Children[i+1:], b.Children[i:])
	b.Children[i] = c
}

// InsertAfter inserts c right after ref, which must be a child of b.
func (b *Box) InsertAfter(ref, c *Box) {
	b.InsertChild(b.IndexOf(ref)+1, c)
}

// RemoveChild unlinks c from b.
func (b *Box) RemoveChild(c *Box) {
	i := b.IndexOf(c)
	if i < 0 {
		return
	}
	b.Children = append(b.Children[:i], b.Children[i+1:]...)
	c.Parent = nil
}

// IndexOf returns the position of c among b's children, or -1.
func (b *Box) IndexOf(c *Box) int {
	for i, k := range b.Children {
		if k == c {
			return i
		}
	}
	return -1
}

// PrevSibling returns the previous element sibling, skipping text boxes.
func (b *Box) PrevSibling() *Box {
	if b.Parent == nil {
		return nil
	}
	i := b.Parent.IndexOf(b)
	for i--; i >= 0; i-- {
		if s := b.Parent.Children[i]; s.Tag != ident.None {
			return s
		}
	}
	return nil
}

// IsFirstChild reports whether b is the first element child of its parent.
func (b *Box) IsFirstChild() bool {
	return b.Parent != nil && b.PrevSibling() == nil
}

func (b *Box) ensureChildren() {
	if b.Kind == ContentChildren {
		return
	}
	inner := &Box{Kind: b.Kind, Start: b.Start, End: b.End, Text: b.Text, HasAlt: b.HasAlt,
		EOL: b.EOL, Generated: GenAnonymous, Parent: b}
	if b.Kind == ContentImage {
		inner.Tag = b.Tag
	}
	b.Kind = ContentChildren
	b.Start, b.End, b.Text, b.HasAlt, b.EOL = 0, 0, "", false, false
	b.Children = []*Box{inner}
}

// SplitAt cuts a text box at byte offset off of its buffer range. b keeps
// [Start, off) and a new split box covering [off, End) is inserted after it.
func (b *Box) SplitAt(off int) *Box {
	nb := &Box{
		Tag:       b.Tag,
		Style:     b.Style,
		Kind:      b.Kind,
		Start:     off,
		End:       b.End,
		Text:      b.Text,
		Split:     true,
		Level:     b.Level,
		EOL:       b.EOL,
		Generated: b.Generated,
	}
	b.End = off
	b.EOL = false
	if b.Parent != nil {
		b.Parent.InsertAfter(b, nb)
	}
	return nb
}

// Walk visits b and its descendants in document order. Returning false from
// f skips the children of the visited box.
func (b *Box) Walk(f func(*Box) bool) {
	if !f(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(f)
	}
}

// Terminals returns the terminal boxes below b in document order.
func (b *Box) Terminals() []*Box {
	var out []*Box
	b.Walk(func(x *Box) bool {
		if x.IsTerminal() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Rect returns the border box.
func (b *Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Count returns the number of boxes in the subtree.
func (b *Box) Count() int {
	n := 0
	b.Walk(func(*Box) bool { n++; return true })
	return n
}
