package css

import (
	"fmt"
	"sync"
)

// Len is a computed length: pixels, a percentage kept in 24.8 fixed point
// until layout knows the base, or auto.
type Len struct {
	V    int32
	Unit Unit
}

var AutoLen = Len{Unit: UnitAuto}

func PxLen(n int) Len { return Len{V: int32(n), Unit: UnitPx} }

func (l Len) IsAuto() bool { return l.Unit == UnitAuto }

// Resolve returns the length in pixels against base; auto resolves to 0.
func (l Len) Resolve(base int) int {
	switch l.Unit {
	case UnitPx:
		return int(l.V)
	case UnitPercent:
		return int((int64(l.V)*int64(base) + 50*LengthBase) / (100 * LengthBase))
	case UnitNumber:
		return int((int64(l.V)*int64(base) + LengthBase/2) / LengthBase)
	}
	return 0
}

// ResolveOr is Resolve with an explicit value for auto.
func (l Len) ResolveOr(base, auto int) int {
	if l.Unit == UnitAuto {
		return auto
	}
	return l.Resolve(base)
}

func (l Len) String() string {
	switch l.Unit {
	case UnitAuto:
		return "auto"
	case UnitPercent:
		return fmt.Sprintf("%g%%", float64(l.V)/LengthBase)
	case UnitNumber:
		return fmt.Sprintf("%g", float64(l.V)/LengthBase)
	}
	return fmt.Sprintf("%dpx", l.V)
}

// ComputedStyle holds the resolved value of every supported property. It is
// a comparable value so identical records can be interned.
type ComputedStyle struct {
	Display           Display
	Position          Position
	Float             Float
	Clear             Clear
	WhiteSpace        WhiteSpace
	TextAlign         TextAlign
	VerticalAlign     VerticalAlign
	Direction         Direction
	UnicodeBidi       UnicodeBidi
	Overflow          Overflow
	Visibility        Visibility
	TableLayout       TableLayout
	CaptionSide       CaptionSide
	BorderCollapse    BorderCollapse
	ListStyleType     ListStyle
	ListStylePosition ListStylePosition
	TextDecoration    TextDecoration
	TextTransform     TextTransform
	FontStyle         FontStyle
	FontWeight        FontWeight
	FontFamily        FontFamily

	FontSize   int32
	LineHeight Len

	Color           Color
	BackgroundColor Color

	Width     Len
	Height    Len
	MinWidth  Len
	MaxWidth  Len
	MinHeight Len
	MaxHeight Len

	Margin      [4]Len
	Padding     [4]Len
	BorderWidth [4]int32
	BorderStyle [4]BorderStyle
	BorderColor [4]Color

	BorderSpacingH int32
	BorderSpacingV int32

	Offset     [4]Len
	TextIndent Len

	ColumnSpan int32
	RowSpan    int32
}

// Initial returns the initial values of all properties for a root font
// size in pixels.
func Initial(fontSize int32) ComputedStyle {
	return ComputedStyle{
		FontSize:   fontSize,
		LineHeight: AutoLen,
		Color:      Black,
		Width:      AutoLen,
		Height:     AutoLen,
		MinWidth:   PxLen(0),
		MaxWidth:   AutoLen,
		MinHeight:  PxLen(0),
		MaxHeight:  AutoLen,
		Margin:     [4]Len{PxLen(0), PxLen(0), PxLen(0), PxLen(0)},
		Padding:    [4]Len{PxLen(0), PxLen(0), PxLen(0), PxLen(0)},
		Offset:     [4]Len{AutoLen, AutoLen, AutoLen, AutoLen},
		TextIndent: PxLen(0),
		ColumnSpan: 1,
		RowSpan:    1,
	}
}

// Bold reports whether the computed weight is bold.
func (cs *ComputedStyle) Bold() bool { return cs.FontWeight == WeightBold }

// Italic reports whether the font is slanted.
func (cs *ComputedStyle) Italic() bool { return cs.FontStyle != FontNormal }

// BorderLeftRight returns the sum of the horizontal border widths.
func (cs *ComputedStyle) BorderLeftRight() int {
	return int(cs.BorderWidth[SideLeft] + cs.BorderWidth[SideRight])
}

func (cs *ComputedStyle) BorderTopBottom() int {
	return int(cs.BorderWidth[SideTop] + cs.BorderWidth[SideBottom])
}

func (cs *ComputedStyle) PaddingLeftRight(cb int) int {
	return cs.Padding[SideLeft].Resolve(cb) + cs.Padding[SideRight].Resolve(cb)
}

func (cs *ComputedStyle) PaddingTopBottom(cb int) int {
	return cs.Padding[SideTop].Resolve(cb) + cs.Padding[SideBottom].Resolve(cb)
}

// StyleTable interns computed styles so identical records share one
// allocation. One table exists per document.
type StyleTable struct {
	mu sync.Mutex
	m  map[ComputedStyle]*ComputedStyle
}

func NewStyleTable() *StyleTable {
	return &StyleTable{m: make(map[ComputedStyle]*ComputedStyle)}
}

// Intern returns the shared record equal to cs.
func (t *StyleTable) Intern(cs ComputedStyle) *ComputedStyle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.m[cs]; ok {
		return p
	}
	p := new(ComputedStyle)
	*p = cs
	t.m[cs] = p
	return p
}

// With returns the interned variant of base modified by f.
func (t *StyleTable) With(base *ComputedStyle, f func(cs *ComputedStyle)) *ComputedStyle {
	cs := *base
	f(&cs)
	return t.Intern(cs)
}

// Len returns the number of distinct records.
func (t *StyleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.m)
}
