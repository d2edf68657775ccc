package style

import (
	"github.com/qemacs/qemacs-sub000/pkg/css"
)

// specified collects the winning declaration of every property.
type specified struct {
	vals [css.NumProps][]css.Value
	set  [css.NumProps]bool
}

func (sp *specified) apply(d css.Declarations, important bool) {
	for _, decl := range d {
		if decl.Important != important || decl.Prop >= css.NumProps {
			continue
		}
		sp.vals[decl.Prop] = decl.Values
		sp.set[decl.Prop] = true
	}
}

// cascade applies matched rules and the box's own declarations in CSS2
// order: normal rules, explicit properties, then the important ones.
func cascade(rules []*css.Rule, props css.Declarations) *specified {
	sp := new(specified)
	for _, r := range rules {
		sp.apply(r.Decls, false)
	}
	sp.apply(props, false)
	for _, r := range rules {
		sp.apply(r.Decls, true)
	}
	sp.apply(props, true)
	return sp
}

func (sp *specified) first(p css.Prop) (css.Value, bool) {
	if !sp.set[p] || len(sp.vals[p]) == 0 {
		return css.Value{}, false
	}
	return sp.vals[p][0], true
}

// inherit copies the inherited properties of parent into cs.
func inherit(cs, parent *css.ComputedStyle) {
	cs.WhiteSpace = parent.WhiteSpace
	cs.TextAlign = parent.TextAlign
	cs.Direction = parent.Direction
	cs.Visibility = parent.Visibility
	cs.CaptionSide = parent.CaptionSide
	cs.BorderCollapse = parent.BorderCollapse
	cs.ListStyleType = parent.ListStyleType
	cs.ListStylePosition = parent.ListStylePosition
	cs.TextTransform = parent.TextTransform
	cs.FontStyle = parent.FontStyle
	cs.FontWeight = parent.FontWeight
	cs.FontFamily = parent.FontFamily
	cs.FontSize = parent.FontSize
	cs.LineHeight = parent.LineHeight
	cs.Color = parent.Color
	cs.BorderSpacingH = parent.BorderSpacingH
	cs.BorderSpacingV = parent.BorderSpacingV
	cs.TextIndent = parent.TextIndent
	// Decorations are drawn across every in-flow descendant.
	cs.TextDecoration = parent.TextDecoration
}

// inherited returns the style a box gets when no rule applies to it: the
// parent's inherited properties over initial values.
func (e *Engine) inherited(parent *css.ComputedStyle, display css.Display) css.ComputedStyle {
	cs := css.Initial(e.fontSize)
	if parent != nil {
		inherit(&cs, parent)
	}
	cs.Display = display
	return cs
}

// resolve turns specified values into a computed record. parent is nil for
// the root.
func (e *Engine) resolve(sp *specified, parent *css.ComputedStyle) css.ComputedStyle {
	cs := e.inherited(parent, css.DisplayInline)
	root := parent == nil
	if root {
		parent = &css.ComputedStyle{}
		*parent = cs
	}

	// font-size first: em and ex of every other property depend on it.
	if v, ok := sp.first(css.PropFontSize); ok {
		cs.FontSize = e.fontSizeOf(v, parent.FontSize)
	}
	for p := css.Prop(0); p < css.NumProps; p++ {
		if p == css.PropFontSize || !sp.set[p] {
			continue
		}
		vals := sp.vals[p]
		if len(vals) == 1 && vals[0].Kind == css.KindInherit {
			copyProp(&cs, parent, p)
			continue
		}
		e.setProp(&cs, p, vals)
	}

	for i := range cs.BorderStyle {
		switch {
		case !cs.BorderStyle[i].Visible():
			cs.BorderWidth[i] = 0
		case !sp.set[css.BorderWidthProps[i]]:
			cs.BorderWidth[i] = borderWidths[1] * e.pxScale
		}
		if cs.BorderColor[i].IsTransparent() {
			cs.BorderColor[i] = cs.Color
		}
	}
	fixupDisplay(&cs, root)
	return cs
}

// fixupDisplay applies the CSS2 relationships between display, position
// and float.
func fixupDisplay(cs *css.ComputedStyle, root bool) {
	if cs.Display == css.DisplayNone {
		return
	}
	switch {
	case cs.Position.OutOfFlow():
		cs.Float = css.FloatNone
		cs.Display = blockify(cs.Display)
	case cs.Float != css.FloatNone || root:
		cs.Display = blockify(cs.Display)
	}
}

func blockify(d css.Display) css.Display {
	switch d {
	case css.DisplayInlineTable:
		return css.DisplayTable
	case css.DisplayInline, css.DisplayInlineBlock, css.DisplayMarker,
		css.DisplayTableRowGroup, css.DisplayTableHeaderGroup, css.DisplayTableFooterGroup,
		css.DisplayTableRow, css.DisplayTableColumnGroup, css.DisplayTableColumn,
		css.DisplayTableCell, css.DisplayTableCaption:
		return css.DisplayBlock
	}
	return d
}

// borderWidths are thin, medium and thick in pixels.
var borderWidths = [3]int32{1, 3, 5}

func (e *Engine) setProp(cs *css.ComputedStyle, p css.Prop, vals []css.Value) {
	if len(vals) == 0 {
		return
	}
	v := vals[0]
	n := v.Num
	switch p {
	case css.PropDisplay:
		cs.Display = css.Display(n)
	case css.PropPosition:
		cs.Position = css.Position(n)
	case css.PropFloat:
		cs.Float = css.Float(n)
	case css.PropClear:
		cs.Clear = css.Clear(n)
	case css.PropWhiteSpace:
		cs.WhiteSpace = css.WhiteSpace(n)
	case css.PropTextAlign:
		cs.TextAlign = css.TextAlign(n)
	case css.PropVerticalAlign:
		cs.VerticalAlign = css.VerticalAlign(n)
	case css.PropDirection:
		cs.Direction = css.Direction(n)
	case css.PropUnicodeBidi:
		cs.UnicodeBidi = css.UnicodeBidi(n)
	case css.PropOverflow:
		cs.Overflow = css.Overflow(n)
	case css.PropVisibility:
		cs.Visibility = css.Visibility(n)
	case css.PropTableLayout:
		cs.TableLayout = css.TableLayout(n)
	case css.PropCaptionSide:
		cs.CaptionSide = css.CaptionSide(n)
	case css.PropBorderCollapse:
		cs.BorderCollapse = css.BorderCollapse(n)
	case css.PropListStyleType:
		cs.ListStyleType = css.ListStyle(n)
	case css.PropListStylePosition:
		cs.ListStylePosition = css.ListStylePosition(n)
	case css.PropTextDecoration:
		for _, d := range vals {
			if d.Kind == css.KindEnum && d.Num > 0 {
				cs.TextDecoration |= 1 << (d.Num - 1)
			}
		}
	case css.PropTextTransform:
		cs.TextTransform = css.TextTransform(n)
	case css.PropFontStyle:
		cs.FontStyle = css.FontStyle(n)
	case css.PropFontWeight:
		cs.FontWeight = fontWeight(v)
	case css.PropFontFamily:
		if v.Kind == css.KindEnum {
			cs.FontFamily = css.FontFamily(n)
		}
	case css.PropLineHeight:
		if v.Kind == css.KindAuto {
			cs.LineHeight = css.AutoLen
			break
		}
		// Percentages resolve against the box's own font. Numbers are
		// inherited as numbers and resolved where the line is built.
		if v.Kind == css.KindLength && v.Unit == css.UnitPercent {
			cs.LineHeight = css.PxLen(int(percentOf(n, cs.FontSize)))
			break
		}
		if v.Kind == css.KindLength && v.Unit == css.UnitNumber {
			cs.LineHeight = css.Len{V: v.Num, Unit: css.UnitNumber}
			break
		}
		cs.LineHeight = e.length(v, cs.FontSize)
	case css.PropColor:
		if v.Kind == css.KindColor {
			cs.Color = v.Color()
		}
	case css.PropBackgroundColor:
		if v.Kind == css.KindColor {
			cs.BackgroundColor = v.Color()
		}
	case css.PropWidth:
		cs.Width = e.length(v, cs.FontSize)
	case css.PropHeight:
		cs.Height = e.length(v, cs.FontSize)
	case css.PropMinWidth:
		cs.MinWidth = e.length(v, cs.FontSize)
	case css.PropMaxWidth:
		cs.MaxWidth = e.length(v, cs.FontSize)
	case css.PropMinHeight:
		cs.MinHeight = e.length(v, cs.FontSize)
	case css.PropMaxHeight:
		cs.MaxHeight = e.length(v, cs.FontSize)
	case css.PropMarginTop, css.PropMarginRight, css.PropMarginBottom, css.PropMarginLeft:
		cs.Margin[p-css.PropMarginTop] = e.length(v, cs.FontSize)
	case css.PropPaddingTop, css.PropPaddingRight, css.PropPaddingBottom, css.PropPaddingLeft:
		cs.Padding[p-css.PropPaddingTop] = e.length(v, cs.FontSize)
	case css.PropBorderTopWidth, css.PropBorderRightWidth, css.PropBorderBottomWidth, css.PropBorderLeftWidth:
		side := p - css.PropBorderTopWidth
		if v.Kind == css.KindEnum {
			cs.BorderWidth[side] = borderWidths[min(max(n, 0), 2)] * e.pxScale
		} else {
			cs.BorderWidth[side] = int32(max(0, e.length(v, cs.FontSize).Resolve(0)))
		}
	case css.PropBorderTopStyle, css.PropBorderRightStyle, css.PropBorderBottomStyle, css.PropBorderLeftStyle:
		cs.BorderStyle[p-css.PropBorderTopStyle] = css.BorderStyle(n)
	case css.PropBorderTopColor, css.PropBorderRightColor, css.PropBorderBottomColor, css.PropBorderLeftColor:
		if v.Kind == css.KindColor {
			cs.BorderColor[p-css.PropBorderTopColor] = v.Color()
		}
	case css.PropBorderSpacingH:
		cs.BorderSpacingH = int32(e.length(v, cs.FontSize).Resolve(0))
	case css.PropBorderSpacingV:
		cs.BorderSpacingV = int32(e.length(v, cs.FontSize).Resolve(0))
	case css.PropTop, css.PropRight, css.PropBottom, css.PropLeft:
		cs.Offset[p-css.PropTop] = e.length(v, cs.FontSize)
	case css.PropTextIndent:
		cs.TextIndent = e.length(v, cs.FontSize)
	case css.PropColumnSpan:
		if v.Kind == css.KindInteger && n > 0 {
			cs.ColumnSpan = n
		}
	case css.PropRowSpan:
		if v.Kind == css.KindInteger && n > 0 {
			cs.RowSpan = n
		}
	}
}

// copyProp implements the "inherit" keyword for a single property.
func copyProp(cs, parent *css.ComputedStyle, p css.Prop) {
	switch p {
	case css.PropDisplay:
		cs.Display = parent.Display
	case css.PropPosition:
		cs.Position = parent.Position
	case css.PropFloat:
		cs.Float = parent.Float
	case css.PropClear:
		cs.Clear = parent.Clear
	case css.PropWhiteSpace:
		cs.WhiteSpace = parent.WhiteSpace
	case css.PropTextAlign:
		cs.TextAlign = parent.TextAlign
	case css.PropVerticalAlign:
		cs.VerticalAlign = parent.VerticalAlign
	case css.PropDirection:
		cs.Direction = parent.Direction
	case css.PropUnicodeBidi:
		cs.UnicodeBidi = parent.UnicodeBidi
	case css.PropOverflow:
		cs.Overflow = parent.Overflow
	case css.PropVisibility:
		cs.Visibility = parent.Visibility
	case css.PropTableLayout:
		cs.TableLayout = parent.TableLayout
	case css.PropCaptionSide:
		cs.CaptionSide = parent.CaptionSide
	case css.PropBorderCollapse:
		cs.BorderCollapse = parent.BorderCollapse
	case css.PropListStyleType:
		cs.ListStyleType = parent.ListStyleType
	case css.PropListStylePosition:
		cs.ListStylePosition = parent.ListStylePosition
	case css.PropTextDecoration:
		cs.TextDecoration = parent.TextDecoration
	case css.PropTextTransform:
		cs.TextTransform = parent.TextTransform
	case css.PropFontStyle:
		cs.FontStyle = parent.FontStyle
	case css.PropFontWeight:
		cs.FontWeight = parent.FontWeight
	case css.PropFontFamily:
		cs.FontFamily = parent.FontFamily
	case css.PropLineHeight:
		cs.LineHeight = parent.LineHeight
	case css.PropColor:
		cs.Color = parent.Color
	case css.PropBackgroundColor:
		cs.BackgroundColor = parent.BackgroundColor
	case css.PropWidth:
		cs.Width = parent.Width
	case css.PropHeight:
		cs.Height = parent.Height
	case css.PropMinWidth:
		cs.MinWidth = parent.MinWidth
	case css.PropMaxWidth:
		cs.MaxWidth = parent.MaxWidth
	case css.PropMinHeight:
		cs.MinHeight = parent.MinHeight
	case css.PropMaxHeight:
		cs.MaxHeight = parent.MaxHeight
	case css.PropMarginTop, css.PropMarginRight, css.PropMarginBottom, css.PropMarginLeft:
		i := p - css.PropMarginTop
		cs.Margin[i] = parent.Margin[i]
	case css.PropPaddingTop, css.PropPaddingRight, css.PropPaddingBottom, css.PropPaddingLeft:
		i := p - css.PropPaddingTop
		cs.Padding[i] = parent.Padding[i]
	case css.PropBorderTopWidth, css.PropBorderRightWidth, css.PropBorderBottomWidth, css.PropBorderLeftWidth:
		i := p - css.PropBorderTopWidth
		cs.BorderWidth[i] = parent.BorderWidth[i]
	case css.PropBorderTopStyle, css.PropBorderRightStyle, css.PropBorderBottomStyle, css.PropBorderLeftStyle:
		i := p - css.PropBorderTopStyle
		cs.BorderStyle[i] = parent.BorderStyle[i]
	case css.PropBorderTopColor, css.PropBorderRightColor, css.PropBorderBottomColor, css.PropBorderLeftColor:
		i := p - css.PropBorderTopColor
		cs.BorderColor[i] = parent.BorderColor[i]
	case css.PropBorderSpacingH:
		cs.BorderSpacingH = parent.BorderSpacingH
	case css.PropBorderSpacingV:
		cs.BorderSpacingV = parent.BorderSpacingV
	case css.PropTop, css.PropRight, css.PropBottom, css.PropLeft:
		i := p - css.PropTop
		cs.Offset[i] = parent.Offset[i]
	case css.PropTextIndent:
		cs.TextIndent = parent.TextIndent
	case css.PropColumnSpan:
		cs.ColumnSpan = parent.ColumnSpan
	case css.PropRowSpan:
		cs.RowSpan = parent.RowSpan
	}
}

func fontWeight(v css.Value) css.FontWeight {
	if v.Kind == css.KindInteger {
		if v.Num >= 600 {
			return css.WeightBold
		}
		return css.WeightNormal
	}
	switch css.FontWeight(v.Num) {
	case css.WeightBold, css.WeightBolder:
		return css.WeightBold
	}
	return css.WeightNormal
}

// fixedMul multiplies a 24.8 fixed point value by an integer and rounds to
// the nearest integer.
func fixedMul(f, n int32) int32 {
	p := int64(f) * int64(n)
	if p < 0 {
		return int32(-((-p + css.LengthBase/2) / css.LengthBase))
	}
	return int32((p + css.LengthBase/2) / css.LengthBase)
}

// percentOf returns the rounded fixed point percentage f of n.
func percentOf(f, n int32) int32 {
	return int32((int64(f)*int64(n) + 50*css.LengthBase) / (100 * css.LengthBase))
}

// length converts a specified length to pixels. Percentages stay
// unresolved until layout knows their base.
func (e *Engine) length(v css.Value, fontSize int32) css.Len {
	switch v.Kind {
	case css.KindAuto:
		return css.AutoLen
	case css.KindInteger:
		return css.Len{V: v.Num * e.pxScale, Unit: css.UnitPx}
	case css.KindLength:
	default:
		return css.PxLen(0)
	}
	switch v.Unit {
	case css.UnitPercent:
		return css.Len{V: v.Num, Unit: css.UnitPercent}
	case css.UnitEm, css.UnitNumber:
		return css.Len{V: fixedMul(v.Num, fontSize), Unit: css.UnitPx}
	case css.UnitEx:
		return css.Len{V: fixedMul(v.Num, fontSize*4/5), Unit: css.UnitPx}
	case css.UnitIn:
		return css.Len{V: fixedMul(v.Num, int32(e.opts.DPI)), Unit: css.UnitPx}
	}
	return css.Len{V: v.Num * e.pxScale, Unit: css.UnitPx}
}

// fontSizeOf resolves a font-size value; em, ex and percentages are
// relative to the parent's size.
func (e *Engine) fontSizeOf(v css.Value, parentSize int32) int32 {
	var px int32
	switch {
	case v.Kind == css.KindInherit:
		return parentSize
	case v.Kind == css.KindLength && v.Unit == css.UnitPercent:
		px = percentOf(v.Num, parentSize)
	default:
		px = int32(e.length(v, parentSize).Resolve(0))
	}
	return max(px, 1)
}
