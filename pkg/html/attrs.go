package html

import (
	"strconv"
	"strings"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Default size of an image whose width or height is not given.
const defaultImageSize = 32

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func enum[T ~uint8](v T) css.Value { return css.Enum(int32(v)) }

// presentational translates HTML presentational attributes into explicit
// declarations. They apply after the style sheets and before the style
// attribute.
func (p *Parser) presentational(b *box.Box) {
	d := &b.Props
	for _, a := range b.Attrs {
		v := strings.TrimSpace(a.Value)
		switch a.Name {
		case ident.AttrBgcolor:
			if c, ok := css.ParseColor(v); ok {
				d.Add(css.PropBackgroundColor, css.ColorValue(c))
			}
		case ident.AttrText:
			if b.Tag == ident.TagBody {
				if c, ok := css.ParseColor(v); ok {
					d.Add(css.PropColor, css.ColorValue(c))
				}
			}
		case ident.AttrColor:
			if b.Tag == ident.TagFont {
				if c, ok := css.ParseColor(v); ok {
					d.Add(css.PropColor, css.ColorValue(c))
				}
			}
		case ident.AttrFace:
			if b.Tag == ident.TagFont {
				*d = append(*d, p.css.ParseDeclarations("font-family: "+v, 0)...)
			}
		case ident.AttrSize:
			p.sizeAttr(b, v)
		case ident.AttrAlign:
			alignAttr(b, strings.ToLower(v))
		case ident.AttrValign:
			if k := css.PropVerticalAlign.Keyword(v); k >= 0 {
				d.Add(css.PropVerticalAlign, css.Enum(int32(k)))
			}
		case ident.AttrWidth:
			if l, ok := css.ParseLength(v); ok {
				d.Add(css.PropWidth, l)
			}
		case ident.AttrHeight:
			if l, ok := css.ParseLength(v); ok {
				d.Add(css.PropHeight, l)
			}
		case ident.AttrBorder:
			p.borderAttr(b, v)
		case ident.AttrCellspacing:
			if b.Tag == ident.TagTable {
				if n, ok := atoi(v); ok {
					d.Add(css.PropBorderSpacingH, css.Px(int32(n)))
					d.Add(css.PropBorderSpacingV, css.Px(int32(n)))
				}
			}
		case ident.AttrColspan:
			if n, ok := atoi(v); ok && n > 1 {
				d.Add(css.PropColumnSpan, css.Integer(int32(n)))
			}
		case ident.AttrRowspan:
			if n, ok := atoi(v); ok && n > 1 {
				d.Add(css.PropRowSpan, css.Integer(int32(n)))
			}
		case ident.AttrStart:
			if b.Tag == ident.TagOl {
				if n, ok := atoi(v); ok {
					d.Add(css.PropCounterReset, css.IdentRef(ident.CounterListItem), css.Integer(int32(n-1)))
				}
			}
		case ident.AttrValue:
			if b.Tag == ident.TagLi {
				if n, ok := atoi(v); ok {
					d.Add(css.PropCounterReset, css.IdentRef(ident.CounterListItem), css.Integer(int32(n-1)))
				}
			}
		case ident.AttrType:
			if b.Tag == ident.TagOl || b.Tag == ident.TagUl || b.Tag == ident.TagLi {
				if ls, ok := listTypes[v]; ok {
					d.Add(css.PropListStyleType, enum(ls))
				}
			}
		case ident.AttrNowrap:
			d.Add(css.PropWhiteSpace, enum(css.WhiteSpaceNowrap))
		case ident.AttrClear:
			switch strings.ToLower(v) {
			case "left":
				d.Add(css.PropClear, enum(css.ClearLeft))
			case "right":
				d.Add(css.PropClear, enum(css.ClearRight))
			case "all", "both":
				d.Add(css.PropClear, enum(css.ClearBoth))
			}
		case ident.AttrNoshade:
			if b.Tag == ident.TagHr {
				for _, prop := range css.BorderStyleProps {
					d.Add(prop, enum(css.BorderSolid))
				}
				for _, prop := range css.BorderColorProps {
					d.Add(prop, css.ColorValue(css.RGB(0x80, 0x80, 0x80)))
				}
			}
		case ident.AttrHspace:
			if n, ok := atoi(v); ok {
				d.Add(css.PropMarginLeft, css.Px(int32(n)))
				d.Add(css.PropMarginRight, css.Px(int32(n)))
			}
		case ident.AttrVspace:
			if n, ok := atoi(v); ok {
				d.Add(css.PropMarginTop, css.Px(int32(n)))
				d.Add(css.PropMarginBottom, css.Px(int32(n)))
			}
		case ident.AttrDir:
			if k := css.PropDirection.Keyword(v); k >= 0 {
				d.Add(css.PropDirection, css.Enum(int32(k)))
				d.Add(css.PropUnicodeBidi, enum(css.BidiEmbed))
			}
		}
	}
	switch b.Tag {
	case ident.TagImg, ident.TagInput:
		if b.Kind == box.ContentImage {
			if _, ok := b.Attr(ident.AttrWidth); !ok {
				d.Add(css.PropWidth, css.Px(defaultImageSize))
			}
			if _, ok := b.Attr(ident.AttrHeight); !ok {
				d.Add(css.PropHeight, css.Px(defaultImageSize))
			}
		}
	case ident.TagTD, ident.TagTH:
		p.cellAttrs(b)
	}
}

var listTypes = map[string]css.ListStyle{
	"1":      css.ListDecimal,
	"a":      css.ListLowerAlpha,
	"A":      css.ListUpperAlpha,
	"i":      css.ListLowerRoman,
	"I":      css.ListUpperRoman,
	"disc":   css.ListDisc,
	"circle": css.ListCircle,
	"square": css.ListSquare,
}

func alignAttr(b *box.Box, v string) {
	d := &b.Props
	switch b.Tag {
	case ident.TagImg, ident.TagTable:
		switch v {
		case "left":
			d.Add(css.PropFloat, enum(css.FloatLeft))
		case "right":
			d.Add(css.PropFloat, enum(css.FloatRight))
		case "center":
			if b.Tag == ident.TagTable {
				d.Add(css.PropMarginLeft, css.Auto())
				d.Add(css.PropMarginRight, css.Auto())
			}
		case "top", "middle", "bottom":
			if b.Tag == ident.TagImg {
				d.Add(css.PropVerticalAlign, css.Enum(int32(css.PropVerticalAlign.Keyword(v))))
			}
		}
	case ident.TagCaption:
		switch v {
		case "top":
			d.Add(css.PropCaptionSide, enum(css.CaptionTop))
		case "bottom":
			d.Add(css.PropCaptionSide, enum(css.CaptionBottom))
		}
	default:
		if v == "middle" {
			v = "center"
		}
		if k := css.PropTextAlign.Keyword(v); k >= 0 {
			d.Add(css.PropTextAlign, css.Enum(int32(k)))
		}
	}
}

// sizeAttr handles <font size>, <hr size> and <basefont size>.
func (p *Parser) sizeAttr(b *box.Box, v string) {
	switch b.Tag {
	case ident.TagFont:
		n, ok := atoi(strings.TrimPrefix(v, "+"))
		if !ok {
			return
		}
		if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
			n += 3
		}
		b.Props.Add(css.PropFontSize, css.FontSizeStep(n))
	case ident.TagHr:
		if n, ok := atoi(v); ok {
			b.Props.Add(css.PropHeight, css.Px(int32(max(0, n-2))))
		}
	}
}

func (p *Parser) borderAttr(b *box.Box, v string) {
	n, ok := atoi(v)
	if !ok {
		if v != "" {
			return
		}
		// A bare border attribute means 1.
		n = 1
	}
	style := css.BorderSolid
	switch b.Tag {
	case ident.TagTable:
		style = css.BorderOutset
	case ident.TagImg:
	default:
		return
	}
	for i := range css.BorderWidthProps {
		b.Props.Add(css.BorderWidthProps[i], css.Px(int32(n)))
		b.Props.Add(css.BorderStyleProps[i], enum(style))
	}
}

// cellAttrs gives cells the borders and padding requested by the
// enclosing table.
func (p *Parser) cellAttrs(cell *box.Box) {
	table := cell.Parent
	for table != nil && table.Tag != ident.TagTable {
		table = table.Parent
	}
	if table == nil {
		// The cell is not attached yet; use the innermost open table.
		for i := len(p.stack) - 1; i >= 1; i-- {
			if p.stack[i].Tag == ident.TagTable {
				table = p.stack[i]
				break
			}
		}
	}
	if table == nil {
		return
	}
	if v, ok := table.Attr(ident.AttrBorder); ok {
		if n, ok := atoi(v); (ok && n > 0) || strings.TrimSpace(v) == "" {
			for i := range css.BorderWidthProps {
				cell.Props.Add(css.BorderWidthProps[i], css.Px(1))
				cell.Props.Add(css.BorderStyleProps[i], enum(css.BorderRidge))
			}
		}
	}
	if v, ok := table.Attr(ident.AttrCellpadding); ok {
		if n, ok := atoi(v); ok {
			for _, prop := range css.PaddingProps {
				cell.Props.Add(prop, css.Px(int32(n)))
			}
		}
	}
}
