package css

// Keyword-valued properties. The numeric value of each constant is the
// index of its keyword in the property table, so the parser can store enums
// without knowing their Go types.

type Display uint8

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayListItem
	DisplayInlineBlock
	DisplayTable
	DisplayInlineTable
	DisplayTableRowGroup
	DisplayTableHeaderGroup
	DisplayTableFooterGroup
	DisplayTableRow
	DisplayTableColumnGroup
	DisplayTableColumn
	DisplayTableCell
	DisplayTableCaption
	DisplayMarker
	DisplayNone
)

var displayKeywords = []string{
	"inline", "block", "list-item", "inline-block", "table", "inline-table",
	"table-row-group", "table-header-group", "table-footer-group", "table-row",
	"table-column-group", "table-column", "table-cell", "table-caption",
	"marker", "none",
}

func (d Display) String() string {
	if int(d) < len(displayKeywords) {
		return displayKeywords[d]
	}
	return "?"
}

// IsBlockLevel reports whether boxes of this display type start a new line
// in normal flow.
func (d Display) IsBlockLevel() bool {
	switch d {
	case DisplayInline, DisplayInlineBlock, DisplayInlineTable, DisplayMarker:
		return false
	}
	return true
}

// IsAtomicInline reports whether the box is laid out as a block but placed
// on a line as a single unbreakable item.
func (d Display) IsAtomicInline() bool {
	return d == DisplayInlineBlock || d == DisplayInlineTable
}

// IsTablePart reports the internal table display types.
func (d Display) IsTablePart() bool {
	return d >= DisplayTableRowGroup && d <= DisplayTableCaption
}

type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

var positionKeywords = []string{"static", "relative", "absolute", "fixed"}

// OutOfFlow reports whether the position removes the box from normal flow.
func (p Position) OutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

type Float uint8

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

var floatKeywords = []string{"none", "left", "right"}

type Clear uint8

const (
	ClearNone Clear = iota
	ClearLeft
	ClearRight
	ClearBoth
)

var clearKeywords = []string{"none", "left", "right", "both"}

type WhiteSpace uint8

const (
	WhiteSpaceNormal WhiteSpace = iota
	WhiteSpacePre
	WhiteSpaceNowrap
	WhiteSpacePreWrap
	WhiteSpacePreLine
)

var whiteSpaceKeywords = []string{"normal", "pre", "nowrap", "pre-wrap", "pre-line"}

// CollapsesSpaces reports whether runs of white space collapse to one.
func (w WhiteSpace) CollapsesSpaces() bool {
	return w == WhiteSpaceNormal || w == WhiteSpaceNowrap || w == WhiteSpacePreLine
}

// KeepsNewlines reports whether newlines in the source force line breaks.
func (w WhiteSpace) KeepsNewlines() bool {
	return w == WhiteSpacePre || w == WhiteSpacePreWrap || w == WhiteSpacePreLine
}

// Wraps reports whether lines may break at soft wrap opportunities.
func (w WhiteSpace) Wraps() bool {
	return w != WhiteSpacePre && w != WhiteSpaceNowrap
}

type TextAlign uint8

const (
	// TextAlignStart aligns to the start edge given by the direction.
	TextAlignStart TextAlign = iota
	TextAlignLeft
	TextAlignRight
	TextAlignCenter
	TextAlignJustify
)

var textAlignKeywords = []string{"start", "left", "right", "center", "justify"}

type VerticalAlign uint8

const (
	VAlignBaseline VerticalAlign = iota
	VAlignSub
	VAlignSuper
	VAlignTop
	VAlignTextTop
	VAlignMiddle
	VAlignBottom
	VAlignTextBottom
)

var verticalAlignKeywords = []string{
	"baseline", "sub", "super", "top", "text-top", "middle", "bottom", "text-bottom",
}

type Direction uint8

const (
	DirLTR Direction = iota
	DirRTL
)

var directionKeywords = []string{"ltr", "rtl"}

func (d Direction) String() string { return directionKeywords[d&1] }

type UnicodeBidi uint8

const (
	BidiNormal UnicodeBidi = iota
	BidiEmbed
	BidiOverride
)

var unicodeBidiKeywords = []string{"normal", "embed", "bidi-override"}

type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

var overflowKeywords = []string{"visible", "hidden", "scroll", "auto"}

// Clips reports whether descendants are clipped to the padding box.
func (o Overflow) Clips() bool { return o != OverflowVisible }

type Visibility uint8

const (
	VisibilityVisible Visibility = iota
	VisibilityHidden
	VisibilityCollapse
)

var visibilityKeywords = []string{"visible", "hidden", "collapse"}

type TableLayout uint8

const (
	TableLayoutAuto TableLayout = iota
	TableLayoutFixed
)

var tableLayoutKeywords = []string{"auto", "fixed"}

type CaptionSide uint8

const (
	CaptionTop CaptionSide = iota
	CaptionBottom
)

var captionSideKeywords = []string{"top", "bottom"}

type BorderCollapse uint8

const (
	BorderSeparate BorderCollapse = iota
	BorderCollapsed
)

var borderCollapseKeywords = []string{"separate", "collapse"}

// ListStyle is a list-style-type, also used by counter() references.
type ListStyle uint8

const (
	ListDisc ListStyle = iota
	ListCircle
	ListSquare
	ListDecimal
	ListLowerRoman
	ListUpperRoman
	ListLowerAlpha
	ListUpperAlpha
	ListNone
)

var listStyleKeywords = []string{
	"disc", "circle", "square", "decimal", "lower-roman", "upper-roman",
	"lower-alpha", "upper-alpha", "none",
}

// keywordAliases maps CSS2 synonyms onto the canonical keyword.
var keywordAliases = map[string]string{
	"lower-latin": "lower-alpha",
	"upper-latin": "upper-alpha",
}

type ListStylePosition uint8

const (
	ListOutside ListStylePosition = iota
	ListInside
)

var listStylePositionKeywords = []string{"outside", "inside"}

type BorderStyle uint8

const (
	BorderNone BorderStyle = iota
	BorderHidden
	BorderDotted
	BorderDashed
	BorderSolid
	BorderDouble
	BorderGroove
	BorderRidge
	BorderInset
	BorderOutset
)

var borderStyleKeywords = []string{
	"none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset",
}

// Visible reports whether a border of this style is drawn and takes space.
func (b BorderStyle) Visible() bool { return b != BorderNone && b != BorderHidden }

type FontStyle uint8

const (
	FontNormal FontStyle = iota
	FontItalic
	FontOblique
)

var fontStyleKeywords = []string{"normal", "italic", "oblique"}

type FontWeight uint8

const (
	WeightNormal FontWeight = iota
	WeightBold
	WeightBolder
	WeightLighter
)

var fontWeightKeywords = []string{"normal", "bold", "bolder", "lighter"}

type FontFamily uint8

const (
	FamilySerif FontFamily = iota
	FamilySans
	FamilyMono
	FamilyCursive
	FamilyFantasy
)

var fontFamilyKeywords = []string{"serif", "sans-serif", "monospace", "cursive", "fantasy"}

// familyNames maps common concrete family names to a generic family.
var familyNames = map[string]FontFamily{
	"times":           FamilySerif,
	"times new roman": FamilySerif,
	"georgia":         FamilySerif,
	"helvetica":       FamilySans,
	"arial":           FamilySans,
	"verdana":         FamilySans,
	"courier":         FamilyMono,
	"courier new":     FamilyMono,
	"fixed":           FamilyMono,
	"lucida console":  FamilyMono,
}

// TextDecoration is a bit mask; "none" is the empty mask.
type TextDecoration uint8

const (
	DecorUnderline TextDecoration = 1 << iota
	DecorOverline
	DecorLineThrough
	DecorBlink
)

var textDecorationKeywords = []string{"none", "underline", "overline", "line-through", "blink"}

type TextTransform uint8

const (
	TransformNone TextTransform = iota
	TransformCapitalize
	TransformUppercase
	TransformLowercase
)

var textTransformKeywords = []string{"none", "capitalize", "uppercase", "lowercase"}
