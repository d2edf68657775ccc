package css

import "strings"

// Prop indexes the table of supported long-hand properties.
type Prop uint8

const (
	PropDisplay Prop = iota
	PropPosition
	PropFloat
	PropClear
	PropWhiteSpace
	PropTextAlign
	PropVerticalAlign
	PropDirection
	PropUnicodeBidi
	PropOverflow
	PropVisibility
	PropTableLayout
	PropCaptionSide
	PropBorderCollapse
	PropListStyleType
	PropListStylePosition
	PropTextDecoration
	PropTextTransform
	PropFontStyle
	PropFontWeight
	PropFontFamily
	PropFontSize
	PropLineHeight
	PropColor
	PropBackgroundColor
	PropWidth
	PropHeight
	PropMinWidth
	PropMaxWidth
	PropMinHeight
	PropMaxHeight
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropBorderTopWidth
	PropBorderRightWidth
	PropBorderBottomWidth
	PropBorderLeftWidth
	PropBorderTopStyle
	PropBorderRightStyle
	PropBorderBottomStyle
	PropBorderLeftStyle
	PropBorderTopColor
	PropBorderRightColor
	PropBorderBottomColor
	PropBorderLeftColor
	PropBorderSpacingH
	PropBorderSpacingV
	PropTop
	PropRight
	PropBottom
	PropLeft
	PropTextIndent
	PropContent
	PropCounterReset
	PropCounterIncrement
	PropColumnSpan
	PropRowSpan

	NumProps
)

// TypeMask lists the value kinds a property accepts.
type TypeMask uint16

const (
	TypeLength TypeMask = 1 << iota
	TypePercent
	TypeColor
	TypeEnum
	TypeInteger
	TypeString
	TypeAuto
	TypeIdent
	TypeAttr
	TypeCounter
	// TypeList allows more than one value.
	TypeList
	// TypeNumber accepts unitless numbers as a multiple of the font size.
	TypeNumber
)

// PercentBase is what a percentage of the property is a percentage of.
type PercentBase uint8

const (
	BaseNone PercentBase = iota
	BaseWidth
	BaseHeight
	BaseFontSize
)

// PropInfo describes one long-hand property.
type PropInfo struct {
	Name     string
	Inherit  bool
	Types    TypeMask
	Base     PercentBase
	Keywords []string
}

const (
	lengthTypes = TypeLength | TypePercent
	sizeTypes   = TypeLength | TypePercent | TypeAuto
)

var propTable = [NumProps]PropInfo{
	PropDisplay:           {Name: "display", Types: TypeEnum, Keywords: displayKeywords},
	PropPosition:          {Name: "position", Types: TypeEnum, Keywords: positionKeywords},
	PropFloat:             {Name: "float", Types: TypeEnum, Keywords: floatKeywords},
	PropClear:             {Name: "clear", Types: TypeEnum, Keywords: clearKeywords},
	PropWhiteSpace:        {Name: "white-space", Inherit: true, Types: TypeEnum, Keywords: whiteSpaceKeywords},
	PropTextAlign:         {Name: "text-align", Inherit: true, Types: TypeEnum, Keywords: textAlignKeywords},
	PropVerticalAlign:     {Name: "vertical-align", Types: TypeEnum, Keywords: verticalAlignKeywords},
	PropDirection:         {Name: "direction", Inherit: true, Types: TypeEnum, Keywords: directionKeywords},
	PropUnicodeBidi:       {Name: "unicode-bidi", Types: TypeEnum, Keywords: unicodeBidiKeywords},
	PropOverflow:          {Name: "overflow", Types: TypeEnum, Keywords: overflowKeywords},
	PropVisibility:        {Name: "visibility", Inherit: true, Types: TypeEnum, Keywords: visibilityKeywords},
	PropTableLayout:       {Name: "table-layout", Types: TypeEnum, Keywords: tableLayoutKeywords},
	PropCaptionSide:       {Name: "caption-side", Inherit: true, Types: TypeEnum, Keywords: captionSideKeywords},
	PropBorderCollapse:    {Name: "border-collapse", Inherit: true, Types: TypeEnum, Keywords: borderCollapseKeywords},
	PropListStyleType:     {Name: "list-style-type", Inherit: true, Types: TypeEnum, Keywords: listStyleKeywords},
	PropListStylePosition: {Name: "list-style-position", Inherit: true, Types: TypeEnum, Keywords: listStylePositionKeywords},
	PropTextDecoration:    {Name: "text-decoration", Types: TypeEnum | TypeList, Keywords: textDecorationKeywords},
	PropTextTransform:     {Name: "text-transform", Inherit: true, Types: TypeEnum, Keywords: textTransformKeywords},
	PropFontStyle:         {Name: "font-style", Inherit: true, Types: TypeEnum, Keywords: fontStyleKeywords},
	PropFontWeight:        {Name: "font-weight", Inherit: true, Types: TypeEnum | TypeInteger, Keywords: fontWeightKeywords},
	PropFontFamily:        {Name: "font-family", Inherit: true, Types: TypeEnum | TypeString | TypeIdent | TypeList, Keywords: fontFamilyKeywords},
	PropFontSize:          {Name: "font-size", Inherit: true, Types: lengthTypes, Base: BaseFontSize},
	PropLineHeight:        {Name: "line-height", Inherit: true, Types: lengthTypes | TypeNumber | TypeAuto, Base: BaseFontSize},
	PropColor:             {Name: "color", Inherit: true, Types: TypeColor},
	PropBackgroundColor:   {Name: "background-color", Types: TypeColor},
	PropWidth:             {Name: "width", Types: sizeTypes, Base: BaseWidth},
	PropHeight:            {Name: "height", Types: sizeTypes, Base: BaseHeight},
	PropMinWidth:          {Name: "min-width", Types: lengthTypes, Base: BaseWidth},
	PropMaxWidth:          {Name: "max-width", Types: sizeTypes, Base: BaseWidth},
	PropMinHeight:         {Name: "min-height", Types: lengthTypes, Base: BaseHeight},
	PropMaxHeight:         {Name: "max-height", Types: sizeTypes, Base: BaseHeight},
	PropMarginTop:         {Name: "margin-top", Types: sizeTypes, Base: BaseWidth},
	PropMarginRight:       {Name: "margin-right", Types: sizeTypes, Base: BaseWidth},
	PropMarginBottom:      {Name: "margin-bottom", Types: sizeTypes, Base: BaseWidth},
	PropMarginLeft:        {Name: "margin-left", Types: sizeTypes, Base: BaseWidth},
	PropPaddingTop:        {Name: "padding-top", Types: lengthTypes, Base: BaseWidth},
	PropPaddingRight:      {Name: "padding-right", Types: lengthTypes, Base: BaseWidth},
	PropPaddingBottom:     {Name: "padding-bottom", Types: lengthTypes, Base: BaseWidth},
	PropPaddingLeft:       {Name: "padding-left", Types: lengthTypes, Base: BaseWidth},
	PropBorderTopWidth:    {Name: "border-top-width", Types: TypeLength | TypeEnum, Keywords: borderWidthKeywords},
	PropBorderRightWidth:  {Name: "border-right-width", Types: TypeLength | TypeEnum, Keywords: borderWidthKeywords},
	PropBorderBottomWidth: {Name: "border-bottom-width", Types: TypeLength | TypeEnum, Keywords: borderWidthKeywords},
	PropBorderLeftWidth:   {Name: "border-left-width", Types: TypeLength | TypeEnum, Keywords: borderWidthKeywords},
	PropBorderTopStyle:    {Name: "border-top-style", Types: TypeEnum, Keywords: borderStyleKeywords},
	PropBorderRightStyle:  {Name: "border-right-style", Types: TypeEnum, Keywords: borderStyleKeywords},
	PropBorderBottomStyle: {Name: "border-bottom-style", Types: TypeEnum, Keywords: borderStyleKeywords},
	PropBorderLeftStyle:   {Name: "border-left-style", Types: TypeEnum, Keywords: borderStyleKeywords},
	PropBorderTopColor:    {Name: "border-top-color", Types: TypeColor},
	PropBorderRightColor:  {Name: "border-right-color", Types: TypeColor},
	PropBorderBottomColor: {Name: "border-bottom-color", Types: TypeColor},
	PropBorderLeftColor:   {Name: "border-left-color", Types: TypeColor},
	PropBorderSpacingH:    {Name: "border-spacing-horizontal", Inherit: true, Types: TypeLength},
	PropBorderSpacingV:    {Name: "border-spacing-vertical", Inherit: true, Types: TypeLength},
	PropTop:               {Name: "top", Types: sizeTypes, Base: BaseHeight},
	PropRight:             {Name: "right", Types: sizeTypes, Base: BaseWidth},
	PropBottom:            {Name: "bottom", Types: sizeTypes, Base: BaseHeight},
	PropLeft:              {Name: "left", Types: sizeTypes, Base: BaseWidth},
	PropTextIndent:        {Name: "text-indent", Inherit: true, Types: lengthTypes, Base: BaseWidth},
	PropContent:           {Name: "content", Types: TypeString | TypeAttr | TypeCounter | TypeList},
	PropCounterReset:      {Name: "counter-reset", Types: TypeIdent | TypeInteger | TypeList},
	PropCounterIncrement:  {Name: "counter-increment", Types: TypeIdent | TypeInteger | TypeList},
	PropColumnSpan:        {Name: "column-span", Types: TypeInteger},
	PropRowSpan:           {Name: "row-span", Types: TypeInteger},
}

// borderWidthKeywords map onto 1, 3 and 5 pixels.
var borderWidthKeywords = []string{"thin", "medium", "thick"}

var propIndex = func() map[string]Prop {
	m := make(map[string]Prop, NumProps)
	for i := range propTable {
		m[propTable[i].Name] = Prop(i)
	}
	return m
}()

// Info returns the table entry of p.
func (p Prop) Info() *PropInfo { return &propTable[p] }

func (p Prop) String() string {
	if p < NumProps {
		return propTable[p].Name
	}
	return "?"
}

// LookupProp finds a long-hand property by name. Names are case-insensitive.
func LookupProp(name string) (Prop, bool) {
	p, ok := propIndex[strings.ToLower(name)]
	return p, ok
}

// Keyword returns the enum index of kw for p, or -1.
func (p Prop) Keyword(kw string) int {
	kw = strings.ToLower(kw)
	if alias, ok := keywordAliases[kw]; ok {
		kw = alias
	}
	for i, k := range propTable[p].Keywords {
		if k == kw {
			return i
		}
	}
	return -1
}

// Box sides, in CSS shorthand order.
const (
	SideTop = iota
	SideRight
	SideBottom
	SideLeft
)

// Side-indexed long-hands, used by shorthand expansion and by the cascade.
var (
	MarginProps      = [4]Prop{PropMarginTop, PropMarginRight, PropMarginBottom, PropMarginLeft}
	PaddingProps     = [4]Prop{PropPaddingTop, PropPaddingRight, PropPaddingBottom, PropPaddingLeft}
	BorderWidthProps = [4]Prop{PropBorderTopWidth, PropBorderRightWidth, PropBorderBottomWidth, PropBorderLeftWidth}
	BorderStyleProps = [4]Prop{PropBorderTopStyle, PropBorderRightStyle, PropBorderBottomStyle, PropBorderLeftStyle}
	BorderColorProps = [4]Prop{PropBorderTopColor, PropBorderRightColor, PropBorderBottomColor, PropBorderLeftColor}
	OffsetProps      = [4]Prop{PropTop, PropRight, PropBottom, PropLeft}
)
