package css

import (
	"fmt"
	"strconv"

	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Unit is the unit of a length value.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitPx
	UnitPercent
	UnitEx
	UnitEm
	UnitIn
	// UnitAuto marks an unresolved automatic computed length.
	UnitAuto
	// UnitNumber is a unitless multiple of the element's own font size. It
	// stays unresolved through inheritance.
	UnitNumber
)

var unitNames = [...]string{"", "px", "%", "ex", "em", "in", "auto", ""}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "?"
}

// LengthBase is the fixed-point base of fractional lengths. Percent, em, ex,
// inch and unitless number values are stored multiplied by LengthBase (24.8 fixed point);
// pixel and unitless values are plain integers.
const LengthBase = 256

// Physical units are normalised to inches at parse time.
const (
	mmPerInch = 25.4
	ptPerInch = 72
	pcPerInch = 6
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	KindLength ValueKind = iota
	KindColor
	KindEnum
	KindInteger
	KindString
	KindAttr
	KindCounter
	KindIdent
	KindAuto
	KindInherit
)

// Value is one parsed property value.
type Value struct {
	Kind ValueKind
	// Num holds the length, enum index, integer or color (as uint32 bits).
	Num  int32
	Unit Unit
	// Str holds string values.
	Str string
	// ID holds the attribute, counter or identifier reference.
	ID ident.ID
	// List is the list style of a counter reference.
	List ListStyle
}

func Length(n int32, u Unit) Value   { return Value{Kind: KindLength, Num: n, Unit: u} }
func Px(n int32) Value               { return Length(n, UnitPx) }
func ColorValue(c Color) Value       { return Value{Kind: KindColor, Num: int32(c)} }
func Enum(n int32) Value             { return Value{Kind: KindEnum, Num: n} }
func Integer(n int32) Value          { return Value{Kind: KindInteger, Num: n} }
func String(s string) Value          { return Value{Kind: KindString, Str: s} }
func AttrRef(id ident.ID) Value      { return Value{Kind: KindAttr, ID: id} }
func IdentRef(id ident.ID) Value     { return Value{Kind: KindIdent, ID: id} }
func Auto() Value                    { return Value{Kind: KindAuto} }
func Inherit() Value                 { return Value{Kind: KindInherit} }
func CounterRef(id ident.ID, style ListStyle) Value {
	return Value{Kind: KindCounter, ID: id, List: style}
}

// Color returns the color held by a KindColor value.
func (v Value) Color() Color { return Color(uint32(v.Num)) }

// IsLength reports whether v is a length (possibly unitless).
func (v Value) IsLength() bool { return v.Kind == KindLength }

// String formats v for debugging and box dumps. Identifier references print
// their numeric ID since the value has no access to the interner.
func (v Value) String() string {
	switch v.Kind {
	case KindLength:
		switch v.Unit {
		case UnitNone, UnitPx:
			return strconv.Itoa(int(v.Num)) + v.Unit.String()
		default:
			return strconv.FormatFloat(float64(v.Num)/LengthBase, 'g', 4, 64) + v.Unit.String()
		}
	case KindColor:
		return v.Color().String()
	case KindEnum:
		return fmt.Sprintf("enum(%d)", v.Num)
	case KindInteger:
		return strconv.Itoa(int(v.Num))
	case KindString:
		return strconv.Quote(v.Str)
	case KindAttr:
		return fmt.Sprintf("attr(#%d)", v.ID)
	case KindCounter:
		return fmt.Sprintf("counter(#%d,%d)", v.ID, v.List)
	case KindIdent:
		return fmt.Sprintf("ident(#%d)", v.ID)
	case KindAuto:
		return "auto"
	case KindInherit:
		return "inherit"
	}
	return "?"
}
