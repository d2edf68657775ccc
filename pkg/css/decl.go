package css

// Decl is one long-hand declaration. Most properties hold a single value;
// content, counter-reset, counter-increment, font-family and
// text-decoration may hold several.
type Decl struct {
	Prop      Prop
	Values    []Value
	Important bool
}

// Declarations is an ordered declaration block. Later entries override
// earlier ones for the same property.
type Declarations []Decl

// Add appends a declaration for p.
func (d *Declarations) Add(p Prop, vals ...Value) {
	*d = append(*d, Decl{Prop: p, Values: vals})
}

// Get returns the values of the last declaration of p.
func (d Declarations) Get(p Prop) ([]Value, bool) {
	for i := len(d) - 1; i >= 0; i-- {
		if d[i].Prop == p {
			return d[i].Values, true
		}
	}
	return nil, false
}

// Expand4 applies the CSS2 one/two/three/four value rule and returns the
// values for top, right, bottom and left.
func Expand4(vals []Value) [4]Value {
	var out [4]Value
	switch len(vals) {
	case 0:
	case 1:
		out = [4]Value{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		out = [4]Value{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		out = [4]Value{vals[0], vals[1], vals[2], vals[1]}
	default:
		out = [4]Value{vals[0], vals[1], vals[2], vals[3]}
	}
	return out
}

// AddSides expands vals over the four side properties.
func (d *Declarations) AddSides(props [4]Prop, vals []Value) {
	if len(vals) == 0 {
		return
	}
	for i, v := range Expand4(vals) {
		d.Add(props[i], v)
	}
}
