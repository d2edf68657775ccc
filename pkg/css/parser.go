package css

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Parser parses style sheets, declaration blocks and style attributes.
// Comments are dropped at the lexical level; malformed constructs are
// reported to the sink and skipped without aborting the surrounding rule.
type Parser struct {
	log    *zap.Logger
	idents *ident.Table
	sink   diag.Sink

	// Filename names the source in diagnostics.
	Filename string
	// IgnoreCase folds tag and attribute names in selectors. Property
	// names and keywords are always folded.
	IgnoreCase bool
}

// NewParser creates a parser interning names into idents.
func NewParser(idents *ident.Table, sink diag.Sink, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = diag.Discard
	}
	return &Parser{log: log.Named("css"), idents: idents, sink: sink, IgnoreCase: true}
}

type token struct {
	tt   tcss.TokenType
	data string
	line int
}

var eofToken = token{tt: tcss.ErrorToken}

// lex tokenizes text, dropping comments. line is the line number of the
// first byte of text.
func (p *Parser) lex(text string, line int) []token {
	l := tcss.NewLexer(parse.NewInput(strings.NewReader(text)))
	var toks []token
	for {
		tt, data := l.Next()
		if tt == tcss.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				p.sink.Report(p.Filename, line, "css: "+err.Error())
			}
			return toks
		}
		s := string(data)
		if tt != tcss.CommentToken {
			toks = append(toks, token{tt: tt, data: s, line: line})
		}
		line += strings.Count(s, "\n")
	}
}

// ParseSheet parses text and appends its rules to sheet. line is the line
// number of the start of text in Filename.
func (p *Parser) ParseSheet(sheet *Sheet, text string, line int) {
	p.ParseSheetMedia(sheet, text, line, MediaAll)
}

// ParseSheetMedia is ParseSheet for a sheet restricted to media, as given
// by the media attribute of a style element.
func (p *Parser) ParseSheetMedia(sheet *Sheet, text string, line int, media MediaMask) {
	st := &state{p: p, toks: p.lex(text, line)}
	before := sheet.Len()
	st.rules(sheet, media, false)
	p.log.Debug("parsed style sheet",
		zap.String("file", p.Filename), zap.Int("bytes", len(text)), zap.Int("rules", sheet.Len()-before))
}

// ParseDeclarations parses the contents of a declaration block without
// braces, as found in style attributes.
func (p *Parser) ParseDeclarations(text string, line int) Declarations {
	st := &state{p: p, toks: p.lex(text, line)}
	return st.block(false)
}

type state struct {
	p    *Parser
	toks []token
	pos  int
}

func (st *state) peek() token {
	if st.pos < len(st.toks) {
		return st.toks[st.pos]
	}
	return eofToken
}

func (st *state) eof() bool { return st.pos >= len(st.toks) }

func (st *state) skipWS() {
	for st.pos < len(st.toks) && st.toks[st.pos].tt == tcss.WhitespaceToken {
		st.pos++
	}
}

func (st *state) report(line int, msg string) {
	st.p.sink.Report(st.p.Filename, line, msg)
}

func (st *state) line() int {
	if st.pos < len(st.toks) {
		return st.toks[st.pos].line
	}
	if len(st.toks) > 0 {
		return st.toks[len(st.toks)-1].line
	}
	return 0
}

func (st *state) rules(sheet *Sheet, media MediaMask, nested bool) {
	for {
		st.skipWS()
		t := st.peek()
		switch {
		case st.eof():
			if nested {
				st.report(st.line(), "missing '}' at end of @media block")
			}
			return
		case t.tt == tcss.RightBraceToken:
			st.pos++
			if nested {
				return
			}
			st.report(t.line, "unexpected '}'")
		case t.tt == tcss.CDOToken, t.tt == tcss.CDCToken, t.tt == tcss.SemicolonToken:
			st.pos++
		case t.tt == tcss.AtKeywordToken:
			st.atRule(sheet, media)
		default:
			st.ruleset(sheet, media)
		}
	}
}

func (st *state) atRule(sheet *Sheet, media MediaMask) {
	t := st.toks[st.pos]
	st.pos++
	name := strings.ToLower(strings.TrimPrefix(t.data, "@"))
	switch name {
	case "media":
		var names []string
		for !st.eof() {
			tt := st.peek().tt
			if tt == tcss.LeftBraceToken || tt == tcss.SemicolonToken {
				break
			}
			if tt == tcss.IdentToken {
				names = append(names, st.peek().data)
			}
			st.pos++
		}
		if st.peek().tt != tcss.LeftBraceToken {
			st.pos++
			return
		}
		st.pos++
		st.rules(sheet, media&ParseMedia(strings.Join(names, ",")), true)
	case "page":
		for !st.eof() && st.peek().tt != tcss.LeftBraceToken {
			st.pos++
		}
		if st.eof() {
			return
		}
		st.pos++
		decls := st.block(true)
		sheet.Add(&Selector{Tag: ident.PseudoPage}, media, decls)
	default:
		st.p.log.Debug("skipping at-rule", zap.String("rule", t.data))
		st.skipAtRule()
	}
}

// skipAtRule skips to the end of an at-rule: a ';' or a balanced block.
func (st *state) skipAtRule() {
	depth := 0
	for !st.eof() {
		t := st.peek()
		st.pos++
		switch t.tt {
		case tcss.SemicolonToken:
			if depth == 0 {
				return
			}
		case tcss.LeftBraceToken:
			depth++
		case tcss.RightBraceToken:
			depth--
			if depth <= 0 {
				return
			}
		}
	}
}

func (st *state) ruleset(sheet *Sheet, media MediaMask) {
	start := st.pos
	line := st.line()
	for !st.eof() && st.peek().tt != tcss.LeftBraceToken {
		if st.peek().tt == tcss.RightBraceToken {
			st.report(line, "missing '{' after selector")
			return
		}
		st.pos++
	}
	if st.eof() {
		st.report(line, "missing '{' after selector")
		return
	}
	selToks := st.toks[start:st.pos]
	st.pos++
	decls := st.block(true)
	for _, group := range splitTokens(selToks, tcss.CommaToken) {
		sel, ok := st.selector(trimWS(group))
		if !ok {
			st.report(line, "invalid selector '"+joinTokens(group)+"'")
			continue
		}
		sheet.Add(sel, media, decls)
	}
}

// block parses declarations up to the closing brace, or to the end of input
// when braces is false.
func (st *state) block(braces bool) Declarations {
	var decls Declarations
	for {
		st.skipWS()
		t := st.peek()
		switch {
		case st.eof():
			if braces {
				st.report(st.line(), "missing '}' at end of declaration block")
			}
			return decls
		case t.tt == tcss.RightBraceToken:
			st.pos++
			if braces {
				return decls
			}
			st.report(t.line, "unexpected '}'")
			continue
		case t.tt == tcss.SemicolonToken:
			st.pos++
			continue
		}
		start, depth := st.pos, 0
	scan:
		for !st.eof() {
			switch st.peek().tt {
			case tcss.LeftBraceToken, tcss.LeftParenthesisToken, tcss.LeftBracketToken, tcss.FunctionToken:
				depth++
			case tcss.RightParenthesisToken, tcss.RightBracketToken:
				depth--
			case tcss.RightBraceToken:
				if depth <= 0 {
					break scan
				}
				depth--
			case tcss.SemicolonToken:
				if depth <= 0 {
					break scan
				}
			}
			st.pos++
		}
		st.declaration(trimWS(st.toks[start:st.pos]), &decls)
	}
}

func (st *state) declaration(toks []token, decls *Declarations) {
	if len(toks) == 0 {
		return
	}
	line := toks[0].line
	if toks[0].tt != tcss.IdentToken {
		st.report(line, "invalid property name '"+toks[0].data+"'")
		return
	}
	name := strings.ToLower(toks[0].data)
	rest := trimWS(toks[1:])
	if len(rest) == 0 || rest[0].tt != tcss.ColonToken {
		st.report(line, "missing ':' after '"+name+"'")
		return
	}
	vals := trimWS(rest[1:])
	important := false
	if n := len(vals); n >= 2 && vals[n-1].tt == tcss.IdentToken && strings.EqualFold(vals[n-1].data, "important") {
		k := n - 2
		for k >= 0 && vals[k].tt == tcss.WhitespaceToken {
			k--
		}
		if k >= 0 && vals[k].tt == tcss.DelimToken && vals[k].data == "!" {
			important = true
			vals = trimWS(vals[:k])
		}
	}
	if len(vals) == 0 {
		st.report(line, "missing value for '"+name+"'")
		return
	}
	first := len(*decls)
	st.property(name, vals, decls, line)
	if important {
		for i := first; i < len(*decls); i++ {
			(*decls)[i].Important = true
		}
	}
}

func (st *state) property(name string, toks []token, decls *Declarations, line int) {
	switch name {
	case "margin":
		st.sides(MarginProps, toks, decls, line)
	case "padding":
		st.sides(PaddingProps, toks, decls, line)
	case "border-width":
		st.sides(BorderWidthProps, toks, decls, line)
	case "border-style":
		st.sides(BorderStyleProps, toks, decls, line)
	case "border-color":
		st.sides(BorderColorProps, toks, decls, line)
	case "border":
		for side := SideTop; side <= SideLeft; side++ {
			st.borderSide(side, toks, decls, line)
		}
	case "border-top":
		st.borderSide(SideTop, toks, decls, line)
	case "border-right":
		st.borderSide(SideRight, toks, decls, line)
	case "border-bottom":
		st.borderSide(SideBottom, toks, decls, line)
	case "border-left":
		st.borderSide(SideLeft, toks, decls, line)
	case "border-spacing":
		vals, ok := st.values(PropBorderSpacingH, toks, line)
		if !ok || len(vals) == 0 || len(vals) > 2 {
			st.report(line, "invalid value for 'border-spacing'")
			return
		}
		v := vals[len(vals)-1]
		decls.Add(PropBorderSpacingH, vals[0])
		decls.Add(PropBorderSpacingV, v)
	case "background":
		st.background(toks, decls, line)
	case "list-style":
		st.listStyle(toks, decls, line)
	case "font":
		st.font(toks, decls, line)
	case "font-family":
		if v, ok := st.fontFamily(toks); ok {
			decls.Add(PropFontFamily, v)
		}
	default:
		prop, ok := LookupProp(name)
		if !ok {
			st.report(line, "unsupported property '"+name+"'")
			return
		}
		vals, ok := st.values(prop, toks, line)
		if !ok {
			st.report(line, "invalid value for '"+name+"'")
			return
		}
		if len(vals) > 1 && prop.Info().Types&TypeList == 0 {
			st.report(line, "too many values for '"+name+"'")
			return
		}
		if len(vals) == 0 && prop.Info().Types&TypeList == 0 {
			return
		}
		decls.Add(prop, vals...)
	}
}

func (st *state) sides(props [4]Prop, toks []token, decls *Declarations, line int) {
	vals, ok := st.values(props[0], toks, line)
	if !ok || len(vals) == 0 || len(vals) > 4 {
		st.report(line, "invalid value for '"+props[0].String()+"' shorthand")
		return
	}
	decls.AddSides(props, vals)
}

// borderSide dispatches each value of a border shorthand to the width,
// style or color long-hand according to its type. Omitted parts are reset.
func (st *state) borderSide(side int, toks []token, decls *Declarations, line int) {
	width, style, color := Enum(1), Enum(int32(BorderNone)), ColorValue(Transparent)
	items := splitItems(toks)
	if len(items) == 1 && isKeyword(items[0], "inherit") {
		width, style, color = Inherit(), Inherit(), Inherit()
	} else {
		for _, item := range items {
			if isComma(item) {
				continue
			}
			if v, res := st.value(BorderColorProps[side], item); res == valOK {
				color = v
			} else if v, res := st.value(BorderStyleProps[side], item); res == valOK {
				style = v
			} else if v, res := st.value(BorderWidthProps[side], item); res == valOK {
				width = v
			} else {
				st.report(line, "invalid value '"+joinTokens(item)+"' in border shorthand")
				return
			}
		}
	}
	decls.Add(BorderWidthProps[side], width)
	decls.Add(BorderStyleProps[side], style)
	decls.Add(BorderColorProps[side], color)
}

func (st *state) background(toks []token, decls *Declarations, line int) {
	color := ColorValue(Transparent)
	for _, item := range splitItems(toks) {
		if isComma(item) {
			continue
		}
		if isKeyword(item, "inherit") {
			color = Inherit()
			continue
		}
		if v, res := st.value(PropBackgroundColor, item); res == valOK {
			color = v
		}
	}
	decls.Add(PropBackgroundColor, color)
}

func (st *state) listStyle(toks []token, decls *Declarations, line int) {
	for _, item := range splitItems(toks) {
		if isComma(item) {
			continue
		}
		if v, res := st.value(PropListStyleType, item); res == valOK {
			decls.Add(PropListStyleType, v)
		} else if v, res := st.value(PropListStylePosition, item); res == valOK {
			decls.Add(PropListStylePosition, v)
		} else if res != valSkip {
			st.report(line, "invalid value '"+joinTokens(item)+"' in list-style")
		}
	}
}

// font handles [style] [weight] size[/line-height] family.
func (st *state) font(toks []token, decls *Declarations, line int) {
	items := splitItems(toks)
	i := 0
	for ; i < len(items); i++ {
		item := items[i]
		if isKeyword(item, "normal") || isKeyword(item, "small-caps") {
			continue
		}
		if v, res := st.value(PropFontStyle, item); res == valOK {
			decls.Add(PropFontStyle, v)
			continue
		}
		if v, res := st.value(PropFontWeight, item); res == valOK {
			decls.Add(PropFontWeight, v)
			continue
		}
		break
	}
	if i >= len(items) {
		st.report(line, "missing font size in 'font'")
		return
	}
	size, res := st.value(PropFontSize, items[i])
	if res != valOK {
		st.report(line, "invalid font size in 'font'")
		return
	}
	decls.Add(PropFontSize, size)
	i++
	if i < len(items) && len(items[i]) == 1 && items[i][0].tt == tcss.DelimToken && items[i][0].data == "/" {
		i++
		if i < len(items) {
			if v, res := st.value(PropLineHeight, items[i]); res == valOK {
				decls.Add(PropLineHeight, v)
			}
			i++
		}
	}
	if i < len(items) {
		var rest []token
		for _, item := range items[i:] {
			rest = append(rest, item...)
			rest = append(rest, token{tt: tcss.WhitespaceToken, data: " "})
		}
		if v, ok := st.fontFamily(trimWS(rest)); ok {
			decls.Add(PropFontFamily, v)
		}
	}
}

// fontFamily picks the first family of the list that maps onto a generic
// family.
func (st *state) fontFamily(toks []token) (Value, bool) {
	for _, entry := range splitTokens(toks, tcss.CommaToken) {
		var words []string
		for _, t := range entry {
			switch t.tt {
			case tcss.IdentToken:
				words = append(words, strings.ToLower(t.data))
			case tcss.StringToken:
				words = append(words, strings.ToLower(unquote(t.data)))
			}
		}
		name := strings.Join(words, " ")
		if name == "inherit" {
			return Inherit(), true
		}
		if k := PropFontFamily.Keyword(name); k >= 0 {
			return Enum(int32(k)), true
		}
		if f, ok := familyNames[name]; ok {
			return Enum(int32(f)), true
		}
	}
	return Value{}, false
}

// values parses toks as a space separated list of values for prop.
func (st *state) values(prop Prop, toks []token, line int) ([]Value, bool) {
	var out []Value
	for _, item := range splitItems(toks) {
		if isComma(item) {
			continue
		}
		v, res := st.value(prop, item)
		switch res {
		case valBad:
			return nil, false
		case valOK:
			out = append(out, v)
		}
	}
	return out, true
}

type valResult uint8

const (
	valOK valResult = iota
	valSkip
	valBad
)

// value parses one value item: a single token, or a function token with its
// arguments.
func (st *state) value(prop Prop, item []token) (Value, valResult) {
	info := prop.Info()
	t := item[0]
	switch t.tt {
	case tcss.IdentToken:
		kw := strings.ToLower(t.data)
		if kw == "inherit" {
			return Inherit(), valOK
		}
		if info.Types&TypeEnum != 0 {
			if k := prop.Keyword(kw); k >= 0 {
				return Enum(int32(k)), valOK
			}
		}
		if info.Types&TypeAuto != 0 && (kw == "auto" || (prop == PropLineHeight && kw == "normal")) {
			return Auto(), valOK
		}
		if info.Types&TypeColor != 0 {
			if c, ok := namedColors[kw]; ok {
				return ColorValue(c), valOK
			}
		}
		switch prop {
		case PropFontSize:
			if v, ok := fontSizeKeyword(kw); ok {
				return v, valOK
			}
		case PropContent:
			switch kw {
			case "open-quote":
				return String("“"), valOK
			case "close-quote":
				return String("”"), valOK
			case "none", "normal", "no-open-quote", "no-close-quote":
				return Value{}, valSkip
			}
		case PropCounterReset, PropCounterIncrement:
			if kw == "none" {
				return Value{}, valSkip
			}
		}
		if info.Types&TypeIdent != 0 {
			return IdentRef(st.p.idents.Intern(t.data)), valOK
		}
	case tcss.NumberToken:
		f, err := strconv.ParseFloat(t.data, 64)
		if err != nil {
			return Value{}, valBad
		}
		switch {
		case info.Types&TypeNumber != 0:
			return Length(fixed(f), UnitNumber), valOK
		case info.Types&TypeInteger != 0:
			return Integer(int32(math.Round(f))), valOK
		case info.Types&TypeLength != 0:
			return Px(int32(math.Round(f))), valOK
		}
	case tcss.PercentageToken:
		if info.Types&TypePercent != 0 {
			f, err := strconv.ParseFloat(strings.TrimSuffix(t.data, "%"), 64)
			if err != nil {
				return Value{}, valBad
			}
			return Length(fixed(f), UnitPercent), valOK
		}
	case tcss.DimensionToken:
		if info.Types&TypeLength != 0 {
			v, ok := parseDimension(t.data)
			if !ok {
				st.report(t.line, "unknown unit in '"+t.data+"'")
				return Value{}, valBad
			}
			return v, valOK
		}
	case tcss.HashToken:
		if info.Types&TypeColor != 0 {
			if c, ok := ParseColor(t.data); ok {
				return ColorValue(c), valOK
			}
		}
	case tcss.StringToken:
		if info.Types&TypeString != 0 {
			return String(unquote(t.data)), valOK
		}
	case tcss.URLToken:
		return Value{}, valSkip
	case tcss.FunctionToken:
		return st.function(prop, strings.ToLower(strings.TrimSuffix(t.data, "(")), item[1:])
	}
	return Value{}, valBad
}

func (st *state) function(prop Prop, name string, args []token) (Value, valResult) {
	info := prop.Info()
	var params []token
	for _, a := range args {
		switch a.tt {
		case tcss.WhitespaceToken, tcss.CommaToken, tcss.RightParenthesisToken:
		default:
			params = append(params, a)
		}
	}
	switch name {
	case "url":
		return Value{}, valSkip
	case "rgb":
		if info.Types&TypeColor == 0 || len(params) != 3 {
			return Value{}, valBad
		}
		var ch [3]uint8
		for i, a := range params {
			var f float64
			var err error
			switch a.tt {
			case tcss.NumberToken:
				f, err = strconv.ParseFloat(a.data, 64)
			case tcss.PercentageToken:
				f, err = strconv.ParseFloat(strings.TrimSuffix(a.data, "%"), 64)
				f = f * 255 / 100
			default:
				return Value{}, valBad
			}
			if err != nil {
				return Value{}, valBad
			}
			ch[i] = uint8(math.Max(0, math.Min(255, math.Round(f))))
		}
		return ColorValue(RGB(ch[0], ch[1], ch[2])), valOK
	case "attr":
		if info.Types&TypeAttr == 0 || len(params) != 1 || params[0].tt != tcss.IdentToken {
			return Value{}, valBad
		}
		return AttrRef(st.p.idents.InternFold(params[0].data, st.p.IgnoreCase)), valOK
	case "counter":
		if info.Types&TypeCounter == 0 || len(params) == 0 || params[0].tt != tcss.IdentToken {
			return Value{}, valBad
		}
		style := ListDecimal
		if len(params) > 1 {
			k := PropListStyleType.Keyword(params[1].data)
			if k < 0 {
				return Value{}, valBad
			}
			style = ListStyle(k)
		}
		return CounterRef(st.p.idents.Intern(params[0].data), style), valOK
	}
	return Value{}, valBad
}

func (st *state) selector(toks []token) (*Selector, bool) {
	if len(toks) == 0 {
		return nil, false
	}
	cur := &Selector{Tag: ident.Star}
	empty := true
	comb := CombNone
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.tt == tcss.WhitespaceToken:
			if !empty && comb == CombNone {
				comb = CombDescendant
			}
			continue
		case t.tt == tcss.DelimToken && (t.data == ">" || t.data == "+"):
			if empty && cur.Next == nil {
				return nil, false
			}
			if t.data == ">" {
				comb = CombChild
			} else {
				comb = CombAdjacent
			}
			continue
		}
		if comb != CombNone {
			cur = &Selector{Tag: ident.Star, Combinator: comb, Next: cur}
			comb = CombNone
			empty = true
		}
		switch {
		case t.tt == tcss.IdentToken:
			if !empty {
				return nil, false
			}
			cur.Tag = st.p.idents.InternFold(t.data, st.p.IgnoreCase)
		case t.tt == tcss.DelimToken && t.data == "*":
			if !empty {
				return nil, false
			}
		case t.tt == tcss.DelimToken && t.data == ".":
			if i+1 >= len(toks) || toks[i+1].tt != tcss.IdentToken {
				return nil, false
			}
			i++
			cur.Attrs = append(cur.Attrs, AttrMatch{Attr: ident.AttrClass, Op: AttrInList, Value: toks[i].data})
		case t.tt == tcss.HashToken:
			cur.ID = st.p.idents.Intern(strings.TrimPrefix(t.data, "#"))
		case t.tt == tcss.LeftBracketToken:
			end := i + 1
			for end < len(toks) && toks[end].tt != tcss.RightBracketToken {
				end++
			}
			if end >= len(toks) {
				return nil, false
			}
			m, ok := st.attrMatch(trimWS(toks[i+1 : end]))
			if !ok {
				return nil, false
			}
			cur.Attrs = append(cur.Attrs, m)
			i = end
		case t.tt == tcss.ColonToken:
			i++
			if i < len(toks) && toks[i].tt == tcss.ColonToken {
				i++
			}
			if i >= len(toks) || toks[i].tt != tcss.IdentToken {
				return nil, false
			}
			bit, ok := LookupPseudo(toks[i].data)
			if !ok {
				return nil, false
			}
			cur.Pseudo |= bit
		default:
			return nil, false
		}
		empty = false
	}
	if empty || comb != CombNone {
		return nil, false
	}
	return cur, true
}

func (st *state) attrMatch(toks []token) (AttrMatch, bool) {
	var items []token
	for _, t := range toks {
		if t.tt != tcss.WhitespaceToken {
			items = append(items, t)
		}
	}
	if len(items) == 0 || items[0].tt != tcss.IdentToken {
		return AttrMatch{}, false
	}
	m := AttrMatch{Attr: st.p.idents.InternFold(items[0].data, st.p.IgnoreCase)}
	if len(items) == 1 {
		return m, true
	}
	if len(items) != 3 {
		return AttrMatch{}, false
	}
	switch {
	case items[1].tt == tcss.DelimToken && items[1].data == "=":
		m.Op = AttrEqual
	case items[1].tt == tcss.IncludeMatchToken:
		m.Op = AttrInList
	case items[1].tt == tcss.DashMatchToken:
		m.Op = AttrInHyphenList
	default:
		return AttrMatch{}, false
	}
	switch items[2].tt {
	case tcss.IdentToken:
		m.Value = items[2].data
	case tcss.StringToken:
		m.Value = unquote(items[2].data)
	default:
		return AttrMatch{}, false
	}
	return m, true
}

// fontSizeSteps are the absolute size keywords; "medium" is 14/72 inch and
// each step scales by 1.2.
var fontSizeSteps = []string{"xx-small", "x-small", "small", "medium", "large", "x-large", "xx-large"}

func fontSizeKeyword(kw string) (Value, bool) {
	for i, name := range fontSizeSteps {
		if name == kw {
			inches := 14.0 / 72 * math.Pow(1.2, float64(i-3))
			return Length(fixed(inches), UnitIn), true
		}
	}
	switch kw {
	case "smaller":
		return Length(fixed(100*10.0/12), UnitPercent), true
	case "larger":
		return Length(fixed(100*12.0/10), UnitPercent), true
	}
	return Value{}, false
}

// FontSizeStep returns the font-size value of absolute step n (1..7) of
// the keyword scale, as used by <font size>.
func FontSizeStep(n int) Value {
	n = max(1, min(7, n))
	v, _ := fontSizeKeyword(fontSizeSteps[n-1])
	return v
}

func fixed(f float64) int32 { return int32(math.Round(f * LengthBase)) }

// parseDimension converts "12px", "1.5em", "2cm" and friends.
func parseDimension(s string) (Value, bool) {
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || ((c == 'e' || c == 'E') && end+1 < len(s) && s[end+1] >= '0' && s[end+1] <= '9') {
			end++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return Value{}, false
	}
	switch strings.ToLower(s[end:]) {
	case "px":
		return Px(int32(math.Round(f))), true
	case "em":
		return Length(fixed(f), UnitEm), true
	case "ex":
		return Length(fixed(f), UnitEx), true
	case "in":
		return Length(fixed(f), UnitIn), true
	case "cm":
		return Length(fixed(f*10/mmPerInch), UnitIn), true
	case "mm":
		return Length(fixed(f/mmPerInch), UnitIn), true
	case "pt":
		return Length(fixed(f/ptPerInch), UnitIn), true
	case "pc":
		return Length(fixed(f/pcPerInch), UnitIn), true
	}
	return Value{}, false
}

// ParseLength parses a length as written in HTML attributes: a bare number
// is pixels, "N%" a percentage, and CSS units are accepted.
func ParseLength(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return Value{}, false
		}
		return Length(fixed(f), UnitPercent), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Px(int32(math.Round(f))), true
	}
	return parseDimension(s)
}

// unquote strips the quotes of a CSS string token and resolves escapes:
// "\A" is a newline, "\XX" a hex code point, and "\" before a newline
// continues the string.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
		if s[len(s)-1] == '"' || s[len(s)-1] == '\'' {
			s = s[:len(s)-1]
		}
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		if s[i] == '\n' {
			continue
		}
		if _, ok := hexDigit(s[i]); ok {
			var r rune
			n := 0
			for n < 6 && i < len(s) {
				d, ok := hexDigit(s[i])
				if !ok {
					break
				}
				r = r<<4 | rune(d)
				i++
				n++
			}
			if i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n') {
				i++
			}
			i--
			sb.WriteRune(r)
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func trimWS(toks []token) []token {
	for len(toks) > 0 && toks[0].tt == tcss.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].tt == tcss.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

func splitTokens(toks []token, sep tcss.TokenType) [][]token {
	var out [][]token
	start, depth := 0, 0
	for i, t := range toks {
		switch t.tt {
		case tcss.LeftParenthesisToken, tcss.FunctionToken, tcss.LeftBracketToken:
			depth++
		case tcss.RightParenthesisToken, tcss.RightBracketToken:
			depth--
		case sep:
			if depth == 0 {
				out = append(out, toks[start:i])
				start = i + 1
			}
		}
	}
	return append(out, toks[start:])
}

// splitItems splits a value on white space, keeping each function call with
// its arguments as one item. Commas become items of their own.
func splitItems(toks []token) [][]token {
	var out [][]token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.tt {
		case tcss.WhitespaceToken:
			continue
		case tcss.FunctionToken:
			start, depth := i, 1
			for i+1 < len(toks) && depth > 0 {
				i++
				switch toks[i].tt {
				case tcss.FunctionToken, tcss.LeftParenthesisToken:
					depth++
				case tcss.RightParenthesisToken:
					depth--
				}
			}
			out = append(out, toks[start:i+1])
		default:
			out = append(out, toks[i:i+1])
		}
	}
	return out
}

func isComma(item []token) bool {
	return len(item) == 1 && item[0].tt == tcss.CommaToken
}

func isKeyword(item []token, kw string) bool {
	return len(item) == 1 && item[0].tt == tcss.IdentToken && strings.EqualFold(item[0].data, kw)
}

func joinTokens(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.data)
	}
	return strings.TrimSpace(sb.String())
}
