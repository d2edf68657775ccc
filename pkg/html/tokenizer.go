package html

import (
	gohtml "html"
	"strings"
	"unicode"

	"github.com/qemacs/qemacs-sub000/pkg/charset"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	// TokenText is a run of character data, given as a byte range of the
	// input. Entities are left in place.
	TokenText
	// TokenRawText is the verbatim content of a style or script element.
	TokenRawText
)

type Attribute struct {
	Name     string
	Value    string
	HasValue bool
}

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  []Attribute
	Text        string
	Start, End  int
	Line        int
	SelfClosing bool
	// Blank is set on text tokens holding only white space.
	Blank bool
}

type tokState uint8

const (
	stateText tokState = iota
	statePreTag
	stateTag
	stateDecl
	stateComment
	stateComment1
	stateComment2
	stateWaitEOT
)

// lookahead is the number of bytes Feed keeps back so that a character is
// never decoded from a truncated sequence.
const lookahead = 16

// Tokenizer is a streaming markup tokenizer. Input arrives in arbitrary
// chunks through Feed; End flushes what is held back.
type Tokenizer struct {
	// Fold lower-cases tag and attribute names.
	Fold bool
	// Lenient accepts a '<' that does not start markup as text without a
	// diagnostic.
	Lenient bool

	dec    charset.Decoder
	report func(line int, msg string)

	pending []byte
	base    int
	off     int
	line    int
	state   tokState

	textStart int
	textLine  int
	textBlank bool

	ltAt    int
	tagLine int
	tag     strings.Builder
	quote   rune
	prev    rune

	rawName string
	rawLine int
	raw     strings.Builder
	rawPrev rune
	rawCut  int // offset in raw of the last "</" not yet ruled out, or -1

	toks []Token
}

// NewTokenizer creates a tokenizer starting at byte offset start of the
// input. report receives diagnostics with the line they refer to.
func NewTokenizer(dec charset.Decoder, start int, report func(line int, msg string)) *Tokenizer {
	if dec == nil {
		dec = charset.UTF8
	}
	if report == nil {
		report = func(int, string) {}
	}
	return &Tokenizer{dec: dec, base: start, off: start, line: 1, textStart: -1, report: report}
}

// Line returns the current line number.
func (t *Tokenizer) Line() int { return t.line }

// Offset returns the offset of the next byte to be decoded.
func (t *Tokenizer) Offset() int { return t.off }

// Feed consumes a chunk and returns the tokens completed by it.
func (t *Tokenizer) Feed(p []byte) []Token {
	t.pending = append(t.pending, p...)
	t.run(false)
	return t.take()
}

// End consumes the held back input and closes any open construct.
func (t *Tokenizer) End() []Token {
	t.run(true)
	switch t.state {
	case stateText:
		t.flushText(t.off)
	case statePreTag:
		t.literalLT()
		t.flushText(t.off)
	case stateTag:
		t.report(t.tagLine, "unterminated tag '<"+firstWord(t.tag.String())+"'")
	case stateDecl:
		t.report(t.tagLine, "unterminated declaration")
	case stateComment, stateComment1, stateComment2:
		t.report(t.tagLine, "unterminated comment")
	case stateWaitEOT:
		t.report(t.rawLine, "missing '</"+t.rawName+">'")
		t.toks = append(t.toks, Token{Type: TokenRawText, TagName: t.rawName, Text: t.raw.String(), Line: t.rawLine})
	}
	t.state = stateText
	return t.take()
}

func (t *Tokenizer) take() []Token {
	toks := t.toks
	t.toks = nil
	return toks
}

func (t *Tokenizer) run(atEOF bool) {
	i := t.off - t.base
	for i < len(t.pending) {
		if !atEOF && len(t.pending)-i < lookahead {
			break
		}
		r, n := t.dec.DecodeRune(t.pending[i:])
		if n <= 0 {
			break
		}
		t.step(r, t.off, t.off+n)
		i += n
		t.off += n
		if r == '\n' {
			t.line++
		}
	}
	t.pending = append(t.pending[:0], t.pending[i:]...)
	t.base = t.off
}

func (t *Tokenizer) step(r rune, at, next int) {
	switch t.state {
	case stateText:
		if r == '<' {
			t.ltAt = at
			t.tagLine = t.line
			t.tag.Reset()
			t.state = statePreTag
			return
		}
		t.textChar(r, at)
	case statePreTag:
		switch {
		case r == '!' || r == '?':
			t.flushText(t.ltAt)
			t.tag.WriteRune(r)
			t.state = stateDecl
		case r == '/' || isNameStart(r):
			t.flushText(t.ltAt)
			t.tag.WriteRune(r)
			t.quote, t.prev = 0, r
			t.state = stateTag
		default:
			if !t.Lenient {
				t.report(t.line, "'<' not followed by a tag name")
			}
			t.literalLT()
			t.state = stateText
			t.step(r, at, next)
		}
	case stateTag:
		if t.quote != 0 {
			t.tag.WriteRune(r)
			if r == t.quote {
				t.quote = 0
			}
			return
		}
		if (r == '"' || r == '\'') && t.prev == '=' {
			t.quote = r
		}
		if r == '>' {
			t.state = stateText
			t.emitTag(t.tag.String())
			return
		}
		t.tag.WriteRune(r)
		if !unicode.IsSpace(r) {
			t.prev = r
		}
	case stateDecl:
		t.tag.WriteRune(r)
		if t.tag.Len() == 3 && t.tag.String() == "!--" {
			t.state = stateComment
			return
		}
		if r == '>' {
			t.state = stateText
		}
	case stateComment:
		if r == '-' {
			t.state = stateComment1
		}
	case stateComment1:
		if r == '-' {
			t.state = stateComment2
		} else {
			t.state = stateComment
		}
	case stateComment2:
		switch r {
		case '>':
			t.state = stateText
		case '-':
		default:
			t.state = stateComment
		}
	case stateWaitEOT:
		if r == '/' && t.rawPrev == '<' {
			t.rawCut = t.raw.Len() - 1
		}
		t.raw.WriteRune(r)
		t.rawPrev = r
		if r == '>' && t.rawCut >= 0 {
			content, ok := cutEndTag(t.raw.String(), t.rawCut, t.rawName)
			if !ok {
				t.rawCut = -1
				break
			}
			t.toks = append(t.toks, Token{Type: TokenRawText, TagName: t.rawName, Text: content, Line: t.rawLine})
			t.raw.Reset()
			t.state = stateText
		}
	}
}

func (t *Tokenizer) textChar(r rune, at int) {
	if t.textStart < 0 {
		t.textStart = at
		t.textLine = t.line
		t.textBlank = true
	}
	if !unicode.IsSpace(r) {
		t.textBlank = false
	}
}

// literalLT turns a pending '<' into text.
func (t *Tokenizer) literalLT() {
	t.textChar('<', t.ltAt)
}

func (t *Tokenizer) flushText(end int) {
	if t.textStart >= 0 && end > t.textStart {
		t.toks = append(t.toks, Token{Type: TokenText, Start: t.textStart, End: end, Line: t.textLine, Blank: t.textBlank})
	}
	t.textStart = -1
}

func (t *Tokenizer) emitTag(s string) {
	if strings.HasPrefix(s, "/") {
		name := firstWord(s[1:])
		if t.Fold {
			name = strings.ToLower(name)
		}
		t.toks = append(t.toks, Token{Type: TokenEndTag, TagName: name, Line: t.tagLine})
		return
	}
	tok := Token{Type: TokenStartTag, Line: t.tagLine}
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if strings.HasSuffix(s, "/") {
		tok.SelfClosing = true
		s = s[:len(s)-1]
	}
	tok.TagName = firstWord(s)
	tok.Attributes = parseAttributes(s[len(tok.TagName):], t.Fold)
	if t.Fold {
		tok.TagName = strings.ToLower(tok.TagName)
	}
	t.toks = append(t.toks, tok)

	if name := strings.ToLower(tok.TagName); (name == "style" || name == "script") && !tok.SelfClosing {
		t.rawName = name
		t.rawLine = t.line
		t.raw.Reset()
		t.rawPrev, t.rawCut = 0, -1
		t.state = stateWaitEOT
	}
}

// cutEndTag reports whether s ends with the end tag of name starting at
// offset i and returns what precedes it.
func cutEndTag(s string, i int, name string) (string, bool) {
	if !strings.EqualFold(strings.TrimSpace(s[i+2:len(s)-1]), name) {
		return "", false
	}
	return s[:i], true
}

func firstWord(s string) string {
	end := 0
	for end < len(s) && isNameChar(s[end]) {
		end++
	}
	return s[:end]
}

// parseAttributes scans name[=value] pairs. Values may be quoted with
// either quote or left bare; entities in values are resolved.
func parseAttributes(s string, fold bool) []Attribute {
	var attrs []Attribute
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		start := i
		for i < len(s) && !isSpace(s[i]) && s[i] != '=' {
			i++
		}
		if i == start {
			i++
			continue
		}
		a := Attribute{Name: s[start:i]}
		if fold {
			a.Name = strings.ToLower(a.Name)
		}
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i < len(s) && s[i] == '=' {
			i++
			for i < len(s) && isSpace(s[i]) {
				i++
			}
			a.HasValue = true
			if i < len(s) && (s[i] == '"' || s[i] == '\'') {
				q := s[i]
				i++
				vs := i
				for i < len(s) && s[i] != q {
					i++
				}
				a.Value = s[vs:i]
				if i < len(s) {
					i++
				}
			} else {
				vs := i
				for i < len(s) && !isSpace(s[i]) {
					i++
				}
				a.Value = s[vs:i]
			}
			a.Value = gohtml.UnescapeString(a.Value)
		}
		attrs = append(attrs, a)
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == ':' || c == '.'
}
