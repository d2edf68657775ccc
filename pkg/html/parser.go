// Package html builds a box tree from HTML or XML markup. The parser is
// tolerant: malformed input is reported to a diagnostic sink and parsing
// always goes on.
package html

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/qemacs/qemacs-sub000/pkg/box"
	"github.com/qemacs/qemacs-sub000/pkg/buffer"
	"github.com/qemacs/qemacs-sub000/pkg/charset"
	"github.com/qemacs/qemacs-sub000/pkg/css"
	"github.com/qemacs/qemacs-sub000/pkg/diag"
	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Options select the syntax rules.
type Options struct {
	// HTMLQuirks enables implicit end tags, void elements and the
	// translation of presentational attributes.
	HTMLQuirks bool
	// Lenient accepts stray '<' characters silently.
	Lenient bool
	// IgnoreCase folds tag and attribute names to lower case.
	IgnoreCase bool
	// DocBook parses with XML rules.
	DocBook bool

	Charset  charset.Decoder
	Filename string
	Abort    diag.AbortFunc
}

// HTMLOptions are the settings for HTML documents.
func HTMLOptions() Options {
	return Options{HTMLQuirks: true, Lenient: true, IgnoreCase: true}
}

// XMLOptions are the settings for XML and DocBook documents.
func XMLOptions() Options {
	return Options{DocBook: true}
}

// abortEvery is the number of tags between two abort checks.
const abortEvery = 32

// Parser builds the box tree. Style elements are parsed into the target
// sheet as they are met.
type Parser struct {
	opts   Options
	log    *zap.Logger
	idents *ident.Table
	sink   diag.Sink
	sheet  *css.Sheet
	css    *css.Parser
	tok    *Tokenizer

	root       *box.Box
	stack      []*box.Box
	styleMedia css.MediaMask
	tags       int
	err        error
}

// NewParser creates a parser appending style elements to sheet.
func NewParser(idents *ident.Table, sheet *css.Sheet, sink diag.Sink, log *zap.Logger, opts Options) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = diag.Discard
	}
	if opts.DocBook {
		opts.HTMLQuirks = false
	}
	p := &Parser{
		opts:   opts,
		log:    log.Named("html"),
		idents: idents,
		sink:   sink,
		sheet:  sheet,
		css:    css.NewParser(idents, sink, log),
	}
	p.css.Filename = opts.Filename
	p.css.IgnoreCase = opts.IgnoreCase
	p.tok = NewTokenizer(opts.Charset, 0, p.report)
	p.tok.Fold = opts.IgnoreCase
	p.tok.Lenient = opts.Lenient || opts.HTMLQuirks
	p.root = box.New(ident.None)
	p.root.Generated = box.GenAnonymous
	p.stack = []*box.Box{p.root}
	return p
}

func (p *Parser) report(line int, msg string) {
	p.sink.Report(p.opts.Filename, line, msg)
}

// Feed parses a chunk of input. Up to 16 bytes may be held back until the
// next call to Feed or End.
func (p *Parser) Feed(chunk []byte) error {
	if p.err != nil {
		return p.err
	}
	p.handle(p.tok.Feed(chunk))
	return p.err
}

// End flushes the input, closes the open elements and returns the root.
// After an abort the returned tree is incomplete and must be discarded.
func (p *Parser) End() (*box.Box, error) {
	if p.err == nil {
		p.handle(p.tok.End())
	}
	p.stack = p.stack[:1]
	p.log.Debug("parsed document",
		zap.String("file", p.opts.Filename), zap.Int("tags", p.tags), zap.Int("boxes", p.root.Count()))
	return p.root, p.err
}

// chunkSize is the read granularity of ParseBuffer.
const chunkSize = 4096

// ParseBuffer parses the range [start, end) of b. It must be called on a
// fresh parser.
func (p *Parser) ParseBuffer(b buffer.Buffer, start, end int) (*box.Box, error) {
	p.tok.base, p.tok.off = start, start
	for off := start; off < end; off += chunkSize {
		if err := p.Feed(b.ReadRange(off, min(end, off+chunkSize))); err != nil {
			return p.End()
		}
	}
	return p.End()
}

// ParseString parses an in-memory document whose offsets start at 0.
func ParseString(idents *ident.Table, sheet *css.Sheet, sink diag.Sink, log *zap.Logger, opts Options, s string) (*box.Box, error) {
	p := NewParser(idents, sheet, sink, log, opts)
	if err := p.Feed([]byte(s)); err != nil {
		return p.End()
	}
	return p.End()
}

func (p *Parser) handle(toks []Token) {
	for _, t := range toks {
		if p.err != nil {
			return
		}
		switch t.Type {
		case TokenText:
			p.text(t)
		case TokenRawText:
			p.rawText(t)
		case TokenStartTag:
			p.tags++
			if p.tags%abortEvery == 0 {
				if err := p.opts.Abort.Check(); err != nil {
					p.err = fmt.Errorf("parse %s: %w", p.opts.Filename, err)
					return
				}
			}
			p.startTag(t)
		case TokenEndTag:
			p.endTag(t)
		}
	}
}

func (p *Parser) currentParent() *box.Box {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(b *box.Box) {
	p.stack = append(p.stack, b)
}

func (p *Parser) popTo(i int) {
	p.stack = p.stack[:i]
}

// structural elements ignore white space between their children.
var structural = map[ident.ID]bool{
	ident.None: true, ident.TagHTML: true, ident.TagHead: true, ident.TagTable: true,
	ident.TagThead: true, ident.TagTbody: true, ident.TagTfoot: true, ident.TagTR: true,
	ident.TagUl: true, ident.TagOl: true, ident.TagDl: true, ident.TagSelect: true,
	ident.TagColgroup: true, ident.TagFrameset: true,
}

func (p *Parser) text(t Token) {
	parent := p.currentParent()
	if t.Blank && structural[parent.Tag] {
		return
	}
	parent.AppendChild(box.NewText(t.Start, t.End))
}

func (p *Parser) rawText(t Token) {
	switch t.TagName {
	case "style":
		p.css.ParseSheetMedia(p.sheet, t.Text, t.Line, p.styleMedia)
	case "script":
		p.log.Debug("discarding script", zap.Int("line", t.Line), zap.Int("bytes", len(t.Text)))
	}
}

func (p *Parser) startTag(t Token) {
	id := p.idents.Intern(t.TagName)
	switch id {
	case ident.TagStyle:
		p.styleMedia = css.MediaAll
		for _, a := range t.Attributes {
			if strings.EqualFold(a.Name, "media") && strings.TrimSpace(a.Value) != "" {
				p.styleMedia = css.ParseMedia(a.Value)
			}
		}
		return
	case ident.TagScript:
		return
	}
	if p.opts.HTMLQuirks {
		p.autoClose(id)
	}
	b := p.newBox(id, t)
	p.currentParent().AppendChild(b)
	if id == ident.TagLink {
		p.linkStylesheet(b, t.Line)
	}
	if t.SelfClosing || b.IsTerminal() || (p.opts.HTMLQuirks && voidTags[id]) {
		return
	}
	p.push(b)
}

func (p *Parser) endTag(t Token) {
	id := p.idents.Intern(t.TagName)
	top := len(p.stack) - 1
	for i := top; i >= 1; i-- {
		if p.stack[i].Tag != id {
			continue
		}
		if i != top && !p.opts.HTMLQuirks {
			p.report(t.Line, fmt.Sprintf("mismatched end tag '</%s>', expected '</%s>'",
				t.TagName, p.idents.Name(p.stack[top].Tag)))
		}
		p.popTo(i)
		return
	}
	if id == ident.TagForm || (p.opts.HTMLQuirks && voidTags[id]) {
		return
	}
	p.report(t.Line, "unmatched end tag '</"+t.TagName+">'")
}

// voidTags never have content in HTML.
var voidTags = map[ident.ID]bool{
	ident.TagBr: true, ident.TagHr: true, ident.TagMeta: true, ident.TagLink: true,
	ident.TagForm: true, ident.TagBase: true, ident.TagInput: true, ident.TagBasefont: true,
	ident.TagImg: true, ident.TagCol: true,
}

var inlineClosed = []ident.ID{
	ident.TagB, ident.TagI, ident.TagEm, ident.TagS, ident.TagU,
	ident.TagStrike, ident.TagStrong, ident.TagA,
}

func closeSet(ids ...ident.ID) map[ident.ID]bool {
	m := make(map[ident.ID]bool)
	for _, id := range append(ids, inlineClosed...) {
		m[id] = true
	}
	return m
}

// implicitClose lists, for each tag, the open elements its start tag
// closes. Only elements on top of the stack are closed, so a table nested
// in a cell needs an element between the cell and the table.
var implicitClose = map[ident.ID]map[ident.ID]bool{
	ident.TagLi:    closeSet(ident.TagLi),
	ident.TagTD:    closeSet(ident.TagTD, ident.TagTH),
	ident.TagTH:    closeSet(ident.TagTD, ident.TagTH),
	ident.TagTR:    closeSet(ident.TagTR, ident.TagTD, ident.TagTH),
	ident.TagThead: closeSet(ident.TagTR, ident.TagTD, ident.TagTH, ident.TagThead, ident.TagTbody, ident.TagTfoot),
	ident.TagTbody: closeSet(ident.TagTR, ident.TagTD, ident.TagTH, ident.TagThead, ident.TagTbody, ident.TagTfoot),
	ident.TagTfoot: closeSet(ident.TagTR, ident.TagTD, ident.TagTH, ident.TagThead, ident.TagTbody, ident.TagTfoot),
	ident.TagDt:    closeSet(ident.TagDt, ident.TagDd),
	ident.TagDd:    closeSet(ident.TagDt, ident.TagDd),
	ident.TagOption: {ident.TagOption: true},
	ident.TagB:      {ident.TagB: true},
	ident.TagTable: {
		ident.TagTable: true, ident.TagCaption: true, ident.TagTR: true, ident.TagTD: true,
		ident.TagTH: true, ident.TagThead: true, ident.TagTbody: true, ident.TagTfoot: true,
	},
}

// autoClose pops the open elements closed by the start of tag id.
func (p *Parser) autoClose(id ident.ID) {
	if set, ok := implicitClose[id]; ok {
		for len(p.stack) > 1 && set[p.currentParent().Tag] {
			p.stack = p.stack[:len(p.stack)-1]
		}
	}
	if isBlockElement(id) {
		p.autoCloseP()
	}
}

// autoCloseP closes an open <p> element if one is on the stack
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		tag := p.stack[i].Tag
		if tag == ident.TagP {
			p.popTo(i)
			return
		}
		// Don't close past block-level containers
		if isBlockElement(tag) || tag == ident.TagTD || tag == ident.TagTH {
			return
		}
	}
}

// isBlockElement returns true for elements that auto-close <p>
func isBlockElement(id ident.ID) bool {
	switch id {
	case ident.TagAddress, ident.TagBlockquote, ident.TagCenter, ident.TagDd, ident.TagDiv,
		ident.TagDl, ident.TagDt, ident.TagForm, ident.TagH1, ident.TagH2, ident.TagH3,
		ident.TagH4, ident.TagH5, ident.TagH6, ident.TagHr, ident.TagLi, ident.TagMenu,
		ident.TagDir, ident.TagOl, ident.TagP, ident.TagPre, ident.TagTable, ident.TagUl:
		return true
	}
	return false
}

// newBox creates the box of an element and translates its attributes.
func (p *Parser) newBox(id ident.ID, t Token) *box.Box {
	var b *box.Box
	attr := func(name string) (string, bool) {
		for _, a := range t.Attributes {
			if strings.EqualFold(a.Name, name) {
				return a.Value, true
			}
		}
		return "", false
	}
	switch id {
	case ident.TagImg:
		alt, ok := attr("alt")
		b = box.NewImage(id, alt, ok)
	case ident.TagBr:
		b = box.NewString("")
		b.Tag = id
		b.EOL = true
	case ident.TagInput:
		b = p.inputBox(attr)
	default:
		b = box.New(id)
	}
	for _, a := range t.Attributes {
		b.Attrs = append(b.Attrs, box.Attr{Name: p.idents.Intern(a.Name), Value: a.Value})
	}
	if p.opts.HTMLQuirks {
		p.presentational(b)
	}
	if style, ok := b.Attr(ident.AttrStyle); ok {
		b.Props = append(b.Props, p.css.ParseDeclarations(style, t.Line)...)
	}
	return b
}

// inputBox renders form controls as owned strings; image inputs become
// image stubs.
func (p *Parser) inputBox(attr func(string) (string, bool)) *box.Box {
	typ, _ := attr("type")
	value, _ := attr("value")
	_, checked := attr("checked")
	var s string
	switch strings.ToLower(typ) {
	case "image":
		alt, ok := attr("alt")
		return box.NewImage(ident.TagInput, alt, ok)
	case "hidden":
		b := box.NewString("")
		b.Tag = ident.TagInput
		b.Props.Add(css.PropDisplay, css.Enum(int32(css.DisplayNone)))
		return b
	case "checkbox":
		s = "[ ]"
		if checked {
			s = "[X]"
		}
	case "radio":
		s = "( )"
		if checked {
			s = "(*)"
		}
	case "submit":
		s = orDefault(value, "Submit")
	case "reset":
		s = orDefault(value, "Reset")
	case "button":
		s = value
	case "password":
		s = pad(strings.Repeat("*", len([]rune(value))), attr)
	default:
		s = pad(value, attr)
	}
	b := box.NewString(s)
	b.Tag = ident.TagInput
	return b
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// defaultInputSize is the width of text fields in characters.
const defaultInputSize = 20

func pad(s string, attr func(string) (string, bool)) string {
	size := defaultInputSize
	if v, ok := attr("size"); ok {
		if n, ok := atoi(v); ok && n > 0 {
			size = n
		}
	}
	if n := len([]rune(s)); n < size {
		s += strings.Repeat(" ", size-n)
	}
	return s
}

// linkStylesheet loads CSS from a data URI href
func (p *Parser) linkStylesheet(b *box.Box, line int) {
	rel, _ := b.Attr(ident.AttrRel)
	href, _ := b.Attr(ident.AttrHref)
	if !strings.Contains(strings.ToLower(rel), "stylesheet") {
		return
	}
	href = strings.TrimSpace(href)
	const prefix = "data:text/css,"
	if !strings.HasPrefix(href, prefix) {
		p.log.Debug("ignoring external style sheet", zap.String("href", href))
		return
	}
	text, err := url.PathUnescape(href[len(prefix):])
	if err != nil {
		text = href[len(prefix):]
	}
	media := css.MediaAll
	if m, ok := b.Attr(ident.AttrMedia); ok && strings.TrimSpace(m) != "" {
		media = css.ParseMedia(m)
	}
	p.css.ParseSheetMedia(p.sheet, text, line, media)
}
