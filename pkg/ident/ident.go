// Package ident interns tag, attribute, property and counter names into small
// integer identifiers.
//
// A Table is created per document. Every table starts with the same set of
// built-in identifiers so that the parser, the cascade and the layout engine
// can compare against constants such as TagTD or AttrAlign without a lookup.
package ident

import (
	"strings"
	"sync"

	"golang.org/x/net/html/atom"
)

// ID is an interned name. The zero ID means "none".
type ID uint32

const (
	None ID = 0
	Star ID = 1 // universal selector "*"
)

// Built-in identifiers. The numbering is stable: it is the order of the
// builtins table below, starting at 2.
const (
	TagHTML ID = iota + 2
	TagHead
	TagBody
	TagTitle
	TagMeta
	TagLink
	TagBase
	TagStyle
	TagScript
	TagP
	TagBr
	TagHr
	TagImg
	TagInput
	TagForm
	TagLi
	TagUl
	TagOl
	TagDl
	TagDt
	TagDd
	TagB
	TagI
	TagEm
	TagS
	TagU
	TagStrike
	TagStrong
	TagA
	TagTD
	TagTH
	TagTR
	TagTable
	TagCaption
	TagThead
	TagTbody
	TagTfoot
	TagCol
	TagColgroup
	TagPre
	TagDiv
	TagSpan
	TagCenter
	TagH1
	TagH2
	TagH3
	TagH4
	TagH5
	TagH6
	TagBlockquote
	TagTextarea
	TagSelect
	TagOption
	TagSub
	TagSup
	TagTT
	TagCode
	TagKbd
	TagSamp
	TagVar
	TagBig
	TagSmall
	TagCite
	TagAbbr
	TagAcronym
	TagAddress
	TagDfn
	TagQ
	TagIns
	TagDel
	TagLabel
	TagButton
	TagNoscript
	TagFont
	TagBasefont
	TagMenu
	TagDir
	TagFrameset
	TagFrame
	TagIframe
	TagObject

	AttrClass
	AttrID
	AttrHref
	AttrAlign
	AttrValign
	AttrBgcolor
	AttrColor
	AttrWidth
	AttrHeight
	AttrBorder
	AttrCellspacing
	AttrCellpadding
	AttrSize
	AttrStart
	AttrValue
	AttrType
	AttrAlt
	AttrSrc
	AttrColspan
	AttrRowspan
	AttrName
	AttrFace
	AttrText
	AttrLang
	AttrNowrap
	AttrClear
	AttrChecked
	AttrSelected
	AttrNoshade
	AttrMedia
	AttrRel
	AttrHspace
	AttrVspace

	CounterListItem

	// PseudoPage is the synthetic tag of "@page" rules.
	PseudoPage

	numBuiltins
)

// builtins lists the names of the built-in identifiers in ID order. Names that
// the HTML atom table knows are taken from it so the spellings stay canonical.
var builtins = [...]string{
	atom.Html.String(),
	atom.Head.String(),
	atom.Body.String(),
	atom.Title.String(),
	atom.Meta.String(),
	atom.Link.String(),
	atom.Base.String(),
	atom.Style.String(),
	atom.Script.String(),
	atom.P.String(),
	atom.Br.String(),
	atom.Hr.String(),
	atom.Img.String(),
	atom.Input.String(),
	atom.Form.String(),
	atom.Li.String(),
	atom.Ul.String(),
	atom.Ol.String(),
	atom.Dl.String(),
	atom.Dt.String(),
	atom.Dd.String(),
	atom.B.String(),
	atom.I.String(),
	atom.Em.String(),
	atom.S.String(),
	atom.U.String(),
	"strike",
	atom.Strong.String(),
	atom.A.String(),
	atom.Td.String(),
	atom.Th.String(),
	atom.Tr.String(),
	atom.Table.String(),
	atom.Caption.String(),
	atom.Thead.String(),
	atom.Tbody.String(),
	atom.Tfoot.String(),
	atom.Col.String(),
	atom.Colgroup.String(),
	atom.Pre.String(),
	atom.Div.String(),
	atom.Span.String(),
	"center",
	atom.H1.String(),
	atom.H2.String(),
	atom.H3.String(),
	atom.H4.String(),
	atom.H5.String(),
	atom.H6.String(),
	atom.Blockquote.String(),
	atom.Textarea.String(),
	atom.Select.String(),
	atom.Option.String(),
	atom.Sub.String(),
	atom.Sup.String(),
	"tt",
	atom.Code.String(),
	atom.Kbd.String(),
	atom.Samp.String(),
	atom.Var.String(),
	"big",
	atom.Small.String(),
	atom.Cite.String(),
	atom.Abbr.String(),
	"acronym",
	atom.Address.String(),
	atom.Dfn.String(),
	atom.Q.String(),
	atom.Ins.String(),
	atom.Del.String(),
	atom.Label.String(),
	atom.Button.String(),
	atom.Noscript.String(),
	"font",
	"basefont",
	atom.Menu.String(),
	"dir",
	"frameset",
	"frame",
	atom.Iframe.String(),
	atom.Object.String(),

	atom.Class.String(),
	atom.Id.String(),
	atom.Href.String(),
	"align",
	"valign",
	"bgcolor",
	"color",
	atom.Width.String(),
	atom.Height.String(),
	"border",
	"cellspacing",
	"cellpadding",
	atom.Size.String(),
	atom.Start.String(),
	atom.Value.String(),
	atom.Type.String(),
	atom.Alt.String(),
	atom.Src.String(),
	atom.Colspan.String(),
	atom.Rowspan.String(),
	atom.Name.String(),
	"face",
	"text",
	atom.Lang.String(),
	"nowrap",
	"clear",
	atom.Checked.String(),
	atom.Selected.String(),
	"noshade",
	atom.Media.String(),
	atom.Rel.String(),
	"hspace",
	"vspace",

	"list-item",

	"@page",
}

// Attributes spelled like a built-in tag share its ID.
const (
	AttrStyle = TagStyle
	AttrDir   = TagDir
)

var _ [numBuiltins - 2]struct{} = [len(builtins)]struct{}{}

// NumBuiltins is the first ID handed out for names not in the builtin set.
const NumBuiltins = numBuiltins

// Table maps names to IDs and back. It is append-only: an ID, once handed
// out, keeps its name for the lifetime of the table. Reads and appends may
// happen from different goroutines.
type Table struct {
	mu    sync.RWMutex
	names []string
	index map[string]ID
}

// NewTable returns a table preloaded with "*" and the built-in identifiers.
func NewTable() *Table {
	t := &Table{
		names: make([]string, 2, int(numBuiltins)+64),
		index: make(map[string]ID, int(numBuiltins)+64),
	}
	t.names[Star] = "*"
	t.index["*"] = Star
	for _, name := range builtins {
		id := ID(len(t.names))
		t.names = append(t.names, name)
		t.index[name] = id
	}
	return t
}

// Intern returns the ID of name, allocating one if needed. The empty name
// maps to None.
func (t *Table) Intern(name string) ID {
	if name == "" {
		return None
	}
	t.mu.RLock()
	id, ok := t.index[name]
	t.mu.RUnlock()
	if ok {
		return id
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.index[name]; ok {
		return id
	}
	id = ID(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = id
	return id
}

// InternFold interns name, lower-casing it first when fold is set.
func (t *Table) InternFold(name string, fold bool) ID {
	if fold {
		name = strings.ToLower(name)
	}
	return t.Intern(name)
}

// Lookup returns the ID of name without allocating.
func (t *Table) Lookup(name string) (ID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.index[name]
	return id, ok
}

// Name returns the name of id, or "" for None and unknown IDs.
func (t *Table) Name(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id == None || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len returns the number of IDs handed out, "none" included.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}
