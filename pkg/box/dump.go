package box

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"

	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// Dump renders the subtree as an indented tree, one box per line. Geometry
// is included once layout has run. src may be nil, in which case buffer
// boxes print their range only.
func Dump(b *Box, idents *ident.Table, src Source) string {
	t := tp.New()
	t.SetValue(label(b, idents, src))
	dumpChildren(t, b, idents, src)
	return t.String()
}

func dumpChildren(t tp.Tree, b *Box, idents *ident.Table, src Source) {
	for _, c := range b.Children {
		if len(c.Children) == 0 {
			t.AddNode(label(c, idents, src))
			continue
		}
		dumpChildren(t.AddBranch(label(c, idents, src)), c, idents, src)
	}
}

func label(b *Box, idents *ident.Table, src Source) string {
	var sb strings.Builder
	switch {
	case b.Tag != ident.None:
		sb.WriteString("<" + idents.Name(b.Tag) + ">")
	case b.Generated == GenAnonymous:
		sb.WriteString("(anon)")
	default:
		sb.WriteString("(" + b.Kind.String() + ")")
	}
	switch b.Generated {
	case GenBefore:
		sb.WriteString("::before")
	case GenAfter:
		sb.WriteString("::after")
	case GenMarker:
		sb.WriteString("::marker")
	case GenFirstLetter:
		sb.WriteString("::first-letter")
	}
	for _, a := range b.Attrs {
		fmt.Fprintf(&sb, " %s=%q", idents.Name(a.Name), a.Value)
	}
	switch b.Kind {
	case ContentBuffer:
		fmt.Fprintf(&sb, " [%d,%d)", b.Start, b.End)
		if src != nil {
			fmt.Fprintf(&sb, " %q", string(DecodeSlice(src, b.Start, b.End).Chars))
		}
	case ContentString:
		fmt.Fprintf(&sb, " %q", b.Text[b.Start:b.End])
	case ContentImage:
		fmt.Fprintf(&sb, " alt=%q", b.Text)
	}
	if b.Style != nil {
		fmt.Fprintf(&sb, " display=%s", b.Style.Display)
	}
	if b.Width != 0 || b.Height != 0 {
		fmt.Fprintf(&sb, " @%d,%d %dx%d", b.X, b.Y, b.Width, b.Height)
	}
	if b.Level != 0 {
		fmt.Fprintf(&sb, " level=%d", b.Level)
	}
	if b.Split {
		sb.WriteString(" split")
	}
	if b.EOL {
		sb.WriteString(" eol")
	}
	return sb.String()
}
