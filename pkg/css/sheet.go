package css

import (
	"strings"

	"github.com/qemacs/qemacs-sub000/pkg/ident"
)

// MediaMask is a set of media types.
type MediaMask uint8

const (
	MediaTTY MediaMask = 1 << iota
	MediaScreen
	MediaPrint
	MediaTV
	MediaSpeech

	MediaAll = MediaTTY | MediaScreen | MediaPrint | MediaTV | MediaSpeech
)

var mediaNames = map[string]MediaMask{
	"tty":    MediaTTY,
	"screen": MediaScreen,
	"print":  MediaPrint,
	"tv":     MediaTV,
	"speech": MediaSpeech,
	"aural":  MediaSpeech,
	"all":    MediaAll,
}

// ParseMedia parses a comma or space separated list of media types.
// Unknown names contribute nothing.
func ParseMedia(list string) MediaMask {
	var m MediaMask
	for _, name := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		m |= mediaNames[strings.ToLower(name)]
	}
	return m
}

// Rule is one selector with its declaration block. Rules built from one
// comma-separated selector list share their Decls.
type Rule struct {
	Selector    *Selector
	Media       MediaMask
	Decls       Declarations
	Order       int
	Specificity int
}

const numBuckets = 521

// Sheet is an ordered list of rules, indexed by the subject's tag.
type Sheet struct {
	Rules   []*Rule
	buckets [numBuckets][]*Rule
}

// NewSheet creates an empty sheet.
func NewSheet() *Sheet { return &Sheet{} }

// Add appends a rule and indexes it.
func (s *Sheet) Add(sel *Selector, media MediaMask, decls Declarations) *Rule {
	r := &Rule{
		Selector:    sel,
		Media:       media,
		Decls:       decls,
		Order:       len(s.Rules),
		Specificity: sel.Specificity(),
	}
	s.Rules = append(s.Rules, r)
	h := int(sel.Tag) % numBuckets
	s.buckets[h] = append(s.buckets[h], r)
	return r
}

// Candidates returns the rules whose subject tag hashes like tag, in sheet
// order. Callers must still compare Selector.Tag.
func (s *Sheet) Candidates(tag ident.ID) []*Rule {
	return s.buckets[int(tag)%numBuckets]
}

// Merge appends every rule of other, keeping other's relative order.
func (s *Sheet) Merge(other *Sheet) {
	for _, r := range other.Rules {
		s.Add(r.Selector, r.Media, r.Decls)
	}
}

// Len returns the number of rules.
func (s *Sheet) Len() int { return len(s.Rules) }
