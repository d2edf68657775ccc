package bidi

// mirrorPairs lists the characters substituted when drawn right to left.
var mirrorPairs = [][2]rune{
	{'(', ')'},
	{'<', '>'},
	{'[', ']'},
	{'{', '}'},
	{'«', '»'},
	{'‹', '›'},
	{'⁅', '⁆'},
	{'⁽', '⁾'},
	{'₍', '₎'},
	{'∈', '∋'},
	{'∉', '∌'},
	{'∊', '∍'},
	{'∼', '∽'},
	{'≃', '⋍'},
	{'≒', '≓'},
	{'≔', '≕'},
	{'≤', '≥'},
	{'≦', '≧'},
	{'≪', '≫'},
	{'≮', '≯'},
	{'≰', '≱'},
	{'≲', '≳'},
	{'≶', '≷'},
	{'≺', '≻'},
	{'≼', '≽'},
	{'⊂', '⊃'},
	{'⊆', '⊇'},
	{'⊏', '⊐'},
	{'⊑', '⊒'},
	{'⊢', '⊣'},
	{'⋉', '⋊'},
	{'⋐', '⋑'},
	{'⌈', '⌉'},
	{'⌊', '⌋'},
	{'〈', '〉'},
	{'❨', '❩'},
	{'❪', '❫'},
	{'⟦', '⟧'},
	{'⟨', '⟩'},
	{'〈', '〉'},
	{'《', '》'},
	{'「', '」'},
	{'『', '』'},
	{'【', '】'},
	{'〔', '〕'},
}

var mirrors = func() map[rune]rune {
	m := make(map[rune]rune, 2*len(mirrorPairs))
	for _, p := range mirrorPairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}()

// Mirror returns the mirrored glyph of r, or r itself.
func Mirror(r rune) rune {
	if m, ok := mirrors[r]; ok {
		return m
	}
	return r
}

// MirrorRunes substitutes mirrored characters of the odd-level positions
// of text in place.
func MirrorRunes(text []rune, levels []uint8) {
	for i, r := range text {
		if i < len(levels) && levels[i]&1 != 0 {
			text[i] = Mirror(r)
		}
	}
}
