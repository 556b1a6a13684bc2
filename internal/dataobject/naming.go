package dataobject

import (
	"strings"
	"sync"
	"unicode"
)

var underscoreCache sync.Map

// Underscore converts an accessor suffix into its canonical key:
//
//	ABC      -> a_b_c
//	KeyAFirst -> key_a_first
//	KeyA3rd  -> key_a3rd
//	KeyA_2nd -> key_a_2nd
//	123      -> 123
//
// An underscore goes before every upper-case letter except the first
// rune, then everything is lower-cased.
func Underscore(name string) string {
	if cached, ok := underscoreCache.Load(name); ok {
		return cached.(string)
	}

	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	result := b.String()
	underscoreCache.Store(name, result)
	return result
}
