// Package strval implements the runtime's immutable UTF-8 string type:
// construction, codepoint-level indexing, search, slicing, padding and
// splitting. The canonical representation is the raw UTF-8 byte buffer
// plus a cached codepoint count, matching how the teacher's scanner treats
// source text as bytes but counts runes for diagnostics.
package strval

import (
	"strings"
	"unicode/utf8"
)

// String is an immutable UTF-8 buffer. Length is codepoints, not bytes.
type String struct {
	bytes  string
	length int
}

// Empty is the shared empty-string singleton.
var Empty = String{bytes: "", length: 0}

// New wraps raw UTF-8 bytes. Invalid sequences are still stored; operations
// that walk codepoints see each invalid byte as utf8.RuneError (CodePointAt
// reports it as -1).
func New(s string) String {
	if s == "" {
		return Empty
	}
	return String{bytes: s, length: utf8.RuneCountInString(s)}
}

// FromRune builds a single-codepoint string.
func FromRune(r rune) String {
	return New(string(r))
}

// FromByteRange builds a string from a byte slice; it does not validate
// that the slice starts and ends on codepoint boundaries (callers that need
// that guarantee should go through Substring instead).
func FromByteRange(b []byte) String {
	return New(string(b))
}

func (s String) Bytes() string { return s.bytes }
func (s String) Length() int   { return s.length }
func (s String) IsEmpty() bool { return s.length == 0 }

func (s String) Equals(other String) bool { return s.bytes == other.bytes }

// Compare is lexicographic over codepoints (UTF-8 byte order agrees with
// codepoint order for valid UTF-8).
func (s String) Compare(other String) int {
	return strings.Compare(s.bytes, other.bytes)
}

// HashCode follows the Java convention: 31*h + c over codepoints, not bytes.
func (s String) HashCode() int32 {
	var h int32
	for _, r := range s.bytes {
		h = 31*h + int32(r)
	}
	return h
}

// Cursor is an opaque bidirectional iterator over codepoints: a byte
// offset plus the codepoint currently under it.
type Cursor struct {
	s      String
	offset int
	r      rune
}

func (s String) Begin() Cursor {
	c := Cursor{s: s, offset: 0}
	c.load()
	return c
}

func (c *Cursor) load() {
	if c.offset >= len(c.s.bytes) {
		c.r = utf8.RuneError
		return
	}
	r, _ := utf8.DecodeRuneInString(c.s.bytes[c.offset:])
	c.r = r
}

func (c Cursor) Done() bool     { return c.offset >= len(c.s.bytes) }
func (c Cursor) CodePoint() rune { return c.r }

func (c *Cursor) Advance() bool {
	if c.Done() {
		return false
	}
	_, size := utf8.DecodeRuneInString(c.s.bytes[c.offset:])
	c.offset += size
	c.load()
	return !c.Done()
}

func (c *Cursor) Retreat() bool {
	if c.offset <= 0 {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(c.s.bytes[:c.offset])
	c.offset -= size
	c.load()
	return true
}

// CodePointAt returns the codepoint at codepoint-index i, or -1 if i is
// negative, out of range, or the buffer is malformed at that point.
func (s String) CodePointAt(i int) rune {
	if i < 0 || i >= s.length {
		return -1
	}
	n := 0
	for _, r := range s.bytes {
		if n == i {
			if r == utf8.RuneError {
				return -1
			}
			return r
		}
		n++
	}
	return -1
}

// codepoints materializes the rune slice; used by operations that need
// random access more than once (substring, repeat, split).
func (s String) codepoints() []rune {
	out := make([]rune, 0, s.length)
	for _, r := range s.bytes {
		out = append(out, r)
	}
	return out
}

// IndexOfCodePoint searches for a single codepoint from fromIndex (codepoint
// units), returning -1 if not found or fromIndex is out of range.
func (s String) IndexOfCodePoint(r rune, fromIndex int) int {
	if fromIndex < 0 || fromIndex > s.length {
		return -1
	}
	cps := s.codepoints()
	for i := fromIndex; i < len(cps); i++ {
		if cps[i] == r {
			return i
		}
	}
	return -1
}

// LastIndexOfCodePoint searches backward from the end.
func (s String) LastIndexOfCodePoint(r rune) int {
	cps := s.codepoints()
	for i := len(cps) - 1; i >= 0; i-- {
		if cps[i] == r {
			return i
		}
	}
	return -1
}

// IndexOfString searches for needle starting at codepoint fromIndex.
// A zero-length needle returns fromIndex if in range, else -1.
func (s String) IndexOfString(needle String, fromIndex int) int {
	if fromIndex < 0 || fromIndex > s.length {
		return -1
	}
	if needle.length == 0 {
		return fromIndex
	}
	if needle.length == 1 {
		return s.IndexOfCodePoint(needle.codepoints()[0], fromIndex)
	}
	cps := s.codepoints()
	needleCps := needle.codepoints()
	for i := fromIndex; i+len(needleCps) <= len(cps); i++ {
		if runesEqual(cps[i:i+len(needleCps)], needleCps) {
			return i
		}
	}
	return -1
}

// LastIndexOfString searches backward. A zero-length needle returns length.
func (s String) LastIndexOfString(needle String) int {
	if needle.length == 0 {
		return s.length
	}
	cps := s.codepoints()
	needleCps := needle.codepoints()
	for i := len(cps) - len(needleCps); i >= 0; i-- {
		if runesEqual(cps[i:i+len(needleCps)], needleCps) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Substring returns codepoints [begin,end), clamped to [0,length]; end <
// begin yields the empty string.
func (s String) Substring(begin, end int) String {
	if begin < 0 {
		begin = 0
	}
	if end > s.length {
		end = s.length
	}
	if end <= begin {
		return Empty
	}
	cps := s.codepoints()
	return New(string(cps[begin:end]))
}

// Repeat concatenates n copies of s. n<=0 yields empty; n==1 yields s.
func (s String) Repeat(n int) String {
	if n <= 0 || s.length == 0 {
		return Empty
	}
	if n == 1 {
		return s
	}
	return New(strings.Repeat(s.bytes, n))
}

// Concat returns s+other.
func (s String) Concat(other String) String {
	if s.length == 0 {
		return other
	}
	if other.length == 0 {
		return s
	}
	return New(s.bytes + other.bytes)
}

// Replace substitutes occurrences of needle with replacement. occurrences
// limits how many: 0 means all, positive counts from the front, negative
// counts from the back. Implemented, per the source material, by splitting
// the haystack into |occurrences|+1 parts and rejoining with replacement.
func (s String) Replace(needle, replacement String, occurrences int) String {
	if needle.length == 0 || s.length == 0 {
		return s
	}
	all := s.splitAll(needle)
	var parts []String
	switch {
	case occurrences == 0:
		parts = all
	case occurrences > 0:
		parts = clampParts(all, needle, occurrences+1)
	default:
		parts = clampParts(all, needle, occurrences-1)
	}
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = p.bytes
	}
	return New(strings.Join(strs, replacement.bytes))
}

// PadLeft/PadRight pad s with padding (default a single space) until it
// reaches targetLength codepoints. When the pad string doesn't evenly tile,
// the partial tile lands on the inside edge of the padded side.
func (s String) PadLeft(targetLength int, padding String) String {
	if padding.length == 0 {
		padding = New(" ")
	}
	need := targetLength - s.length
	if need <= 0 {
		return s
	}
	return New(buildPad(padding, need) + s.bytes)
}

func (s String) PadRight(targetLength int, padding String) String {
	if padding.length == 0 {
		padding = New(" ")
	}
	need := targetLength - s.length
	if need <= 0 {
		return s
	}
	rem := need % padding.length
	return New(s.bytes + string(padding.codepoints()[:rem]) + buildPad(padding, need-rem))
}

func buildPad(padding String, need int) string {
	cps := padding.codepoints()
	full := need / len(cps)
	rem := need % len(cps)
	var b strings.Builder
	for i := 0; i < full; i++ {
		b.WriteString(padding.bytes)
	}
	if rem > 0 {
		b.WriteString(string(cps[:rem]))
	}
	return b.String()
}

// Split divides s on separator. limit>0 keeps up to limit pieces counted
// from the front (the remainder of the string, separator included, becomes
// the last piece); limit<0 counts from the back symmetrically; limit==0
// yields no pieces at all. An empty separator splits into individual
// codepoints (limit still applies, joined back with the empty separator).
func (s String) Split(separator String, limit int) []String {
	if limit == 0 {
		return nil
	}
	if separator.length == 0 {
		return clampParts(s.splitCodepoints(), Empty, limit)
	}
	all := s.splitAll(separator)
	return clampParts(all, separator, limit)
}

// SplitAll divides s on separator with no piece limit, the form the
// string.split builtin uses when no limit argument is supplied.
func (s String) SplitAll(separator String) []String {
	if separator.length == 0 {
		return s.splitCodepoints()
	}
	return s.splitAll(separator)
}

func (s String) splitCodepoints() []String {
	cps := s.codepoints()
	all := make([]String, len(cps))
	for i, r := range cps {
		all[i] = FromRune(r)
	}
	return all
}

func (s String) splitAll(separator String) []String {
	var out []String
	cps := s.codepoints()
	sepCps := separator.codepoints()
	start := 0
	for i := 0; i+len(sepCps) <= len(cps); {
		if runesEqual(cps[i:i+len(sepCps)], sepCps) {
			out = append(out, New(string(cps[start:i])))
			i += len(sepCps)
			start = i
		} else {
			i++
		}
	}
	out = append(out, New(string(cps[start:])))
	return out
}

// clampParts folds an over-long split result down to `limit` pieces,
// rejoining folded-together pieces with sep so join(sep) round-trips.
func clampParts(all []String, sep String, limit int) []String {
	if limit < 0 {
		n := -limit
		if n >= len(all) {
			return all
		}
		keepFromBack := n - 1
		headCount := len(all) - keepFromBack
		out := make([]String, 0, n)
		out = append(out, joinRange(all[:headCount], sep))
		out = append(out, all[headCount:]...)
		return out
	}
	if limit >= len(all) {
		return all
	}
	out := make([]String, 0, limit)
	out = append(out, all[:limit-1]...)
	out = append(out, joinRange(all[limit-1:], sep))
	return out
}

func joinRange(parts []String, sep String) String {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = p.bytes
	}
	return New(strings.Join(strs, sep.bytes))
}

// Join concatenates parts with sep between each pair, the inverse of Split.
func Join(parts []String, sep String) String {
	return joinRange(parts, sep)
}

func (s String) String() string { return s.bytes }
