package strval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthIsCodepointsNotBytes(t *testing.T) {
	s := New("héllo") // é is two bytes in UTF-8
	assert.Equal(t, 5, s.Length())
	assert.Less(t, s.Length(), len(s.Bytes()))
}

func TestCodePointAtOutOfRangeIsSentinel(t *testing.T) {
	s := New("abc")
	assert.EqualValues(t, 'a', s.CodePointAt(0))
	assert.EqualValues(t, -1, s.CodePointAt(-1))
	assert.EqualValues(t, -1, s.CodePointAt(3))
}

func TestIndexOfStringRoundTripsThroughSubstring(t *testing.T) {
	s := New("the quick brown fox")
	needle := New("brown")
	idx := s.IndexOfString(needle, 0)
	assert.GreaterOrEqual(t, idx, 0)
	assert.True(t, s.Substring(idx, idx+needle.Length()).Equals(needle))
}

func TestIndexOfStringEmptyNeedle(t *testing.T) {
	s := New("abc")
	assert.Equal(t, 2, s.IndexOfString(Empty, 2))
	assert.Equal(t, -1, s.IndexOfString(Empty, 10))
}

func TestLastIndexOfStringEmptyNeedleYieldsLength(t *testing.T) {
	s := New("abc")
	assert.Equal(t, s.Length(), s.LastIndexOfString(Empty))
}

func TestSubstringClampsAndEmptyOnInverted(t *testing.T) {
	s := New("abcdef")
	assert.True(t, s.Substring(-5, 3).Equals(New("abc")))
	assert.True(t, s.Substring(4, 100).Equals(New("ef")))
	assert.True(t, s.Substring(4, 2).Equals(Empty))
}

func TestRepeat(t *testing.T) {
	s := New("ab")
	assert.True(t, s.Repeat(0).Equals(Empty))
	assert.True(t, s.Repeat(1).Equals(s))
	assert.True(t, s.Repeat(3).Equals(New("ababab")))
}

func TestPadLeftAndRight(t *testing.T) {
	s := New("7")
	assert.True(t, s.PadLeft(3, New("0")).Equals(New("007")))
	assert.True(t, s.PadRight(3, New("0")).Equals(New("700")))
	// no-op when already long enough
	assert.True(t, s.PadLeft(0, Empty).Equals(s))
}

func TestPadWithPartialTile(t *testing.T) {
	s := New("x")
	// padding "ab" tiled into 3 extra slots: one full "ab" plus one more from
	// the inside edge of the padded side.
	got := s.PadLeft(4, New("ab"))
	assert.Equal(t, 4, got.Length())
	assert.True(t, got.Equals(New("abax")))
}

func TestSplitJoinRoundTrip(t *testing.T) {
	s := New("a,b,c,d")
	sep := New(",")
	parts := s.SplitAll(sep)
	assert.True(t, Join(parts, sep).Equals(s))
	// limit at least separators+1 keeps the round trip too
	assert.True(t, Join(s.Split(sep, 4), sep).Equals(s))
	assert.True(t, Join(s.Split(sep, 9), sep).Equals(s))
}

func TestCursorWalksBothDirections(t *testing.T) {
	s := New("héz")
	c := s.Begin()
	assert.EqualValues(t, 'h', c.CodePoint())
	assert.True(t, c.Advance())
	assert.EqualValues(t, 'é', c.CodePoint())
	assert.True(t, c.Advance())
	assert.EqualValues(t, 'z', c.CodePoint())
	assert.False(t, c.Advance())
	assert.True(t, c.Done())
	assert.True(t, c.Retreat())
	assert.EqualValues(t, 'z', c.CodePoint())
}

func TestConcatReusesSingletonsForEmptyOperands(t *testing.T) {
	s := New("ab")
	assert.True(t, s.Concat(Empty).Equals(s))
	assert.True(t, Empty.Concat(s).Equals(s))
	assert.True(t, s.Concat(New("cd")).Equals(New("abcd")))
}

func TestReplaceNegativeOccurrencesCountsFromEnd(t *testing.T) {
	s := New("a-b-c-d")
	assert.True(t, s.Replace(New("-"), New("+"), -1).Equals(New("a-b-c+d")))
}

func TestSplitWithLimitFromFront(t *testing.T) {
	s := New("a,b,c,d")
	parts := s.Split(New(","), 2)
	assert.Len(t, parts, 2)
	assert.True(t, parts[0].Equals(New("a")))
	assert.True(t, parts[1].Equals(New("b,c,d")))
}

func TestSplitWithLimitFromBack(t *testing.T) {
	s := New("a,b,c,d")
	parts := s.Split(New(","), -2)
	assert.Len(t, parts, 2)
	assert.True(t, parts[0].Equals(New("a,b,c")))
	assert.True(t, parts[1].Equals(New("d")))
}

func TestSplitZeroLimitYieldsNoPieces(t *testing.T) {
	parts := New("a,b").Split(New(","), 0)
	assert.Nil(t, parts)
}

func TestSplitEmptySeparatorIsCodepointLevel(t *testing.T) {
	parts := New("abc").SplitAll(Empty)
	assert.Len(t, parts, 3)
	assert.True(t, parts[0].Equals(New("a")))
	assert.True(t, parts[2].Equals(New("c")))
}

func TestReplaceAllAndLimited(t *testing.T) {
	s := New("a-b-c-d")
	assert.True(t, s.Replace(New("-"), New("+"), 0).Equals(New("a+b+c+d")))
	assert.True(t, s.Replace(New("-"), New("+"), 1).Equals(New("a+b-c-d")))
}

func TestHashCodeStableAcrossEqualStrings(t *testing.T) {
	a := New("hello")
	b := New("hel" + "lo")
	assert.Equal(t, a.HashCode(), b.HashCode())
}
