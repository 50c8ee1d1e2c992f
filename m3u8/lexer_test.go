package m3u8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, text string) ([]Line, error) {
	t.Helper()
	lex, err := NewLexer(text)
	require.NoError(t, err)

	var lines []Line
	for lex.Next() {
		lines = append(lines, lex.Line())
	}
	return lines, lex.Err()
}

func TestLexerClassifiesLines(t *testing.T) {
	lines, err := lexAll(t, "#EXTM3U\r\n#EXTINF:10.0,title\r\n\r\n# just a comment\nseg.ts\n#EXT-X-ENDLIST")
	require.NoError(t, err)

	want := []Line{
		{Kind: LineTag, Num: 1, Name: "EXTM3U"},
		{Kind: LineTag, Num: 2, Name: "EXTINF", Body: "10.0,title"},
		{Kind: LineBlank, Num: 3},
		{Kind: LineComment, Num: 4, Text: " just a comment"},
		{Kind: LineURI, Num: 5, Text: "seg.ts"},
		{Kind: LineTag, Num: 6, Name: "EXT-X-ENDLIST"},
	}
	assert.Equal(t, want, lines)
}

func TestLexerStripsBOM(t *testing.T) {
	lines, err := lexAll(t, "\ufeff#EXTM3U\nseg.ts\n")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "EXTM3U", lines[0].Name)
}

func TestLexerStripsOnlyOneBOM(t *testing.T) {
	_, err := lexAll(t, "\ufeff\ufeff#EXTM3U\n")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestLexerSkipsLeadingBlankLines(t *testing.T) {
	lines, err := lexAll(t, "\n\n   \n#EXTM3U\n")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Num)
}

func TestLexerMissingHeader(t *testing.T) {
	for _, text := range []string{"", "\n\n", "#EXTINF:1,\nseg.ts\n", "# comment\n#EXTM3U\n", "seg.ts"} {
		lines, err := lexAll(t, text)
		assert.Empty(t, lines, "%q", text)
		require.ErrorIs(t, err, ErrFormat, "%q", text)
		assert.Contains(t, err.Error(), "missing #EXTM3U header")
	}
}

func TestLexerRejectsInvalidUTF8(t *testing.T) {
	_, err := NewLexer("#EXTM3U\n\xc3\x28\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestLexerTagWithoutBody(t *testing.T) {
	lines, err := lexAll(t, "#EXTM3U\n#EXT-X-DISCONTINUITY\n#EXT-X-FOO:\n")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Kind: LineTag, Num: 2, Name: "EXT-X-DISCONTINUITY"}, lines[1])
	assert.Equal(t, Line{Kind: LineTag, Num: 3, Name: "EXT-X-FOO"}, lines[2])
}
