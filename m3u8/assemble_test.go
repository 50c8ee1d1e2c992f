package m3u8

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMedia(t *testing.T, text string) *MediaPlaylist {
	t.Helper()
	playlist, diags, err := ParseWithDiagnostics(text)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.IsType(t, &MediaPlaylist{}, playlist)
	return playlist.(*MediaPlaylist)
}

func requireStructural(t *testing.T, text string, line int) *Error {
	t.Helper()
	_, _, err := ParseWithDiagnostics(text)
	require.ErrorIs(t, err, ErrStructural)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, line, perr.Line)
	return perr
}

func TestKeysApplyUntilReplaced(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-TARGETDURATION:10
		#EXTINF:10,
		clear0.ts
		#EXT-X-KEY:METHOD=AES-128,URI="k1",IV=0x0F
		#EXTINF:10,
		enc1.ts
		#EXT-X-DISCONTINUITY
		#EXTINF:10,
		enc2.ts
		#EXT-X-KEY:METHOD=SAMPLE-AES,URI="k2",KEYFORMAT="identity"
		#EXTINF:10,
		enc3.ts
		#EXT-X-KEY:METHOD=NONE
		#EXTINF:10,
		clear4.ts
	`)

	k1 := &Key{Method: CryptAES, URI: "k1", IV: []byte{0x0f}}
	k2 := &Key{Method: CryptSampleAES, URI: "k2", KeyFormat: "identity"}

	segs := playlist.Segments
	require.Len(t, segs, 5)
	assert.Nil(t, segs[0].Key)
	assert.Equal(t, k1, segs[1].Key)
	assert.Equal(t, k1, segs[2].Key)
	assert.Equal(t, k2, segs[3].Key)
	assert.Nil(t, segs[4].Key)

	assert.False(t, segs[1].Discontinuity)
	assert.True(t, segs[2].Discontinuity)
	assert.False(t, segs[3].Discontinuity, "discontinuity applies to one segment only")

	segs[1].Key.IV[0] = 0xff
	assert.Equal(t, []byte{0x0f}, segs[2].Key.IV, "segments do not share key state")
}

func TestMapAppliesUntilReplaced(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-TARGETDURATION:4
		#EXT-X-MAP:URI="init.mp4",BYTERANGE="720@0"
		#EXTINF:4,
		a.m4s
		#EXTINF:4,
		b.m4s
		#EXT-X-MAP:URI="init2.mp4"
		#EXTINF:4,
		c.m4s
	`)

	first := &Map{URI: "init.mp4", ByteRange: &ByteRange{Length: 720}}
	assert.Equal(t, first, playlist.Segments[0].Map)
	assert.Equal(t, first, playlist.Segments[1].Map)
	assert.Equal(t, &Map{URI: "init2.mp4"}, playlist.Segments[2].Map)
}

func TestByteRangeWithoutOffset(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-TARGETDURATION:10
		#EXTINF:10,
		#EXT-X-BYTERANGE:75232@0
		main.ts
		#EXTINF:10,
		#EXT-X-BYTERANGE:82112
		main.ts
		#EXTINF:10,
		#EXT-X-BYTERANGE:69864
		main.ts
		#EXTINF:10,
		other.ts
	`)

	segs := playlist.Segments
	assert.Equal(t, &ByteRange{Length: 75232, Offset: 0}, segs[0].ByteRange)
	assert.Equal(t, &ByteRange{Length: 82112, Offset: 75232}, segs[1].ByteRange)
	assert.Equal(t, &ByteRange{Length: 69864, Offset: 157344}, segs[2].ByteRange)
	assert.Nil(t, segs[3].ByteRange, "byte range applies to one segment only")
}

func TestByteRangeWithoutPredecessor(t *testing.T) {
	perr := requireStructural(t, "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXTINF:10,\n#EXT-X-BYTERANGE:100@0\na.ts\n#EXTINF:10,\n#EXT-X-BYTERANGE:100\nb.ts\n", 8)
	assert.Equal(t, TagByteRange, perr.Tag)
}

func TestProgramDateTimeAppliesToNextSegment(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-TARGETDURATION:6
		#EXT-X-PROGRAM-DATE-TIME:2020-01-01T00:00:00Z
		#EXTINF:6,
		a.ts
		#EXTINF:6,
		b.ts
	`)

	require.NotNil(t, playlist.Segments[0].ProgramDateTime)
	assert.Equal(t, 2020, playlist.Segments[0].ProgramDateTime.Year())
	assert.Nil(t, playlist.Segments[1].ProgramDateTime)
}

func TestMediaPlaylistScalars(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-VERSION:3
		#EXT-X-TARGETDURATION:8
		#EXT-X-MEDIA-SEQUENCE:2680
		#EXT-X-DISCONTINUITY-SEQUENCE:3
		#EXT-X-PLAYLIST-TYPE:EVENT
		#EXT-X-I-FRAMES-ONLY
		#EXT-X-INDEPENDENT-SEGMENTS
		#EXTINF:7.975,Segment title
		https://priv.example.com/fileSequence2680.ts
	`)

	assert.Equal(t, 3, playlist.Version)
	assert.EqualValues(t, 8, playlist.TargetDuration)
	assert.EqualValues(t, 2680, playlist.MediaSequence)
	assert.EqualValues(t, 3, playlist.DiscontinuitySequence)
	assert.Equal(t, PlaylistEvent, playlist.PlaylistType)
	assert.True(t, playlist.IFramesOnly)
	assert.True(t, playlist.IndependentSegments)
	assert.False(t, playlist.Ended)
	assert.Equal(t, "Segment title", playlist.Segments[0].Title)
}

func TestEmptyMediaPlaylist(t *testing.T) {
	playlist := parseMedia(t, "#EXTM3U\n#EXT-X-TARGETDURATION:10\n#EXT-X-ENDLIST\n")
	assert.Empty(t, playlist.Segments)
	assert.True(t, playlist.Ended)
}

func TestUnknownTagsAreIgnored(t *testing.T) {
	playlist := parseMedia(t, `
		#EXTM3U
		#EXT-X-TARGETDURATION:10
		#EXT-X-ALLOW-CACHE:NO
		#EXT-X-CUE-OUT:DURATION=30,"weird
		#EXTINF:10,
		#EXT-X-BITRATE:800
		a.ts
	`)
	require.Len(t, playlist.Segments, 1)
	assert.Equal(t, "a.ts", playlist.Segments[0].URI)
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"stream-inf then extinf", "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\nlow.m3u8\n#EXTINF:1,\na.ts\n", 4},
		{"extinf then stream-inf", "#EXTM3U\n#EXTINF:1,\na.ts\n#EXT-X-STREAM-INF:BANDWIDTH=1\nlow.m3u8\n", 4},
		{"media tag in multivariant", "#EXTM3U\n#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID=\"a\",NAME=\"a\"\n#EXT-X-TARGETDURATION:10\n", 3},
		{"orphan uri", "#EXTM3U\na.ts\n", 2},
		{"uri after consumed extinf", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXTINF:1,\na.ts\nb.ts\n", 5},
		{"extinf twice", "#EXTM3U\n#EXTINF:1,\n#EXTINF:1,\na.ts\n", 3},
		{"stream-inf twice", "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\n#EXT-X-STREAM-INF:BANDWIDTH=2\nlow.m3u8\n", 3},
		{"dangling extinf", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXTINF:1,\n", 3},
		{"dangling stream-inf", "#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\n\n", 2},
		{"two versions", "#EXTM3U\n#EXT-X-VERSION:3\n#EXT-X-VERSION:4\n#EXT-X-TARGETDURATION:1\n", 3},
		{"two target durations", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXT-X-TARGETDURATION:2\n", 3},
		{"no playlist tags", "#EXTM3U\n#EXT-X-VERSION:3\n", 0},
		{"dangling discontinuity", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXTINF:1,\na.ts\n#EXT-X-DISCONTINUITY\n", 5},
		{"dangling byterange", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXT-X-BYTERANGE:10@0\n#EXT-X-ENDLIST\n", 3},
		{"dangling date-time", "#EXTM3U\n#EXT-X-TARGETDURATION:1\n#EXT-X-PROGRAM-DATE-TIME:2020-01-01T00:00:00Z\n#EXT-X-DISCONTINUITY\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireStructural(t, tt.text, tt.line)
		})
	}
}

func TestByteRangeOffsetOverflow(t *testing.T) {
	_, err := Parse(`
		#EXTM3U
		#EXT-X-TARGETDURATION:10
		#EXTINF:1,
		#EXT-X-BYTERANGE:18446744073709551615@1
		main.ts
		#EXTINF:1,
		#EXT-X-BYTERANGE:5
		main.ts
	`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValue))

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, TagByteRange, perr.Tag)
	assert.Equal(t, "offset", perr.Field)
	assert.Equal(t, 9, perr.Line)
}

func TestAmbiguousMessage(t *testing.T) {
	_, err := Parse("#EXTM3U\n#EXT-X-STREAM-INF:BANDWIDTH=1\nlow.m3u8\n#EXTINF:1,\na.ts\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous playlist type")
	assert.Contains(t, err.Error(), "line 4")
}
