package m3u8

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagScalars(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TagValue
	}{
		{TagInf, "9.009,", ExtInf{Duration: 9.009}},
		{TagInf, "10,Title, with comma", ExtInf{Duration: 10, Title: "Title, with comma"}},
		{TagInf, "5", ExtInf{Duration: 5}},
		{TagTargetDuration, "10", DecimalInteger(10)},
		{TagMediaSequence, "7794", DecimalInteger(7794)},
		{TagVersion, "4", DecimalInteger(4)},
		{TagByteRange, "1430680@4048392", ByteRangeSpec{Length: 1430680, Offset: 4048392, HasOffset: true}},
		{TagByteRange, "75232", ByteRangeSpec{Length: 75232}},
		{TagPlaylistType, "VOD", EnumeratedString("VOD")},
		{TagPlaylistType, "EVENT", EnumeratedString("EVENT")},
		{TagProgramDateTime, "2015-08-25T01:59:23.708+00:00", DateTime{Time: time.Date(2015, 8, 25, 1, 59, 23, 708000000, time.UTC)}},
		{TagProgramDateTime, "2010-02-19T14:54:23+0100", DateTime{Time: time.Date(2010, 2, 19, 13, 54, 23, 0, time.UTC)}},
		{TagProgramDateTime, "2010-02-19T14:54:23.031Z", DateTime{Time: time.Date(2010, 2, 19, 14, 54, 23, 31000000, time.UTC)}},
		{TagEndList, "", nil},
		{"EXT-X-VENDOR-THING", "whatever,\"x", Opaque("whatever,\"x")},
	}

	for _, tt := range tests {
		tag, err := ParseTag(tt.name, tt.body)
		require.NoError(t, err, "%s:%s", tt.name, tt.body)
		assert.Equal(t, tt.name, tag.Name)
		assert.Equal(t, tt.body, tag.Raw)
		assert.Equal(t, tt.want, tag.Value, "%s:%s", tt.name, tt.body)
	}
}

func TestParseTagKnown(t *testing.T) {
	tag, err := ParseTag("EXT-X-DATERANGE-LIKE", "ID=1")
	require.NoError(t, err)
	assert.False(t, tag.Known())

	tag, err = ParseTag(TagKey, "METHOD=NONE")
	require.NoError(t, err)
	assert.True(t, tag.Known())
	assert.Equal(t, AttributeList{{Name: "METHOD", Value: EnumeratedString("NONE")}}, tag.Value)
}

func TestParseTagValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{TagTargetDuration, "abc", "value"},
		{TagTargetDuration, "", "value"},
		{TagTargetDuration, "-1", "value"},
		{TagMediaSequence, "1.5", "value"},
		{TagInf, "", "duration"},
		{TagInf, "-1,", "duration"},
		{TagInf, "1e3,", "duration"},
		{TagByteRange, "abc@1", "length"},
		{TagByteRange, "10@", "offset"},
		{TagProgramDateTime, "yesterday", "date-time"},
		{TagPlaylistType, "vod", "type"},
		{TagStart, "TIME-OFFSET=soon", "TIME-OFFSET"},
		{TagKey, "METHOD=AES-128,IV=12345", "IV"},
	}

	for _, tt := range tests {
		_, err := ParseTag(tt.name, tt.body)
		require.ErrorIs(t, err, ErrValue, "%s:%s", tt.name, tt.body)

		perr := err.(*Error)
		assert.Equal(t, tt.name, perr.Tag)
		assert.Equal(t, tt.field, perr.Field)
		assert.Contains(t, perr.Error(), tt.name)
	}
}

func TestParseTagSyntaxError(t *testing.T) {
	_, err := ParseTag(TagMedia, `TYPE=AUDIO,NAME="English`)
	require.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, "NAME", err.(*Error).Field)
}
