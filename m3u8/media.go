package m3u8

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"
)

// ByteRange is a resolved sub-range of a resource
type ByteRange struct { // 4.3.2.2
	Length uint64 `json:"length"`
	Offset uint64 `json:"offset"`
}

func (r ByteRange) String() string {
	return strconv.FormatUint(r.Length, 10) + "@" + strconv.FormatUint(r.Offset, 10)
}

// Map is the Media Initialization Section of the segments that follow it
type Map struct { // 4.3.2.5
	URI       string     `json:"uri"`
	ByteRange *ByteRange `json:"byte_range,omitempty"`
}

func mapFromAttributes(attrs AttributeList) (*Map, error) {
	m := &Map{URI: attrs.quoted("URI")}
	if attrs.Has("BYTERANGE") {
		spec, err := parseByteRangeSpec(TagMap, attrs.quoted("BYTERANGE"))
		if err != nil {
			return nil, err
		}
		m.ByteRange = &ByteRange{Length: spec.Length, Offset: spec.Offset}
	}
	return m, nil
}

func (m *Map) equal(o *Map) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.ByteRange == nil || o.ByteRange == nil {
		return m.URI == o.URI && m.ByteRange == o.ByteRange
	}
	return m.URI == o.URI && *m.ByteRange == *o.ByteRange
}

func (m *Map) clone() *Map {
	if m == nil {
		return nil
	}
	c := *m
	if m.ByteRange != nil {
		r := *m.ByteRange
		c.ByteRange = &r
	}
	return &c
}

func (m *Map) attributes() AttributeList {
	attrs := AttributeList{{Name: "URI", Value: QuotedString(m.URI)}}
	if m.ByteRange != nil {
		attrs = append(attrs, Attribute{Name: "BYTERANGE", Value: QuotedString(m.ByteRange.String())})
	}
	return attrs
}

// Key contains information for decrypting encrypted segments
type Key struct { // 4.3.2.4
	Method            string `json:"method"`
	URI               string `json:"uri,omitempty"`
	IV                []byte `json:"iv,omitempty"`
	KeyFormat         string `json:"key_format,omitempty"`
	KeyFormatVersions string `json:"key_format_versions,omitempty"`
}

func keyFromAttributes(attrs AttributeList) *Key {
	return &Key{
		Method:            attrs.enum("METHOD"),
		URI:               attrs.quoted("URI"),
		IV:                attrs.hex("IV"),
		KeyFormat:         attrs.quoted("KEYFORMAT"),
		KeyFormatVersions: attrs.quoted("KEYFORMATVERSIONS"),
	}
}

func (k *Key) clone() *Key {
	if k == nil {
		return nil
	}
	c := *k
	c.IV = bytes.Clone(k.IV)
	return &c
}

func (k *Key) equal(o *Key) bool {
	if k == nil || o == nil {
		return k == o
	}
	return k.Method == o.Method && k.URI == o.URI && bytes.Equal(k.IV, o.IV) &&
		k.KeyFormat == o.KeyFormat && k.KeyFormatVersions == o.KeyFormatVersions
}

func (k *Key) attributes() AttributeList {
	var attrs AttributeList
	if k.Method != "" {
		attrs = append(attrs, Attribute{Name: "METHOD", Value: EnumeratedString(k.Method)})
	}
	if k.URI != "" {
		attrs = append(attrs, Attribute{Name: "URI", Value: QuotedString(k.URI)})
	}
	if len(k.IV) > 0 {
		attrs = append(attrs, Attribute{Name: "IV", Value: HexSequence(k.IV)})
	}
	if k.KeyFormat != "" {
		attrs = append(attrs, Attribute{Name: "KEYFORMAT", Value: QuotedString(k.KeyFormat)})
	}
	if k.KeyFormatVersions != "" {
		attrs = append(attrs, Attribute{Name: "KEYFORMATVERSIONS", Value: QuotedString(k.KeyFormatVersions)})
	}
	return attrs
}

// Start is the preferred point at which to start playing
type Start struct { // 4.3.5.2
	TimeOffset float64 `json:"time_offset"`
	Precise    bool    `json:"precise,omitempty"`
}

func startFromAttributes(attrs AttributeList) *Start {
	return &Start{TimeOffset: attrs.float("TIME-OFFSET"), Precise: attrs.yes("PRECISE")}
}

func (s *Start) attributes() AttributeList {
	attrs := AttributeList{{Name: "TIME-OFFSET", Value: SignedDecimalFloat(s.TimeOffset)}}
	if s.Precise {
		attrs = append(attrs, Attribute{Name: "PRECISE", Value: EnumeratedString(PreciseYes)})
	}
	return attrs
}

// Segment represents an individual media segment from a MediaPlaylist.
// Key and Map are the ones in effect when the segment was read.
type Segment struct { // 4.3.2
	URI             string     `json:"uri"`
	Duration        float64    `json:"duration"`
	Title           string     `json:"title,omitempty"`
	ByteRange       *ByteRange `json:"byte_range,omitempty"`
	Discontinuity   bool       `json:"discontinuity,omitempty"`
	ProgramDateTime *time.Time `json:"program_date_time,omitempty"`
	Key             *Key       `json:"key,omitempty"`
	Map             *Map       `json:"map,omitempty"`
}

// MediaPlaylist represents a Media Playlist M3U8 file
type MediaPlaylist struct { // 4.3.3
	Version               int          `json:"version,omitempty"`
	TargetDuration        int64        `json:"target_duration"`
	MediaSequence         int64        `json:"media_sequence"`
	DiscontinuitySequence int64        `json:"discontinuity_sequence,omitempty"`
	PlaylistType          PlaylistType `json:"playlist_type,omitempty"`
	Ended                 bool         `json:"ended"`
	IFramesOnly           bool         `json:"i_frames_only,omitempty"`
	IndependentSegments   bool         `json:"independent_segments,omitempty"`
	Start                 *Start       `json:"start,omitempty"`
	Segments              []Segment    `json:"segments"`

	hasTargetDuration bool
}

// Type returns media playlist type
func (p *MediaPlaylist) Type() int {
	return TypeMedia
}

// Count returns the number of segments
func (p *MediaPlaylist) Count() int {
	return len(p.Segments)
}

// Duration is the sum of all segment durations in seconds
func (p *MediaPlaylist) Duration() float64 {
	var total float64
	for _, seg := range p.Segments {
		total += seg.Duration
	}
	return total
}

func (p *MediaPlaylist) isPlaylist() {}

// Encode writes p in its canonical form. Keys and maps are written only where
// they change and every byte range carries an explicit offset.
func (p *MediaPlaylist) Encode(w io.Writer) error {
	var b strings.Builder
	b.WriteString("#" + TagHeader + "\n")
	if p.Version > 0 {
		writeTag(&b, TagVersion, strconv.Itoa(p.Version))
	}
	if p.hasTargetDuration || p.TargetDuration > 0 {
		writeTag(&b, TagTargetDuration, strconv.FormatInt(p.TargetDuration, 10))
	}
	if p.MediaSequence != 0 {
		writeTag(&b, TagMediaSequence, strconv.FormatInt(p.MediaSequence, 10))
	}
	if p.DiscontinuitySequence != 0 {
		writeTag(&b, TagDiscontinuitySequence, strconv.FormatInt(p.DiscontinuitySequence, 10))
	}
	if p.PlaylistType != "" {
		writeTag(&b, TagPlaylistType, string(p.PlaylistType))
	}
	if p.IFramesOnly {
		writeTag(&b, TagIFramesOnly, "")
	}
	if p.IndependentSegments {
		writeTag(&b, TagIndependentSegments, "")
	}
	if p.Start != nil {
		writeTag(&b, TagStart, p.Start.attributes().String())
	}

	var (
		key *Key
		m   *Map
	)
	for _, seg := range p.Segments {
		if !seg.Key.equal(key) {
			if seg.Key == nil {
				writeTag(&b, TagKey, "METHOD="+CryptNone)
			} else {
				writeTag(&b, TagKey, seg.Key.attributes().String())
			}
			key = seg.Key
		}
		if seg.Map != nil && !seg.Map.equal(m) {
			writeTag(&b, TagMap, seg.Map.attributes().String())
			m = seg.Map
		}
		if seg.Discontinuity {
			writeTag(&b, TagDiscontinuity, "")
		}
		if seg.ProgramDateTime != nil {
			writeTag(&b, TagProgramDateTime, seg.ProgramDateTime.Format(time.RFC3339Nano))
		}
		writeTag(&b, TagInf, formatFloat(seg.Duration)+","+seg.Title)
		if seg.ByteRange != nil {
			writeTag(&b, TagByteRange, seg.ByteRange.String())
		}
		b.WriteString(seg.URI + "\n")
	}

	if p.Ended {
		writeTag(&b, TagEndList, "")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (p *MediaPlaylist) String() string {
	var b strings.Builder
	p.Encode(&b)
	return b.String()
}

func writeTag(b *strings.Builder, name, body string) {
	b.WriteString("#" + name)
	if body != "" {
		b.WriteString(":" + body)
	}
	b.WriteString("\n")
}
