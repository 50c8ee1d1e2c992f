package m3u8

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tag names this package understands (RFC 8216 section 4.3)
const (
	TagHeader                = "EXTM3U"
	TagVersion               = "EXT-X-VERSION"
	TagInf                   = "EXTINF"
	TagByteRange             = "EXT-X-BYTERANGE"
	TagDiscontinuity         = "EXT-X-DISCONTINUITY"
	TagKey                   = "EXT-X-KEY"
	TagMap                   = "EXT-X-MAP"
	TagProgramDateTime       = "EXT-X-PROGRAM-DATE-TIME"
	TagTargetDuration        = "EXT-X-TARGETDURATION"
	TagMediaSequence         = "EXT-X-MEDIA-SEQUENCE"
	TagDiscontinuitySequence = "EXT-X-DISCONTINUITY-SEQUENCE"
	TagEndList               = "EXT-X-ENDLIST"
	TagPlaylistType          = "EXT-X-PLAYLIST-TYPE"
	TagIFramesOnly           = "EXT-X-I-FRAMES-ONLY"
	TagMedia                 = "EXT-X-MEDIA"
	TagStreamInf             = "EXT-X-STREAM-INF"
	TagIFrameStreamInf       = "EXT-X-I-FRAME-STREAM-INF"
	TagSessionData           = "EXT-X-SESSION-DATA"
	TagSessionKey            = "EXT-X-SESSION-KEY"
	TagIndependentSegments   = "EXT-X-INDEPENDENT-SEGMENTS"
	TagStart                 = "EXT-X-START"
)

// TagValue is the parsed body of a tag: one of AttributeList,
// DecimalInteger, EnumeratedString, ExtInf, ByteRangeSpec, DateTime or
// Opaque. Tags that take no value carry a nil TagValue.
type TagValue interface {
	tagValue()
}

// ExtInf is the body of EXTINF
type ExtInf struct {
	Duration float64
	Title    string
}

// ByteRangeSpec is the body of EXT-X-BYTERANGE, <n>[@<o>]
type ByteRangeSpec struct {
	Length    uint64
	Offset    uint64
	HasOffset bool
}

// DateTime is the body of EXT-X-PROGRAM-DATE-TIME, normalised to UTC
type DateTime struct {
	Time time.Time
}

// Opaque is the untouched body of a tag this package does not know
type Opaque string

func (AttributeList) tagValue()    {}
func (DecimalInteger) tagValue()   {}
func (EnumeratedString) tagValue() {}
func (ExtInf) tagValue()           {}
func (ByteRangeSpec) tagValue()    {}
func (DateTime) tagValue()         {}
func (Opaque) tagValue()           {}

// Tag is a single parsed tag line
type Tag struct {
	Name  string
	Value TagValue
	Raw   string
}

// Known reports whether the tag is one this package interprets
func (t Tag) Known() bool {
	_, ok := tagGrammars[t.Name]
	return ok
}

type tagGrammar int

const (
	grammarNone tagGrammar = iota
	grammarAttributes
	grammarInteger
	grammarExtInf
	grammarByteRange
	grammarDateTime
	grammarPlaylistType
)

var tagGrammars = map[string]tagGrammar{
	TagHeader:                grammarNone,
	TagVersion:               grammarInteger,
	TagInf:                   grammarExtInf,
	TagByteRange:             grammarByteRange,
	TagDiscontinuity:         grammarNone,
	TagKey:                   grammarAttributes,
	TagMap:                   grammarAttributes,
	TagProgramDateTime:       grammarDateTime,
	TagTargetDuration:        grammarInteger,
	TagMediaSequence:         grammarInteger,
	TagDiscontinuitySequence: grammarInteger,
	TagEndList:               grammarNone,
	TagPlaylistType:          grammarPlaylistType,
	TagIFramesOnly:           grammarNone,
	TagMedia:                 grammarAttributes,
	TagStreamInf:             grammarAttributes,
	TagIFrameStreamInf:       grammarAttributes,
	TagSessionData:           grammarAttributes,
	TagSessionKey:            grammarAttributes,
	TagIndependentSegments:   grammarNone,
	TagStart:                 grammarAttributes,
}

var keySchema = map[string]valueKind{ // 4.3.2.4
	"METHOD":            kindEnum,
	"URI":               kindQuoted,
	"IV":                kindHex,
	"KEYFORMAT":         kindQuoted,
	"KEYFORMATVERSIONS": kindQuoted,
}

var attributeSchemas = map[string]map[string]valueKind{
	TagKey:        keySchema,
	TagSessionKey: keySchema,
	TagMap: { // 4.3.2.5
		"URI":       kindQuoted,
		"BYTERANGE": kindQuoted,
	},
	TagMedia: { // 4.3.4.1
		"TYPE":            kindEnum,
		"URI":             kindQuoted,
		"GROUP-ID":        kindQuoted,
		"LANGUAGE":        kindQuoted,
		"ASSOC-LANGUAGE":  kindQuoted,
		"NAME":            kindQuoted,
		"DEFAULT":         kindEnum,
		"AUTOSELECT":      kindEnum,
		"FORCED":          kindEnum,
		"INSTREAM-ID":     kindQuoted,
		"CHARACTERISTICS": kindQuoted,
		"CHANNELS":        kindQuoted,
	},
	TagStreamInf: { // 4.3.4.2
		"BANDWIDTH":         kindInteger,
		"AVERAGE-BANDWIDTH": kindInteger,
		"PROGRAM-ID":        kindInteger,
		"CODECS":            kindQuoted,
		"RESOLUTION":        kindResolution,
		"FRAME-RATE":        kindFloat,
		"HDCP-LEVEL":        kindEnum,
		"AUDIO":             kindQuoted,
		"VIDEO":             kindQuoted,
		"SUBTITLES":         kindQuoted,
		"CLOSED-CAPTIONS":   kindQuotedOrNone,
	},
	TagIFrameStreamInf: { // 4.3.4.3
		"BANDWIDTH":         kindInteger,
		"AVERAGE-BANDWIDTH": kindInteger,
		"PROGRAM-ID":        kindInteger,
		"CODECS":            kindQuoted,
		"RESOLUTION":        kindResolution,
		"HDCP-LEVEL":        kindEnum,
		"VIDEO":             kindQuoted,
		"URI":               kindQuoted,
	},
	TagSessionData: { // 4.3.4.4
		"DATA-ID":  kindQuoted,
		"VALUE":    kindQuoted,
		"URI":      kindQuoted,
		"LANGUAGE": kindQuoted,
	},
	TagStart: { // 4.3.5.2
		"TIME-OFFSET": kindSignedFloat,
		"PRECISE":     kindEnum,
	},
}

// ParseTag parses the body of the named tag. Tags this package does not know
// are returned with an Opaque value and never fail.
func ParseTag(name, body string) (Tag, error) {
	tag := Tag{Name: name, Raw: body}
	grammar, known := tagGrammars[name]
	if !known {
		tag.Value = Opaque(body)
		return tag, nil
	}

	var err error
	switch grammar {
	case grammarNone:
	case grammarAttributes:
		tag.Value, err = parseAttributeList(name, body, attributeSchemas[name])
	case grammarInteger:
		var n uint64
		if n, err = parseDecimalInteger(strings.TrimSpace(body)); err != nil {
			err = newError(ValueError, name, "value", "%v", err)
		}
		tag.Value = DecimalInteger(n)
	case grammarExtInf:
		tag.Value, err = parseExtInf(body)
	case grammarByteRange:
		tag.Value, err = parseByteRangeSpec(name, body)
	case grammarDateTime:
		var t time.Time
		if t, err = parseDateTime(strings.TrimSpace(body)); err != nil {
			err = newError(ValueError, name, "date-time", "%v", err)
		}
		tag.Value = DateTime{Time: t}
	case grammarPlaylistType:
		switch v := PlaylistType(strings.TrimSpace(body)); v {
		case PlaylistVOD, PlaylistEvent:
			tag.Value = EnumeratedString(v)
		default:
			err = newError(ValueError, name, "type", "invalid playlist type %q", v)
		}
	}

	if err != nil {
		return Tag{}, err
	}
	return tag, nil
}

func parseExtInf(body string) (ExtInf, error) { // 4.3.2.1
	duration, title, _ := strings.Cut(body, ",")
	d, err := parseDecimalFloat(strings.TrimSpace(duration))
	if err != nil {
		return ExtInf{}, newError(ValueError, TagInf, "duration", "%v", err)
	}
	return ExtInf{Duration: d, Title: title}, nil
}

func parseByteRangeSpec(tag, body string) (ByteRangeSpec, error) { // 4.3.2.2
	length, offset, hasOffset := strings.Cut(strings.TrimSpace(body), "@")
	var (
		spec = ByteRangeSpec{HasOffset: hasOffset}
		err  error
	)
	if spec.Length, err = parseDecimalInteger(length); err != nil {
		return ByteRangeSpec{}, newError(ValueError, tag, "length", "%v", err)
	}
	if hasOffset {
		if spec.Offset, err = parseDecimalInteger(offset); err != nil {
			return ByteRangeSpec{}, newError(ValueError, tag, "offset", "%v", err)
		}
	}
	return spec, nil
}

func (s ByteRangeSpec) String() string {
	str := strconv.FormatUint(s.Length, 10)
	if s.HasOffset {
		str += "@" + strconv.FormatUint(s.Offset, 10)
	}
	return str
}

// ISO 8601 forms seen in the wild, most precise first
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}
