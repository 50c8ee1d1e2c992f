package m3u8

import (
	"io"
	"strconv"
	"strings"
)

// IFrameVariant represents the EXT-X-I-FRAME-STREAM-INF tag
type IFrameVariant struct { // 4.3.4.3
	URI              string      `json:"uri"`
	Bandwidth        uint64      `json:"bandwidth"`
	AverageBandwidth uint64      `json:"average_bandwidth,omitempty"`
	Codecs           []string    `json:"codecs,omitempty"`
	Resolution       *Resolution `json:"resolution,omitempty"`
	Video            string      `json:"video,omitempty"`
	HDCPLevel        string      `json:"hdcp_level,omitempty"`

	// Attributes is the tag's attribute-list as written, unknown attributes included
	Attributes AttributeList `json:"-"`
}

// Variant represents the EXT-X-STREAM-INF tag and the URI that follows it
type Variant struct { // 4.3.4.2
	IFrameVariant
	ProgramID      uint64  `json:"program_id,omitempty"` // Removed in Protocol 6
	FrameRate      float64 `json:"frame_rate,omitempty"`
	Audio          string  `json:"audio,omitempty"`
	Subtitles      string  `json:"subtitles,omitempty"`
	ClosedCaptions string  `json:"closed_captions,omitempty"`
}

func iframeVariantFromAttributes(attrs AttributeList) IFrameVariant {
	return IFrameVariant{
		URI:              attrs.quoted("URI"),
		Bandwidth:        attrs.integer("BANDWIDTH"),
		AverageBandwidth: attrs.integer("AVERAGE-BANDWIDTH"),
		Codecs:           splitList(attrs.quoted("CODECS")),
		Resolution:       attrs.resolution("RESOLUTION"),
		Video:            attrs.quoted("VIDEO"),
		HDCPLevel:        attrs.enum("HDCP-LEVEL"),
		Attributes:       attrs,
	}
}

func variantFromAttributes(attrs AttributeList, uri string) Variant {
	v := Variant{
		IFrameVariant:  iframeVariantFromAttributes(attrs),
		ProgramID:      attrs.integer("PROGRAM-ID"),
		FrameRate:      attrs.float("FRAME-RATE"),
		Audio:          attrs.quoted("AUDIO"),
		Subtitles:      attrs.quoted("SUBTITLES"),
		ClosedCaptions: attrs.quoted("CLOSED-CAPTIONS"),
	}
	v.URI = uri
	return v
}

// Rendition contains alternative renditions
// of the same content in the Multivariant Playlist
type Rendition struct { // 4.3.4.1
	Type            MediaType `json:"type"`
	GroupID         string    `json:"group_id"`
	Name            string    `json:"name"`
	URI             string    `json:"uri,omitempty"`
	Language        string    `json:"language,omitempty"`
	AssocLanguage   string    `json:"assoc_language,omitempty"`
	Default         bool      `json:"default,omitempty"`
	AutoSelect      bool      `json:"autoselect,omitempty"`
	Forced          bool      `json:"forced,omitempty"`
	InstreamID      string    `json:"instream_id,omitempty"`
	Characteristics []string  `json:"characteristics,omitempty"`
	Channels        string    `json:"channels,omitempty"`

	Attributes AttributeList `json:"-"`
}

func renditionFromAttributes(attrs AttributeList) Rendition {
	return Rendition{
		Type:            MediaType(attrs.enum("TYPE")),
		GroupID:         attrs.quoted("GROUP-ID"),
		Name:            attrs.quoted("NAME"),
		URI:             attrs.quoted("URI"),
		Language:        attrs.quoted("LANGUAGE"),
		AssocLanguage:   attrs.quoted("ASSOC-LANGUAGE"),
		Default:         attrs.yes("DEFAULT"),
		AutoSelect:      attrs.yes("AUTOSELECT"),
		Forced:          attrs.yes("FORCED"),
		InstreamID:      attrs.quoted("INSTREAM-ID"),
		Characteristics: splitList(attrs.quoted("CHARACTERISTICS")),
		Channels:        attrs.quoted("CHANNELS"),
		Attributes:      attrs,
	}
}

// SessionData represents the EXT-X-SESSION-DATA tag
type SessionData struct { // 4.3.4.4
	DataID   string `json:"data_id"`
	Value    string `json:"value,omitempty"`
	URI      string `json:"uri,omitempty"`
	Language string `json:"language,omitempty"` // Should be RFC5646-compliant

	Attributes AttributeList `json:"-"`
}

func sessionDataFromAttributes(attrs AttributeList) SessionData {
	return SessionData{
		DataID:     attrs.quoted("DATA-ID"),
		Value:      attrs.quoted("VALUE"),
		URI:        attrs.quoted("URI"),
		Language:   attrs.quoted("LANGUAGE"),
		Attributes: attrs,
	}
}

// MultivariantPlaylist represents a Multivariant (formerly Master) Playlist M3U8 file
type MultivariantPlaylist struct { // 4.3.4
	Version             int             `json:"version,omitempty"`
	IndependentSegments bool            `json:"independent_segments,omitempty"`
	Start               *Start          `json:"start,omitempty"`
	Variants            []Variant       `json:"variants"`
	IFrameVariants      []IFrameVariant `json:"i_frame_variants,omitempty"`
	Renditions          []Rendition     `json:"renditions,omitempty"`
	SessionData         []SessionData   `json:"session_data,omitempty"`
	SessionKeys         []Key           `json:"session_keys,omitempty"`
}

// Type returns multivariant playlist type
func (p *MultivariantPlaylist) Type() int {
	return TypeMultivariant
}

// Count returns the number of variant streams, i-frame variants included
func (p *MultivariantPlaylist) Count() int {
	return len(p.Variants) + len(p.IFrameVariants)
}

// Group returns the renditions declared with the given GROUP-ID
func (p *MultivariantPlaylist) Group(id string) []Rendition {
	var group []Rendition
	for _, r := range p.Renditions {
		if r.GroupID == id {
			group = append(group, r)
		}
	}
	return group
}

func (p *MultivariantPlaylist) isPlaylist() {}

// Encode writes p back out. Variants, renditions and session data are written
// from their preserved attribute-lists.
func (p *MultivariantPlaylist) Encode(w io.Writer) error {
	var b strings.Builder
	b.WriteString("#" + TagHeader + "\n")
	if p.Version > 0 {
		writeTag(&b, TagVersion, strconv.Itoa(p.Version))
	}
	if p.IndependentSegments {
		writeTag(&b, TagIndependentSegments, "")
	}
	if p.Start != nil {
		writeTag(&b, TagStart, p.Start.attributes().String())
	}
	for _, r := range p.Renditions {
		writeTag(&b, TagMedia, r.Attributes.String())
	}
	for _, v := range p.Variants {
		writeTag(&b, TagStreamInf, v.Attributes.String())
		b.WriteString(v.URI + "\n")
	}
	for _, v := range p.IFrameVariants {
		writeTag(&b, TagIFrameStreamInf, v.Attributes.String())
	}
	for _, s := range p.SessionData {
		writeTag(&b, TagSessionData, s.Attributes.String())
	}
	for _, k := range p.SessionKeys {
		writeTag(&b, TagSessionKey, k.attributes().String())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (p *MultivariantPlaylist) String() string {
	var b strings.Builder
	p.Encode(&b)
	return b.String()
}

// splitList splits comma-separated quoted-string contents such as CODECS
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
