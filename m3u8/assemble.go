package m3u8

import (
	"errors"
	"log/slog"
	"math"
	"time"
)

type mode int

const (
	modeUnknown mode = iota
	modeMedia
	modeMultivariant
)

func (m mode) String() string {
	switch m {
	case modeMedia:
		return "media"
	case modeMultivariant:
		return "multivariant"
	}
	return "unknown"
}

// 4.3.3 and 4.3.4: tags that may only appear in one kind of playlist
var tagModes = map[string]mode{
	TagInf:                   modeMedia,
	TagByteRange:             modeMedia,
	TagDiscontinuity:         modeMedia,
	TagKey:                   modeMedia,
	TagMap:                   modeMedia,
	TagProgramDateTime:       modeMedia,
	TagTargetDuration:        modeMedia,
	TagMediaSequence:         modeMedia,
	TagDiscontinuitySequence: modeMedia,
	TagEndList:               modeMedia,
	TagPlaylistType:          modeMedia,
	TagIFramesOnly:           modeMedia,
	TagMedia:                 modeMultivariant,
	TagStreamInf:             modeMultivariant,
	TagIFrameStreamInf:       modeMultivariant,
	TagSessionData:           modeMultivariant,
	TagSessionKey:            modeMultivariant,
}

// pendingSegment holds what the tags seen since the last URI contribute to
// the next segment. It is reset after every segment.
type pendingSegment struct {
	inf           *ExtInf
	infLine       int
	byteRange     *ByteRangeSpec
	discontinuity bool
	dateTime      *time.Time

	// first tag other than EXTINF that is waiting for a segment
	heldTag  string
	heldLine int
}

func (p *pendingSegment) hold(tag string, num int) {
	if p.heldTag == "" {
		p.heldTag, p.heldLine = tag, num
	}
}

// assembler folds the classified lines of one playlist into a document. Key
// and map state outlive a segment, everything in pending does not.
type assembler struct {
	logger *slog.Logger

	mode     mode
	modeTag  string
	pending  pendingSegment
	key      *Key
	initMap  *Map
	lastURI  string
	lastRng  *ByteRange
	stream   AttributeList
	streamAt int

	seenVersion bool
	seenTarget  bool

	media MediaPlaylist
	multi MultivariantPlaylist
}

func newAssembler(logger *slog.Logger) *assembler {
	return &assembler{logger: logger}
}

func (a *assembler) step(line Line) error {
	switch line.Kind {
	case LineComment:
		a.logger.Debug("skipping comment", "line", line.Num)
	case LineURI:
		return atLine(a.uri(line.Text), line.Num)
	case LineTag:
		tag, err := ParseTag(line.Name, line.Body)
		if err != nil {
			return atLine(err, line.Num)
		}
		return atLine(a.tag(tag, line.Num), line.Num)
	}
	return nil
}

func (a *assembler) setMode(m mode, tag string) error {
	if a.mode == modeUnknown {
		a.mode, a.modeTag = m, tag
		return nil
	}
	if a.mode != m {
		return newError(StructuralError, tag, "", "ambiguous playlist type: %s tag in a playlist already identified as %s by %s", m, a.mode, a.modeTag)
	}
	return nil
}

func (a *assembler) tag(tag Tag, num int) error {
	if !tag.Known() {
		a.logger.Debug("skipping unknown tag", "tag", tag.Name, "line", num)
		return nil
	}

	if m, ok := tagModes[tag.Name]; ok {
		if err := a.setMode(m, tag.Name); err != nil {
			return err
		}
	}

	switch tag.Name {
	case TagVersion: // 4.3.1.2
		if a.seenVersion {
			return newError(StructuralError, tag.Name, "", "playlist contains more than one %s tag", tag.Name)
		}
		a.seenVersion = true
		v, err := toInt64(tag)
		if err != nil {
			return err
		}
		a.media.Version, a.multi.Version = int(v), int(v)
	case TagIndependentSegments: // 4.3.5.1
		a.media.IndependentSegments, a.multi.IndependentSegments = true, true
	case TagStart: // 4.3.5.2
		start := startFromAttributes(tag.Value.(AttributeList))
		a.media.Start, a.multi.Start = start, start

	case TagInf: // 4.3.2.1
		if a.pending.inf != nil {
			return newError(StructuralError, tag.Name, "", "%s on line %d is not followed by a URI", tag.Name, a.pending.infLine)
		}
		inf := tag.Value.(ExtInf)
		a.pending.inf, a.pending.infLine = &inf, num
	case TagByteRange: // 4.3.2.2
		spec := tag.Value.(ByteRangeSpec)
		a.pending.byteRange = &spec
		a.pending.hold(tag.Name, num)
	case TagDiscontinuity: // 4.3.2.3
		a.pending.discontinuity = true
		a.pending.hold(tag.Name, num)
	case TagKey: // 4.3.2.4
		attrs := tag.Value.(AttributeList)
		switch method := attrs.enum("METHOD"); method {
		case CryptNone:
			a.key = nil
		case CryptAES, CryptSampleAES, "":
			a.key = keyFromAttributes(attrs)
		default:
			return newError(ValueError, tag.Name, "METHOD", "invalid key method %q", method)
		}
	case TagMap: // 4.3.2.5
		m, err := mapFromAttributes(tag.Value.(AttributeList))
		if err != nil {
			return err
		}
		a.initMap = m
	case TagProgramDateTime: // 4.3.2.6
		t := tag.Value.(DateTime).Time
		a.pending.dateTime = &t
		a.pending.hold(tag.Name, num)
	case TagTargetDuration: // 4.3.3.1
		if a.seenTarget {
			return newError(StructuralError, tag.Name, "", "playlist contains more than one %s tag", tag.Name)
		}
		a.seenTarget = true
		v, err := toInt64(tag)
		if err != nil {
			return err
		}
		a.media.TargetDuration, a.media.hasTargetDuration = v, true
	case TagMediaSequence: // 4.3.3.2
		v, err := toInt64(tag)
		if err != nil {
			return err
		}
		a.media.MediaSequence = v
	case TagDiscontinuitySequence: // 4.3.3.3
		v, err := toInt64(tag)
		if err != nil {
			return err
		}
		a.media.DiscontinuitySequence = v
	case TagEndList: // 4.3.3.4
		a.media.Ended = true
	case TagPlaylistType: // 4.3.3.5
		a.media.PlaylistType = PlaylistType(tag.Value.(EnumeratedString))
	case TagIFramesOnly: // 4.3.3.6
		a.media.IFramesOnly = true

	case TagMedia: // 4.3.4.1
		a.multi.Renditions = append(a.multi.Renditions, renditionFromAttributes(tag.Value.(AttributeList)))
	case TagStreamInf: // 4.3.4.2
		if a.stream != nil {
			return newError(StructuralError, tag.Name, "", "%s on line %d is not followed by a URI", tag.Name, a.streamAt)
		}
		a.stream, a.streamAt = tag.Value.(AttributeList), num
	case TagIFrameStreamInf: // 4.3.4.3
		a.multi.IFrameVariants = append(a.multi.IFrameVariants, iframeVariantFromAttributes(tag.Value.(AttributeList)))
	case TagSessionData: // 4.3.4.4
		a.multi.SessionData = append(a.multi.SessionData, sessionDataFromAttributes(tag.Value.(AttributeList)))
	case TagSessionKey: // 4.3.4.5
		attrs := tag.Value.(AttributeList)
		if method := attrs.enum("METHOD"); method != CryptAES && method != CryptSampleAES && method != "" {
			return newError(ValueError, tag.Name, "METHOD", "invalid session key method %q", method)
		}
		a.multi.SessionKeys = append(a.multi.SessionKeys, *keyFromAttributes(attrs))
	}
	return nil
}

func (a *assembler) uri(uri string) error {
	switch {
	case a.pending.inf != nil:
		return a.segment(uri)
	case a.stream != nil:
		a.multi.Variants = append(a.multi.Variants, variantFromAttributes(a.stream, uri))
		a.stream = nil
		return nil
	}
	return newError(StructuralError, "", "", "unexpected URI %q", uri)
}

func (a *assembler) segment(uri string) error {
	p := a.pending
	seg := Segment{
		URI:             uri,
		Duration:        p.inf.Duration,
		Title:           p.inf.Title,
		Discontinuity:   p.discontinuity,
		ProgramDateTime: p.dateTime,
		Key:             a.key.clone(),
		Map:             a.initMap.clone(),
	}

	if p.byteRange != nil {
		rng := ByteRange{Length: p.byteRange.Length, Offset: p.byteRange.Offset}
		if !p.byteRange.HasOffset {
			if a.lastRng == nil || a.lastURI != uri {
				return newError(StructuralError, TagByteRange, "offset", "sub-range without offset must follow a sub-range of %q", uri)
			}
			if a.lastRng.Length > math.MaxUint64-a.lastRng.Offset {
				return newError(ValueError, TagByteRange, "offset", "sub-range following %s of %q is out of range", a.lastRng, uri)
			}
			rng.Offset = a.lastRng.Offset + a.lastRng.Length
		}
		seg.ByteRange = &rng
	}

	a.media.Segments = append(a.media.Segments, seg)
	a.lastURI, a.lastRng = uri, seg.ByteRange
	a.pending = pendingSegment{}
	return nil
}

func (a *assembler) finish() (Playlist, error) {
	if a.pending.inf != nil {
		return nil, &Error{Kind: StructuralError, Line: a.pending.infLine, Tag: TagInf, Msg: "not followed by a URI"}
	}
	if a.pending.heldTag != "" {
		return nil, &Error{Kind: StructuralError, Line: a.pending.heldLine, Tag: a.pending.heldTag, Msg: "not followed by a segment"}
	}
	if a.stream != nil {
		return nil, &Error{Kind: StructuralError, Line: a.streamAt, Tag: TagStreamInf, Msg: "not followed by a URI"}
	}

	switch a.mode {
	case modeMedia:
		media := a.media
		return &media, nil
	case modeMultivariant:
		multi := a.multi
		return &multi, nil
	}
	return nil, &Error{Kind: StructuralError, Msg: "ambiguous playlist type: neither media nor multivariant tags found"}
}

func toInt64(tag Tag) (int64, error) {
	n := uint64(tag.Value.(DecimalInteger))
	if n > math.MaxInt64 {
		return 0, newError(ValueError, tag.Name, "value", "%d is out of range", n)
	}
	return int64(n), nil
}

// atLine stamps the line number on an *Error that does not have one yet
func atLine(err error, num int) error {
	var e *Error
	if errors.As(err, &e) && e.Line == 0 {
		e.Line = num
	}
	return err
}
