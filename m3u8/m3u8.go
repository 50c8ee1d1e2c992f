package m3u8

import (
	"fmt"
	"io"
	"log/slog"
)

const (
	// TypeMultivariant and TypeMedia are returned by Playlist.Type
	// to tell the two kinds of playlist apart
	TypeMultivariant = iota
	TypeMedia
)

// PlaylistType is the value of EXT-X-PLAYLIST-TYPE
type PlaylistType string

const (
	PlaylistVOD   PlaylistType = "VOD"
	PlaylistEvent PlaylistType = "EVENT"
)

// MediaType is the TYPE of an EXT-X-MEDIA rendition
type MediaType string

const (
	MediaAudio     MediaType = "AUDIO"
	MediaVideo     MediaType = "VIDEO"
	MediaSubtitles MediaType = "SUBTITLES"
	MediaCaptions  MediaType = "CLOSED-CAPTIONS"
)

const (
	CryptNone      string = "NONE"
	CryptAES       string = "AES-128"
	CryptSampleAES string = "SAMPLE-AES"

	HDCPLevel0    string = "TYPE0"
	HDCPLevelNone string = "NONE"

	PreciseYes string = "YES"
	CCNone     string = "NONE"
)

// Playlist is either a *MultivariantPlaylist or a *MediaPlaylist
type Playlist interface {
	Type() int
	Count() int
	Encode(w io.Writer) error
	String() string
	isPlaylist()
}

// Option configures a Decoder
type Option func(*Decoder)

// WithLogger sets the logger used to report skipped tags and comments at debug level
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Decoder turns playlist text into a Playlist. It holds no per-parse state
// and may be shared between goroutines.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates a Decoder. Without options nothing is logged.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Parse decodes text and rejects it if any validation check fails. The
// returned error is an *Error for hard failures and Diagnostics otherwise.
func (d *Decoder) Parse(text string) (Playlist, error) {
	playlist, diags, err := d.ParseWithDiagnostics(text)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		return nil, diags
	}
	return playlist, nil
}

// ParseWithDiagnostics decodes text, returning validation failures next to
// the playlist instead of rejecting it. Hard failures still return an error.
func (d *Decoder) ParseWithDiagnostics(text string) (Playlist, Diagnostics, error) {
	lex, err := NewLexer(text)
	if err != nil {
		return nil, nil, err
	}

	a := newAssembler(d.logger)
	for lex.Next() {
		if err := a.step(lex.Line()); err != nil {
			return nil, nil, err
		}
	}
	if err := lex.Err(); err != nil {
		return nil, nil, err
	}

	playlist, err := a.finish()
	if err != nil {
		return nil, nil, err
	}

	diags := Validate(playlist)
	for _, diag := range diags {
		d.logger.Debug("playlist validation", "error", diag.Error())
	}
	return playlist, diags, nil
}

// DecodeReader reads the whole of reader and parses it with Parse
func (d *Decoder) DecodeReader(reader io.Reader) (Playlist, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	return d.Parse(string(b))
}

// Parse decodes text with the default Decoder
func Parse(text string) (Playlist, error) {
	return defaultDecoder.Parse(text)
}

// ParseWithDiagnostics decodes text with the default Decoder
func ParseWithDiagnostics(text string) (Playlist, Diagnostics, error) {
	return defaultDecoder.ParseWithDiagnostics(text)
}

// DecodeReader decodes a playlist from reader with the default Decoder
func DecodeReader(reader io.Reader) (Playlist, error) {
	return defaultDecoder.DecodeReader(reader)
}

// MustParse implements Parse, but panics if an error occurs
func MustParse(text string) Playlist {
	playlist, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return playlist
}

// MustDecodeReader implements DecodeReader, but panics if an error occurs
func MustDecodeReader(reader io.Reader) Playlist {
	playlist, err := DecodeReader(reader)
	if err != nil {
		panic(err)
	}
	return playlist
}
