package m3u8

import (
	"fmt"
	"math"
	"regexp"
)

// 4.3.4.1 INSTREAM-ID: CC1-CC4 or SERVICE1-SERVICE63
var instreamID = regexp.MustCompile(`^(CC[1-4]|SERVICE([1-9]|[1-5][0-9]|6[0-3]))$`)

// Validate checks the semantic rules a parsed playlist has to satisfy and
// returns every violation it finds.
func Validate(playlist Playlist) Diagnostics {
	switch p := playlist.(type) {
	case *MediaPlaylist:
		return validateMedia(p)
	case *MultivariantPlaylist:
		return validateMultivariant(p)
	}
	return nil
}

func invalid(tag, field, format string, args ...interface{}) *Error {
	return newError(ValidationError, tag, field, format, args...)
}

func validateMedia(p *MediaPlaylist) Diagnostics {
	var diags Diagnostics
	if !p.hasTargetDuration {
		// 4.3.3.1 - "The EXT-X-TARGETDURATION tag is REQUIRED."
		diags = append(diags, invalid(TagTargetDuration, "", "required tag is missing"))
	}

	var lastKey *Key
	for i, seg := range p.Segments {
		if p.hasTargetDuration && math.Round(seg.Duration) > float64(p.TargetDuration) {
			diags = append(diags, invalid(TagInf, "duration", "segment %d lasts %ss, longer than the target duration of %ds", i, formatFloat(seg.Duration), p.TargetDuration))
		}

		if seg.Key == nil || seg.Key.equal(lastKey) {
			continue
		}
		lastKey = seg.Key
		if seg.Key.Method == "" {
			diags = append(diags, invalid(TagKey, "METHOD", "segment %d: missing required attribute", i))
		} else if seg.Key.URI == "" {
			diags = append(diags, invalid(TagKey, "URI", "segment %d: required unless METHOD is %s", i, CryptNone))
		}
	}
	return diags
}

func validateMultivariant(p *MultivariantPlaylist) Diagnostics {
	var diags Diagnostics
	groups := make(map[MediaType]map[string]bool)
	for i, r := range p.Renditions {
		diags = append(diags, validateRendition(i, r)...)
		if groups[r.Type] == nil {
			groups[r.Type] = make(map[string]bool)
		}
		groups[r.Type][r.GroupID] = true
	}

	for i, v := range p.Variants {
		where := fmt.Sprintf("variant %d (%s)", i, v.URI)
		if !v.Attributes.Has("BANDWIDTH") {
			diags = append(diags, invalid(TagStreamInf, "BANDWIDTH", "%s: missing required attribute", where))
		}
		if d := validateHDCPLevel(TagStreamInf, where, v.HDCPLevel); d != nil {
			diags = append(diags, d)
		}

		refs := []struct {
			attr  string
			typ   MediaType
			group string
		}{
			{"AUDIO", MediaAudio, v.Audio},
			{"VIDEO", MediaVideo, v.Video},
			{"SUBTITLES", MediaSubtitles, v.Subtitles},
			{"CLOSED-CAPTIONS", MediaCaptions, v.ClosedCaptions},
		}
		for _, ref := range refs {
			if ref.group == "" || (ref.typ == MediaCaptions && ref.group == CCNone) {
				continue
			}
			if !groups[ref.typ][ref.group] {
				diags = append(diags, invalid(TagStreamInf, ref.attr, "%s: no %s rendition declares GROUP-ID %q", where, ref.typ, ref.group))
			}
		}
	}

	for i, v := range p.IFrameVariants {
		if !v.Attributes.Has("BANDWIDTH") {
			diags = append(diags, invalid(TagIFrameStreamInf, "BANDWIDTH", "i-frame variant %d: missing required attribute", i))
		}
		if !v.Attributes.Has("URI") {
			diags = append(diags, invalid(TagIFrameStreamInf, "URI", "i-frame variant %d: missing required attribute", i))
		}
		if d := validateHDCPLevel(TagIFrameStreamInf, fmt.Sprintf("i-frame variant %d", i), v.HDCPLevel); d != nil {
			diags = append(diags, d)
		}
	}

	for i, s := range p.SessionData {
		if !s.Attributes.Has("DATA-ID") {
			diags = append(diags, invalid(TagSessionData, "DATA-ID", "session data %d: missing required attribute", i))
		}
		if s.Attributes.Has("VALUE") == s.Attributes.Has("URI") {
			diags = append(diags, invalid(TagSessionData, "VALUE", "session data %d: exactly one of VALUE and URI is required", i))
		}
	}

	for i, k := range p.SessionKeys {
		if k.Method == "" {
			diags = append(diags, invalid(TagSessionKey, "METHOD", "session key %d: missing required attribute", i))
		}
		if k.URI == "" {
			diags = append(diags, invalid(TagSessionKey, "URI", "session key %d: missing required attribute", i))
		}
	}
	return diags
}

func validateRendition(i int, r Rendition) Diagnostics {
	var diags Diagnostics
	switch r.Type {
	case MediaAudio, MediaVideo, MediaSubtitles, MediaCaptions:
	case "":
		diags = append(diags, invalid(TagMedia, "TYPE", "rendition %d: missing required attribute", i))
	default:
		diags = append(diags, invalid(TagMedia, "TYPE", "rendition %d: unknown media type %q", i, r.Type))
	}

	if !r.Attributes.Has("GROUP-ID") {
		diags = append(diags, invalid(TagMedia, "GROUP-ID", "rendition %d: missing required attribute", i))
	}
	if !r.Attributes.Has("NAME") {
		diags = append(diags, invalid(TagMedia, "NAME", "rendition %d: missing required attribute", i))
	}

	if r.Type == MediaCaptions {
		if r.InstreamID == "" {
			diags = append(diags, invalid(TagMedia, "INSTREAM-ID", "rendition %d: required for %s", i, MediaCaptions))
		}
		if r.URI != "" {
			diags = append(diags, invalid(TagMedia, "URI", "rendition %d: not allowed for %s", i, MediaCaptions))
		}
	}

	if r.InstreamID != "" && !instreamID.MatchString(r.InstreamID) {
		diags = append(diags, invalid(TagMedia, "INSTREAM-ID", "rendition %d: invalid value %q", i, r.InstreamID))
	}

	for _, attr := range []string{"DEFAULT", "AUTOSELECT", "FORCED"} {
		if v := r.Attributes.enum(attr); v != "" && v != "YES" && v != "NO" {
			diags = append(diags, invalid(TagMedia, attr, "rendition %d: expected YES or NO, got %q", i, v))
		}
	}
	return diags
}

func validateHDCPLevel(tag, where, level string) *Error {
	switch level {
	case "", HDCPLevel0, HDCPLevelNone:
		return nil
	}
	return invalid(tag, "HDCP-LEVEL", "%s: expected %s or %s, got %q", where, HDCPLevel0, HDCPLevelNone, level)
}
