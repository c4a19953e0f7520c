package audio

import (
	"strconv"
	"strings"

	"dubline/internal/language"
	"dubline/internal/media/ffprobe"
)

// Selection identifies the embedded track used as the background layer.
type Selection struct {
	Stream ffprobe.Stream
	// Index is the container-wide stream index.
	Index int
	// Position is the zero-based position among audio streams, suitable for
	// an ffmpeg "0:a:N" map specifier. It is -1 when no audio exists.
	Position int
	Language string
}

// Found reports whether an audio stream was selected.
func (s Selection) Found() bool {
	return s.Position >= 0
}

// Label returns a human-readable summary of the selected stream.
func (s Selection) Label() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Stream)
}

// Select picks the background track among the container's audio streams.
// Tracks in the preferred language win when one is configured; among the
// remainder the default-flagged track wins, then the one with the most
// channels, then the earliest.
func Select(streams []ffprobe.Stream, preferredLanguage string) Selection {
	candidates := buildCandidates(streams, preferredLanguage)
	if len(candidates) == 0 {
		return Selection{Index: -1, Position: -1}
	}
	best := candidates[0]
	bestScore := score(best)
	for _, cand := range candidates[1:] {
		if s := score(cand); s > bestScore {
			best = cand
			bestScore = s
		}
	}
	return Selection{
		Stream:   best.stream,
		Index:    best.stream.Index,
		Position: best.order,
		Language: best.language,
	}
}

type candidate struct {
	stream         ffprobe.Stream
	order          int
	language       string
	preferred      bool
	channels       int
	defaultFlagged bool
	commentary     bool
}

func score(cand candidate) float64 {
	s := 0.0
	if cand.preferred {
		s += 10000
	}
	if cand.commentary {
		s -= 5000
	}
	if cand.defaultFlagged {
		s += 1000
	}
	s += float64(min(cand.channels, 16)) * 10
	s -= float64(cand.order) * 0.1
	return s
}

func buildCandidates(streams []ffprobe.Stream, preferredLanguage string) []candidate {
	preferredLanguage = strings.TrimSpace(preferredLanguage)
	result := make([]candidate, 0, len(streams))
	order := 0
	for _, stream := range streams {
		if !stream.IsAudio() {
			continue
		}
		lang := language.ExtractFromTags(stream.Tags)
		cand := candidate{
			stream:         stream,
			order:          order,
			language:       lang,
			channels:       channelCount(stream),
			defaultFlagged: stream.Disposition["default"] == 1,
			commentary:     stream.Disposition["comment"] == 1 || strings.Contains(strings.ToLower(stream.Tags["title"]), "commentary"),
		}
		if preferredLanguage != "" {
			cand.preferred = language.SameBase(lang, preferredLanguage)
		}
		result = append(result, cand)
		order++
	}
	return result
}

func channelCount(stream ffprobe.Stream) int {
	if stream.Channels > 0 {
		return stream.Channels
	}
	layout := strings.ToLower(strings.TrimSpace(stream.ChannelLayout))
	switch {
	case layout == "":
		return 0
	case layout == "mono":
		return 1
	case layout == "stereo":
		return 2
	case strings.HasPrefix(layout, "7.1"):
		return 8
	case strings.HasPrefix(layout, "5.1"):
		return 6
	}
	if strings.Contains(layout, ".") {
		total := 0
		for _, part := range strings.Split(layout, ".") {
			part = strings.Trim(part, "abcdefghijklmnopqrstuvwxyz ()")
			if n, err := strconv.Atoi(part); err == nil {
				total += n
			}
		}
		return total
	}
	return 0
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := language.ExtractFromTags(stream.Tags); lang != "" {
		parts = append(parts, language.DisplayName(lang))
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if n := channelCount(stream); n > 0 {
		parts = append(parts, strconv.Itoa(n)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
