package audio

import (
	"testing"

	"dubline/internal/media/ffprobe"
)

func TestSelectPrefersDefaultFlagged(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", Channels: 6, Tags: map[string]string{"language": "jpn"}},
		{Index: 2, CodecType: "audio", Channels: 2, Tags: map[string]string{"language": "eng"}, Disposition: map[string]int{"default": 1}},
	}
	sel := Select(streams, "")
	if sel.Index != 2 || sel.Position != 1 {
		t.Fatalf("expected default-flagged stream (index 2, position 1), got %+v", sel)
	}
}

func TestSelectPrefersMoreChannelsWithoutDefault(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 0, CodecType: "audio", Channels: 2},
		{Index: 1, CodecType: "audio", ChannelLayout: "5.1(side)"},
	}
	sel := Select(streams, "")
	if sel.Index != 1 {
		t.Fatalf("expected 5.1 stream, got %+v", sel)
	}
}

func TestSelectHonoursPreferredLanguage(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Channels: 8, Tags: map[string]string{"language": "eng"}, Disposition: map[string]int{"default": 1}},
		{Index: 2, CodecType: "audio", Channels: 2, Tags: map[string]string{"language": "vie"}},
	}
	sel := Select(streams, "vi")
	if sel.Index != 2 {
		t.Fatalf("expected Vietnamese stream, got %+v", sel)
	}
	if sel.Label() != "Vietnamese | 2ch" {
		t.Fatalf("unexpected label %q", sel.Label())
	}
}

func TestSelectAvoidsCommentary(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 1, CodecType: "audio", Channels: 2, Tags: map[string]string{"title": "Director Commentary"}, Disposition: map[string]int{"default": 1}},
		{Index: 2, CodecType: "audio", Channels: 2},
	}
	if sel := Select(streams, ""); sel.Index != 2 {
		t.Fatalf("expected main track over commentary, got %+v", sel)
	}
}

func TestSelectTiesKeepEarliest(t *testing.T) {
	streams := []ffprobe.Stream{
		{Index: 3, CodecType: "audio", Channels: 2},
		{Index: 4, CodecType: "audio", Channels: 2},
	}
	if sel := Select(streams, ""); sel.Index != 3 || sel.Position != 0 {
		t.Fatalf("expected earliest stream, got %+v", sel)
	}
}

func TestSelectNoAudio(t *testing.T) {
	sel := Select([]ffprobe.Stream{{Index: 0, CodecType: "video"}}, "en")
	if sel.Found() {
		t.Fatalf("expected no selection, got %+v", sel)
	}
	if sel.Label() != "" {
		t.Fatalf("expected empty label, got %q", sel.Label())
	}
}

func TestChannelCountFromLayout(t *testing.T) {
	cases := map[string]int{"mono": 1, "stereo": 2, "5.1": 6, "7.1(wide)": 8, "4.0": 4, "": 0}
	for layout, want := range cases {
		if got := channelCount(ffprobe.Stream{ChannelLayout: layout}); got != want {
			t.Errorf("channelCount(%q) = %d, want %d", layout, got, want)
		}
	}
}
