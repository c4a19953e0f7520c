package timeline

import "sort"

// Interval is a half-open [StartMs, EndMs) span on the timeline.
type Interval struct {
	StartMs int
	EndMs   int
}

// VoiceMask records where voice clips were placed, in placement order.
type VoiceMask []Interval

// Merged returns the intervals sorted by start with overlapping or touching
// spans coalesced. Empty intervals are dropped.
func (m VoiceMask) Merged() []Interval {
	spans := make([]Interval, 0, len(m))
	for _, iv := range m {
		if iv.EndMs > iv.StartMs {
			spans = append(spans, iv)
		}
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].StartMs < spans[j].StartMs })
	out := []Interval{spans[0]}
	for _, iv := range spans[1:] {
		last := &out[len(out)-1]
		if iv.StartMs <= last.EndMs {
			last.EndMs = max(last.EndMs, iv.EndMs)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// VoicedMs sums the merged coverage in milliseconds.
func (m VoiceMask) VoicedMs() int {
	total := 0
	for _, iv := range m.Merged() {
		total += iv.EndMs - iv.StartMs
	}
	return total
}
