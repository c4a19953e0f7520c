// Package timeline layers synthesized speech clips over the attenuated
// original audio of a video.
//
// A composition builds two buffers spanning the whole source duration: the
// background (original audio or silence) and the voice layer (every segment
// clip overlaid at its start time). The background is attenuated either
// uniformly ("static" ducking) or additionally under voiced intervals with
// cosine cross-fades ("dynamic" ducking), then the voice layer is mixed on
// top and the result rendered to a temp file the caller owns.
//
// Missing or undecodable inputs never abort a composition: they are recorded
// as Issues, logged at WARN, and replaced with silence.
package timeline
