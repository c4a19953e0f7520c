// Package audio chooses which embedded audio track of the source video becomes
// the background layer under the dub.
//
// Ranking: preferred language (when configured), non-commentary, default
// disposition, channel count, then container order.
package audio
