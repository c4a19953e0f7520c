// Package subtitles renders translated segments as SubRip (SRT) cues and
// sanity-checks SRT files before they are burned into a video.
//
// Output is deterministic: identical segments and line width always produce
// byte-identical files. Lines are wrapped greedily at whitespace and never
// split inside a word; widths count Unicode code points after NFC
// normalization so precomposed and decomposed diacritics measure the same.
package subtitles
