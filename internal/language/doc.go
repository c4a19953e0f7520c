// Package language normalizes the language labels found in container stream
// tags and user configuration (ISO 639-1, ISO 639-2/T and /B, BCP 47, and
// English names) on top of golang.org/x/text/language.
package language
