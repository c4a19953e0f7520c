// Package export sequences one dubbing job: open the source video, extract
// its background audio, compose the dubbed track, format subtitles, trim a
// preview when requested, and merge everything into the output video.
//
// Every temporary file a job creates is registered with the job and removed
// exactly once when Run returns, whichever step ended it. Recoverable
// problems (missing background audio, unreadable clips) are collected as
// Outcome.Issues; only validation, composition, trim, and merge failures fail
// the job.
package export
