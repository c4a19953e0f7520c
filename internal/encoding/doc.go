// Package encoding builds and runs the ffmpeg invocations that produce the
// final dubbed video: the merge (video + dubbed audio, optionally burning
// subtitles) and the stream-copy trim used for previews.
//
// Argument construction is pure (BuildMergeArgs, BuildTrimArgs) so it can be
// asserted byte for byte; Encoder executes the lists through a procrun.Runner
// with bounded timeouts and stages merge output beside the destination so a
// failed encode never leaves a truncated file at the requested path.
package encoding
