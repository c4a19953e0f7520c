package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dubline/internal/config"
	"dubline/internal/encoding"
	"dubline/internal/export"
	"dubline/internal/media/ffaudio"
	"dubline/internal/media/pcm"
	"dubline/internal/procrun"
	"dubline/internal/segment"
	"dubline/internal/services"
	"dubline/internal/testsupport"
	"dubline/internal/timeline"
)

type fakeSource struct {
	duration float64
	hasAudio bool
	extract  func(dest string) error

	mu        sync.Mutex
	extracted int
	closed    bool
}

func (s *fakeSource) Duration() float64 { return s.duration }
func (s *fakeSource) HasAudio() bool    { return s.hasAudio }

func (s *fakeSource) ExtractAudio(_ context.Context, dest string) error {
	s.mu.Lock()
	s.extracted++
	s.mu.Unlock()
	if s.extract == nil {
		return errors.New("no extractor")
	}
	return s.extract(dest)
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

type fakeOpener struct {
	src    *fakeSource
	err    error
	opened int
}

func (o *fakeOpener) Open(context.Context, string) (export.VideoSource, error) {
	o.opened++
	if o.err != nil {
		return nil, o.err
	}
	return o.src, nil
}

type recordingCompositor struct {
	inner   export.Compositor
	request timeline.Request
	panic   bool
}

func (r *recordingCompositor) Compose(ctx context.Context, req timeline.Request) (timeline.Result, error) {
	r.request = req
	if r.panic {
		panic("mixer exploded")
	}
	return r.inner.Compose(ctx, req)
}

type harness struct {
	cfg        *config.Config
	dir        string
	video      string
	runner     *testsupport.FakeRunner
	opener     *fakeOpener
	compositor *recordingCompositor
	stages     []string
	exporter   *export.Exporter
}

func mixFormat(cfg *config.Config) pcm.Format {
	return pcm.Format{SampleRate: cfg.Mix.SampleRate, Channels: cfg.Mix.Channels}
}

func newHarness(t *testing.T, src *fakeSource) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithOutputFormat("wav"))
	dir := t.TempDir()
	h := &harness{
		cfg:    cfg,
		dir:    dir,
		video:  filepath.Join(dir, "input.mp4"),
		runner: &testsupport.FakeRunner{Handler: testsupport.FFmpegEmulator(0)},
		opener: &fakeOpener{src: src},
	}
	testsupport.WriteFile(t, h.video, 512)

	codec := ffaudio.New(cfg.FFmpeg.FFmpegBinary, mixFormat(cfg),
		ffaudio.WithRunner(h.runner),
		ffaudio.WithTempDir(cfg.Paths.TempDir),
	)
	h.compositor = &recordingCompositor{inner: timeline.New(codec, timeline.OptionsFromConfig(cfg), nil)}
	encoder := encoding.NewEncoder(cfg, nil)
	encoder.WithCommandRunner(h.runner)
	h.exporter = export.New(h.opener, h.compositor, encoder, cfg.Paths.TempDir,
		export.WithProgress(func(stage string) { h.stages = append(h.stages, stage) }),
	)
	return h
}

func (h *harness) job(segments []segment.Segment, settings export.Settings) export.Job {
	return export.Job{
		VideoPath:  h.video,
		Segments:   segments,
		OutputPath: filepath.Join(h.dir, "out", "dubbed.mp4"),
		Config:     settings,
	}
}

func defaultSettings() export.Settings {
	return export.Settings{OriginalVolume: 0.3, DubbedVolume: 1.0, BurnSubtitles: true, FontSize: 24, MaxLineWidth: 50}
}

func toneExtractor(format pcm.Format, ms int) func(string) error {
	return func(dest string) error {
		return pcm.WriteWAVFile(dest, testsupport.Tone(format, ms, 0.2))
	}
}

func assertNoTemps(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected temp dir to be empty, found %v", names)
	}
}

func TestExportEndToEnd(t *testing.T) {
	src := &fakeSource{duration: 10, hasAudio: true}
	h := newHarness(t, src)
	src.extract = toneExtractor(mixFormat(h.cfg), 10000)
	clip := filepath.Join(h.dir, "clips", "s1.wav")
	testsupport.WriteTone(t, clip, mixFormat(h.cfg), 2000, 0.5)

	job := h.job([]segment.Segment{
		{ID: "s1", Start: 2, End: 4, Text: "Hello there", TranslatedText: "Xin chào", AudioPath: clip},
	}, defaultSettings())

	out := h.exporter.Run(context.Background(), job)
	if !out.Success || out.Err != nil {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.SegmentsUsed != 1 || out.VoicedSegments != 1 || len(out.Issues) != 0 {
		t.Fatalf("unexpected outcome counters %+v", out)
	}
	want := []string{export.StagePreparingAudio, export.StagePreparingSubtitles, export.StageRendering}
	if strings.Join(h.stages, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected progress stages %v", h.stages)
	}
	if src.extracted != 1 || !src.closed {
		t.Fatalf("expected one extraction and a closed source, got extracted=%d closed=%v", src.extracted, src.closed)
	}
	if got := h.compositor.request; got.TotalDuration != 10 || got.BackgroundPath == "" || got.OriginalVolume != 0.3 {
		t.Fatalf("unexpected compose request %+v", got)
	}

	merges := h.runner.CallsMatching("-shortest")
	if len(merges) != 1 {
		t.Fatalf("expected one merge invocation, got %d", len(merges))
	}
	filter := testsupport.ArgValue(merges[0].Args, "-filter_complex")
	if !strings.Contains(filter, "subtitles=") || !strings.Contains(filter, "FontSize=24") {
		t.Fatalf("expected burn-in filter graph, got %q", filter)
	}
	if got := testsupport.ArgValue(merges[0].Args, "-i"); got != h.video {
		t.Fatalf("expected original video as merge input, got %q", got)
	}
	if len(h.runner.CallsMatching("copy")) != 0 {
		t.Fatal("expected no preview trim")
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		t.Fatalf("expected output video: %v", err)
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}

func TestExportMergeFailureReportsFalseAndCleansUp(t *testing.T) {
	src := &fakeSource{duration: 10, hasAudio: true}
	h := newHarness(t, src)
	src.extract = toneExtractor(mixFormat(h.cfg), 10000)
	emulate := testsupport.FFmpegEmulator(0)
	h.runner.Handler = func(ctx context.Context, cmd procrun.Command) (procrun.Result, error) {
		for _, arg := range cmd.Args {
			if arg == "-shortest" {
				return procrun.Result{ExitCode: 1, Stderr: []byte("Conversion failed!")}, nil
			}
		}
		return emulate(ctx, cmd)
	}

	job := h.job([]segment.Segment{{ID: "s1", Start: 2, End: 4, Text: "line"}}, defaultSettings())
	if h.exporter.Export(context.Background(), job) {
		t.Fatal("expected export to report failure")
	}
	out := h.exporter.Run(context.Background(), job)
	if out.Success || !errors.Is(out.Err, services.ErrExternalTool) {
		t.Fatalf("expected external tool failure, got %+v", out)
	}
	if !strings.Contains(out.Err.Error(), "Conversion failed!") {
		t.Fatalf("expected stderr tail in error, got %v", out.Err)
	}
	if _, err := os.Stat(job.OutputPath); !os.IsNotExist(err) {
		t.Fatalf("expected no output video, stat err=%v", err)
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}

func TestExportPreviewFiltersSegmentsAndTrims(t *testing.T) {
	src := &fakeSource{duration: 10, hasAudio: false}
	h := newHarness(t, src)
	settings := defaultSettings()
	settings.PreviewDuration = 5

	job := h.job([]segment.Segment{
		{ID: "a", Start: 1, End: 2, Text: "one"},
		{ID: "b", Start: 4, End: 6, Text: "two"},
		{ID: "c", Start: 6, End: 7, Text: "three"},
	}, settings)

	out := h.exporter.Run(context.Background(), job)
	if !out.Success {
		t.Fatalf("expected success, got %v", out.Err)
	}
	req := h.compositor.request
	if req.TotalDuration != 5 || len(req.Segments) != 2 || req.Segments[1].ID != "b" {
		t.Fatalf("expected clamped duration and two segments, got %+v", req)
	}
	if out.SegmentsUsed != 2 {
		t.Fatalf("expected 2 segments used, got %d", out.SegmentsUsed)
	}

	trims := h.runner.CallsMatching("copy")
	if len(trims) != 1 || testsupport.ArgValue(trims[0].Args, "-t") != "5" {
		t.Fatalf("expected one trim to 5s, got %+v", trims)
	}
	trimmed := trims[0].Args[len(trims[0].Args)-1]
	merges := h.runner.CallsMatching("-shortest")
	if len(merges) != 1 || testsupport.ArgValue(merges[0].Args, "-i") != trimmed {
		t.Fatalf("expected merge to read the trimmed video %q", trimmed)
	}
	if src.extracted != 0 {
		t.Fatal("expected no extraction for a video without audio")
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}

func TestExportPreviewLongerThanVideoKeepsDuration(t *testing.T) {
	h := newHarness(t, &fakeSource{duration: 3})
	settings := defaultSettings()
	settings.PreviewDuration = 30
	settings.BurnSubtitles = false

	out := h.exporter.Run(context.Background(), h.job([]segment.Segment{{Start: 1, End: 2, Text: "x"}}, settings))
	if !out.Success {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if h.compositor.request.TotalDuration != 3 {
		t.Fatalf("expected video duration, got %v", h.compositor.request.TotalDuration)
	}
	if len(h.runner.CallsMatching("copy")) != 1 {
		t.Fatal("expected the preview trim to run whenever a preview is set")
	}
	merge := h.runner.CallsMatching("-shortest")[0]
	if testsupport.ArgValue(merge.Args, "-filter_complex") != "" {
		t.Fatal("expected simple mux without burn-in")
	}
}

func TestExportExtractionFailureFallsBackToSilence(t *testing.T) {
	src := &fakeSource{duration: 4, hasAudio: true, extract: func(dest string) error {
		_ = os.WriteFile(dest, []byte("partial"), 0o644)
		return errors.New("stream copy failed")
	}}
	h := newHarness(t, src)

	out := h.exporter.Run(context.Background(), h.job(nil, defaultSettings()))
	if !out.Success {
		t.Fatalf("expected extraction failure to be non-fatal, got %v", out.Err)
	}
	if len(out.Issues) != 1 || !strings.Contains(out.Issues[0], "background") {
		t.Fatalf("expected one background issue, got %v", out.Issues)
	}
	if h.compositor.request.BackgroundPath != "" {
		t.Fatalf("expected silent background, got %q", h.compositor.request.BackgroundPath)
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}

func TestExportMutedBackgroundSkipsExtraction(t *testing.T) {
	src := &fakeSource{duration: 4, hasAudio: true}
	h := newHarness(t, src)
	settings := defaultSettings()
	settings.OriginalVolume = 0

	if out := h.exporter.Run(context.Background(), h.job(nil, settings)); !out.Success {
		t.Fatalf("expected success, got %v", out.Err)
	}
	if src.extracted != 0 {
		t.Fatal("expected no extraction when the original volume is zero")
	}
}

func TestExportSegmentClipFailureIsIsolated(t *testing.T) {
	h := newHarness(t, &fakeSource{duration: 6})
	good := filepath.Join(h.dir, "good.wav")
	testsupport.WriteTone(t, good, mixFormat(h.cfg), 1000, 0.4)

	job := h.job([]segment.Segment{
		{ID: "missing", Start: 0.5, End: 1.5, Text: "a", AudioPath: filepath.Join(h.dir, "gone.wav")},
		{ID: "good", Start: 2, End: 3, Text: "b", AudioPath: good},
	}, defaultSettings())

	out := h.exporter.Run(context.Background(), job)
	if !out.Success || out.VoicedSegments != 1 {
		t.Fatalf("expected success with one voiced segment, got %+v", out)
	}
	if len(out.Issues) != 1 || !strings.HasPrefix(out.Issues[0], "missing:") {
		t.Fatalf("expected issue for the missing clip, got %v", out.Issues)
	}
}

func TestExportValidationFailsBeforeWork(t *testing.T) {
	cases := map[string]func(*export.Job){
		"bad segment":     func(j *export.Job) { j.Segments = []segment.Segment{{Start: 3, End: 2}} },
		"negative volume": func(j *export.Job) { j.Config.DubbedVolume = -1 },
		"zero font":       func(j *export.Job) { j.Config.FontSize = 0 },
		"no output":       func(j *export.Job) { j.OutputPath = "" },
		"no video":        func(j *export.Job) { j.VideoPath = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, &fakeSource{duration: 10})
			job := h.job(nil, defaultSettings())
			mutate(&job)
			out := h.exporter.Run(context.Background(), job)
			if out.Success || !errors.Is(out.Err, services.ErrValidation) {
				t.Fatalf("expected validation failure, got %+v", out)
			}
			if h.opener.opened != 0 || len(h.runner.Calls()) != 0 || len(h.stages) != 0 {
				t.Fatal("expected no work before validation")
			}
		})
	}
}

func TestExportRejectsNonPositiveVideoDuration(t *testing.T) {
	src := &fakeSource{duration: 0, hasAudio: true}
	h := newHarness(t, src)
	out := h.exporter.Run(context.Background(), h.job(nil, defaultSettings()))
	if !errors.Is(out.Err, services.ErrValidation) {
		t.Fatalf("expected validation failure, got %v", out.Err)
	}
	if !src.closed {
		t.Fatal("expected source to be closed")
	}
}

func TestExportOpenFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.opener.err = services.Wrap(services.ErrNotFound, "video", "open", "missing", nil)
	out := h.exporter.Run(context.Background(), h.job(nil, defaultSettings()))
	if out.Success || !errors.Is(out.Err, services.ErrNotFound) {
		t.Fatalf("expected not found failure, got %+v", out)
	}
}

func TestExportTrimFailureFailsJob(t *testing.T) {
	h := newHarness(t, &fakeSource{duration: 10})
	h.runner.Handler = func(_ context.Context, cmd procrun.Command) (procrun.Result, error) {
		_ = os.WriteFile(cmd.Args[len(cmd.Args)-1], []byte("partial"), 0o644)
		return procrun.Result{ExitCode: 1, Stderr: []byte("Invalid data found")}, nil
	}
	settings := defaultSettings()
	settings.PreviewDuration = 5

	out := h.exporter.Run(context.Background(), h.job([]segment.Segment{{Start: 1, End: 2, Text: "x"}}, settings))
	if out.Success || !errors.Is(out.Err, services.ErrExternalTool) {
		t.Fatalf("expected trim failure, got %+v", out)
	}
	if len(h.runner.CallsMatching("-shortest")) != 0 {
		t.Fatal("expected merge to be skipped after a failed trim")
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}

func TestExportRecoversPanicAndCleansUp(t *testing.T) {
	src := &fakeSource{duration: 5, hasAudio: true}
	h := newHarness(t, src)
	src.extract = toneExtractor(mixFormat(h.cfg), 5000)
	h.compositor.panic = true

	out := h.exporter.Run(context.Background(), h.job(nil, defaultSettings()))
	if out.Success || out.Err == nil || !strings.Contains(out.Err.Error(), "mixer exploded") {
		t.Fatalf("expected recovered panic, got %+v", out)
	}
	if h.compositor.request.BackgroundPath == "" {
		t.Fatal("expected background to have been extracted before the panic")
	}
	assertNoTemps(t, h.cfg.Paths.TempDir)
}
