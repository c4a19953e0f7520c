package config

const (
	defaultConfigPath            = "~/.config/dubline/config.toml"
	defaultLogDir                = "~/.local/share/dubline/logs"
	defaultFFmpegBinary          = "ffmpeg"
	defaultFFprobeBinary         = "ffprobe"
	defaultMergeTimeoutSeconds   = 600
	defaultTrimTimeoutSeconds    = 120
	defaultExtractTimeoutSeconds = 300
	defaultProbeTimeoutSeconds   = 5
	defaultVideoCodec            = "libx264"
	defaultPreset                = "medium"
	defaultCRF                   = 23
	defaultAudioCodec            = "aac"
	defaultAudioBitrate          = "192k"
	defaultOriginalVolume        = 0.1
	defaultDubbedVolume          = 1.0
	defaultDucking               = DuckingStatic
	defaultDuckDepthDB           = -10
	defaultCrossfadeMs           = 50
	defaultSampleRate            = 44100
	defaultChannels              = 2
	defaultOutputFormat          = "mp3"
	defaultOutputBitrate         = "192k"
	defaultFontSize              = 24
	defaultMaxLineWidth          = 50
	defaultPrimaryColour         = "&HFFFFFF"
	defaultOutlineColour         = "&H000000"
	defaultOutline               = 2
	defaultAlignment             = 2
	defaultMarginV               = 20
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Ducking policies accepted by mix.ducking.
const (
	DuckingStatic  = "static"
	DuckingDynamic = "dynamic"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir: defaultTempDir(),
			LogDir:  defaultLogDir,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:          defaultFFmpegBinary,
			FFprobeBinary:         defaultFFprobeBinary,
			MergeTimeoutSeconds:   defaultMergeTimeoutSeconds,
			TrimTimeoutSeconds:    defaultTrimTimeoutSeconds,
			ExtractTimeoutSeconds: defaultExtractTimeoutSeconds,
			ProbeTimeoutSeconds:   defaultProbeTimeoutSeconds,
			VideoCodec:            defaultVideoCodec,
			Preset:                defaultPreset,
			CRF:                   defaultCRF,
			AudioCodec:            defaultAudioCodec,
			AudioBitrate:          defaultAudioBitrate,
		},
		Mix: Mix{
			OriginalVolume: defaultOriginalVolume,
			DubbedVolume:   defaultDubbedVolume,
			Ducking:        defaultDucking,
			DuckDepthDB:    defaultDuckDepthDB,
			CrossfadeMs:    defaultCrossfadeMs,
			SampleRate:     defaultSampleRate,
			Channels:       defaultChannels,
			OutputFormat:   defaultOutputFormat,
			OutputBitrate:  defaultOutputBitrate,
		},
		Subtitles: Subtitles{
			Burn:          true,
			FontSize:      defaultFontSize,
			MaxLineWidth:  defaultMaxLineWidth,
			PrimaryColour: defaultPrimaryColour,
			OutlineColour: defaultOutlineColour,
			Outline:       defaultOutline,
			Alignment:     defaultAlignment,
			MarginV:       defaultMarginV,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
