package config

const (
	defaultLLMBaseURL  = "https://openrouter.ai"
	defaultLLMModel    = "openai/gpt-4o-mini"
	defaultVisionModel = "gpt-4o-mini"
)

// Default returns the configuration used when no file or env overrides exist.
func Default() Config {
	return Config{
		Planning: Planning{
			MinDurationSec: 2.0,
			MaxDurationSec: 5.0,
			FadeSec:        0.2,
		},
		Paths: Paths{
			OutDir:   "out",
			CacheDir: ".cache",
		},
		Tools: Tools{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			WhisperBin:   ".cache/bin/whisper.cpp",
			WhisperModel: ".cache/models/ggml-base.bin",
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: 90,
		},
		Vision: Vision{
			Enabled:     true,
			Model:       defaultVisionModel,
			Frames:      3,
			Concurrency: 4,
		},
		Matching: Matching{KeywordFallback: true},
		Render: Render{
			VideoCodec:       "libx264",
			Preset:           "veryfast",
			CRF:              18,
			AudioCodec:       "aac",
			AudioBitrateKbps: 192,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}
