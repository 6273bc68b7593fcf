package media

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds decoding parameters.
type Config struct {
	FFmpegBin   string `toml:"ffmpeg_bin"`
	FFprobeBin  string `toml:"ffprobe_bin"`
	SampleRate  int    `toml:"sample_rate"`
	FrameBudget int    `toml:"frame_budget"`
	FrameSize   int    `toml:"frame_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	FFmpegBin   string
	FFprobeBin  string
	SampleRate  string
	FrameBudget string
	FrameSize   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.FFmpegBin != "" {
		c.FFmpegBin = overlay.FFmpegBin
	}
	if overlay.FFprobeBin != "" {
		c.FFprobeBin = overlay.FFprobeBin
	}
	if overlay.SampleRate != 0 {
		c.SampleRate = overlay.SampleRate
	}
	if overlay.FrameBudget != 0 {
		c.FrameBudget = overlay.FrameBudget
	}
	if overlay.FrameSize != 0 {
		c.FrameSize = overlay.FrameSize
	}
}

func (c *Config) loadDefaults() {
	if c.FFmpegBin == "" {
		c.FFmpegBin = "ffmpeg"
	}
	if c.FFprobeBin == "" {
		c.FFprobeBin = "ffprobe"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.FrameBudget == 0 {
		c.FrameBudget = 20
	}
	if c.FrameSize == 0 {
		c.FrameSize = 224
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.FFmpegBin != "" {
		if v := os.Getenv(env.FFmpegBin); v != "" {
			c.FFmpegBin = v
		}
	}
	if env.FFprobeBin != "" {
		if v := os.Getenv(env.FFprobeBin); v != "" {
			c.FFprobeBin = v
		}
	}
	if env.SampleRate != "" {
		if v := os.Getenv(env.SampleRate); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.SampleRate = n
			}
		}
	}
	if env.FrameBudget != "" {
		if v := os.Getenv(env.FrameBudget); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.FrameBudget = n
			}
		}
	}
	if env.FrameSize != "" {
		if v := os.Getenv(env.FrameSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.FrameSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample_rate must be at least 8000")
	}
	if c.FrameBudget < 1 {
		return fmt.Errorf("frame_budget must be positive")
	}
	if c.FrameSize < 16 {
		return fmt.Errorf("frame_size must be at least 16")
	}
	return nil
}
