package scoring

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// Config holds aggregation weights and anomaly thresholds.
// AudioWeight and VideoWeight must sum to 1 and apply only when both
// modalities produced a score; a single score passes through unchanged.
type Config struct {
	AudioWeight            float64 `toml:"audio_weight"`
	VideoWeight            float64 `toml:"video_weight"`
	HighSeverityBelow      float64 `toml:"high_severity_below"`
	MediumSeverityBelow    float64 `toml:"medium_severity_below"`
	SpectralConsistencyMin float64 `toml:"spectral_consistency_min"`
	TemporalCoherenceMin   float64 `toml:"temporal_coherence_min"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AudioWeight string
	VideoWeight string
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
	if overlay.AudioWeight != 0 {
		c.AudioWeight = overlay.AudioWeight
	}
	if overlay.VideoWeight != 0 {
		c.VideoWeight = overlay.VideoWeight
	}
	if overlay.HighSeverityBelow != 0 {
		c.HighSeverityBelow = overlay.HighSeverityBelow
	}
	if overlay.MediumSeverityBelow != 0 {
		c.MediumSeverityBelow = overlay.MediumSeverityBelow
	}
	if overlay.SpectralConsistencyMin != 0 {
		c.SpectralConsistencyMin = overlay.SpectralConsistencyMin
	}
	if overlay.TemporalCoherenceMin != 0 {
		c.TemporalCoherenceMin = overlay.TemporalCoherenceMin
	}
}

func (c *Config) loadDefaults() {
	if c.AudioWeight == 0 && c.VideoWeight == 0 {
		c.AudioWeight = 0.5
		c.VideoWeight = 0.5
	}
	if c.HighSeverityBelow == 0 {
		c.HighSeverityBelow = 40
	}
	if c.MediumSeverityBelow == 0 {
		c.MediumSeverityBelow = 60
	}
	if c.SpectralConsistencyMin == 0 {
		c.SpectralConsistencyMin = 50
	}
	if c.TemporalCoherenceMin == 0 {
		c.TemporalCoherenceMin = 55
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AudioWeight != "" {
		if v := os.Getenv(env.AudioWeight); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.AudioWeight = f
			}
		}
	}
	if env.VideoWeight != "" {
		if v := os.Getenv(env.VideoWeight); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.VideoWeight = f
			}
		}
	}
}

func (c *Config) validate() error {
	if c.AudioWeight < 0 || c.VideoWeight < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if math.Abs(c.AudioWeight+c.VideoWeight-1) > 1e-9 {
		return fmt.Errorf("audio_weight and video_weight must sum to 1")
	}
	if c.HighSeverityBelow > c.MediumSeverityBelow {
		return fmt.Errorf("high_severity_below cannot exceed medium_severity_below")
	}
	return nil
}
