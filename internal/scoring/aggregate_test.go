package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
)

func defaultConfig(t *testing.T) scoring.Config {
	t.Helper()
	cfg := scoring.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return cfg
}

func ptr(f float64) *float64 { return &f }

func TestAggregateBothScores(t *testing.T) {
	cfg := defaultConfig(t)

	got, err := scoring.Aggregate(ptr(80), ptr(60), cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != 70 {
		t.Errorf("Aggregate(80, 60) = %v, want 70", got)
	}
}

func TestAggregateSingleScore(t *testing.T) {
	cfg := defaultConfig(t)

	tests := []struct {
		name  string
		audio *float64
		video *float64
		want  float64
	}{
		{"audio only", ptr(80), nil, 80},
		{"video only", nil, ptr(60), 60},
		{"audio only zero", ptr(0), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoring.Aggregate(tt.audio, tt.video, cfg)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateNoScores(t *testing.T) {
	cfg := defaultConfig(t)

	_, err := scoring.Aggregate(nil, nil, cfg)
	if !errors.Is(err, scoring.ErrNoScores) {
		t.Errorf("Aggregate(nil, nil) error = %v, want ErrNoScores", err)
	}
}

func TestAggregateCustomWeights(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.AudioWeight = 0.4
	cfg.VideoWeight = 0.6

	got, err := scoring.Aggregate(ptr(100), ptr(50), cfg)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if math.Abs(got-70) > 1e-9 {
		t.Errorf("Aggregate(100, 50) with 0.4/0.6 = %v, want 70", got)
	}
}

func TestConfigValidatesWeights(t *testing.T) {
	cfg := scoring.Config{AudioWeight: 0.7, VideoWeight: 0.7}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("Finalize() with weights summing to 1.4 should fail")
	}
}
