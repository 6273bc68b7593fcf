package scoring

import (
	"log/slog"
	"sync"

	"github.com/Abhishek-Sahu25/Echo-check/pkg/lifecycle"
)

// Engine hosts the loaded authenticity models. Models are initialized once at
// process start through the lifecycle coordinator and shared by every
// pipeline invocation; the engine is safe for concurrent use after Start.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.RWMutex
	audio *audioModel
	video *videoModel
}

// NewEngine creates an unloaded engine. Scorers return ErrNotReady until
// Start's startup hook has run.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger.With("system", "scoring"),
	}
}

// Start registers model loading and teardown with the lifecycle coordinator.
func (e *Engine) Start(lc *lifecycle.Coordinator) error {
	e.logger.Info("starting scoring engine")

	lc.OnStartup(func() {
		e.mu.Lock()
		e.audio = newAudioModel(e.cfg)
		e.video = newVideoModel(e.cfg)
		e.mu.Unlock()
		e.logger.Info("authenticity models loaded", "audio", e.audio.Name(), "video", e.video.Name())
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		e.Close()
	})

	return nil
}

// Ready reports whether the models have been loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.audio != nil && e.video != nil
}

// Close releases the loaded models. Scorers return ErrNotReady afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.audio == nil && e.video == nil {
		return
	}
	e.audio = nil
	e.video = nil
	e.logger.Info("authenticity models released")
}

// LoadModels initializes the models synchronously, bypassing the lifecycle
// coordinator. Intended for tests and one-shot tooling.
func (e *Engine) LoadModels() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.audio = newAudioModel(e.cfg)
	e.video = newVideoModel(e.cfg)
}

func (e *Engine) audioModel() (*audioModel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.audio == nil {
		return nil, ErrNotReady
	}
	return e.audio, nil
}

func (e *Engine) videoModel() (*videoModel, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.video == nil {
		return nil, ErrNotReady
	}
	return e.video, nil
}
