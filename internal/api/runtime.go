package api

import (
	"github.com/Abhishek-Sahu25/Echo-check/internal/config"
	"github.com/Abhishek-Sahu25/Echo-check/internal/infrastructure"
	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/pipeline"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// assembled analysis pipeline.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   pipeline.Runtime
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")
	decoder := media.NewDecoder(cfg.Media, logger)

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Scoring:   infra.Scoring,
		},
		Pagination: cfg.API.Pagination,
		Pipeline: pipeline.Runtime{
			Decoder:     decoder,
			Audio:       infra.Scoring,
			Video:       infra.Scoring,
			Storage:     infra.Storage,
			Scoring:     cfg.Scoring,
			FrameBudget: cfg.Media.FrameBudget,
			Logger:      logger,
		},
	}
}
