// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/Abhishek-Sahu25/Echo-check/internal/config"
	"github.com/Abhishek-Sahu25/Echo-check/internal/infrastructure"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/middleware"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every API route requires a caller identity; the owner middleware enforces
// it ahead of the handlers.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.Owner())

	return m, nil
}
