package api

import (
	"net/http"

	"github.com/Abhishek-Sahu25/Echo-check/internal/config"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Analyses.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
