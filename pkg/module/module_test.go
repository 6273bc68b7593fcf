package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abhishek-Sahu25/Echo-check/pkg/module"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/routes"
)

func analysesRouter() http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/analyses",
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte(r.PathValue("id")))
				},
			},
		},
	})
	return mux
}

func TestModulePrefixValidation(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		wantPanic bool
	}{
		{"valid prefix", "/api", false},
		{"empty prefix", "", true},
		{"missing slash", "api", true},
		{"multi-level prefix", "/api/v1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				recovered := recover()
				if tt.wantPanic && recovered == nil {
					t.Errorf("New(%q) should panic", tt.prefix)
				}
				if !tt.wantPanic && recovered != nil {
					t.Errorf("New(%q) panicked: %v", tt.prefix, recovered)
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestRouterDispatch(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", analysesRouter()))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"list through module", "/api/analyses", http.StatusOK, ""},
		{"path value through module", "/api/analyses/abc123", http.StatusOK, "abc123"},
		{"trailing slash normalized", "/api/analyses/", http.StatusOK, ""},
		{"unmounted prefix", "/other/analyses", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterNativeFallback(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", analysesRouter()))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body: got %q, want ok", rec.Body.String())
	}
}

func TestModuleMiddlewareApplied(t *testing.T) {
	m := module.New("/api", analysesRouter())
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test", "applied")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analyses", nil))

	if rec.Header().Get("X-Test") != "applied" {
		t.Error("module middleware did not run")
	}
}

func TestModulePrefixStripped(t *testing.T) {
	var seenPath string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
	})

	router := module.NewRouter()
	router.Mount(module.New("/api", inner))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/analyses/42", nil))

	if seenPath != "/analyses/42" {
		t.Errorf("inner path: got %q, want /analyses/42", seenPath)
	}
}
