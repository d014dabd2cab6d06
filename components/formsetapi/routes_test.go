package formsetapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formset/pkg/testsupport"
)

func TestRegisterRoutes_ServeMux(t *testing.T) {
	mux := http.NewServeMux()
	patterns, err := RegisterRoutes(mux, "/api/", WithForms(testsupport.MustLoadForm(t, "simulation")))
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if diff := cmp.Diff([]string{"/api/replicate", "/api/forms/"}, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/forms/simulation/formsets/outcomes/entry?index=1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterRoutes_Chi(t *testing.T) {
	router := chi.NewRouter()
	component := New(WithWildcard("*"), WithForms(testsupport.MustLoadForm(t, "simulation")))
	patterns, err := component.RegisterRoutes(router, "/formsets")
	if err != nil {
		t.Fatalf("register routes: %v", err)
	}
	if diff := cmp.Diff([]string{"/formsets/replicate", "/formsets/forms/*"}, patterns); diff != "" {
		t.Fatalf("patterns mismatch (-want +got):\n%s", diff)
	}

	req := httptest.NewRequest(http.MethodGet, "/formsets/forms/simulation", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `id="outcome-formset"`) {
		t.Fatalf("expected rendered form, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/formsets/replicate", strings.NewReader(`{"html":"<div id=\"c\"></div>","container":"c","counter":"c"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for empty container, got %d", rec.Code)
	}
}

func TestRegisterRoutes_MissingMux(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/api"); err == nil {
		t.Fatalf("expected error for nil mux")
	}
}
