package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gitlab.connectwisedev.com/storefront-service/models"
)

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		writeJSON(w, http.StatusOK, s.Catalog.Products())
		return
	}
	cat, err := models.ParseCategory(raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Catalog.ByCategory(cat))
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Search(r.URL.Query().Get("q")))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, models.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
