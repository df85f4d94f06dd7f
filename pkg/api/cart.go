package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/cart"
)

const suggestionCount = 3

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cartFrom(r.Context()).Lines())
}

func (s *Server) cartSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cart.Summarize(cartFrom(r.Context()).Lines(), s.FreeShipping))
}

func (s *Server) cartSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Suggestions(cartFrom(r.Context()).Lines(), suggestionCount))
}

// addItem builds the line from the catalog so price and name come from the
// server, not the client.
func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var in addItemRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	p, ok := s.Catalog.ByID(in.ProductID)
	if !ok {
		writeError(w, models.ErrNotFound)
		return
	}
	if !p.InStock() {
		verr := models.NewValidationError()
		verr.Add("product_id", "This product is out of stock.")
		writeError(w, verr)
		return
	}
	size := strings.ToUpper(strings.TrimSpace(in.Size))
	if len(p.Sizes) > 0 {
		verr := models.NewValidationError()
		if size == "" {
			verr.Add("size", "Please select a size.")
		} else if !p.SizeAvailable(size) {
			verr.Add("size", "Size "+size+" is not available")
		}
		if err := verr.OrNil(); err != nil {
			writeError(w, err)
			return
		}
	}

	lines, err := cartFrom(r.Context()).AddToCart(r.Context(), models.NewCartLine(p, size, in.Quantity))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	s.respondLines(w)(cartFrom(r.Context()).RemoveFromCart(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) incrementItem(w http.ResponseWriter, r *http.Request) {
	s.respondLines(w)(cartFrom(r.Context()).IncrementQuantity(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) decrementItem(w http.ResponseWriter, r *http.Request) {
	s.respondLines(w)(cartFrom(r.Context()).DecrementQuantity(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.respondLines(w)(cartFrom(r.Context()).ClearCart(r.Context()))
}

func (s *Server) respondLines(w http.ResponseWriter) func([]models.CartLine, error) {
	return func(lines []models.CartLine, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lines)
	}
}
