// Package api is the storefront's JSON HTTP interface.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/admin"
	"gitlab.connectwisedev.com/storefront-service/pkg/auth"
	"gitlab.connectwisedev.com/storefront-service/pkg/cart"
	"gitlab.connectwisedev.com/storefront-service/pkg/catalog"
	"gitlab.connectwisedev.com/storefront-service/pkg/orders"
)

// ServiceName labels the HTTP spans.
const ServiceName = "storefront"

// Server holds the handler dependencies.
type Server struct {
	Catalog      *catalog.Store
	Carts        *cart.Sessions
	Auth         *auth.Service
	Orders       *orders.Service
	Admin        *admin.Products
	FreeShipping float64
	// Uploads, when set, serves locally stored images under /uploads/.
	Uploads http.Handler
	Now     func() time.Time
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Routes builds the router, wrapped in HTTP tracing.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.identify)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Printf("write error: %v", err)
		}
	})
	if s.Uploads != nil {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", s.Uploads))
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/search", s.searchProducts)
		r.Get("/{id}", s.getProduct)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", s.signUp)
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.With(s.requireUser).Get("/me", s.me)
		r.With(s.requireUser).Put("/me", s.updateMe)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(s.withCart)
		r.Get("/", s.getCart)
		r.Delete("/", s.clearCart)
		r.Get("/summary", s.cartSummary)
		r.Get("/suggestions", s.cartSuggestions)
		r.Post("/items", s.addItem)
		r.Delete("/items/{id}", s.removeItem)
		r.Post("/items/{id}/increment", s.incrementItem)
		r.Post("/items/{id}/decrement", s.decrementItem)
	})

	r.Get("/orders", s.requireUserFunc(s.myOrders))
	r.Post("/orders/track", s.trackOrder)

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireUser, s.requireAdmin)
		r.Post("/products", s.createProduct)
		r.Put("/products/{id}", s.updateProduct)
		r.Delete("/products/{id}", s.deleteProduct)
		r.Get("/orders", s.allOrders)
		r.Patch("/orders/{id}/status", s.updateOrderStatus)
		r.Get("/sales", s.salesReport)
	})

	return otelhttp.NewHandler(r, ServiceName,
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/healthz" }),
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return "HTTP " + req.Method + " " + req.URL.Path
		}),
	)
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps err onto a status code. Unexpected errors are logged and
// hidden behind a generic message.
func writeError(w http.ResponseWriter, err error) {
	if fields, ok := models.FieldErrors(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "validation failed", Fields: fields})
		return
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "not found"})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: err.Error()})
	case errors.Is(err, models.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "unauthorized"})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Message: "forbidden"})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Message: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "Something went wrong. Please try again."})
	}
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		verr := models.NewValidationError()
		verr.Add("body", "Malformed JSON body")
		return verr
	}
	return nil
}
