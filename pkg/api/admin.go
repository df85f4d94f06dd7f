package api

import (
	"encoding/json"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gitlab.connectwisedev.com/storefront-service/models"
	"gitlab.connectwisedev.com/storefront-service/pkg/admin"
	"gitlab.connectwisedev.com/storefront-service/pkg/sales"
)

const maxUploadMemory = 32 << 20

type statusRequest struct {
	Status string `json:"status"`
}

// readProductForm accepts either a JSON draft or a multipart form with
// "image" file parts.
func readProductForm(r *http.Request) (models.ProductDraft, []admin.Upload, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var d models.ProductDraft
		if err := decode(r, &d); err != nil {
			return d, nil, noop, err
		}
		return d, nil, noop, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		verr := models.NewValidationError()
		verr.Add("body", "Malformed form")
		return models.ProductDraft{}, nil, noop, verr
	}

	verr := models.NewValidationError()
	d := models.ProductDraft{
		Name:        r.FormValue("name"),
		Category:    models.Category(r.FormValue("category")),
		Description: r.FormValue("description"),
	}
	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			verr.Add("price", "Valid price is required")
		}
		d.Price = price
	}
	if v := strings.TrimSpace(r.FormValue("stock_quantity")); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			verr.Add("stock_quantity", "Stock quantity must be a whole number")
		}
		d.Stock = stock
	}
	if v := r.FormValue("sizes"); v != "" {
		if err := json.Unmarshal([]byte(v), &d.Sizes); err != nil {
			verr.Add("sizes", "Malformed size list")
		}
	}
	if urls := r.MultipartForm.Value["image_urls"]; len(urls) > 0 {
		d.ImageURLs = urls
	}
	if err := verr.OrNil(); err != nil {
		return d, nil, noop, err
	}

	var files []multipart.File
	cleanup := func() {
		for _, f := range files {
			f.Close()
		}
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("Error removing form files: %v", err)
		}
	}
	var uploads []admin.Upload
	for _, fh := range r.MultipartForm.File["image"] {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			verr.Add("image", "Failed to read image")
			return d, nil, noop, verr
		}
		files = append(files, f)
		uploads = append(uploads, admin.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return d, uploads, cleanup, nil
}

func (s *Server) saveProduct(w http.ResponseWriter, r *http.Request, id string, created int) {
	d, uploads, cleanup, err := readProductForm(r)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.Admin.Save(r.Context(), admin.ProductForm{ID: id, Draft: d}, uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, created, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	s.saveProduct(w, r, "", http.StatusCreated)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	s.saveProduct(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.Catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) allOrders(w http.ResponseWriter, r *http.Request) {
	list, err := s.Orders.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views(list))
}

func (s *Server) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decode(r, &in); err != nil {
		writeError(w, err)
		return
	}
	o, err := s.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView{Order: o, Summary: o.Describe()})
}

func (s *Server) salesReport(w http.ResponseWriter, r *http.Request) {
	days := sales.DefaultDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 365 {
			verr := models.NewValidationError()
			verr.Add("days", "days must be between 1 and 365")
			writeError(w, verr)
			return
		}
		days = n
	}

	list, err := s.Orders.All(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales.Build(list, s.Catalog.Products(), s.now(), days))
}
