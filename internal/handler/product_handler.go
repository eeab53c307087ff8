package handler

import (
	"net/http"

	"restaurant-orders/internal/model"
	"restaurant-orders/internal/service"
	"restaurant-orders/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// imageField is the multipart field carrying a product image.
const imageField = "imagen"

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products, optionally filtered by ?categoria=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("categoria"); category != "" {
		writeJSON(w, http.StatusOK, h.service.ListByCategory(r.Context(), category))
		return
	}
	writeJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if product == nil {
		respondError(w, model.ErrProductNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Categories handles GET /api/categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Categories(r.Context()))
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.ProductInput
	if err := decodeJSON(w, r, &input); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PATCH /api/products/{id}. Omitted fields, including imagenUrl, keep their
// stored values.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, err, h.logger)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Update(r.Context(), id, patch); err != nil {
		respondError(w, err, h.logger)
		return
	}

	product := h.service.Get(r.Context(), id)
	if product == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage handles POST /api/products/images with a multipart "imagen" file.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxImageSize+maxBodyBytes)
	if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "La imagen no es válida o supera 5 MB", h.logger)
		return
	}

	file, header, err := r.FormFile(imageField)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Falta el archivo de imagen", h.logger)
		return
	}
	defer file.Close()

	if header.Size == 0 {
		respondError(w, model.ErrImageEmpty, h.logger)
		return
	}

	url, err := h.service.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: url})
}
