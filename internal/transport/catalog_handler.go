package transport

import (
	"net/http"

	"agrilocal/internal/domain"
	"agrilocal/internal/middleware"
	"agrilocal/internal/repository"
	"agrilocal/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingView represents a product listing with its farmer attribution.
// Farmer fields carry the unknown-farmer fallback so clients never see
// an empty attribution.
type ListingView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Description string  `json:"description,omitempty"`
	Organic     bool    `json:"organic"`
	HarvestDate string  `json:"harvest_date,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	FarmerName  string  `json:"farmer_name"`
	FarmName    string  `json:"farm_name"`
	FarmerPhone string  `json:"farmer_phone,omitempty"`
}

// BrowseResponse represents the filtered catalog returned to buyers
type BrowseResponse struct {
	Products []ListingView `json:"products"`
	Total    int           `json:"total"`
}

func listingView(l domain.ProductListing) ListingView {
	view := ListingView{
		ID:          l.Product.ID.String(),
		Name:        l.Product.Name,
		Category:    string(l.Product.Category),
		Price:       l.Product.Price,
		Quantity:    l.Product.Quantity,
		Unit:        string(l.Product.Unit),
		Description: l.Product.Description,
		Organic:     l.Product.Organic,
		HarvestDate: l.Product.HarvestDate,
		ImageURL:    l.Product.ImageURL,
		FarmerName:  l.Farmer.DisplayName(),
		FarmName:    l.Farmer.DisplayFarm(),
	}
	if l.Farmer.Resolved {
		view.FarmerPhone = l.Farmer.Phone
	}
	return view
}

// CatalogHandler handles HTTP requests for the buyer-facing catalog
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers the catalog routes. Patterns are registered flat
// because the farmer listing handler shares the /api/products prefix.
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	// Browsing is public; narrowing happens via query parameters
	r.Get("/api/products", h.Browse)

	// Contact and order actions require a logged-in profile
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/products/{id}/contact", h.ContactFarmer)
		r.Post("/api/products/{id}/order-request", h.RequestOrder)
	})
}

// Browse returns available listings narrowed by search term and category.
// Both parameters are optional; absent values mean no narrowing.
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
	searchTerm := r.URL.Query().Get("search")
	category := r.URL.Query().Get("category")

	listings, err := h.catalogService.Browse(r.Context(), searchTerm, category)
	if err != nil {
		h.logger.Error("Browse failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, listingView(l))
	}

	middleware.RespondWithJSON(w, http.StatusOK, BrowseResponse{
		Products: views,
		Total:    len(views),
	})
}

// ContactFarmer returns the contact notification for a listing's farmer
func (h *CatalogHandler) ContactFarmer(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromPath(w, r)
	if !ok {
		return
	}

	notification, err := h.catalogService.ContactFarmer(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Contact farmer failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to contact farmer")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notification)
}

// RequestOrder acknowledges an order request for a listing
func (h *CatalogHandler) RequestOrder(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productIDFromPath(w, r)
	if !ok {
		return
	}

	notification, err := h.catalogService.RequestOrder(r.Context(), productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Order request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to send order request")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, notification)
}

func (h *CatalogHandler) productIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Debug("Invalid product ID", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, false
	}
	return productID, true
}
