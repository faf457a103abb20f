package transport

import (
	"net/http"

	"agrilocal/internal/domain"
	"agrilocal/internal/middleware"
	"agrilocal/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddProductRequest represents the add-product form payload
type AddProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit        string  `json:"unit,omitempty"`
	Description string  `json:"description,omitempty"`
	Organic     bool    `json:"organic"`
	HarvestDate string  `json:"harvest_date,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
}

// ProductView represents a farmer's own product
type ProductView struct {
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
	Available   bool    `json:"available"`
}

func productView(p *domain.Product) ProductView {
	return ProductView{
		ID:          p.ID.String(),
		Name:        p.Name,
		Category:    string(p.Category),
		Price:       p.Price,
		Quantity:    p.Quantity,
		Unit:        string(p.Unit),
		Description: p.Description,
		Organic:     p.Organic,
		HarvestDate: p.HarvestDate,
		ImageURL:    p.ImageURL,
		Available:   p.Available,
	}
}

// ProductHandler handles HTTP requests for farmer listing management
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the farmer listing routes. All of them require
// an authenticated farmer.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, requireFarmer func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(requireFarmer)
		r.Post("/api/products", h.AddProduct)
		r.Get("/api/products/mine", h.MyProducts)
	})
}

// AddProduct handles new listing submissions
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	farmerID, ok := authenticatedProfileID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Add product validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.productService.AddProduct(r.Context(), farmerID, service.AddProductInput{
		Name:        req.Name,
		Category:    domain.Category(req.Category),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Unit:        domain.Unit(req.Unit),
		Description: req.Description,
		Organic:     req.Organic,
		HarvestDate: req.HarvestDate,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch err {
		case service.ErrInvalidCategory, service.ErrInvalidUnit, service.ErrInvalidPrice:
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		case service.ErrNotAFarmer:
			middleware.RespondWithError(w, http.StatusForbidden, "only farmers can list products")
		default:
			h.logger.Error("Add product failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add product")
		}
		return
	}

	h.logger.Info("Product listed successfully",
		zap.String("product_id", product.ID.String()),
		zap.String("farmer_id", farmerID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, productView(product))
}

// MyProducts returns the authenticated farmer's own listings
func (h *ProductHandler) MyProducts(w http.ResponseWriter, r *http.Request) {
	farmerID, ok := authenticatedProfileID(w, r, h.logger)
	if !ok {
		return
	}

	products, err := h.productService.MyProducts(r.Context(), farmerID)
	if err != nil {
		h.logger.Error("Failed to list own products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, productView(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}
