// Product HTTP handlers.
//
// This file exposes the REST endpoints for the product catalog:
//   - GET    /products/       (active listing, paginated)
//   - POST   /products/       (create, multipart with images)
//   - GET    /products/:id/   (detail)
//   - PUT    /products/:id/   (update)
//   - PATCH  /products/:id/   (partial update)
//   - DELETE /products/:id/   (soft delete)
//
// Listings switch projection by client platform: web clients get the raw
// per-locale fields, mobile clients get the localized detail shape.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oshxona/go-food-backend/internal/domain"
	"github.com/oshxona/go-food-backend/internal/http/middleware"
	"github.com/oshxona/go-food-backend/internal/services"
	"github.com/oshxona/go-food-backend/internal/utils"
)

// CreateProductRequest is the payload for creating a product. It binds
// from multipart form fields (images travel alongside) or plain JSON.
type CreateProductRequest struct {
	TitleUz       string `form:"title_uz"       json:"title_uz"`
	TitleRu       string `form:"title_ru"       json:"title_ru"`
	TitleEn       string `form:"title_en"       json:"title_en"`
	DescriptionUz string `form:"description_uz" json:"description_uz"`
	DescriptionRu string `form:"description_ru" json:"description_ru"`
	DescriptionEn string `form:"description_en" json:"description_en"`

	Price           float64 `form:"price"            json:"price"`
	Discount        int     `form:"discount"         json:"discount"`
	Category        string  `form:"category"         json:"category"`
	MeasurementType string  `form:"measurement_type" json:"measurement_type"`
}

// UpdateProductRequest is the partial-update payload; absent fields stay
// untouched.
type UpdateProductRequest struct {
	TitleUz       *string `form:"title_uz"       json:"title_uz"`
	TitleRu       *string `form:"title_ru"       json:"title_ru"`
	TitleEn       *string `form:"title_en"       json:"title_en"`
	DescriptionUz *string `form:"description_uz" json:"description_uz"`
	DescriptionRu *string `form:"description_ru" json:"description_ru"`
	DescriptionEn *string `form:"description_en" json:"description_en"`

	Price           *float64 `form:"price"            json:"price"`
	Discount        *int     `form:"discount"         json:"discount"`
	Category        *string  `form:"category"         json:"category"`
	MeasurementType *string  `form:"measurement_type" json:"measurement_type"`
}

// ListProducts godoc
// @ID          listProducts
// @Summary     List active products
// @Description Returns one page of active products. Web clients (X-Device-Type: WEB) receive the raw per-locale projection; other clients receive fields localized per Accept-Language.
// @Tags        Products
// @Produce     json
// @Param       page       query  int     false "Page number (1-based)"
// @Param       page_size  query  int     false "Items per page"
// @Param       X-Device-Type    header string false "Client platform" Enums(ANDROID, IOS, WEB)
// @Param       Accept-Language  header string false "Response language"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /products/ [get]
func (h *Handlers) ListProducts(c *gin.Context) {
	page, pageSize := pageParams(c)

	products, media, total, err := h.products.List(c.Request.Context(), page, pageSize)
	if err != nil {
		failErr(c, err)
		return
	}

	loc := middleware.LocaleFrom(c)
	web := middleware.DeviceTypeFrom(c) == domain.DeviceWeb

	results := make([]gin.H, len(products))
	for i := range products {
		p := &products[i]
		if web {
			results[i] = productWebItem(h.store, p, media[p.ID])
		} else {
			results[i] = productDetail(h.store, loc, p, media[p.ID])
		}
	}

	paged(c, "products retrieved", results,
		utils.NewPageMeta(c.Request.URL.Path, page, pageSize, total))
}

// CreateProduct godoc
// @ID          createProduct
// @Summary     Create a product
// @Description Creates a product with optional image uploads. Blank ru/en locale fields default to the uz value.
// @Tags        Products
// @Accept      mpfd
// @Produce     json
// @Param       body body handlers.CreateProductRequest true "Product payload"
// @Success     201 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Router      /products/ [post]
func (h *Handlers) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	media, okUpload := h.collectUploads(c, string(domain.OwnerProduct))
	if !okUpload {
		return
	}

	p, err := h.products.Create(c.Request.Context(), services.ProductInput{
		TitleUz:         req.TitleUz,
		TitleRu:         req.TitleRu,
		TitleEn:         req.TitleEn,
		DescriptionUz:   req.DescriptionUz,
		DescriptionRu:   req.DescriptionRu,
		DescriptionEn:   req.DescriptionEn,
		Price:           req.Price,
		Discount:        req.Discount,
		Category:        req.Category,
		MeasurementType: req.MeasurementType,
	}, media)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusCreated, "product created",
		productDetail(h.store, middleware.LocaleFrom(c), p, media))
}

// GetProduct godoc
// @ID          getProduct
// @Summary     Retrieve a product
// @Description Fetches one product by id, including soft-deleted rows.
// @Tags        Products
// @Produce     json
// @Param       id path int true "Product ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /products/{id}/ [get]
func (h *Handlers) GetProduct(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	p, media, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "product retrieved",
		productDetail(h.store, middleware.LocaleFrom(c), p, media))
}

// UpdateProduct godoc
// @ID          updateProduct
// @Summary     Update a product
// @Description Applies a partial update. Supplying images replaces the whole media set.
// @Tags        Products
// @Accept      mpfd
// @Produce     json
// @Param       id   path int true "Product ID"
// @Param       body body handlers.UpdateProductRequest true "Partial payload"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     400 {object} handlers.ErrorResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /products/{id}/ [put]
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", map[string]string{"body": err.Error()})
		return
	}

	media, okUpload := h.collectUploads(c, string(domain.OwnerProduct))
	if !okUpload {
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, services.ProductUpdate{
		TitleUz:         req.TitleUz,
		TitleRu:         req.TitleRu,
		TitleEn:         req.TitleEn,
		DescriptionUz:   req.DescriptionUz,
		DescriptionRu:   req.DescriptionRu,
		DescriptionEn:   req.DescriptionEn,
		Price:           req.Price,
		Discount:        req.Discount,
		Category:        req.Category,
		MeasurementType: req.MeasurementType,
	}, media)
	if err != nil {
		failErr(c, err)
		return
	}

	_, current, err := h.products.Get(c.Request.Context(), p.ID)
	if err != nil {
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, "product updated",
		productDetail(h.store, middleware.LocaleFrom(c), p, current))
}

// DeleteProduct godoc
// @ID          deleteProduct
// @Summary     Soft-delete a product
// @Description Marks the product inactive. The row stays retrievable by id.
// @Tags        Products
// @Produce     json
// @Param       id path int true "Product ID"
// @Success     200 {object} handlers.SuccessResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /products/{id}/ [delete]
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, okID := idParam(c)
	if !okID {
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "product deleted", nil)
}
