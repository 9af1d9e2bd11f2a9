package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iFredsz/nikhu-booking/internal/domain"
	"github.com/iFredsz/nikhu-booking/internal/repository"
)

type CatalogHandler struct {
	catalog  *repository.CatalogRepo
	vouchers *repository.VoucherRepo
}

func NewCatalogHandler(catalog *repository.CatalogRepo, vouchers *repository.VoucherRepo) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, vouchers: vouchers}
}

// GET /v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	out, err := h.catalog.ListProducts(c.Request.Context(), c.Query("all") == "")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

// POST /v1/products (ADMIN)
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var in struct {
		Label     string `json:"label" binding:"required"`
		BasePrice int64  `json:"base_price" binding:"required"`
		MaxPeople int    `json:"max_people"`
		Active    bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &domain.Product{Label: in.Label, BasePrice: in.BasePrice, MaxPeople: in.MaxPeople, Active: in.Active}
	if err := h.catalog.CreateProduct(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PUT /v1/products/:id (ADMIN)
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var in domain.Product
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.ID = c.Param("id")
	if err := h.catalog.UpdateProduct(c.Request.Context(), &in); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, in)
}

// DELETE /v1/products/:id (ADMIN)
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/addons
func (h *CatalogHandler) ListAddOns(c *gin.Context) {
	out, err := h.catalog.ListAddOns(c.Request.Context(), c.Query("all") == "")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"addons": out})
}

// POST /v1/addons (ADMIN)
func (h *CatalogHandler) CreateAddOn(c *gin.Context) {
	var in struct {
		Name   string           `json:"name" binding:"required"`
		Price  int64            `json:"price" binding:"required"`
		Kind   domain.AddOnKind `json:"kind" binding:"required"`
		Active bool             `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.Kind != domain.AddOnFlat && in.Kind != domain.AddOnPerSession {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be flat or per_session"})
		return
	}
	a := &domain.AddOn{Name: in.Name, Price: in.Price, Kind: in.Kind, Active: in.Active}
	if err := h.catalog.CreateAddOn(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

// DELETE /v1/addons/:id (ADMIN)
func (h *CatalogHandler) DeleteAddOn(c *gin.Context) {
	if err := h.catalog.DeleteAddOn(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /v1/vouchers/check
func (h *CatalogHandler) CheckVoucher(c *gin.Context) {
	var in struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := h.vouchers.ByCode(c.Request.Context(), in.Code)
	if err != nil {
		if errors.Is(err, repository.ErrVoucherNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "voucher not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if !v.Usable() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "voucher not usable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": v.Code, "discount": v.DiscountAmount})
}

// POST /v1/vouchers (ADMIN)
func (h *CatalogHandler) CreateVoucher(c *gin.Context) {
	var in struct {
		Code           string `json:"code" binding:"required"`
		DiscountAmount int64  `json:"discount_amount" binding:"required"`
		UsageLimit     int    `json:"usage_limit" binding:"required"`
		Active         bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v := &domain.Voucher{Code: in.Code, DiscountAmount: in.DiscountAmount, UsageLimit: in.UsageLimit, Active: in.Active}
	if err := h.vouchers.Create(c.Request.Context(), v); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, v)
}

// DELETE /v1/vouchers/:code (ADMIN)
func (h *CatalogHandler) DeleteVoucher(c *gin.Context) {
	if err := h.vouchers.Delete(c.Request.Context(), c.Param("code")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/portfolio
func (h *CatalogHandler) ListPortfolio(c *gin.Context) {
	out, err := h.catalog.ListPortfolio(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"portfolio": out})
}

// POST /v1/portfolio (ADMIN)
func (h *CatalogHandler) CreatePortfolioItem(c *gin.Context) {
	var in struct {
		Title    string `json:"title" binding:"required"`
		ImageURL string `json:"image_url" binding:"required"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &domain.PortfolioItem{Title: in.Title, ImageURL: in.ImageURL, Category: in.Category}
	if err := h.catalog.CreatePortfolioItem(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DELETE /v1/portfolio/:id (ADMIN)
func (h *CatalogHandler) DeletePortfolioItem(c *gin.Context) {
	if err := h.catalog.DeletePortfolioItem(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/testimonials
func (h *CatalogHandler) ListTestimonials(c *gin.Context) {
	out, err := h.catalog.ListTestimonials(c.Request.Context(), c.Query("all") == "")
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"testimonials": out})
}

// POST /v1/testimonials
func (h *CatalogHandler) CreateTestimonial(c *gin.Context) {
	var in struct {
		Author  string `json:"author" binding:"required"`
		Message string `json:"message" binding:"required"`
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := &domain.Testimonial{Author: in.Author, Message: in.Message, Rating: in.Rating}
	if err := h.catalog.CreateTestimonial(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

// PUT /v1/testimonials/:id (ADMIN — approve/edit)
func (h *CatalogHandler) UpdateTestimonial(c *gin.Context) {
	var in domain.Testimonial
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.ID = c.Param("id")
	if err := h.catalog.UpdateTestimonial(c.Request.Context(), &in); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, in)
}

// DELETE /v1/testimonials/:id (ADMIN)
func (h *CatalogHandler) DeleteTestimonial(c *gin.Context) {
	if err := h.catalog.DeleteTestimonial(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
