// internal/handlers/product.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/services"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products?category=vegetables&farmerId=...&inStock=true
func (h *ProductHandler) ListProducts(c *gin.Context) {
	category := models.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		utils.BadRequestResponse(c, "Invalid category filter", nil)
		return
	}

	products, err := h.productService.ListProducts(c.Request.Context(), services.ProductSearchParams{
		FarmerID: c.Query("farmerId"),
		Category: category,
		InStock:  c.Query("inStock") == "true",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)
	lo, hi := utils.SliceBounds(len(products), params)
	utils.PaginatedResponse(c, utils.CreatePaginationResult(products[lo:hi], int64(len(products)), params))
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	farmerID, _ := utils.GetUserIDFromContext(c)

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), farmerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), callerID, models.Role(callerRole), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	if err := h.productService.DeleteProduct(c.Request.Context(), callerID, models.Role(callerRole), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": true})
}

// POST /products/:id/images
func (h *ProductHandler) UploadImage(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, "Image file is required", nil)
		return
	}
	defer file.Close()

	result, err := h.storageService.UploadFile(file, header, services.ProductImageOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	updated, err := h.productService.UpdateProduct(c.Request.Context(), callerID, models.Role(callerRole), product.ID, &services.UpdateProductRequest{
		Images: append(product.Images, result.URL),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": updated,
		"upload":  result,
	})
}

// DELETE /products/:id/images
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	callerID, _ := utils.GetUserIDFromContext(c)
	callerRole, _ := utils.GetUserRoleFromContext(c)

	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Image URL is required", err.Error())
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	remaining := make([]string, 0, len(product.Images))
	for _, image := range product.Images {
		if image != req.URL {
			remaining = append(remaining, image)
		}
	}
	if len(remaining) == len(product.Images) {
		utils.NotFoundResponse(c, "Image")
		return
	}

	updated, err := h.productService.UpdateProduct(c.Request.Context(), callerID, models.Role(callerRole), product.ID, &services.UpdateProductRequest{
		Images: remaining,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if key := h.storageService.KeyFromURL(req.URL); key != "" {
		if err := h.storageService.DeleteFile(key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("Failed to delete image object")
		}
	}

	utils.SuccessResponse(c, gin.H{"product": updated})
}
