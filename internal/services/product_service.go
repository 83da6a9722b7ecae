// internal/services/product_service.go
package services

import (
	"context"
	"fmt"

	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type ProductService struct {
	factory *database.Factory
}

type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=255"`
	Category    models.Category `json:"category" validate:"required,category"`
	Price       float64         `json:"price" validate:"required,min=0.01"`
	SKU         string          `json:"sku,omitempty"`
	Stock       int             `json:"stock" validate:"min=0"`
	Description string          `json:"description,omitempty"`
	Images      []string        `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Category    *models.Category `json:"category,omitempty" validate:"omitempty,category"`
	Price       *float64         `json:"price,omitempty" validate:"omitempty,min=0.01"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	Description *string          `json:"description,omitempty"`
	Images      []string         `json:"images,omitempty"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

type ProductSearchParams struct {
	FarmerID string
	Category models.Category
	InStock  bool
}

func NewProductService(factory *database.Factory) *ProductService {
	return &ProductService{factory: factory}
}

func (s *ProductService) CreateProduct(ctx context.Context, farmerID string, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	sku := req.SKU
	if sku == "" {
		generated, err := utils.GenerateSKU(string(req.Category))
		if err != nil {
			return nil, fmt.Errorf("failed to generate SKU: %w", err)
		}
		sku = generated
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		SKU:         sku,
		FarmerID:    farmerID,
		Stock:       req.Stock,
		Description: req.Description,
		Images:      req.Images,
		IsActive:    true,
	}

	created, err := db.CreateProduct(ctx, product)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSKUTaken
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (s *ProductService) ListProducts(ctx context.Context, params ProductSearchParams) ([]*models.Product, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}
	return db.FindProducts(ctx, database.ProductFilter{
		FarmerID: params.FarmerID,
		Category: params.Category,
		InStock:  params.InStock,
	})
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}
	product, err := db.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// UpdateProduct applies a partial update. Only the owning farmer or an
// admin may modify a product.
func (s *ProductService) UpdateProduct(ctx context.Context, callerID string, callerRole models.Role, id string, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := db.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if callerRole != models.RoleAdmin && existing.FarmerID != callerID {
		return nil, ErrForbidden
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Category != nil {
		updates["category"] = string(*req.Category)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.IsActive != nil {
		updates["isActive"] = *req.IsActive
	}

	product, err := db.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, callerID string, callerRole models.Role, id string) error {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return err
	}

	existing, err := db.FindProductByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if callerRole != models.RoleAdmin && existing.FarmerID != callerID {
		return ErrForbidden
	}

	deleted, err := db.DeleteProduct(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
