// internal/services/cart_service.go
package services

import (
	"context"
	"fmt"

	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type CartService struct {
	factory *database.Factory
}

type SetCartRequest struct {
	Items []OrderItemRequest `json:"items" validate:"dive"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func NewCartService(factory *database.Factory) *CartService {
	return &CartService{factory: factory}
}

// GetCart returns the customer's cart, materializing an empty one for
// customers who have never added an item.
func (s *CartService) GetCart(ctx context.Context, customerID string) (*models.Cart, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := db.FindCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.Cart{CustomerID: customerID, Items: []models.OrderItem{}}, nil
	}
	return cart, nil
}

// SetCart replaces the cart contents wholesale. Lines are priced from the
// current catalog; unknown or inactive products are rejected.
func (s *CartService) SetCart(ctx context.Context, customerID string, req *SetCartRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, db, req.Items)
	if err != nil {
		return nil, err
	}
	return db.UpdateCart(ctx, customerID, items)
}

// AddItem merges one line into the cart, summing quantities for a product
// already present.
func (s *CartService) AddItem(ctx context.Context, customerID string, req *AddCartItemRequest) (*models.Cart, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := db.FindCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	lines := []OrderItemRequest{{ProductID: req.ProductID, Quantity: req.Quantity}}
	if cart != nil {
		for _, item := range cart.Items {
			if item.ProductID == req.ProductID {
				lines[0].Quantity += item.Quantity
				continue
			}
			lines = append(lines, OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}

	items, err := s.resolveItems(ctx, db, lines)
	if err != nil {
		return nil, err
	}
	return db.UpdateCart(ctx, customerID, items)
}

// RemoveItem drops a product line from the cart. Removing a product that
// is not in the cart is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, customerID, productID string) (*models.Cart, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := db.FindCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &models.Cart{CustomerID: customerID, Items: []models.OrderItem{}}, nil
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	return db.UpdateCart(ctx, customerID, items)
}

func (s *CartService) ClearCart(ctx context.Context, customerID string) error {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return err
	}
	_, err = db.ClearCart(ctx, customerID)
	return err
}

func (s *CartService) resolveItems(ctx context.Context, db database.Adapter, lines []OrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := db.FindProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, line.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Name:      product.Name,
		})
	}
	return items, nil
}
