// internal/services/order_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/utils"
)

type OrderService struct {
	factory *database.Factory
	payment *PaymentService
}

type OrderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest      `json:"items,omitempty" validate:"omitempty,dive"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type CheckoutResponse struct {
	Order   *models.Order          `json:"order"`
	Payment *PaymentIntentResponse `json:"payment,omitempty"`
}

func NewOrderService(factory *database.Factory, payment *PaymentService) *OrderService {
	return &OrderService{factory: factory, payment: payment}
}

// CreateOrder places an order for the customer. When the request carries no
// explicit items the customer's cart is checked out and cleared. Item
// prices are resolved from the catalog at order time, never trusted from
// the client, and stock is decremented per line.
func (s *OrderService) CreateOrder(ctx context.Context, customerID string, req *CreateOrderRequest) (*CheckoutResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	requested := req.Items
	fromCart := false
	if len(requested) == 0 {
		cart, err := db.FindCart(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if cart == nil || len(cart.Items) == 0 {
			return nil, ErrEmptyCart
		}
		for _, item := range cart.Items {
			requested = append(requested, OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		fromCart = true
	}

	// Aggregate duplicate lines first, so a product split across lines
	// cannot slip past the stock check.
	quantities := make(map[string]int, len(requested))
	productIDs := make([]string, 0, len(requested))
	for _, line := range requested {
		if _, seen := quantities[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		quantities[line.ProductID] += line.Quantity
	}

	items := make([]models.OrderItem, 0, len(productIDs))
	stockBefore := make(map[string]int, len(productIDs))
	var total float64
	for _, productID := range productIDs {
		product, err := db.FindProductByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
		}
		quantity := quantities[productID]
		if product.Stock < quantity {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
		}
		stockBefore[productID] = product.Stock
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Price:     product.Price,
			Name:      product.Name,
		})
		total += product.Price * float64(quantity)
	}

	order := &models.Order{
		CustomerID:      customerID,
		Items:           items,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		OrderDate:       time.Now().UTC(),
	}

	created, err := db.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Stock comes off only after the order exists, so a failed create
	// never strands decremented inventory.
	for _, item := range items {
		remaining := stockBefore[item.ProductID] - item.Quantity
		if remaining < 0 {
			remaining = 0
		}
		if _, err := db.UpdateProduct(ctx, item.ProductID, map[string]any{"stock": remaining}); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id":   created.ID,
				"product_id": item.ProductID,
			}).Warn("Failed to decrement stock for order line")
		}
	}

	if fromCart {
		if _, err := db.ClearCart(ctx, customerID); err != nil {
			logrus.WithError(err).WithField("customer_id", customerID).Warn("Failed to clear cart after checkout")
		}
	}

	resp := &CheckoutResponse{Order: created}
	if s.payment != nil && s.payment.Enabled() {
		intent, err := s.payment.CreatePaymentIntent(customerID, created)
		if err != nil {
			logrus.WithError(err).WithField("order_id", created.ID).Warn("Failed to create payment intent")
		} else {
			resp.Payment = intent
		}
	}
	return resp, nil
}

// ListOrders returns the caller's orders; admins and agents see every
// order, optionally narrowed by customer or status.
func (s *OrderService) ListOrders(ctx context.Context, callerID string, callerRole models.Role, customerID string, status models.OrderStatus) ([]*models.Order, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	filter := database.OrderFilter{CustomerID: customerID, Status: status}
	if callerRole != models.RoleAdmin && callerRole != models.RoleAgent {
		filter.CustomerID = callerID
	}
	return db.FindOrders(ctx, filter)
}

func (s *OrderService) GetOrder(ctx context.Context, callerID string, callerRole models.Role, id string) (*models.Order, error) {
	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	order, err := db.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if callerRole != models.RoleAdmin && callerRole != models.RoleAgent && order.CustomerID != callerID {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateStatus advances an order along the fulfillment state machine.
// Customers may only cancel their own pending or confirmed orders; farmers,
// agents and admins may apply any legal transition. Cancelling restocks
// every line and delivery stamps the delivery date.
func (s *OrderService) UpdateStatus(ctx context.Context, callerID string, callerRole models.Role, id string, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, next)
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return nil, err
	}

	order, err := db.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	isStaff := callerRole == models.RoleAdmin || callerRole == models.RoleAgent || callerRole == models.RoleFarmer
	if !isStaff {
		if order.CustomerID != callerID {
			return nil, ErrForbidden
		}
		if next != models.OrderStatusCancelled {
			return nil, ErrForbidden
		}
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	updates := map[string]any{"status": string(next)}
	if next == models.OrderStatusDelivered {
		updates["deliveryDate"] = time.Now().UTC()
	}

	updated, err := db.UpdateOrder(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if next == models.OrderStatusCancelled {
		s.restock(ctx, db, updated)
	}
	return updated, nil
}

func (s *OrderService) restock(ctx context.Context, db database.Adapter, order *models.Order) {
	for _, item := range order.Items {
		product, err := db.FindProductByID(ctx, item.ProductID)
		if err != nil || product == nil {
			continue
		}
		if _, err := db.UpdateProduct(ctx, item.ProductID, map[string]any{
			"stock": product.Stock + item.Quantity,
		}); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"order_id":   order.ID,
				"product_id": item.ProductID,
			}).Warn("Failed to restock cancelled order line")
		}
	}
}

func (s *OrderService) DeleteOrder(ctx context.Context, callerRole models.Role, id string) error {
	if callerRole != models.RoleAdmin {
		return ErrForbidden
	}

	db, err := s.factory.Get(ctx)
	if err != nil {
		return err
	}

	deleted, err := db.DeleteOrder(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
