// internal/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfresh/farm-backend/internal/config"
	"github.com/farmfresh/farm-backend/internal/database"
	"github.com/farmfresh/farm-backend/internal/models"
	"github.com/farmfresh/farm-backend/internal/services"
)

func handlerConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
		Database: config.DatabaseConfig{
			Type:      database.BackendSQLite,
			Path:      filepath.Join(t.TempDir(), "handlers.db"),
			TimeoutMS: 1000,
		},
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
}

// identify injects the auth context the middleware would normally set.
func identify(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", string(role))
		c.Next()
	}
}

func jsonRequest(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRemoveImage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := handlerConfig(t)
	factory := database.NewFactory(cfg.Database)
	t.Cleanup(func() { factory.Disconnect(context.Background()) })

	auth := services.NewAuthService(factory, cfg)
	products := services.NewProductService(factory)
	storage, err := services.NewStorageService(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	reg, err := auth.Register(ctx, &services.RegisterRequest{
		Username: "grower",
		Email:    "grower@example.com",
		Password: "Passw0rdOk",
		Role:     models.RoleFarmer,
	})
	require.NoError(t, err)
	farmer := reg.User

	kept := "http://localhost:8080/uploads/products/kept.jpg"
	removed := "http://localhost:8080/uploads/products/removed.jpg"
	product, err := products.CreateProduct(ctx, farmer.ID, &services.CreateProductRequest{
		Name:     "Peaches",
		Category: models.CategoryFruits,
		Price:    3.25,
		Stock:    4,
		Images:   []string{kept, removed},
	})
	require.NoError(t, err)

	handler := NewProductHandler(products, storage)
	engine := gin.New()
	engine.DELETE("/products/:id/images", identify(farmer.ID, models.RoleFarmer), handler.RemoveImage)

	rec := jsonRequest(t, engine, http.MethodDelete, "/products/"+product.ID+"/images", gin.H{"url": removed})
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept}, updated.Images)

	rec = jsonRequest(t, engine, http.MethodDelete, "/products/"+product.ID+"/images", gin.H{"url": removed})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefundPaymentRequiresStripeKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := handlerConfig(t)

	handler := NewPaymentHandler(services.NewPaymentService(cfg))
	engine := gin.New()
	engine.POST("/payments/refund", identify("1", models.RoleAdmin), handler.RefundPayment)

	rec := jsonRequest(t, engine, http.MethodPost, "/payments/refund", gin.H{
		"paymentIntentId": "pi_123",
		"amount":          12.50,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
