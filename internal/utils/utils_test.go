// internal/utils/utils_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmfresh/farm-backend/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	token, err := GenerateJWT("42", "shopper", "customer", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "shopper", claims.Username)
	assert.Equal(t, "customer", claims.Role)

	_, err = ValidateJWT("not.a.token")
	assert.Error(t, err)

	// Tokens signed with a different secret are rejected.
	SetJWTSecret("rotated-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	token, err := GenerateRefreshToken("42", 24)
	require.NoError(t, err)

	userID, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)

	// Access tokens are not accepted as refresh tokens.
	access, err := GenerateJWT("42", "shopper", "customer", 1)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestStrongPasswordValidation(t *testing.T) {
	type creds struct {
		Password string `validate:"strong_password"`
	}

	for _, password := range []string{"Passw0rdOk", "Al1mentary", "XyZ12345"} {
		assert.NoError(t, ValidateStruct(creds{Password: password}), password)
	}
	for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
		assert.Error(t, ValidateStruct(creds{Password: password}), password)
	}
}

func TestUsernameValidation(t *testing.T) {
	type account struct {
		Username string `validate:"username"`
	}

	assert.NoError(t, ValidateStruct(account{Username: "farm_hand_7"}))
	assert.Error(t, ValidateStruct(account{Username: "ab"}))
	assert.Error(t, ValidateStruct(account{Username: "has spaces"}))
	assert.Error(t, ValidateStruct(account{Username: "dotted.name"}))
}

func TestRoleAndCategoryValidation(t *testing.T) {
	type payload struct {
		Role     models.Role     `validate:"role"`
		Category models.Category `validate:"category"`
	}

	assert.NoError(t, ValidateStruct(payload{Role: models.RoleFarmer, Category: models.CategoryHerbs}))
	assert.Error(t, ValidateStruct(payload{Role: "superuser", Category: models.CategoryHerbs}))
	assert.Error(t, ValidateStruct(payload{Role: models.RoleFarmer, Category: "gadgets"}))
}

func TestGenerateSKU(t *testing.T) {
	sku, err := GenerateSKU("vegetables")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sku, "VEG-"), sku)

	other, err := GenerateSKU("vegetables")
	require.NoError(t, err)
	assert.NotEqual(t, sku, other)
}

func TestSliceBounds(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		params PaginationParams
		lo, hi int
	}{
		{"first page", 10, PaginationParams{Page: 1, Limit: 3}, 0, 3},
		{"middle page", 10, PaginationParams{Page: 2, Limit: 3}, 3, 6},
		{"partial last page", 10, PaginationParams{Page: 4, Limit: 3}, 9, 10},
		{"past the end", 10, PaginationParams{Page: 9, Limit: 3}, 10, 10},
		{"empty slice", 0, PaginationParams{Page: 1, Limit: 20}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := SliceBounds(tt.n, tt.params)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}
