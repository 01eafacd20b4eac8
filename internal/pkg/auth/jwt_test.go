package auth

import (
	"testing"
	"time"

	"github.com/your-org/stockledger-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Stock Ledger Backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-123",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateAccessToken(42, "ops@example.com", true)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := manager.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "ops@example.com" {
		t.Errorf("Email = %q, want ops@example.com", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	manager := NewJWTManager(testConfig())

	token, err := manager.GenerateRefreshToken(42, "ops@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("Refresh token accepted as access token")
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	manager := NewJWTManager(testConfig())
	token, err := manager.GenerateAccessToken(1, "ops@example.com", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	other := testConfig()
	other.JWT.Secret = "another-secret-key-that-is-long-enough"
	if _, err := NewJWTManager(other).ValidateToken(token); err == nil {
		t.Error("Token signed with different secret accepted")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", ""},
		{"abc123", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractTokenFromHeader(tc.header); got != tc.want {
			t.Errorf("ExtractTokenFromHeader(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
