package auth

import (
	"testing"
	"time"

	"academy/config"

	"github.com/golang-jwt/jwt/v5"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Minute, Issuer: "academy"}
}

func TestGenerateAndParse(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := GenerateAccessToken(cfg, "user-123", "a@example.com", "STUDENT")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Identity() != "user-123" || claims.Role != "STUDENT" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseAccessToken_SubjectFallback(t *testing.T) {
	cfg := testJWTConfig()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "sub-only",
		Issuer:    "academy",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Identity() != "sub-only" {
		t.Errorf("Identity() = %q, want sub-only", claims.Identity())
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	cfg := testJWTConfig()
	good, _ := GenerateAccessToken(cfg, "u1", "", "STUDENT")

	otherSecret := *cfg
	otherSecret.AccessSecret = "different"
	forged, _ := GenerateAccessToken(&otherSecret, "u1", "", "ADMIN")

	expiredCfg := *cfg
	expiredCfg.AccessExpiry = -time.Minute
	expired, _ := GenerateAccessToken(&expiredCfg, "u1", "", "STUDENT")

	wrongIssuer := *cfg
	wrongIssuer.Issuer = "someone-else"
	foreign, _ := GenerateAccessToken(&wrongIssuer, "u1", "", "STUDENT")

	noSubject, _ := GenerateAccessToken(cfg, "", "", "STUDENT")

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": forged,
		"expired":      expired,
		"wrong issuer": foreign,
		"no subject":   noSubject,
		"truncated":    good[:len(good)-4],
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAccessToken(cfg, tok); err != ErrInvalidToken {
				t.Errorf("ParseAccessToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
