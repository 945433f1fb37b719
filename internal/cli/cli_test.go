package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"academy/config"
	"academy/internal/auth"
	"academy/internal/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const testSecret = "cli-test-secret"

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "academy.db"))
	t.Setenv("JWT_ACCESS_SECRET", testSecret)
	t.Setenv("PAYMENT_PROVIDER", "stub")
	t.Setenv("ENVIRONMENT", "test")
}

// execute runs the command tree once and restores every flag to its default afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func TestCommands(t *testing.T) {
	setupEnv(t)

	steps := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{"migrate", []string{"migrate"}, "schema up to date", nil},
		{"balance of new user", []string{"balance", "u1"}, "0", nil},
		{"grant", []string{"grant", "u1", "25", "--reference", "promo-1", "--memo", "welcome"}, "granted 25 tokens to u1, balance 25", nil},
		{"repeat grant", []string{"grant", "u1", "25", "--reference", "promo-1"}, "already granted", nil},
		{"reference reused for another user", []string{"grant", "u2", "25", "--reference", "promo-1"}, "", domain.ErrReferenceConflict},
		{"grant without reference", []string{"grant", "u1", "5"}, "balance 30", nil},
		{"zero grant", []string{"grant", "u1", "0"}, "", domain.ErrInvalidAmount},
		{"balance after grants", []string{"balance", "u1"}, "30", nil},
		{"other user untouched", []string{"balance", "u2"}, "0", nil},
	}
	for _, st := range steps {
		out, err := execute(t, st.args...)
		if st.wantErr != nil {
			if err == nil || !strings.Contains(err.Error(), st.wantErr.Error()) {
				t.Fatalf("%s: error = %v, want %v", st.name, err, st.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", st.name, err)
		}
		if !strings.Contains(out, st.want) {
			t.Errorf("%s: output = %q, want it to contain %q", st.name, out, st.want)
		}
	}
}

func TestGrant_RejectsBadArguments(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"non-numeric amount", []string{"grant", "u1", "ten"}},
		{"missing amount", []string{"grant", "u1"}},
		{"balance without user", []string{"balance"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v succeeded, want an error", tt.args)
			}
		})
	}
}

func TestToken(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "token", "admin-7", "--role", domain.RoleAdmin, "--email", "ops@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	cfg := &config.JWTConfig{AccessSecret: testSecret, AccessExpiry: time.Minute, Issuer: "academy"}
	claims, err := auth.ParseAccessToken(cfg, strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Identity() != "admin-7" || claims.Role != domain.RoleAdmin || claims.Email != "ops@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	out, err = execute(t, "token", "u1")
	if err != nil {
		t.Fatalf("token with defaults: %v", err)
	}
	claims, err = auth.ParseAccessToken(cfg, strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Role != domain.RoleStudent {
		t.Errorf("default role = %q, want %q", claims.Role, domain.RoleStudent)
	}
}
