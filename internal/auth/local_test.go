package auth

import (
	"context"
	"testing"
	"time"

	"finanzas/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
)

func TestLocalProvider(t *testing.T) {
	t.Run("sign_up_then_sign_in", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		provider := NewLocalProvider(db, "test-secret", time.Hour)

		alta, err := provider.SignUp(context.Background(), "ana@test.com", "secreto123", "Ana")
		testutil.AssertNoError(t, err)
		if !alta.EsNueva {
			t.Error("expected EsNueva on sign-up")
		}

		cuenta, err := provider.SignIn(context.Background(), "ana@test.com", "secreto123")
		testutil.AssertNoError(t, err)
		if cuenta.UID != alta.UID {
			t.Errorf("expected uid %s, got %s", alta.UID, cuenta.UID)
		}
		if cuenta.EsNueva {
			t.Error("sign-in flagged an existing account as new")
		}
	})

	t.Run("missing_and_wrong_credentials_look_alike", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		provider := NewLocalProvider(db, "test-secret", time.Hour)

		_, err := provider.SignUp(context.Background(), "ana@test.com", "secreto123", "")
		testutil.AssertNoError(t, err)

		_, err = provider.SignIn(context.Background(), "ana@test.com", "incorrecta")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		_, err = provider.SignIn(context.Background(), "nadie@test.com", "secreto123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("token_carries_uid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		provider := NewLocalProvider(db, "test-secret", time.Hour)

		cuenta, err := provider.SignUp(context.Background(), "ana@test.com", "secreto123", "")
		testutil.AssertNoError(t, err)

		claims := &jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(cuenta.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		testutil.AssertNoError(t, err)
		if claims.Subject != cuenta.UID {
			t.Errorf("expected subject %s, got %s", cuenta.UID, claims.Subject)
		}
		if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
			t.Error("expected a future expiry")
		}
	})

	t.Run("invalid_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		provider := NewLocalProvider(db, "test-secret", time.Hour)

		_, err := provider.SignUp(context.Background(), "no-es-un-correo", "secreto123", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
