package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/uuid"
	"finanzas/internal/validator"
)

// credenciales is the validated sign-in/sign-up input.
type credenciales struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
}

// LocalProvider is the bundled email auth provider. Credentials live in
// the local store; the issued JWT is the bearer token for remote document
// store calls.
type LocalProvider struct {
	db      *gorm.DB
	secret  []byte
	expires time.Duration
}

// NewLocalProvider creates a LocalProvider signing tokens with secret.
func NewLocalProvider(db *gorm.DB, secret string, expires time.Duration) *LocalProvider {
	return &LocalProvider{db: db, secret: []byte(secret), expires: expires}
}

// SignUp registers a new email account and returns it with EsNueva set.
func (p *LocalProvider) SignUp(_ context.Context, email, password, displayName string) (*Cuenta, error) {
	if err := validator.Struct(credenciales{Email: email, Password: password}); err != nil {
		return nil, err
	}

	var count int64
	if err := p.db.Model(&models.Usuario{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	usuario := &models.Usuario{
		UID:          uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		Proveedor:    models.ProveedorEmail,
		PasswordHash: string(hash),
	}
	if err := p.db.Create(usuario).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	token, err := p.issueToken(usuario.UID)
	if err != nil {
		return nil, err
	}

	return &Cuenta{
		UID:         usuario.UID,
		Email:       usuario.Email,
		DisplayName: usuario.DisplayName,
		Proveedor:   models.ProveedorEmail,
		Token:       token,
		EsNueva:     true,
	}, nil
}

// SignIn authenticates an existing email account. A missing account and a
// wrong password both come back as INVALID_CREDENTIALS.
func (p *LocalProvider) SignIn(_ context.Context, email, password string) (*Cuenta, error) {
	if email == "" || password == "" {
		return nil, apperrors.ErrInvalidCredentials
	}

	var usuario models.Usuario
	if err := p.db.Where("email = ?", email).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := p.issueToken(usuario.UID)
	if err != nil {
		return nil, err
	}

	return &Cuenta{
		UID:         usuario.UID,
		Email:       usuario.Email,
		DisplayName: usuario.DisplayName,
		PhotoURL:    usuario.PhotoURL,
		Proveedor:   usuario.Proveedor,
		Token:       token,
	}, nil
}

// SignOut is a no-op for the local provider; session state is handled by
// the SessionManager.
func (p *LocalProvider) SignOut(context.Context, string) error {
	return nil
}

func (p *LocalProvider) issueToken(uid string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(p.expires)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return token, nil
}
