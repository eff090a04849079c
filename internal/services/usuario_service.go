package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/watch"
)

// usuarioService handles local account state. The store is single-session:
// at most one user is active at any time.
type usuarioService struct {
	db  *gorm.DB
	hub *watch.Hub
}

// NewUsuarioService creates a new UsuarioServicer.
func NewUsuarioService(db *gorm.DB, hub *watch.Hub) UsuarioServicer {
	return &usuarioService{db: db, hub: hub}
}

// ActivarUsuario upserts the user record and makes it the single active
// session. Deactivating every other user and activating this one happen in
// one transaction so the single-active invariant holds at every commit.
func (s *usuarioService) ActivarUsuario(u *models.Usuario) (*models.Usuario, error) {
	if u.UID == "" || u.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "uid and email are required")
	}
	u.Email = strings.ToLower(u.Email)
	u.IsActive = true

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Usuario{}).
			Where("uid <> ?", u.UID).
			Update("is_active", false).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Save(u).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUsuarioActivo returns the currently active user.
func (s *usuarioService) GetUsuarioActivo() (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.db.Where("is_active = ?", true).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUsuarioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &usuario, nil
}

// GetUsuarioByUID retrieves a user by provider-assigned uid.
func (s *usuarioService) GetUsuarioByUID(uid string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.db.Where("uid = ?", uid).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUsuarioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &usuario, nil
}

// GetUsuarioByEmail retrieves a user by email.
func (s *usuarioService) GetUsuarioByEmail(email string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUsuarioNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &usuario, nil
}

// DesactivarTodos clears the active session (sign-out).
func (s *usuarioService) DesactivarTodos() error {
	if err := s.db.Model(&models.Usuario{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return nil
}

// DeleteUsuario removes the user and everything it owns: contributions,
// savings goals, transactions and custom categories, in dependency order so
// no RESTRICT constraint fires. Global default categories stay.
func (s *usuarioService) DeleteUsuario(uid string) error {
	usuario, err := s.GetUsuarioByUID(uid)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("usuario_id = ?", uid).
			Delete(&models.AporteAhorro{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Where("usuario_id = ?", uid).
			Delete(&models.Ahorro{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Where("usuario_id = ?", uid).
			Delete(&models.Transaccion{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Where("usuario_id = ? AND es_default = ?", uid, false).
			Delete(&models.Categoria{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Delete(usuario).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(
		watch.TransaccionesDe(uid),
		watch.AhorrosDe(uid),
		watch.Categorias,
	)
	return nil
}
