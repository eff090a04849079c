package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/validator"
	"finanzas/internal/watch"
)

// ahorroService handles savings goals and the atomic contribution
// operation that keeps monto_actual equal to the sum of all aportes.
type ahorroService struct {
	db   *gorm.DB
	hub  *watch.Hub
	push RemotePusher
}

// NewAhorroService creates a new AhorroServicer. push may be nil to
// disable remote sync.
func NewAhorroService(db *gorm.DB, hub *watch.Hub, push RemotePusher) AhorroServicer {
	return &ahorroService{db: db, hub: hub, push: push}
}

// CreateAhorro creates a savings goal with a zero running total.
func (s *ahorroService) CreateAhorro(in NuevoAhorro) (*models.Ahorro, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	ahorro := &models.Ahorro{
		Nombre:      in.Nombre,
		MetaMonto:   in.MetaMonto,
		MontoActual: 0,
		UsuarioID:   in.UsuarioID,
	}

	if err := s.db.Create(ahorro).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.hub.Publish(watch.AhorrosDe(in.UsuarioID))
	if s.push != nil {
		s.push.PushAhorro(ahorro)
	}
	return ahorro, nil
}

// SaveAhorro inserts the goal, replacing any existing row with the same id
// (sync import path; no remote push).
func (s *ahorroService) SaveAhorro(a *models.Ahorro) error {
	if err := s.db.Save(a).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	s.hub.Publish(watch.AhorrosDe(a.UsuarioID))
	return nil
}

// GetAhorros retrieves the user's goals, newest first.
func (s *ahorroService) GetAhorros(usuarioID string) ([]models.Ahorro, error) {
	var ahorros []models.Ahorro
	if err := s.db.Where("usuario_id = ?", usuarioID).
		Order("id DESC").
		Find(&ahorros).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return ahorros, nil
}

// GetAhorroByID retrieves a goal by id.
func (s *ahorroService) GetAhorroByID(id string) (*models.Ahorro, error) {
	var ahorro models.Ahorro
	if err := s.db.Where("id = ?", id).First(&ahorro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAhorroNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &ahorro, nil
}

// AgregarAporte records a contribution and adds its amount to the goal's
// running total in a single database transaction. If either write fails
// the whole operation rolls back: no contribution without a matching total
// bump and vice versa.
func (s *ahorroService) AgregarAporte(in NuevoAporte) (*models.AporteAhorro, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	if in.Fecha.IsZero() {
		in.Fecha = time.Now()
	}

	aporte := &models.AporteAhorro{
		AhorroID:  in.AhorroID,
		Monto:     in.Monto,
		Nota:      in.Nota,
		UsuarioID: in.UsuarioID,
		Fecha:     in.Fecha,
	}

	var ahorro models.Ahorro
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(aporte).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}

		if err := tx.Where("id = ?", in.AhorroID).First(&ahorro).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrAhorroNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}

		ahorro.MontoActual += in.Monto
		if err := tx.Model(&ahorro).Update("monto_actual", ahorro.MontoActual).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(watch.AhorrosDe(in.UsuarioID))
	if s.push != nil {
		s.push.PushAhorro(&ahorro)
	}
	return aporte, nil
}

// GetAportes retrieves a goal's contributions, newest first.
func (s *ahorroService) GetAportes(ahorroID string) ([]models.AporteAhorro, error) {
	var aportes []models.AporteAhorro
	if err := s.db.Where("ahorro_id = ?", ahorroID).
		Order("fecha DESC, id DESC").
		Find(&aportes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return aportes, nil
}

// DeleteAhorro removes the user's goal and cascades into its
// contributions, then propagates the delete remotely.
func (s *ahorroService) DeleteAhorro(usuarioID, ahorroID string) error {
	var ahorro models.Ahorro
	if err := s.db.Where("id = ? AND usuario_id = ?", ahorroID, usuarioID).
		First(&ahorro).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAhorroNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ahorro_id = ?", ahorroID).
			Delete(&models.AporteAhorro{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		if err := tx.Delete(&ahorro).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(watch.AhorrosDe(usuarioID))
	if s.push != nil {
		s.push.DeleteAhorroRemoto(usuarioID, ahorroID)
	}
	return nil
}

// WatchAhorros returns a live stream of the user's goals.
func (s *ahorroService) WatchAhorros(usuarioID string) (<-chan []models.Ahorro, func()) {
	return watch.Observe(s.hub, []watch.Topic{watch.AhorrosDe(usuarioID)}, func() ([]models.Ahorro, error) {
		return s.GetAhorros(usuarioID)
	})
}
