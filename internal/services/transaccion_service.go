package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/validator"
	"finanzas/internal/watch"
)

// transaccionService handles transaction storage, querying and the fan-out
// of local writes to the remote pusher.
type transaccionService struct {
	db   *gorm.DB
	hub  *watch.Hub
	push RemotePusher
}

// NewTransaccionService creates a new TransaccionServicer. push may be nil
// to disable remote sync.
func NewTransaccionService(db *gorm.DB, hub *watch.Hub, push RemotePusher) TransaccionServicer {
	return &transaccionService{db: db, hub: hub, push: push}
}

// CreateTransaccion records a new movement. The referenced category must be
// visible to the user (a global default or one of their own). The category
// and transaction types are not cross-checked; matching them is a UI-level
// convention.
func (s *transaccionService) CreateTransaccion(in NuevaTransaccion) (*models.Transaccion, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	if in.Fecha.IsZero() {
		in.Fecha = time.Now()
	}

	var visible int64
	if err := s.db.Model(&models.Categoria{}).
		Where("id = ?", in.CategoriaID).
		Where("es_default = ? OR usuario_id = ?", true, in.UsuarioID).
		Count(&visible).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if visible == 0 {
		return nil, apperrors.ErrCategoriaNotFound
	}

	transaccion := &models.Transaccion{
		Monto:       in.Monto,
		Descripcion: in.Descripcion,
		Notas:       in.Notas,
		Fecha:       in.Fecha,
		CategoriaID: in.CategoriaID,
		UsuarioID:   in.UsuarioID,
		Tipo:        in.Tipo,
	}

	if err := s.db.Create(transaccion).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.hub.Publish(watch.TransaccionesDe(in.UsuarioID))
	if s.push != nil {
		s.push.PushTransaccion(transaccion)
	}
	return transaccion, nil
}

// SaveTransaccion inserts the transaction, replacing any existing row with
// the same id. This is the sync import path, so no remote push happens.
func (s *transaccionService) SaveTransaccion(t *models.Transaccion) error {
	if err := s.db.Save(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	s.hub.Publish(watch.TransaccionesDe(t.UsuarioID))
	return nil
}

// GetTransacciones retrieves the user's transactions matching the filter,
// ordered by event timestamp descending. UUIDv7 ids are time-ordered, so
// "id DESC" breaks fecha ties by insertion order, newest first.
func (s *transaccionService) GetTransacciones(usuarioID string, f TransaccionFilter) ([]models.Transaccion, error) {
	base := s.db.Where("usuario_id = ?", usuarioID)
	base = applyTransaccionFilters(base, f)

	var transacciones []models.Transaccion
	if err := base.Order("fecha DESC, id DESC").Find(&transacciones).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return transacciones, nil
}

func applyTransaccionFilters(q *gorm.DB, f TransaccionFilter) *gorm.DB {
	if f.Desde != nil {
		q = q.Where("fecha >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("fecha <= ?", *f.Hasta)
	}
	if f.CategoriaID != nil {
		q = q.Where("categoria_id = ?", *f.CategoriaID)
	}
	if f.Tipo != nil {
		q = q.Where("tipo = ?", *f.Tipo)
	}
	if f.Texto != "" {
		patron := "%" + strings.ToLower(f.Texto) + "%"
		q = q.Where("LOWER(descripcion) LIKE ? OR LOWER(notas) LIKE ?", patron, patron)
	}
	return q
}

// GetTransaccionByID retrieves a transaction by id.
func (s *transaccionService) GetTransaccionByID(id string) (*models.Transaccion, error) {
	var transaccion models.Transaccion
	if err := s.db.Where("id = ?", id).First(&transaccion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransaccionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &transaccion, nil
}

// UpdateTransaccion replaces the full row and bumps updated_at. A missing
// id is a silent no-op.
func (s *transaccionService) UpdateTransaccion(t *models.Transaccion) error {
	res := s.db.Model(&models.Transaccion{}).
		Where("id = ?", t.ID).
		Select("monto", "descripcion", "notas", "fecha", "categoria_id", "usuario_id", "tipo").
		Updates(t)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternal, res.Error)
	}
	if res.RowsAffected > 0 {
		s.hub.Publish(watch.TransaccionesDe(t.UsuarioID))
		if s.push != nil {
			s.push.PushTransaccion(t)
		}
	}
	return nil
}

// DeleteTransaccion removes the user's transaction and propagates the
// delete to the remote store.
func (s *transaccionService) DeleteTransaccion(usuarioID, transaccionID string) error {
	var transaccion models.Transaccion
	if err := s.db.Where("id = ? AND usuario_id = ?", transaccionID, usuarioID).
		First(&transaccion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransaccionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	if err := s.db.Delete(&transaccion).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.hub.Publish(watch.TransaccionesDe(usuarioID))
	if s.push != nil {
		s.push.DeleteTransaccionRemota(usuarioID, transaccionID)
	}
	return nil
}

// WatchTransacciones returns a live stream of the filtered transaction
// list. A fresh snapshot is emitted after every write to the user's
// transactions until cancel is called.
func (s *transaccionService) WatchTransacciones(usuarioID string, f TransaccionFilter) (<-chan []models.Transaccion, func()) {
	return watch.Observe(s.hub, []watch.Topic{watch.TransaccionesDe(usuarioID)}, func() ([]models.Transaccion, error) {
		return s.GetTransacciones(usuarioID, f)
	})
}
