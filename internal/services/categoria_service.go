package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
	"finanzas/internal/validator"
	"finanzas/internal/watch"
)

// categoriaService handles category storage and the union visibility rule.
type categoriaService struct {
	db  *gorm.DB
	hub *watch.Hub
}

// NewCategoriaService creates a new CategoriaServicer.
func NewCategoriaService(db *gorm.DB, hub *watch.Hub) CategoriaServicer {
	return &categoriaService{db: db, hub: hub}
}

// CreateCategoria creates a custom category owned by the requesting user.
func (s *categoriaService) CreateCategoria(in NuevaCategoria) (*models.Categoria, error) {
	if err := validator.Struct(in); err != nil {
		return nil, err
	}

	categoria := &models.Categoria{
		Nombre:    in.Nombre,
		Icono:     in.Icono,
		Color:     in.Color,
		Tipo:      in.Tipo,
		EsDefault: false,
		UsuarioID: &in.UsuarioID,
	}

	if err := s.db.Create(categoria).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.hub.Publish(watch.Categorias)
	return categoria, nil
}

// SaveCategoria inserts the category, replacing any existing row with the
// same id. Used by provisioning and sync import paths.
func (s *categoriaService) SaveCategoria(c *models.Categoria) error {
	if err := s.db.Save(c).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	s.hub.Publish(watch.Categorias)
	return nil
}

// GetCategorias returns every category visible to the user: the global
// defaults plus the user's own. This union, not a plain ownership filter,
// is the contract callers depend on.
func (s *categoriaService) GetCategorias(usuarioID string) ([]models.Categoria, error) {
	var categorias []models.Categoria
	if err := s.db.
		Where("es_default = ? OR usuario_id = ?", true, usuarioID).
		Order("es_default DESC, nombre ASC").
		Find(&categorias).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return categorias, nil
}

// GetCategoriasPorTipo returns the visible categories of one type.
func (s *categoriaService) GetCategoriasPorTipo(usuarioID string, tipo models.TipoMovimiento) ([]models.Categoria, error) {
	var categorias []models.Categoria
	if err := s.db.
		Where("tipo = ?", tipo).
		Where("es_default = ? OR usuario_id = ?", true, usuarioID).
		Order("es_default DESC, nombre ASC").
		Find(&categorias).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return categorias, nil
}

// GetCategoriaByID retrieves a category by id.
func (s *categoriaService) GetCategoriaByID(id string) (*models.Categoria, error) {
	var categoria models.Categoria
	if err := s.db.Where("id = ?", id).First(&categoria).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoriaNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return &categoria, nil
}

// UpdateCategoria replaces the full row. A missing id is a silent no-op;
// callers that care must check existence first.
func (s *categoriaService) UpdateCategoria(c *models.Categoria) error {
	res := s.db.Model(&models.Categoria{}).
		Where("id = ?", c.ID).
		Select("nombre", "icono", "color", "tipo", "es_default", "usuario_id", "key").
		Updates(c)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternal, res.Error)
	}
	if res.RowsAffected > 0 {
		s.hub.Publish(watch.Categorias)
	}
	return nil
}

// DeleteCategoria deletes a custom category owned by the user. Default
// categories are protected and categories referenced by transactions are
// blocked (RESTRICT), both as typed recoverable errors.
func (s *categoriaService) DeleteCategoria(usuarioID, categoriaID string) error {
	categoria, err := s.GetCategoriaByID(categoriaID)
	if err != nil {
		return err
	}

	if categoria.EsDefault {
		return apperrors.ErrCategoriaProtegida
	}
	if categoria.UsuarioID == nil || *categoria.UsuarioID != usuarioID {
		return apperrors.ErrCategoriaNotFound
	}

	var enUso int64
	if err := s.db.Model(&models.Transaccion{}).
		Where("categoria_id = ?", categoriaID).
		Count(&enUso).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if enUso > 0 {
		return apperrors.ErrCategoriaEnUso
	}

	if err := s.db.Delete(categoria).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	s.hub.Publish(watch.Categorias)
	return nil
}

// WatchCategorias returns a live stream of the user's visible categories.
func (s *categoriaService) WatchCategorias(usuarioID string) (<-chan []models.Categoria, func()) {
	return watch.Observe(s.hub, []watch.Topic{watch.Categorias}, func() ([]models.Categoria, error) {
		return s.GetCategorias(usuarioID)
	})
}
