package services

import (
	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/locale"
	"finanzas/internal/logger"
	"finanzas/internal/models"
	"finanzas/internal/watch"
)

// defaultCategoriaSeed is the fixed, versioned default category list. The
// Key is the stable identity used for re-localization; display names come
// from the locale catalog at seed time.
var defaultCategoriaSeed = []struct {
	Key   string
	Icono string
	Color string
	Tipo  models.TipoMovimiento
}{
	{Key: "food", Icono: "restaurant", Color: "#E57373", Tipo: models.TipoGasto},
	{Key: "transport", Icono: "directions_bus", Color: "#64B5F6", Tipo: models.TipoGasto},
	{Key: "housing", Icono: "home", Color: "#FFB74D", Tipo: models.TipoGasto},
	{Key: "entertainment", Icono: "movie", Color: "#BA68C8", Tipo: models.TipoGasto},
	{Key: "health", Icono: "local_hospital", Color: "#4DB6AC", Tipo: models.TipoGasto},
	{Key: "shopping", Icono: "shopping_cart", Color: "#F06292", Tipo: models.TipoGasto},
	{Key: "services", Icono: "receipt", Color: "#90A4AE", Tipo: models.TipoGasto},
	{Key: "other_expense", Icono: "more_horiz", Color: "#A1887F", Tipo: models.TipoGasto},
	{Key: "salary", Icono: "payments", Color: "#81C784", Tipo: models.TipoIngreso},
	{Key: "freelance", Icono: "work", Color: "#AED581", Tipo: models.TipoIngreso},
	{Key: "investment", Icono: "trending_up", Color: "#4FC3F7", Tipo: models.TipoIngreso},
	{Key: "other_income", Icono: "attach_money", Color: "#FFD54F", Tipo: models.TipoIngreso},
}

// provisionService seeds and re-localizes the default category set.
type provisionService struct {
	db         *gorm.DB
	hub        *watch.Hub
	translator locale.Translator
	locale     string
}

// NewProvisionService creates a new ProvisionServicer. defaultLocale is
// the locale used for display names at seed time.
func NewProvisionService(db *gorm.DB, hub *watch.Hub, translator locale.Translator, defaultLocale string) ProvisionServicer {
	return &provisionService{db: db, hub: hub, translator: translator, locale: defaultLocale}
}

// EnsureDefaults seeds the default categories exactly once. The skip rule
// is "any default-flagged category exists", applied uniformly: a user with
// only custom categories still gets the defaults, a second call never
// duplicates them.
func (s *provisionService) EnsureDefaults(usuarioID string) error {
	var existentes int64
	if err := s.db.Model(&models.Categoria{}).
		Where("es_default = ?", true).
		Count(&existentes).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	if existentes > 0 {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, seed := range defaultCategoriaSeed {
			nombre, err := s.translator.Translate(seed.Key, s.locale)
			if err != nil {
				return apperrors.Wrap(apperrors.ErrInternal, err)
			}
			categoria := &models.Categoria{
				Nombre:    nombre,
				Icono:     seed.Icono,
				Color:     seed.Color,
				Tipo:      seed.Tipo,
				EsDefault: true,
				UsuarioID: nil,
				Key:       seed.Key,
			}
			if err := tx.Create(categoria).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Get().Infow("seeded default categories",
		"count", len(defaultCategoriaSeed), "locale", s.locale, "usuario", usuarioID)
	s.hub.Publish(watch.Categorias)
	return nil
}

// RelocalizeDefaults re-translates the display names of the default
// categories for the new locale. Matching is by stable key, ordered by id
// for determinism; only nombre changes. Custom categories and defaults
// without a translation are left as they are.
func (s *provisionService) RelocalizeDefaults(newLocale string) error {
	var defaults []models.Categoria
	if err := s.db.
		Where("es_default = ? AND key <> ''", true).
		Order("id ASC").
		Find(&defaults).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}

	cambiadas := 0
	for i := range defaults {
		nombre, err := s.translator.Translate(defaults[i].Key, newLocale)
		if err != nil {
			logger.Get().Warnw("no translation for default category",
				"key", defaults[i].Key, "locale", newLocale)
			continue
		}
		if nombre == defaults[i].Nombre {
			continue
		}
		if err := s.db.Model(&defaults[i]).Update("nombre", nombre).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternal, err)
		}
		cambiadas++
	}

	if cambiadas > 0 {
		logger.Get().Infow("relocalized default categories",
			"count", cambiadas, "locale", newLocale)
		s.hub.Publish(watch.Categorias)
	}
	return nil
}
