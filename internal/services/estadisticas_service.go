package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/models"
)

// estadisticasService derives read-only aggregate views. It holds no state
// of its own; everything is computed from the transaction set.
type estadisticasService struct {
	db *gorm.DB
}

// NewEstadisticasService creates a new EstadisticasServicer.
func NewEstadisticasService(db *gorm.DB) EstadisticasServicer {
	return &estadisticasService{db: db}
}

// EstadisticasMensuales groups all of the user's transactions by calendar
// month, derived from fecha in the local timezone, newest month first.
// Grouping happens in Go rather than SQL so month boundaries follow the
// local timezone regardless of the store driver.
func (s *estadisticasService) EstadisticasMensuales(usuarioID string) ([]EstadisticaMensual, error) {
	var transacciones []models.Transaccion
	if err := s.db.Where("usuario_id = ?", usuarioID).Find(&transacciones).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	type mes struct {
		anio int
		mes  time.Month
	}
	porMes := make(map[mes]*EstadisticaMensual)

	for _, t := range transacciones {
		fecha := t.Fecha.Local()
		key := mes{anio: fecha.Year(), mes: fecha.Month()}

		stat, ok := porMes[key]
		if !ok {
			stat = &EstadisticaMensual{Anio: key.anio, Mes: key.mes}
			porMes[key] = stat
		}

		switch t.Tipo {
		case models.TipoIngreso:
			stat.TotalIngresos += t.Monto
		case models.TipoGasto:
			stat.TotalGastos += t.Monto
		}
		stat.TotalTransacciones++
	}

	stats := make([]EstadisticaMensual, 0, len(porMes))
	for _, stat := range porMes {
		stat.Saldo = stat.TotalIngresos - stat.TotalGastos
		stats = append(stats, *stat)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Anio != stats[j].Anio {
			return stats[i].Anio > stats[j].Anio
		}
		return stats[i].Mes > stats[j].Mes
	})
	return stats, nil
}

// TotalesPorCategoria sums the user's movements of one type per category
// over the inclusive date range, carrying category display metadata,
// ordered by total descending.
func (s *estadisticasService) TotalesPorCategoria(usuarioID string, desde, hasta time.Time, tipo models.TipoMovimiento) ([]TotalCategoria, error) {
	var totales []TotalCategoria
	err := s.db.Table("transacciones").
		Select("categorias.id AS categoria_id, categorias.nombre, categorias.color, categorias.icono, SUM(transacciones.monto) AS total, COUNT(*) AS cantidad").
		Joins("JOIN categorias ON categorias.id = transacciones.categoria_id").
		Where("transacciones.usuario_id = ? AND transacciones.tipo = ?", usuarioID, tipo).
		Where("transacciones.fecha >= ? AND transacciones.fecha <= ?", desde, hasta).
		Group("categorias.id, categorias.nombre, categorias.color, categorias.icono").
		Order("total DESC").
		Scan(&totales).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	return totales, nil
}

// Buckets produces n consecutive periods of the given unit ending at the
// bucket that contains "now", each with its summed income and expense.
// Ranges are half-open [Inicio, Fin), so a transaction at exactly midnight
// of the first of a month lands in that month, never the previous one.
func (s *estadisticasService) Buckets(usuarioID string, n int, unidad UnidadPeriodo) ([]Bucket, error) {
	if n <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "bucket count must be positive")
	}
	switch unidad {
	case UnidadDia, UnidadMes, UnidadAnio:
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown period unit")
	}

	actual := inicioDePeriodo(time.Now().Local(), unidad)
	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		inicio := retrocederPeriodos(actual, unidad, n-1-i)
		buckets[i] = Bucket{Inicio: inicio, Fin: avanzarPeriodo(inicio, unidad)}
	}

	var transacciones []models.Transaccion
	if err := s.db.
		Where("usuario_id = ?", usuarioID).
		Where("fecha >= ? AND fecha < ?", buckets[0].Inicio, buckets[n-1].Fin).
		Find(&transacciones).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternal, err)
	}

	for _, t := range transacciones {
		fecha := t.Fecha.Local()
		for i := range buckets {
			if !fecha.Before(buckets[i].Inicio) && fecha.Before(buckets[i].Fin) {
				switch t.Tipo {
				case models.TipoIngreso:
					buckets[i].Ingresos += t.Monto
				case models.TipoGasto:
					buckets[i].Gastos += t.Monto
				}
				break
			}
		}
	}
	return buckets, nil
}

// inicioDePeriodo truncates t to the first instant of its period in local
// time.
func inicioDePeriodo(t time.Time, unidad UnidadPeriodo) time.Time {
	switch unidad {
	case UnidadDia:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case UnidadMes:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
}

// avanzarPeriodo returns the first instant of the following period.
func avanzarPeriodo(t time.Time, unidad UnidadPeriodo) time.Time {
	switch unidad {
	case UnidadDia:
		return t.AddDate(0, 0, 1)
	case UnidadMes:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(1, 0, 0)
	}
}

// retrocederPeriodos steps a period start back by count periods.
func retrocederPeriodos(t time.Time, unidad UnidadPeriodo, count int) time.Time {
	switch unidad {
	case UnidadDia:
		return t.AddDate(0, 0, -count)
	case UnidadMes:
		return t.AddDate(0, -count, 0)
	default:
		return t.AddDate(-count, 0, 0)
	}
}
