package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finanzas/internal/models"
	"finanzas/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CrearUsuario creates an active user with a unique email.
func CrearUsuario(t *testing.T, db *gorm.DB) *models.Usuario {
	t.Helper()

	usuario := &models.Usuario{
		UID:       uuid.New(),
		Email:     fmt.Sprintf("usuario%d@test.com", nextID()),
		Proveedor: models.ProveedorEmail,
		IsActive:  true,
	}
	if err := db.Create(usuario).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return usuario
}

// CrearCategoria creates a custom category owned by the given user.
func CrearCategoria(t *testing.T, db *gorm.DB, usuarioID string, tipo models.TipoMovimiento) *models.Categoria {
	t.Helper()

	categoria := &models.Categoria{
		Nombre:    fmt.Sprintf("Categoria %d", nextID()),
		Tipo:      tipo,
		EsDefault: false,
		UsuarioID: &usuarioID,
	}
	if err := db.Create(categoria).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return categoria
}

// CrearCategoriaDefault creates a global default category with a stable key.
func CrearCategoriaDefault(t *testing.T, db *gorm.DB, key string, tipo models.TipoMovimiento) *models.Categoria {
	t.Helper()

	categoria := &models.Categoria{
		Nombre:    fmt.Sprintf("Default %d", nextID()),
		Tipo:      tipo,
		EsDefault: true,
		UsuarioID: nil,
		Key:       key,
	}
	if err := db.Create(categoria).Error; err != nil {
		t.Fatalf("failed to create default test category: %v", err)
	}
	return categoria
}

// CrearTransaccion creates a transaction with the given amount and event
// timestamp.
func CrearTransaccion(t *testing.T, db *gorm.DB, usuarioID, categoriaID string, tipo models.TipoMovimiento, monto float64, fecha time.Time) *models.Transaccion {
	t.Helper()

	transaccion := &models.Transaccion{
		Monto:       monto,
		Descripcion: fmt.Sprintf("Movimiento %d", nextID()),
		Fecha:       fecha,
		CategoriaID: categoriaID,
		UsuarioID:   usuarioID,
		Tipo:        tipo,
	}
	if err := db.Create(transaccion).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaccion
}

// CrearAhorro creates a savings goal with a zero running total.
func CrearAhorro(t *testing.T, db *gorm.DB, usuarioID string) *models.Ahorro {
	t.Helper()

	ahorro := &models.Ahorro{
		Nombre:    fmt.Sprintf("Meta %d", nextID()),
		MetaMonto: 1000,
		UsuarioID: usuarioID,
	}
	if err := db.Create(ahorro).Error; err != nil {
		t.Fatalf("failed to create test savings goal: %v", err)
	}
	return ahorro
}
