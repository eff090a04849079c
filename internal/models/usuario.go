package models

import "time"

// Proveedor identifies which auth provider created the account.
type Proveedor string

const (
	ProveedorEmail  Proveedor = "email"
	ProveedorGoogle Proveedor = "google"
)

// Usuario represents a locally-known account. The UID is assigned by the
// auth provider, not by the store. At most one user is active at a time
// (single-device, single-session model); activating a user deactivates
// all others.
type Usuario struct {
	UID         string    `gorm:"primaryKey" json:"uid"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Proveedor   Proveedor `gorm:"not null;default:'email'" json:"proveedor"`
	// PasswordHash is only set for accounts created by the bundled email
	// provider; external providers leave it empty.
	PasswordHash string    `json:"-"`
	IsActive     bool      `gorm:"default:false;index" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Categorias    []Categoria    `gorm:"foreignKey:UsuarioID" json:"categorias,omitempty"`
	Transacciones []Transaccion  `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"transacciones,omitempty"`
	Ahorros       []Ahorro       `gorm:"foreignKey:UsuarioID;constraint:OnDelete:CASCADE" json:"ahorros,omitempty"`
	Aportes       []AporteAhorro `gorm:"foreignKey:UsuarioID" json:"aportes,omitempty"`
}
