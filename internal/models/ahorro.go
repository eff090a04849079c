package models

import "time"

// Ahorro represents a savings goal. MontoActual is a running total kept
// equal to the sum of all associated contributions by construction: the
// only write path is the atomic add-contribution operation, never a
// recompute on read.
type Ahorro struct {
	Base
	Nombre      string  `gorm:"not null" json:"nombre"`
	MetaMonto   float64 `gorm:"not null" json:"meta_monto"`
	MontoActual float64 `gorm:"not null;default:0" json:"monto_actual"`
	UsuarioID   string  `gorm:"not null;index" json:"usuario_id"`

	// Relationships
	Aportes []AporteAhorro `gorm:"foreignKey:AhorroID;constraint:OnDelete:CASCADE" json:"aportes,omitempty"`
}

// AporteAhorro represents a single contribution toward a savings goal.
// Contributions are append-only; they are removed only when the goal
// itself is deleted.
type AporteAhorro struct {
	Base
	AhorroID  string    `gorm:"type:uuid;not null;index" json:"ahorro_id"`
	Monto     float64   `gorm:"not null" json:"monto"`
	Nota      string    `json:"nota,omitempty"`
	UsuarioID string    `gorm:"not null;index" json:"usuario_id"`
	Fecha     time.Time `gorm:"not null" json:"fecha"`
}
