package models

import "time"

// Transaccion represents a single income or expense movement. Fecha is the
// event timestamp chosen by the user and is distinct from the audit
// timestamps in Base. Updates are full-row replaces, never partial.
type Transaccion struct {
	Base
	Monto       float64        `gorm:"not null" json:"monto"`
	Descripcion string         `gorm:"not null" json:"descripcion"`
	Notas       string         `json:"notas,omitempty"`
	Fecha       time.Time      `gorm:"not null;index" json:"fecha"`
	CategoriaID string         `gorm:"type:uuid;not null;index" json:"categoria_id"`
	UsuarioID   string         `gorm:"not null;index" json:"usuario_id"`
	Tipo        TipoMovimiento `gorm:"not null;index" json:"tipo"`

	// Relationships. Deleting a referenced category is blocked (RESTRICT);
	// the service layer surfaces that as a typed error.
	Categoria *Categoria `gorm:"foreignKey:CategoriaID;constraint:OnDelete:RESTRICT" json:"categoria,omitempty"`
}
