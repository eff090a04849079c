package models

// TipoMovimiento classifies both categories and transactions.
type TipoMovimiento string

const (
	TipoGasto   TipoMovimiento = "gasto"
	TipoIngreso TipoMovimiento = "ingreso"
)

// Categoria represents a transaction category. Default categories are
// global (nil UsuarioID, EsDefault true) and visible to every user; they
// carry a stable Key ("food", "salary", ...) so their display name can be
// re-translated on locale change without losing identity. Custom categories
// are owned by exactly one user.
type Categoria struct {
	Base
	Nombre    string         `gorm:"not null" json:"nombre"`
	Icono     string         `json:"icono"`
	Color     string         `json:"color"`
	Tipo      TipoMovimiento `gorm:"not null;index" json:"tipo"`
	EsDefault bool           `gorm:"not null;default:false;index" json:"es_default"`
	UsuarioID *string        `gorm:"index" json:"usuario_id,omitempty"`
	Key       string         `gorm:"index" json:"key,omitempty"`

	// Relationships
	Transacciones []Transaccion `gorm:"foreignKey:CategoriaID" json:"transacciones,omitempty"`
}

// EsPersonalizada reports whether the category is user-owned.
func (c *Categoria) EsPersonalizada() bool {
	return !c.EsDefault && c.UsuarioID != nil
}
