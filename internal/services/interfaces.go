package services

import (
	"time"

	"finanzas/internal/models"
)

// RemotePusher fans successful local writes out to the remote document
// store. Implementations are fire-and-forget: they return immediately and
// only log failures, so local writes never depend on remote availability.
// A nil pusher disables sync entirely.
type RemotePusher interface {
	PushTransaccion(t *models.Transaccion)
	DeleteTransaccionRemota(usuarioID, transaccionID string)
	PushAhorro(a *models.Ahorro)
	DeleteAhorroRemoto(usuarioID, ahorroID string)
}

// NuevaCategoria is the validated input for creating a custom category.
type NuevaCategoria struct {
	UsuarioID string                `validate:"required"`
	Nombre    string                `validate:"required,max=40"`
	Icono     string                `validate:"max=40"`
	Color     string                `validate:"omitempty,hex_color"`
	Tipo      models.TipoMovimiento `validate:"required,tipo_movimiento"`
}

// NuevaTransaccion is the validated input for recording a movement.
type NuevaTransaccion struct {
	UsuarioID   string                `validate:"required"`
	CategoriaID string                `validate:"required"`
	Monto       float64               `validate:"required,gt=0"`
	Descripcion string                `validate:"required,max=100"`
	Notas       string                `validate:"max=500"`
	Fecha       time.Time
	Tipo        models.TipoMovimiento `validate:"required,tipo_movimiento"`
}

// NuevoAhorro is the validated input for creating a savings goal.
type NuevoAhorro struct {
	UsuarioID string  `validate:"required"`
	Nombre    string  `validate:"required,max=60"`
	MetaMonto float64 `validate:"required,gt=0"`
}

// NuevoAporte is the validated input for the atomic add-contribution
// operation.
type NuevoAporte struct {
	AhorroID  string  `validate:"required"`
	UsuarioID string  `validate:"required"`
	Monto     float64 `validate:"required,gt=0"`
	Nota      string  `validate:"max=200"`
	Fecha     time.Time
}

// TransaccionFilter holds optional filter parameters for listing
// transactions. Desde/Hasta are inclusive. Texto is a case-insensitive
// substring match against descripcion OR notas; empty means "no text
// filter", not "match nothing".
type TransaccionFilter struct {
	Desde       *time.Time
	Hasta       *time.Time
	CategoriaID *string
	Tipo        *models.TipoMovimiento
	Texto       string
}

// UsuarioServicer defines the contract for local account state.
type UsuarioServicer interface {
	// ActivarUsuario upserts the user and makes it the single active
	// session, deactivating every other local user.
	ActivarUsuario(u *models.Usuario) (*models.Usuario, error)
	GetUsuarioActivo() (*models.Usuario, error)
	GetUsuarioByUID(uid string) (*models.Usuario, error)
	GetUsuarioByEmail(email string) (*models.Usuario, error)
	DesactivarTodos() error
	// DeleteUsuario removes the user and cascades into its transactions,
	// savings goals (with contributions) and custom categories. Default
	// categories are untouched.
	DeleteUsuario(uid string) error
}

// CategoriaServicer defines the contract for category storage.
type CategoriaServicer interface {
	CreateCategoria(in NuevaCategoria) (*models.Categoria, error)
	// SaveCategoria inserts with replace-on-conflict semantics; it is the
	// import path used by sync and provisioning and does not push remotely.
	SaveCategoria(c *models.Categoria) error
	// GetCategorias returns the union of global defaults and the user's
	// own categories.
	GetCategorias(usuarioID string) ([]models.Categoria, error)
	GetCategoriasPorTipo(usuarioID string, tipo models.TipoMovimiento) ([]models.Categoria, error)
	GetCategoriaByID(id string) (*models.Categoria, error)
	UpdateCategoria(c *models.Categoria) error
	DeleteCategoria(usuarioID, categoriaID string) error
	WatchCategorias(usuarioID string) (<-chan []models.Categoria, func())
}

// TransaccionServicer defines the contract for transaction storage.
type TransaccionServicer interface {
	CreateTransaccion(in NuevaTransaccion) (*models.Transaccion, error)
	// SaveTransaccion inserts with replace-on-conflict semantics (sync
	// import path; no remote push).
	SaveTransaccion(t *models.Transaccion) error
	// GetTransacciones returns the user's transactions matching the filter,
	// ordered by fecha descending with newest-inserted first on ties.
	GetTransacciones(usuarioID string, f TransaccionFilter) ([]models.Transaccion, error)
	GetTransaccionByID(id string) (*models.Transaccion, error)
	// UpdateTransaccion replaces the full row; it is a silent no-op when
	// the id does not exist.
	UpdateTransaccion(t *models.Transaccion) error
	DeleteTransaccion(usuarioID, transaccionID string) error
	WatchTransacciones(usuarioID string, f TransaccionFilter) (<-chan []models.Transaccion, func())
}

// AhorroServicer defines the contract for savings goals and contributions.
type AhorroServicer interface {
	CreateAhorro(in NuevoAhorro) (*models.Ahorro, error)
	// SaveAhorro inserts with replace-on-conflict semantics (sync import
	// path; no remote push).
	SaveAhorro(a *models.Ahorro) error
	GetAhorros(usuarioID string) ([]models.Ahorro, error)
	GetAhorroByID(id string) (*models.Ahorro, error)
	// AgregarAporte atomically records the contribution and adds its amount
	// to the goal's running total. Both writes commit or neither does.
	AgregarAporte(in NuevoAporte) (*models.AporteAhorro, error)
	GetAportes(ahorroID string) ([]models.AporteAhorro, error)
	DeleteAhorro(usuarioID, ahorroID string) error
	WatchAhorros(usuarioID string) (<-chan []models.Ahorro, func())
}

// EstadisticaMensual aggregates one calendar month of a user's movements.
type EstadisticaMensual struct {
	Anio               int            `json:"anio"`
	Mes                time.Month     `json:"mes"`
	TotalIngresos      float64        `json:"total_ingresos"`
	TotalGastos        float64        `json:"total_gastos"`
	Saldo              float64        `json:"saldo"`
	TotalTransacciones int            `json:"total_transacciones"`
}

// TotalCategoria aggregates a user's movements of one type per category,
// carrying the category's display metadata.
type TotalCategoria struct {
	CategoriaID string  `json:"categoria_id"`
	Nombre      string  `json:"nombre"`
	Color       string  `json:"color"`
	Icono       string  `json:"icono"`
	Total       float64 `json:"total"`
	Cantidad    int     `json:"cantidad"`
}

// UnidadPeriodo is the bucket unit for chart aggregation.
type UnidadPeriodo string

const (
	UnidadDia  UnidadPeriodo = "dia"
	UnidadMes  UnidadPeriodo = "mes"
	UnidadAnio UnidadPeriodo = "anio"
)

// Bucket is one chart period. The range is half-open: [Inicio, Fin).
type Bucket struct {
	Inicio   time.Time `json:"inicio"`
	Fin      time.Time `json:"fin"`
	Ingresos float64   `json:"ingresos"`
	Gastos   float64   `json:"gastos"`
}

// EstadisticasServicer derives read-only aggregate views from the store.
type EstadisticasServicer interface {
	// EstadisticasMensuales groups the user's transactions by calendar
	// month in the local timezone, newest month first.
	EstadisticasMensuales(usuarioID string) ([]EstadisticaMensual, error)
	// TotalesPorCategoria sums amounts per category for the inclusive
	// date range and type, ordered by total descending.
	TotalesPorCategoria(usuarioID string, desde, hasta time.Time, tipo models.TipoMovimiento) ([]TotalCategoria, error)
	// Buckets produces n consecutive periods of the given unit ending now.
	Buckets(usuarioID string, n int, unidad UnidadPeriodo) ([]Bucket, error)
}

// ProvisionServicer seeds and re-localizes the default category set.
type ProvisionServicer interface {
	// EnsureDefaults seeds the fixed default category list exactly once:
	// it is a no-op whenever any default-flagged category already exists.
	EnsureDefaults(usuarioID string) error
	// RelocalizeDefaults re-translates the display names of default
	// categories for the new locale, preserving ids, keys, colors, icons
	// and types, and leaving custom categories untouched.
	RelocalizeDefaults(newLocale string) error
}
