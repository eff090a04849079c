// Package locale resolves stable category keys to translated display names.
// Only the category provisioning service consumes it; a richer string
// resource system can be plugged in through the Translator interface.
package locale

import "fmt"

// Translator resolves a stable category key to a display string in the
// given locale.
type Translator interface {
	Translate(key, locale string) (string, error)
}

// Catalog is a table-backed Translator with a fallback locale.
type Catalog struct {
	tables   map[string]map[string]string
	fallback string
}

// NewCatalog returns a Catalog with the built-in "es" and "en" tables.
func NewCatalog() *Catalog {
	return &Catalog{
		tables:   builtinTables,
		fallback: "es",
	}
}

// Supported returns whether the catalog carries a table for the locale.
func (c *Catalog) Supported(locale string) bool {
	_, ok := c.tables[locale]
	return ok
}

// Translate resolves key in the given locale, falling back to the default
// locale when the requested one is unknown. An unknown key is an error so
// provisioning never writes an empty category name.
func (c *Catalog) Translate(key, locale string) (string, error) {
	table, ok := c.tables[locale]
	if !ok {
		table = c.tables[c.fallback]
	}
	name, ok := table[key]
	if !ok {
		return "", fmt.Errorf("no translation for category key %q", key)
	}
	return name, nil
}

var builtinTables = map[string]map[string]string{
	"es": {
		"food":          "Comida",
		"transport":     "Transporte",
		"housing":       "Hogar",
		"entertainment": "Entretenimiento",
		"health":        "Salud",
		"shopping":      "Compras",
		"services":      "Servicios",
		"other_expense": "Otros gastos",
		"salary":        "Salario",
		"freelance":     "Trabajo independiente",
		"investment":    "Inversiones",
		"other_income":  "Otros ingresos",
	},
	"en": {
		"food":          "Food",
		"transport":     "Transport",
		"housing":       "Housing",
		"entertainment": "Entertainment",
		"health":        "Health",
		"shopping":      "Shopping",
		"services":      "Utilities",
		"other_expense": "Other expenses",
		"salary":        "Salary",
		"freelance":     "Freelance",
		"investment":    "Investments",
		"other_income":  "Other income",
	},
}
