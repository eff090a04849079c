// Package remote defines the port to the per-user remote document store and
// its two implementations: an HTTP client for a hosted store and an
// in-memory store for tests. Documents are schemaless field maps keyed by
// (user, collection, document id); the store tolerates eventual consistency
// and enforces nothing.
package remote

import (
	"context"
	"fmt"
	"time"
)

// Collection names used by the sync layer.
const (
	ColeccionTransacciones = "transacciones"
	ColeccionAhorros       = "ahorros"
)

// Path addresses a document (or, with an empty DocumentoID, a collection)
// inside one user's remote tree.
type Path struct {
	UsuarioID   string
	Coleccion   string
	DocumentoID string
}

func (p Path) String() string {
	if p.DocumentoID == "" {
		return fmt.Sprintf("usuarios/%s/%s", p.UsuarioID, p.Coleccion)
	}
	return fmt.Sprintf("usuarios/%s/%s/%s", p.UsuarioID, p.Coleccion, p.DocumentoID)
}

// Document is a schemaless remote record.
type Document map[string]interface{}

// Store is the outbound port to the remote document store.
type Store interface {
	Get(ctx context.Context, path Path) (Document, error)
	Set(ctx context.Context, path Path, doc Document) error
	Delete(ctx context.Context, path Path) error
	ListAll(ctx context.Context, path Path) ([]Document, error)
}

// Str reads a string field, defaulting to "" when missing or null.
// A non-string value is an error so malformed documents fail loudly.
func (d Document) Str(key string) (string, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Num reads a numeric field, defaulting to 0 when missing or null.
func (d Document) Num(key string) (float64, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected number, got %T", key, v)
	}
}

// Time reads a timestamp field, defaulting to now when missing or null.
// Numbers are Unix milliseconds; strings are RFC 3339.
func (d Document) Time(key string) (time.Time, error) {
	v, ok := d[key]
	if !ok || v == nil {
		return time.Now(), nil
	}
	switch t := v.(type) {
	case float64:
		return time.UnixMilli(int64(t)), nil
	case int64:
		return time.UnixMilli(t), nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("field %q: %w", key, err)
		}
		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("field %q: expected timestamp, got %T", key, v)
	}
}
