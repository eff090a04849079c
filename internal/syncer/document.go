package syncer

import (
	"fmt"

	"finanzas/internal/models"
	"finanzas/internal/remote"
)

// transaccionFromDocument maps a remote document into the local schema.
// Missing numeric fields default to 0, missing strings to "", missing
// timestamps to now; a field of the wrong type makes the whole document
// fail so the caller can skip it.
func transaccionFromDocument(usuarioID string, doc remote.Document) (*models.Transaccion, error) {
	id, err := doc.Str("id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("remote transaction without id")
	}

	monto, err := doc.Num("monto")
	if err != nil {
		return nil, err
	}
	descripcion, err := doc.Str("descripcion")
	if err != nil {
		return nil, err
	}
	notas, err := doc.Str("notas")
	if err != nil {
		return nil, err
	}
	categoriaID, err := doc.Str("categoria_id")
	if err != nil {
		return nil, err
	}
	tipo, err := doc.Str("tipo")
	if err != nil {
		return nil, err
	}
	fecha, err := doc.Time("fecha")
	if err != nil {
		return nil, err
	}

	transaccion := &models.Transaccion{
		Monto:       monto,
		Descripcion: descripcion,
		Notas:       notas,
		Fecha:       fecha,
		CategoriaID: categoriaID,
		UsuarioID:   usuarioID,
		Tipo:        models.TipoMovimiento(tipo),
	}
	transaccion.ID = id
	if transaccion.Tipo == "" {
		transaccion.Tipo = models.TipoGasto
	}
	return transaccion, nil
}

func documentFromTransaccion(t *models.Transaccion) remote.Document {
	return remote.Document{
		"id":           t.ID,
		"monto":        t.Monto,
		"descripcion":  t.Descripcion,
		"notas":        t.Notas,
		"fecha":        t.Fecha.UnixMilli(),
		"categoria_id": t.CategoriaID,
		"tipo":         string(t.Tipo),
		"updated_at":   t.UpdatedAt.UnixMilli(),
	}
}

// ahorroFromDocument maps a remote savings goal document into the local
// schema with the same defaulting rules as transactions.
func ahorroFromDocument(usuarioID string, doc remote.Document) (*models.Ahorro, error) {
	id, err := doc.Str("id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("remote savings goal without id")
	}

	nombre, err := doc.Str("nombre")
	if err != nil {
		return nil, err
	}
	metaMonto, err := doc.Num("meta_monto")
	if err != nil {
		return nil, err
	}
	montoActual, err := doc.Num("monto_actual")
	if err != nil {
		return nil, err
	}

	ahorro := &models.Ahorro{
		Nombre:      nombre,
		MetaMonto:   metaMonto,
		MontoActual: montoActual,
		UsuarioID:   usuarioID,
	}
	ahorro.ID = id
	return ahorro, nil
}

func documentFromAhorro(a *models.Ahorro) remote.Document {
	return remote.Document{
		"id":           a.ID,
		"nombre":       a.Nombre,
		"meta_monto":   a.MetaMonto,
		"monto_actual": a.MontoActual,
		"updated_at":   a.UpdatedAt.UnixMilli(),
	}
}
