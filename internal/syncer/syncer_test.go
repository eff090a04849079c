package syncer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finanzas/internal/models"
	"finanzas/internal/remote"
	"finanzas/internal/services"
	"finanzas/internal/testutil"
	"finanzas/internal/watch"
)

func setupReconciler(t *testing.T) (*Reconciler, *remote.MemStore, services.TransaccionServicer, services.AhorroServicer, string) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	hub := watch.NewHub()
	transacciones := services.NewTransaccionService(db, hub, nil)
	ahorros := services.NewAhorroService(db, hub, nil)

	store := remote.NewMemStore()
	reconciler := New(store, transacciones, ahorros, time.Second)

	usuario := testutil.CrearUsuario(t, db)
	return reconciler, store, transacciones, ahorros, usuario.UID
}

func TestPullAndMerge(t *testing.T) {
	t.Run("merges_remote_documents", func(t *testing.T) {
		reconciler, store, transacciones, ahorros, uid := setupReconciler(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			id := fmt.Sprintf("t%02d", i)
			path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: id}
			doc := remote.Document{
				"id":          id,
				"monto":       float64(10 * (i + 1)),
				"descripcion": "remota",
				"tipo":        "gasto",
				"fecha":       time.Now().UnixMilli(),
			}
			testutil.AssertNoError(t, store.Set(ctx, path, doc))
		}

		path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionAhorros, DocumentoID: "a1"}
		testutil.AssertNoError(t, store.Set(ctx, path, remote.Document{
			"id": "a1", "nombre": "Meta remota", "meta_monto": 500.0, "monto_actual": 120.0,
		}))

		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))

		locales, err := transacciones.GetTransacciones(uid, services.TransaccionFilter{})
		testutil.AssertNoError(t, err)
		if len(locales) != 3 {
			t.Fatalf("expected 3 merged transactions, got %d", len(locales))
		}

		ahorro, err := ahorros.GetAhorroByID("a1")
		testutil.AssertNoError(t, err)
		if ahorro.MontoActual != 120 {
			t.Errorf("expected running total 120, got %v", ahorro.MontoActual)
		}
	})

	t.Run("malformed_document_is_isolated", func(t *testing.T) {
		reconciler, store, transacciones, _, uid := setupReconciler(t)
		ctx := context.Background()

		for i := 0; i < 10; i++ {
			id := fmt.Sprintf("t%02d", i)
			doc := remote.Document{
				"id":    id,
				"monto": float64(i + 1),
				"tipo":  "gasto",
			}
			if i == 4 {
				doc["monto"] = "abc"
			}
			path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: id}
			testutil.AssertNoError(t, store.Set(ctx, path, doc))
		}

		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))

		locales, err := transacciones.GetTransacciones(uid, services.TransaccionFilter{})
		testutil.AssertNoError(t, err)
		if len(locales) != 9 {
			t.Fatalf("expected the 9 well-formed documents merged, got %d", len(locales))
		}
		for _, l := range locales {
			if l.ID == "t04" {
				t.Error("malformed document was merged")
			}
		}
	})

	t.Run("missing_fields_get_defaults", func(t *testing.T) {
		reconciler, store, transacciones, _, uid := setupReconciler(t)
		ctx := context.Background()

		path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: "escasa"}
		testutil.AssertNoError(t, store.Set(ctx, path, remote.Document{"id": "escasa"}))

		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))

		transaccion, err := transacciones.GetTransaccionByID("escasa")
		testutil.AssertNoError(t, err)
		if transaccion.Monto != 0 {
			t.Errorf("expected defaulted monto 0, got %v", transaccion.Monto)
		}
		if transaccion.Tipo != models.TipoGasto {
			t.Errorf("expected defaulted tipo gasto, got %s", transaccion.Tipo)
		}
		if transaccion.Fecha.IsZero() {
			t.Error("expected fecha defaulted to now")
		}
	})

	t.Run("document_without_id_is_skipped", func(t *testing.T) {
		reconciler, store, transacciones, _, uid := setupReconciler(t)
		ctx := context.Background()

		path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: "anonima"}
		testutil.AssertNoError(t, store.Set(ctx, path, remote.Document{"monto": 5.0}))

		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))

		locales, err := transacciones.GetTransacciones(uid, services.TransaccionFilter{})
		testutil.AssertNoError(t, err)
		if len(locales) != 0 {
			t.Errorf("expected no merges, got %d", len(locales))
		}
	})

	t.Run("remote_outage_leaves_local_untouched", func(t *testing.T) {
		reconciler, store, transacciones, _, uid := setupReconciler(t)
		ctx := context.Background()

		store.Err = fmt.Errorf("connection refused")
		err := reconciler.PullAndMerge(ctx, uid)
		testutil.AssertAppError(t, err, "REMOTE_UNAVAILABLE")

		locales, err := transacciones.GetTransacciones(uid, services.TransaccionFilter{})
		testutil.AssertNoError(t, err)
		if len(locales) != 0 {
			t.Errorf("outage pull wrote %d local rows", len(locales))
		}
	})

	t.Run("pull_is_idempotent", func(t *testing.T) {
		reconciler, store, transacciones, _, uid := setupReconciler(t)
		ctx := context.Background()

		path := remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: "t1"}
		testutil.AssertNoError(t, store.Set(ctx, path, remote.Document{
			"id": "t1", "monto": 10.0, "tipo": "gasto",
		}))

		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))
		testutil.AssertNoError(t, reconciler.PullAndMerge(ctx, uid))

		locales, err := transacciones.GetTransacciones(uid, services.TransaccionFilter{})
		testutil.AssertNoError(t, err)
		if len(locales) != 1 {
			t.Errorf("repeated pull duplicated rows: got %d", len(locales))
		}
	})
}

func TestPush(t *testing.T) {
	t.Run("push_then_delete", func(t *testing.T) {
		reconciler, store, _, _, uid := setupReconciler(t)

		transaccion := &models.Transaccion{
			Monto:       25,
			Descripcion: "Cafe",
			Fecha:       time.Now(),
			UsuarioID:   uid,
			Tipo:        models.TipoGasto,
		}
		transaccion.ID = "t1"

		reconciler.PushTransaccion(transaccion)
		reconciler.Wait()
		if store.Len() != 1 {
			t.Fatalf("expected 1 remote document after push, got %d", store.Len())
		}

		doc, err := store.Get(context.Background(),
			remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionTransacciones, DocumentoID: "t1"})
		testutil.AssertNoError(t, err)
		if doc == nil {
			t.Fatal("pushed document not found at its path")
		}
		if doc["monto"] != 25.0 {
			t.Errorf("expected monto 25, got %v", doc["monto"])
		}

		reconciler.DeleteTransaccionRemota(uid, "t1")
		reconciler.Wait()
		if store.Len() != 0 {
			t.Errorf("expected remote document removed, %d left", store.Len())
		}
	})

	t.Run("push_converges_on_repeat", func(t *testing.T) {
		reconciler, store, _, _, uid := setupReconciler(t)

		ahorro := &models.Ahorro{Nombre: "Meta", MetaMonto: 100, UsuarioID: uid}
		ahorro.ID = "a1"

		reconciler.PushAhorro(ahorro)
		ahorro.MontoActual = 40
		reconciler.PushAhorro(ahorro)
		reconciler.Wait()

		if store.Len() != 1 {
			t.Fatalf("expected 1 remote document, got %d", store.Len())
		}
		doc, err := store.Get(context.Background(),
			remote.Path{UsuarioID: uid, Coleccion: remote.ColeccionAhorros, DocumentoID: "a1"})
		testutil.AssertNoError(t, err)
		if doc["monto_actual"] != 40.0 {
			t.Errorf("expected latest running total 40, got %v", doc["monto_actual"])
		}
	})

	t.Run("outage_push_only_logs", func(t *testing.T) {
		reconciler, store, _, _, uid := setupReconciler(t)
		store.Err = fmt.Errorf("connection refused")

		transaccion := &models.Transaccion{Monto: 5, UsuarioID: uid, Tipo: models.TipoGasto}
		transaccion.ID = "t1"
		reconciler.PushTransaccion(transaccion)
		reconciler.Wait()
	})
}

func TestPushAll(t *testing.T) {
	t.Run("mirrors_every_local_row", func(t *testing.T) {
		reconciler, store, transacciones, ahorros, uid := setupReconciler(t)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			transaccion := &models.Transaccion{
				Monto:     float64(10 * (i + 1)),
				UsuarioID: uid,
				Tipo:      models.TipoGasto,
				Fecha:     time.Now(),
			}
			transaccion.ID = fmt.Sprintf("t%d", i)
			testutil.AssertNoError(t, transacciones.SaveTransaccion(transaccion))
		}
		ahorro := &models.Ahorro{Nombre: "Meta", MetaMonto: 100, UsuarioID: uid}
		ahorro.ID = "a1"
		testutil.AssertNoError(t, ahorros.SaveAhorro(ahorro))

		testutil.AssertNoError(t, reconciler.PushAll(ctx, uid))
		if store.Len() != 3 {
			t.Errorf("expected 3 remote documents, got %d", store.Len())
		}
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	t.Run("transaccion", func(t *testing.T) {
		fecha := time.Date(2024, time.March, 15, 12, 30, 0, 0, time.UTC)
		original := &models.Transaccion{
			Monto:       42.5,
			Descripcion: "Supermercado",
			Notas:       "semana",
			Fecha:       fecha,
			CategoriaID: "cat1",
			UsuarioID:   "u1",
			Tipo:        models.TipoIngreso,
		}
		original.ID = "t1"

		restaurada, err := transaccionFromDocument("u1", documentFromTransaccion(original))
		testutil.AssertNoError(t, err)

		if restaurada.ID != original.ID || restaurada.Monto != original.Monto ||
			restaurada.Descripcion != original.Descripcion || restaurada.Tipo != original.Tipo {
			t.Errorf("round trip lost fields: %+v", restaurada)
		}
		if !restaurada.Fecha.Equal(fecha) {
			t.Errorf("expected fecha %v, got %v", fecha, restaurada.Fecha)
		}
	})

	t.Run("ahorro", func(t *testing.T) {
		original := &models.Ahorro{Nombre: "Meta", MetaMonto: 500, MontoActual: 75, UsuarioID: "u1"}
		original.ID = "a1"

		restaurado, err := ahorroFromDocument("u1", documentFromAhorro(original))
		testutil.AssertNoError(t, err)

		if restaurado.ID != "a1" || restaurado.MetaMonto != 500 || restaurado.MontoActual != 75 {
			t.Errorf("round trip lost fields: %+v", restaurado)
		}
	})
}
