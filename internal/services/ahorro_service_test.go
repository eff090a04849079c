package services

import (
	"testing"

	"finanzas/internal/models"
	"finanzas/internal/testutil"
	"finanzas/internal/watch"
)

func TestCreateAhorro(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)

		ahorro, err := svc.CreateAhorro(NuevoAhorro{
			UsuarioID: usuario.UID,
			Nombre:    "Vacaciones",
			MetaMonto: 2000,
		})
		testutil.AssertNoError(t, err)

		if ahorro.ID == "" {
			t.Fatal("expected non-empty savings goal id")
		}
		if ahorro.MontoActual != 0 {
			t.Errorf("expected zero running total, got %v", ahorro.MontoActual)
		}
	})

	t.Run("invalid_meta", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)

		_, err := svc.CreateAhorro(NuevoAhorro{
			UsuarioID: usuario.UID,
			Nombre:    "Sin meta",
			MetaMonto: 0,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAgregarAporte(t *testing.T) {
	t.Run("updates_running_total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)
		ahorro := testutil.CrearAhorro(t, db, usuario.UID)

		aporte, err := svc.AgregarAporte(NuevoAporte{
			AhorroID:  ahorro.ID,
			UsuarioID: usuario.UID,
			Monto:     150,
			Nota:      "primer aporte",
		})
		testutil.AssertNoError(t, err)

		if aporte.ID == "" {
			t.Fatal("expected non-empty contribution id")
		}

		actualizado, err := svc.GetAhorroByID(ahorro.ID)
		testutil.AssertNoError(t, err)
		if actualizado.MontoActual != 150 {
			t.Errorf("expected running total 150, got %v", actualizado.MontoActual)
		}
	})

	t.Run("sequential_contributions_accumulate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)
		ahorro := testutil.CrearAhorro(t, db, usuario.UID)

		montos := []float64{100, 50.5, 200}
		var total float64
		for _, monto := range montos {
			_, err := svc.AgregarAporte(NuevoAporte{
				AhorroID:  ahorro.ID,
				UsuarioID: usuario.UID,
				Monto:     monto,
			})
			testutil.AssertNoError(t, err)
			total += monto
		}

		actualizado, err := svc.GetAhorroByID(ahorro.ID)
		testutil.AssertNoError(t, err)
		if actualizado.MontoActual != total {
			t.Errorf("expected running total %v, got %v", total, actualizado.MontoActual)
		}

		aportes, err := svc.GetAportes(ahorro.ID)
		testutil.AssertNoError(t, err)
		if len(aportes) != len(montos) {
			t.Errorf("expected %d contributions, got %d", len(montos), len(aportes))
		}
	})

	t.Run("missing_goal_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)

		_, err := svc.AgregarAporte(NuevoAporte{
			AhorroID:  "no-such-goal",
			UsuarioID: usuario.UID,
			Monto:     100,
		})
		testutil.AssertAppError(t, err, "SAVINGS_GOAL_NOT_FOUND")

		// The contribution insert inside the failed transaction must not
		// survive the rollback.
		var huerfanos int64
		db.Model(&models.AporteAhorro{}).Count(&huerfanos)
		if huerfanos != 0 {
			t.Errorf("expected no orphan contributions, found %d", huerfanos)
		}
	})

	t.Run("invalid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)
		ahorro := testutil.CrearAhorro(t, db, usuario.UID)

		_, err := svc.AgregarAporte(NuevoAporte{
			AhorroID:  ahorro.ID,
			UsuarioID: usuario.UID,
			Monto:     -10,
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		sinCambios, err := svc.GetAhorroByID(ahorro.ID)
		testutil.AssertNoError(t, err)
		if sinCambios.MontoActual != 0 {
			t.Errorf("rejected contribution changed the total to %v", sinCambios.MontoActual)
		}
	})
}

func TestDeleteAhorro(t *testing.T) {
	t.Run("cascades_into_contributions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)
		ahorro := testutil.CrearAhorro(t, db, usuario.UID)

		for i := 0; i < 3; i++ {
			_, err := svc.AgregarAporte(NuevoAporte{
				AhorroID:  ahorro.ID,
				UsuarioID: usuario.UID,
				Monto:     10,
			})
			testutil.AssertNoError(t, err)
		}

		testutil.AssertNoError(t, svc.DeleteAhorro(usuario.UID, ahorro.ID))

		_, err := svc.GetAhorroByID(ahorro.ID)
		testutil.AssertAppError(t, err, "SAVINGS_GOAL_NOT_FOUND")

		var aportes int64
		db.Model(&models.AporteAhorro{}).Where("ahorro_id = ?", ahorro.ID).Count(&aportes)
		if aportes != 0 {
			t.Errorf("expected contributions removed with the goal, found %d", aportes)
		}
	})

	t.Run("cannot_delete_another_users_goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		duenio := testutil.CrearUsuario(t, db)
		intruso := testutil.CrearUsuario(t, db)
		ahorro := testutil.CrearAhorro(t, db, duenio.UID)

		err := svc.DeleteAhorro(intruso.UID, ahorro.ID)
		testutil.AssertAppError(t, err, "SAVINGS_GOAL_NOT_FOUND")
	})
}

func TestGetAhorros(t *testing.T) {
	t.Run("scoped_to_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAhorroService(db, watch.NewHub(), nil)
		usuario := testutil.CrearUsuario(t, db)
		otro := testutil.CrearUsuario(t, db)

		testutil.CrearAhorro(t, db, usuario.UID)
		testutil.CrearAhorro(t, db, otro.UID)

		ahorros, err := svc.GetAhorros(usuario.UID)
		testutil.AssertNoError(t, err)
		if len(ahorros) != 1 {
			t.Fatalf("expected only the user's own goal, got %d", len(ahorros))
		}
		if ahorros[0].UsuarioID != usuario.UID {
			t.Errorf("expected owner %s, got %s", usuario.UID, ahorros[0].UsuarioID)
		}
	})
}
