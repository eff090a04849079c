package main

import (
	"context"
	"net/http"
	"os"

	"finanzas/internal/auth"
	"finanzas/internal/config"
	"finanzas/internal/database"
	"finanzas/internal/locale"
	"finanzas/internal/logger"
	"finanzas/internal/remote"
	"finanzas/internal/services"
	"finanzas/internal/syncer"
	"finanzas/internal/watch"
)

// App bundles the wired data layer handed to the presentation layer.
// There is no CLI surface; consumers call the services directly.
type App struct {
	Usuarios      services.UsuarioServicer
	Categorias    services.CategoriaServicer
	Transacciones services.TransaccionServicer
	Ahorros       services.AhorroServicer
	Estadisticas  services.EstadisticasServicer
	Provision     services.ProvisionServicer
	Sessions      *auth.SessionManager
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	manager, err := database.NewManager(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	if err := manager.RunMigrations(); err != nil {
		return err
	}

	db := manager.DB()
	hub := watch.NewHub()

	// Remote sync only engages when a remote store is configured; the data
	// layer is fully functional offline.
	var reconciler *syncer.Reconciler
	var push services.RemotePusher
	var sync auth.Sincronizador
	if cfg.RemoteBaseURL != "" {
		remoteStore := remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteAPIKey,
			&http.Client{Timeout: cfg.RemoteTimeout})
		reconciler = syncer.New(remoteStore, nil, nil, cfg.RemoteTimeout)
		push = reconciler
		sync = reconciler
	}

	usuarios := services.NewUsuarioService(db, hub)
	transacciones := services.NewTransaccionService(db, hub, push)
	ahorros := services.NewAhorroService(db, hub, push)
	provision := services.NewProvisionService(db, hub, locale.NewCatalog(), cfg.DefaultLocale)
	if reconciler != nil {
		reconciler.Bind(transacciones, ahorros)
		defer reconciler.Wait()
	}

	provider := auth.NewLocalProvider(db, cfg.JWTSecret, cfg.JWTExpirationDur)

	app := &App{
		Usuarios:      usuarios,
		Categorias:    services.NewCategoriaService(db, hub),
		Transacciones: transacciones,
		Ahorros:       ahorros,
		Estadisticas:  services.NewEstadisticasService(db),
		Provision:     provision,
		Sessions:      auth.NewSessionManager(provider, usuarios, provision, sync),
	}

	// Re-establish the previous session, if any, so defaults exist and the
	// local mirror is fresh before the presentation layer attaches.
	if usuario, err := app.Usuarios.GetUsuarioActivo(); err == nil {
		if err := app.Provision.EnsureDefaults(usuario.UID); err != nil {
			logger.Get().Warnf("default provisioning failed: %v", err)
		}
		if sync != nil {
			if err := sync.PullAndMerge(context.Background(), usuario.UID); err != nil {
				logger.Get().Warnf("startup sync pull failed: %v", err)
			}
		}
	}

	logger.Get().Infow("data layer ready",
		"driver", cfg.DBDriver, "sync", cfg.RemoteBaseURL != "")
	return nil
}
