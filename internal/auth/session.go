package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/logger"
	"finanzas/internal/models"
	"finanzas/internal/services"
)

// Estado is the sign-in state machine: Loading while a call is in flight,
// then exactly one of Authenticated, Unauthenticated or Error.
type Estado string

const (
	EstadoLoading         Estado = "loading"
	EstadoAuthenticated   Estado = "authenticated"
	EstadoUnauthenticated Estado = "unauthenticated"
	EstadoError           Estado = "error"
)

// Sesion is the observable session state handed to the presentation layer.
type Sesion struct {
	Estado  Estado
	Usuario *models.Usuario
	Token   string
	// Mensaje carries the human-readable message of an Error state.
	Mensaje string
}

// Sincronizador is the slice of the sync reconciler the session flow
// needs. Nil disables sync.
type Sincronizador interface {
	PullAndMerge(ctx context.Context, usuarioID string) error
}

// SessionManager drives sign-in/sign-up/sign-out against the auth
// provider and runs the bootstrap-or-sync branch on success: a brand-new
// account gets its default categories before any pull (there is nothing
// remote to merge yet); a known account gets a pull-and-merge.
type SessionManager struct {
	provider  Provider
	usuarios  services.UsuarioServicer
	provision services.ProvisionServicer
	sync      Sincronizador
	log       *zap.SugaredLogger
}

// NewSessionManager creates a SessionManager. sync may be nil.
func NewSessionManager(provider Provider, usuarios services.UsuarioServicer, provision services.ProvisionServicer, sync Sincronizador) *SessionManager {
	return &SessionManager{
		provider:  provider,
		usuarios:  usuarios,
		provision: provision,
		sync:      sync,
		log:       logger.Named("session"),
	}
}

// SignIn authenticates and establishes the local session. Auth failures
// come back as an Error state without touching any persisted local state.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) Sesion {
	cuenta, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return Sesion{Estado: EstadoError, Mensaje: err.Error()}
	}
	return m.establecer(ctx, cuenta)
}

// SignUp registers a new account and establishes the local session.
func (m *SessionManager) SignUp(ctx context.Context, email, password, displayName string) Sesion {
	cuenta, err := m.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return Sesion{Estado: EstadoError, Mensaje: err.Error()}
	}
	return m.establecer(ctx, cuenta)
}

// SignOut clears the local session.
func (m *SessionManager) SignOut(ctx context.Context) Sesion {
	if usuario, err := m.usuarios.GetUsuarioActivo(); err == nil {
		if err := m.provider.SignOut(ctx, usuario.UID); err != nil {
			m.log.Warnw("provider sign-out failed", "error", err)
		}
	}
	if err := m.usuarios.DesactivarTodos(); err != nil {
		return Sesion{Estado: EstadoError, Mensaje: err.Error()}
	}
	return Sesion{Estado: EstadoUnauthenticated}
}

// Actual returns the current session derived from the local store.
func (m *SessionManager) Actual() Sesion {
	usuario, err := m.usuarios.GetUsuarioActivo()
	if err != nil {
		return Sesion{Estado: EstadoUnauthenticated}
	}
	return Sesion{Estado: EstadoAuthenticated, Usuario: usuario}
}

// establecer activates the account locally, then bootstraps or syncs.
// Sync failures are best-effort: they are logged and the session is still
// Authenticated (local-first model).
func (m *SessionManager) establecer(ctx context.Context, cuenta *Cuenta) Sesion {
	usuario, err := m.usuarios.GetUsuarioByUID(cuenta.UID)
	esNueva := cuenta.EsNueva
	switch {
	case errors.Is(err, apperrors.ErrUsuarioNotFound):
		// First sign-in of an externally-created account on this device.
		esNueva = true
		usuario = &models.Usuario{UID: cuenta.UID, Proveedor: cuenta.Proveedor}
	case err != nil:
		return Sesion{Estado: EstadoError, Mensaje: err.Error()}
	}

	usuario.Email = cuenta.Email
	if cuenta.DisplayName != "" {
		usuario.DisplayName = cuenta.DisplayName
	}
	if cuenta.PhotoURL != "" {
		usuario.PhotoURL = cuenta.PhotoURL
	}

	usuario, err = m.usuarios.ActivarUsuario(usuario)
	if err != nil {
		return Sesion{Estado: EstadoError, Mensaje: err.Error()}
	}

	if esNueva {
		// A brand-new account has no remote data; provision before any pull.
		if err := m.provision.EnsureDefaults(usuario.UID); err != nil {
			m.log.Warnw("default category provisioning failed", "usuario", usuario.UID, "error", err)
		}
	} else if m.sync != nil {
		if err := m.sync.PullAndMerge(ctx, usuario.UID); err != nil {
			m.log.Warnw("sign-in sync pull failed", "usuario", usuario.UID, "error", err)
		}
	}

	return Sesion{Estado: EstadoAuthenticated, Usuario: usuario, Token: cuenta.Token}
}
