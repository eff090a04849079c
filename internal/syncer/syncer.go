// Package syncer mirrors local authoritative state to and from the remote
// per-user document store. Pushes are fire-and-forget: local writes never
// wait on, or fail because of, the remote. Pulls merge document-by-document
// with per-document error isolation.
package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/logger"
	"finanzas/internal/models"
	"finanzas/internal/remote"
	"finanzas/internal/services"
)

// Reconciler implements services.RemotePusher and the pull-and-merge side
// of sync. Document keys are the local entity ids, so repeated pushes of
// the same entity converge (last write wins at document granularity).
type Reconciler struct {
	remote        remote.Store
	transacciones services.TransaccionServicer
	ahorros       services.AhorroServicer
	timeout       time.Duration
	log           *zap.SugaredLogger

	wg sync.WaitGroup
}

// New creates a Reconciler. timeout bounds each remote call dispatched in
// the background.
func New(remoteStore remote.Store, transacciones services.TransaccionServicer, ahorros services.AhorroServicer, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reconciler{
		remote:        remoteStore,
		transacciones: transacciones,
		ahorros:       ahorros,
		timeout:       timeout,
		log:           logger.Named("syncer"),
	}
}

// Bind attaches the local services the reconciler merges into and reads
// from. Split from New because the services take the reconciler as their
// pusher, so one side has to be wired after construction.
func (r *Reconciler) Bind(transacciones services.TransaccionServicer, ahorros services.AhorroServicer) {
	r.transacciones = transacciones
	r.ahorros = ahorros
}

// PullAndMerge fetches all remote transactions and savings goals for the
// user and upserts them locally. A malformed or failing document is logged
// and skipped; it never aborts the rest of the batch. Only a failure to
// list a collection is returned, and even that is safe for callers to log
// and ignore (local state is untouched).
func (r *Reconciler) PullAndMerge(ctx context.Context, usuarioID string) error {
	if err := r.pullTransacciones(ctx, usuarioID); err != nil {
		return err
	}
	return r.pullAhorros(ctx, usuarioID)
}

func (r *Reconciler) pullTransacciones(ctx context.Context, usuarioID string) error {
	path := remote.Path{UsuarioID: usuarioID, Coleccion: remote.ColeccionTransacciones}
	docs, err := r.remote.ListAll(ctx, path)
	if err != nil {
		r.log.Warnw("remote transaction listing failed", "usuario", usuarioID, "error", err)
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}

	merged := 0
	for _, doc := range docs {
		transaccion, err := transaccionFromDocument(usuarioID, doc)
		if err != nil {
			r.log.Warnw("skipping malformed remote transaction", "usuario", usuarioID, "error", err)
			continue
		}
		if err := r.transacciones.SaveTransaccion(transaccion); err != nil {
			r.log.Warnw("failed to merge remote transaction", "id", transaccion.ID, "error", err)
			continue
		}
		merged++
	}
	r.log.Infow("merged remote transactions", "usuario", usuarioID, "merged", merged, "total", len(docs))
	return nil
}

func (r *Reconciler) pullAhorros(ctx context.Context, usuarioID string) error {
	path := remote.Path{UsuarioID: usuarioID, Coleccion: remote.ColeccionAhorros}
	docs, err := r.remote.ListAll(ctx, path)
	if err != nil {
		r.log.Warnw("remote savings listing failed", "usuario", usuarioID, "error", err)
		return apperrors.Wrap(apperrors.ErrRemoteUnavailable, err)
	}

	merged := 0
	for _, doc := range docs {
		ahorro, err := ahorroFromDocument(usuarioID, doc)
		if err != nil {
			r.log.Warnw("skipping malformed remote savings goal", "usuario", usuarioID, "error", err)
			continue
		}
		if err := r.ahorros.SaveAhorro(ahorro); err != nil {
			r.log.Warnw("failed to merge remote savings goal", "id", ahorro.ID, "error", err)
			continue
		}
		merged++
	}
	r.log.Infow("merged remote savings goals", "usuario", usuarioID, "merged", merged, "total", len(docs))
	return nil
}

// PushAll re-syncs every local transaction and savings goal of the user to
// the remote store, sequentially, logging per-document failures.
func (r *Reconciler) PushAll(ctx context.Context, usuarioID string) error {
	transacciones, err := r.transacciones.GetTransacciones(usuarioID, services.TransaccionFilter{})
	if err != nil {
		return err
	}
	for i := range transacciones {
		t := &transacciones[i]
		path := remote.Path{UsuarioID: t.UsuarioID, Coleccion: remote.ColeccionTransacciones, DocumentoID: t.ID}
		if err := r.remote.Set(ctx, path, documentFromTransaccion(t)); err != nil {
			r.log.Warnw("bulk push failed", "path", path.String(), "error", err)
		}
	}

	ahorros, err := r.ahorros.GetAhorros(usuarioID)
	if err != nil {
		return err
	}
	for i := range ahorros {
		a := &ahorros[i]
		path := remote.Path{UsuarioID: a.UsuarioID, Coleccion: remote.ColeccionAhorros, DocumentoID: a.ID}
		if err := r.remote.Set(ctx, path, documentFromAhorro(a)); err != nil {
			r.log.Warnw("bulk push failed", "path", path.String(), "error", err)
		}
	}
	return nil
}

// PushTransaccion mirrors a written transaction to the remote store in the
// background.
func (r *Reconciler) PushTransaccion(t *models.Transaccion) {
	path := remote.Path{UsuarioID: t.UsuarioID, Coleccion: remote.ColeccionTransacciones, DocumentoID: t.ID}
	doc := documentFromTransaccion(t)
	r.dispatch("push transaction", path, func(ctx context.Context) error {
		return r.remote.Set(ctx, path, doc)
	})
}

// DeleteTransaccionRemota mirrors a local transaction delete.
func (r *Reconciler) DeleteTransaccionRemota(usuarioID, transaccionID string) {
	path := remote.Path{UsuarioID: usuarioID, Coleccion: remote.ColeccionTransacciones, DocumentoID: transaccionID}
	r.dispatch("delete transaction", path, func(ctx context.Context) error {
		return r.remote.Delete(ctx, path)
	})
}

// PushAhorro mirrors a written savings goal with full-overwrite semantics.
func (r *Reconciler) PushAhorro(a *models.Ahorro) {
	path := remote.Path{UsuarioID: a.UsuarioID, Coleccion: remote.ColeccionAhorros, DocumentoID: a.ID}
	doc := documentFromAhorro(a)
	r.dispatch("push savings goal", path, func(ctx context.Context) error {
		return r.remote.Set(ctx, path, doc)
	})
}

// DeleteAhorroRemoto mirrors a local savings goal delete.
func (r *Reconciler) DeleteAhorroRemoto(usuarioID, ahorroID string) {
	path := remote.Path{UsuarioID: usuarioID, Coleccion: remote.ColeccionAhorros, DocumentoID: ahorroID}
	r.dispatch("delete savings goal", path, func(ctx context.Context) error {
		return r.remote.Delete(ctx, path)
	})
}

// dispatch runs the remote call on its own goroutine with a bounded
// context. The outcome is only logged; callers never see it.
func (r *Reconciler) dispatch(op string, path remote.Path, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.log.Warnw("remote sync failed", "op", op, "path", path.String(), "error", err)
		}
	}()
}

// Wait blocks until all in-flight background pushes finish. Used on
// shutdown and in tests.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
