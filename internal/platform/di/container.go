// internal/platform/di/container.go
package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	httpin "savora/internal/adapters/in/http"
	"savora/internal/adapters/in/http/handler"
	"savora/internal/adapters/in/http/middleware"
	dbout "savora/internal/adapters/out/db"
	fsout "savora/internal/adapters/out/firestore"
	gcsout "savora/internal/adapters/out/gcs"
	httpout "savora/internal/adapters/out/http"
	mailout "savora/internal/adapters/out/mail"
	"savora/internal/application/cartstore"
	uc "savora/internal/application/usecase"
	appcfg "savora/internal/infra/config"
	"savora/internal/platform/di/shared"
)

// Container wires infra -> adapters -> usecases -> handlers.
type Container struct {
	Infra    *shared.Infra
	Registry *cartstore.Registry
	Checkout *uc.CheckoutUsecase

	logger *zap.Logger
}

// New builds the full object graph. Optional collaborators (recorder,
// archiver, mailer) are wired only when their client is available; the
// checkout usecase treats them as best-effort.
func New(ctx context.Context, cfg *appcfg.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	inf, err := shared.NewInfra(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sink := fsout.NewCartSnapshotFS(inf.Firestore)
	registry := cartstore.NewRegistry(sink, logger, cfg.PersistDebounce)

	deps := uc.CheckoutDeps{
		Resolver:       httpout.NewDeliveryResolverClient(cfg.DeliveryAPIBaseURL),
		Submitter:      httpout.NewOrderSubmissionClient(cfg.OrderAPIBaseURL, cfg.OrderAPIToken),
		MailFrom:       cfg.MailFrom,
		ResolveTimeout: cfg.ResolveTimeout,
		Logger:         logger,
	}

	if inf.DB != nil {
		deps.Recorder = dbout.NewOrderRecordPG(inf.DB.Client)
	}
	if inf.GCS != nil && cfg.ReceiptBucket != "" {
		deps.Archiver = gcsout.NewReceiptArchiveGCS(inf.GCS, cfg.ReceiptBucket)
	}
	if inf.SendGridAPIKey != "" {
		deps.Mailer = mailout.NewSendGridClient(inf.SendGridAPIKey, logger)
	}

	return &Container{
		Infra:    inf,
		Registry: registry,
		Checkout: uc.NewCheckoutUsecase(deps),
		logger:   logger,
	}, nil
}

// Register mounts the authenticated customer routes onto mux. Auth wraps
// each route here so /healthz (registered by main) stays public.
func (c *Container) Register(mux *http.ServeMux) {
	authmw := &middleware.UserAuth{FirebaseAuth: c.Infra.FirebaseAuth}

	cartHandler := handler.NewCartHandler(c.Registry, c.logger)
	checkoutHandler := handler.NewCheckoutHandler(c.Registry, c.Checkout, c.logger)

	httpin.Register(mux, httpin.Deps{
		Cart:     authmw.Handler(cartHandler),
		Checkout: authmw.Handler(checkoutHandler),
		Logger:   c.logger,
	})
}

// Shutdown flushes pending cart snapshots and closes owned clients.
func (c *Container) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Registry != nil {
		c.Registry.FlushAll(ctx)
	}
	if c.Infra != nil {
		_ = c.Infra.Close()
	}
}
