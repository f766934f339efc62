// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	appcfg "savora/internal/infra/config"
	"savora/internal/infra/database"
	firestoreinfra "savora/internal/infra/firestore"
	"savora/internal/infra/secrets"
)

// Infra is shared runtime infrastructure for DI.
//   - owns external clients (Firestore/FirebaseAuth/GCS/SecretManager/Postgres)
//   - owns config-resolved runtime settings
//
// Infra must NOT depend on routers, handlers, or usecases.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string
	Logger    *zap.Logger

	// Clients (owned; Close-managed)
	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	DB            *database.DB

	// Resolved once at startup
	SendGridAPIKey string
}

// NewInfra initializes shared infra.
// Firestore and Firebase Auth are strict (return error): without them there
// is no cart persistence and no authenticated customer. GCS, SecretManager
// and Postgres are best-effort (warn + continue); their features degrade.
func NewInfra(ctx context.Context, cfg *appcfg.Config, logger *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("shared.infra: projectID is empty (set GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
		Logger:    logger,
	}

	// Credentials file (optional; mainly for local dev)
	var clientOpts []option.ClientOption
	if credFile := strings.TrimSpace(cfg.CredentialsFile); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		logger.Info("using credentials file for GCP clients")
	} else {
		logger.Info("using Application Default Credentials")
	}

	// 1) Firestore (strict; verified with a ping before anything else starts)
	{
		fs, err := firestoreinfra.New(ctx, projectID, cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		if err := fs.Ping(ctx); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Firestore = fs.Raw
		logger.Info("firestore connected", zap.String("project", projectID))
	}

	// 2) Firebase App/Auth (strict)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: firebase app init failed: %w", err)
		}
		inf.FirebaseApp = fbApp

		authClient, err := fbApp.Auth(ctx)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: firebase auth init failed: %w", err)
		}
		inf.FirebaseAuth = authClient
		logger.Info("firebase auth initialized")
	}

	// 3) GCS (best-effort; receipt archiving degrades without it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			logger.Warn("storage.NewClient failed, receipt archiving disabled", zap.Error(err))
			gcsClient = nil
		}
		inf.GCS = gcsClient
	}

	// 4) Secret Manager (best-effort)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			logger.Warn("secretmanager.NewClient failed", zap.Error(err))
			sm = nil
		}
		inf.SecretManager = sm
	}

	// 5) SendGrid key: Secret Manager wins over the env value
	inf.SendGridAPIKey = strings.TrimSpace(cfg.SendGridAPIKey)
	if name := strings.TrimSpace(cfg.SendGridSecretName); name != "" && inf.SecretManager != nil {
		key, err := secrets.Access(ctx, inf.SecretManager, projectID, name)
		if err != nil {
			logger.Warn("sendgrid secret lookup failed, falling back to env", zap.Error(err))
		} else {
			inf.SendGridAPIKey = key
		}
	}
	if inf.SendGridAPIKey == "" {
		logger.Warn("sendgrid api key not configured, confirmation mail disabled")
	}

	// 6) Postgres (best-effort; order recording degrades without it)
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		db, err := database.NewConnection(ctx, dsn)
		if err != nil {
			logger.Warn("postgres connection failed, order recording disabled", zap.Error(err))
		} else {
			inf.DB = db
			logger.Info("postgres connected")
		}
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.DB != nil {
		_ = i.DB.Close()
	}
	return nil
}
