package live

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/maxviazov/volleyball-scoreboard/internal/config"
	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

// ClientOptions turns the configured credentials into Google API client options.
// With neither JSON nor a file configured, application default credentials apply.
func ClientOptions(cfg config.LiveConfig) []option.ClientOption {
	switch {
	case cfg.CredentialsJSON != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}
	case cfg.CredentialsFile != "":
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
	default:
		return nil
	}
}

// NewFirebaseApp initializes the Firebase app used by the Realtime Database publisher.
func NewFirebaseApp(ctx context.Context, cfg config.LiveConfig) (*firebase.App, error) {
	fbCfg := &firebase.Config{DatabaseURL: cfg.DatabaseURL, ProjectID: cfg.ProjectID}
	app, err := firebase.NewApp(ctx, fbCfg, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}

// RealtimeDBPublisher overwrites a single Realtime Database node with the snapshot,
// which is what live viewers subscribe to.
type RealtimeDBPublisher struct {
	client *db.Client
	path   string
}

func NewRealtimeDBPublisher(ctx context.Context, app *firebase.App, path string) (*RealtimeDBPublisher, error) {
	if app == nil {
		return nil, errors.New("firebase app is required")
	}
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open realtime database: %w", err)
	}
	return &RealtimeDBPublisher{client: client, path: path}, nil
}

func (p *RealtimeDBPublisher) Name() string { return "rtdb" }

func (p *RealtimeDBPublisher) Publish(ctx context.Context, snap match.Snapshot) error {
	if err := p.client.NewRef(p.path).Set(ctx, snap); err != nil {
		return fmt.Errorf("set %s: %w", p.path, err)
	}
	return nil
}

// FirestorePublisher mirrors the snapshot into one Firestore document.
type FirestorePublisher struct {
	client     *firestore.Client
	collection string
	document   string
}

func NewFirestoreClient(ctx context.Context, cfg config.LiveConfig) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID, ClientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

func NewFirestorePublisher(client *firestore.Client, collection, document string) *FirestorePublisher {
	return &FirestorePublisher{client: client, collection: collection, document: document}
}

func (p *FirestorePublisher) Name() string { return "firestore" }

func (p *FirestorePublisher) Publish(ctx context.Context, snap match.Snapshot) error {
	if _, err := p.client.Collection(p.collection).Doc(p.document).Set(ctx, snap); err != nil {
		return fmt.Errorf("set %s/%s: %w", p.collection, p.document, err)
	}
	return nil
}
