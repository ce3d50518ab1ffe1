// Package firebase initializes the vendor SDK clients. When the
// service is not configured for Firebase outside production, it hands
// back a disabled client so the rest of the service stays up with
// inert backends.
package firebase

import (
	"context"
	"encoding/base64"
	"log"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"spendly/backend/config"
)

// Client bundles the initialized vendor SDK handles.
type Client struct {
	App       *fb.App
	Auth      *auth.Client
	Firestore *firestore.Client

	disabled bool
}

// Disabled reports whether the vendor backend is unavailable and
// callers should use the inert stand-ins.
func (c *Client) Disabled() bool {
	return c.disabled
}

// NewDisabledClient returns the stand-in used when Firebase is not
// configured.
func NewDisabledClient() *Client {
	return &Client{disabled: true}
}

// Init builds the Firebase app, auth client and Firestore client from
// the configured credentials.
func Init(ctx context.Context, cfg *config.Config) (*Client, error) {
	opt, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	if err != nil {
		log.Printf("Error initializing Firebase app: %v", err)
		return nil, err
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		log.Printf("Error getting Firebase Auth client: %v", err)
		return nil, err
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Printf("Error getting Firestore client: %v", err)
		return nil, err
	}

	log.Println("Firebase Admin SDK initialized successfully")
	return &Client{App: app, Auth: authClient, Firestore: fsClient}, nil
}

func credentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseCredentialsJSON != "" {
		log.Println("Using JSON Firebase credentials from environment")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)), nil
	}

	if cfg.FirebaseCredentialsBase64 != "" {
		log.Println("Using base64-encoded Firebase credentials from environment")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredentialsBase64)
		if err != nil {
			log.Printf("Error decoding base64 Firebase credentials: %v", err)
			return nil, err
		}
		return option.WithCredentialsJSON(decoded), nil
	}

	log.Printf("Using Firebase credentials file: %s", cfg.FirebaseCredentialsFile)
	return option.WithCredentialsFile(cfg.FirebaseCredentialsFile), nil
}
