// internal/infra/firestore/client.go
package firestoreinfra

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// Client owns the Firestore connection for the service: construction,
// a connectivity probe used during strict startup, and Close.
type Client struct {
	Raw       *firestore.Client
	ProjectID string
}

// New connects to Firestore. An empty credentialsFile means Application
// Default Credentials.
func New(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("firestoreinfra: projectID is empty")
	}

	var opts []option.ClientOption
	if credentialsFile = strings.TrimSpace(credentialsFile); credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	raw, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestoreinfra: connect (project=%s): %w", projectID, err)
	}

	return &Client{Raw: raw, ProjectID: projectID}, nil
}

// Ping verifies the connection actually works. Firestore has no ping API;
// listing the root collections is the cheapest round trip.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.Raw == nil {
		return fmt.Errorf("firestoreinfra: client is nil")
	}
	if _, err := c.Raw.Collections(ctx).GetAll(); err != nil {
		return fmt.Errorf("firestoreinfra: ping failed: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if c == nil || c.Raw == nil {
		return nil
	}
	return c.Raw.Close()
}
