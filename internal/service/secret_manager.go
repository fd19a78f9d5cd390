package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/catalogomaker/backend/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

// SecretAccessFunc returns the payload of a fully qualified secret version name.
type SecretAccessFunc func(ctx context.Context, name string) (string, error)

// SecretResolver replaces secretmanager:// references in config with their values.
type SecretResolver struct {
	client    *secretmanager.Client
	projectID string
	access    SecretAccessFunc
}

func NewSecretResolver(ctx context.Context, cfg *config.Config) (*SecretResolver, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}

	var opts []option.ClientOption
	if cfg.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentialsFile))
	}
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	r := &SecretResolver{client: client, projectID: cfg.GCPProjectID}
	r.access = func(ctx context.Context, name string) (string, error) {
		result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return "", fmt.Errorf("failed to access secret version: %w", err)
		}
		return string(result.Payload.Data), nil
	}
	return r, nil
}

func (r *SecretResolver) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Resolve rewrites every secret-bearing field of cfg that holds a reference.
func (r *SecretResolver) Resolve(ctx context.Context, cfg *config.Config) error {
	for envName, field := range cfg.SecretFields() {
		if !config.IsSecretRef(*field) {
			continue
		}
		name := secretVersionName(r.projectID, *field)
		value, err := r.access(ctx, name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", envName, err)
		}
		*field = strings.TrimSpace(value)
	}
	return nil
}

// secretVersionName expands "secretmanager://stripe-key" to
// projects/<p>/secrets/stripe-key/versions/latest. Fully qualified names pass through.
func secretVersionName(projectID, ref string) string {
	name := strings.TrimPrefix(ref, config.SecretRefPrefix)
	if strings.HasPrefix(name, "projects/") {
		if !strings.Contains(name, "/versions/") {
			name += "/versions/latest"
		}
		return name
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, name)
}
