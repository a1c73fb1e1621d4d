package shared

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretSource resolves application secrets. The server's API key may live in
// GCP Secret Manager instead of the image environment so that rotating it does
// not require rebuilding the enclave image.
type SecretSource interface {
	AccessLatest(ctx context.Context, projectID, secretID string) ([]byte, error)
}

type gcpSecretSource struct {
	client *secretmanager.Client
}

// NewGCPSecretSource creates a Secret Manager backed SecretSource using
// ambient credentials.
func NewGCPSecretSource(ctx context.Context) (SecretSource, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %v", err)
	}
	return &gcpSecretSource{client: c}, nil
}

func (g *gcpSecretSource) AccessLatest(ctx context.Context, projectID, secretID string) ([]byte, error) {
	resp, err := g.client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretID),
	})
	if err != nil {
		return nil, err
	}
	return resp.Payload.GetData(), nil
}

// ResolveAPIKey returns the weather API key: the API_KEY environment variable
// when set, otherwise the latest version of the named Secret Manager secret.
func ResolveAPIKey(ctx context.Context, source SecretSource) (string, error) {
	if key := GetEnvOrDefault("API_KEY", ""); key != "" {
		return key, nil
	}

	secretName := GetEnvOrDefault("API_KEY_SECRET_NAME", "")
	projectID := GetEnvOrDefault("GCP_PROJECT_ID", "")
	if secretName == "" || projectID == "" {
		return "", fmt.Errorf("API_KEY not set and no API_KEY_SECRET_NAME/GCP_PROJECT_ID configured")
	}

	if source == nil {
		var err error
		source, err = NewGCPSecretSource(ctx)
		if err != nil {
			return "", err
		}
	}

	payload, err := source.AccessLatest(ctx, projectID, secretName)
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %v", secretName, err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("secret %s has an empty payload", secretName)
	}
	return string(payload), nil
}
