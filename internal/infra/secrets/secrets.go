// internal/infra/secrets/secrets.go
package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Access fetches one secret value from Secret Manager.
// name may be a full resource name ("projects/.../secrets/.../versions/...")
// or a bare secret id, in which case projectID and "latest" are assumed.
func Access(ctx context.Context, sm *secretmanager.Client, projectID, name string) (string, error) {
	if sm == nil {
		return "", errors.New("secrets: secretmanager client is nil")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: secret name is empty")
	}

	if !strings.HasPrefix(name, "projects/") {
		prj := strings.TrimSpace(projectID)
		if prj == "" {
			return "", errors.New("secrets: projectID is empty")
		}
		name = "projects/" + prj + "/secrets/" + name + "/versions/latest"
	}

	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("secrets: empty payload (" + name + ")")
	}

	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
