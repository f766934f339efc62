// internal/infra/firestore/client_test.go
package firestoreinfra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyProjectID(t *testing.T) {
	_, err := New(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projectID is empty")
}

func TestPingNilClient(t *testing.T) {
	var c *Client
	assert.Error(t, c.Ping(context.Background()))
	assert.Error(t, (&Client{}).Ping(context.Background()))
}

func TestCloseNilClient(t *testing.T) {
	var c *Client
	assert.NoError(t, c.Close())
	assert.NoError(t, (&Client{}).Close())
}
