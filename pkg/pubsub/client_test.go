package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/expresskart/expresskart-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	require.Equal(t, "projects/p1/topics/orders", topicResourceName("p1", " orders "))
	require.Equal(t, "projects/x/topics/y", topicResourceName("p1", "projects/x/topics/y"))
	require.Empty(t, topicResourceName("", "orders"))
	require.Empty(t, topicResourceName("p1", " "))
}

func TestTopicNames(t *testing.T) {
	require.Empty(t, topicNames(config.PubSubConfig{}))
	require.Equal(t, []string{"ek-order-events"}, topicNames(config.PubSubConfig{OrdersTopic: "ek-order-events"}))
}

func TestClientOptions(t *testing.T) {
	require.Nil(t, clientOptions(config.GCPConfig{}))
	require.Len(t, clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`}), 1)
	require.Len(t, clientOptions(config.GCPConfig{ApplicationCredentials: "/secrets/sa.json"}), 1)
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "t"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	var c *Client
	require.Error(t, c.Ping(context.Background()))
	require.Nil(t, c.Publisher("orders"))
	require.NoError(t, c.Close())
}
