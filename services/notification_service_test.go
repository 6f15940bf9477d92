package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HodeX7/KDJeevraksha/models"
)

func TestNotificationServiceDisabledWithoutBroker(t *testing.T) {
	cfg := testConfig()
	cfg.MQTTBrokerURL = ""
	svc := NewNotificationService(cfg)

	require.NoError(t, svc.Connect())

	// Publishing while disconnected must be a silent no-op.
	assert.NotPanics(t, func() {
		svc.PublishCaseStatus("24-MAR-05-01", models.StatusDispatched)
	})
	assert.NotPanics(t, svc.Disconnect)
}
