package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-rinsight/pkg/rinsight"
)

func TestNewServiceOpensSessions(t *testing.T) {
	service := NewService(Options{Backend: rinsight.NewMockClient(rinsight.DemoData())})
	ctrl, err := service.Open(context.Background(), "")
	require.NoError(t, err)

	var snap ViewSnapshot = ctrl.Snapshot(context.Background())
	assert.Equal(t, ctrl.SessionID(), snap.SessionID)
	assert.Equal(t, 1, service.Sessions())
}
