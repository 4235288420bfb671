package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/models"
	"github.com/unicef/hope-grievance/internal/services"
	"go.uber.org/zap"
)

func TestSessionReaper(t *testing.T) {
	f := newFixture(t, editIndividualTicket)
	_, err := f.svc.OpenCreate(context.Background(), services.CreateRequest{Category: models.CategoryPositiveFeedback}, ana)
	require.NoError(t, err)
	require.Equal(t, 1, f.svc.Count())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		services.NewSessionReaper(f.svc, time.Nanosecond, zap.NewNop().Sugar()).Start(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return f.svc.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
