package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/irfndi/statspulse-go/internal/credential"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/upstream"
	"github.com/irfndi/statspulse-go/internal/window"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newNumberService(t *testing.T, capacity int, token string) (*NumberService, *MockNumberSource, *credential.Store) {
	t.Helper()
	source := &MockNumberSource{}
	creds := credential.NewStore(token, "Bearer", nil)
	svc := NewNumberService(window.New(capacity), source, creds, 100*time.Millisecond, quietLogger())
	return svc, source, creds
}

func TestNumberService_Fetch(t *testing.T) {
	svc, source, _ := newNumberService(t, 10, "token")
	source.On("GetNumbers", mock.Anything, models.NumberKindEven).Return([]float64{2, 4, 6, 8}, nil).Once()
	source.On("GetNumbers", mock.Anything, models.NumberKindEven).Return([]float64{6, 8, 10}, nil).Once()

	first, err := svc.Fetch(context.Background(), models.NumberKindEven)
	require.NoError(t, err)
	assert.Empty(t, first.WindowPrevState)
	assert.Equal(t, []float64{2, 4, 6, 8}, first.WindowCurrState)
	assert.Equal(t, []float64{2, 4, 6, 8}, first.Numbers)
	assert.Equal(t, "5.00", first.Avg)
	assert.Empty(t, first.Error)

	second, err := svc.Fetch(context.Background(), models.NumberKindEven)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 6, 8}, second.WindowPrevState)
	assert.Equal(t, []float64{2, 4, 6, 8, 10}, second.WindowCurrState)
	assert.Equal(t, []float64{6, 8, 10}, second.Numbers)
	assert.Equal(t, "6.00", second.Avg)

	source.AssertExpectations(t)
}

func TestNumberService_FetchEmptyWindowAverage(t *testing.T) {
	svc, source, _ := newNumberService(t, 10, "token")
	source.On("GetNumbers", mock.Anything, models.NumberKindRandom).Return([]float64{}, nil)

	resp, err := svc.Fetch(context.Background(), models.NumberKindRandom)
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.Avg)
	assert.NotNil(t, resp.Numbers)
}

func TestNumberService_FetchAppliesTimeout(t *testing.T) {
	svc, source, _ := newNumberService(t, 10, "token")
	source.On("GetNumbers", mock.Anything, models.NumberKindPrime).Return([]float64{2}, nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(100*time.Millisecond), deadline, 100*time.Millisecond)
	})

	_, err := svc.Fetch(context.Background(), models.NumberKindPrime)
	require.NoError(t, err)
}

func TestNumberService_NoCredential(t *testing.T) {
	svc, source, _ := newNumberService(t, 10, "")

	resp, err := svc.Fetch(context.Background(), models.NumberKindPrime)
	assert.ErrorIs(t, err, ErrCredentialUnavailable)
	assert.Empty(t, resp.WindowCurrState)
	assert.Equal(t, "0.00", resp.Avg)
	source.AssertNotCalled(t, "GetNumbers", mock.Anything, mock.Anything)
}

func TestNumberService_UnauthorizedInvalidatesCredential(t *testing.T) {
	svc, source, creds := newNumberService(t, 10, "token")
	source.On("GetNumbers", mock.Anything, models.NumberKindFibonacci).Return([]float64{1, 2, 3}, nil).Once()
	source.On("GetNumbers", mock.Anything, models.NumberKindFibonacci).
		Return(nil, &upstream.StatusError{StatusCode: 401, Body: "expired"}).Once()

	_, err := svc.Fetch(context.Background(), models.NumberKindFibonacci)
	require.NoError(t, err)

	resp, err := svc.Fetch(context.Background(), models.NumberKindFibonacci)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []float64{1, 2, 3}, resp.WindowPrevState)
	assert.Equal(t, []float64{1, 2, 3}, resp.WindowCurrState)
	assert.Empty(t, resp.Numbers)
	assert.Equal(t, "2.00", resp.Avg)
	assert.Equal(t, credential.StateInvalid, creds.State())

	// Later requests short-circuit without reaching upstream.
	_, err = svc.Fetch(context.Background(), models.NumberKindFibonacci)
	assert.ErrorIs(t, err, ErrCredentialUnavailable)
	source.AssertNumberOfCalls(t, "GetNumbers", 2)
}

func TestNumberService_UpstreamFailureLeavesWindowUnchanged(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"server error", &upstream.StatusError{StatusCode: 500}},
		{"timeout", upstream.ErrTimeout},
		{"invalid payload", upstream.ErrInvalidPayload},
		{"network", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, source, creds := newNumberService(t, 3, "token")
			source.On("GetNumbers", mock.Anything, models.NumberKindEven).Return([]float64{2, 4}, nil).Once()
			source.On("GetNumbers", mock.Anything, models.NumberKindEven).Return(nil, tt.err).Once()

			_, err := svc.Fetch(context.Background(), models.NumberKindEven)
			require.NoError(t, err)

			resp, err := svc.Fetch(context.Background(), models.NumberKindEven)
			assert.ErrorIs(t, err, ErrUpstreamFailure)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []float64{2, 4}, resp.WindowCurrState)
			assert.Equal(t, "3.00", resp.Avg)
			assert.Equal(t, credential.StateValid, creds.State())
		})
	}
}
