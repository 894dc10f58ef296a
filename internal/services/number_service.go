package services

import (
	"context"
	"errors"
	"time"

	"github.com/irfndi/statspulse-go/internal/credential"
	"github.com/irfndi/statspulse-go/internal/models"
	"github.com/irfndi/statspulse-go/internal/observability"
	"github.com/irfndi/statspulse-go/internal/window"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NumberSource fetches a number series from upstream.
type NumberSource interface {
	GetNumbers(ctx context.Context, kind models.NumberKind) ([]float64, error)
}

// NumberService feeds upstream number series into the sliding window.
type NumberService struct {
	window       *window.Window
	source       NumberSource
	creds        *credential.Store
	fetchTimeout time.Duration
	logger       *logrus.Logger
	tracer       trace.Tracer
}

// NewNumberService creates a NumberService. A non-positive fetchTimeout falls back
// to 500ms.
func NewNumberService(w *window.Window, source NumberSource, creds *credential.Store, fetchTimeout time.Duration, logger *logrus.Logger) *NumberService {
	if fetchTimeout <= 0 {
		fetchTimeout = 500 * time.Millisecond
	}
	return &NumberService{
		window:       w,
		source:       source,
		creds:        creds,
		fetchTimeout: fetchTimeout,
		logger:       logger,
		tracer:       otel.Tracer("statspulse/services"),
	}
}

// Fetch pulls the series for kind and merges it into the window.
//
// The response is always populated. On error it describes the unchanged window with
// no numbers, and the error is one of ErrCredentialUnavailable, ErrUnauthorized or
// ErrUpstreamFailure. An ErrUnauthorized also invalidates the held credential.
func (s *NumberService) Fetch(ctx context.Context, kind models.NumberKind) (models.NumbersResponse, error) {
	ctx, span := s.tracer.Start(ctx, "NumberService.Fetch",
		trace.WithAttributes(attribute.String("numbers.kind", string(kind))),
	)
	defer span.End()

	if _, err := s.creds.Authorization(); err != nil {
		s.logger.WithField("kind", kind).Warn("Access credential unavailable")
		span.SetStatus(codes.Error, err.Error())
		return s.unchanged(), ErrCredentialUnavailable
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	numbers, err := s.source.GetNumbers(fetchCtx, kind)
	if err != nil {
		err = classifyUpstreamError(err, true)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		fields := logrus.Fields{"kind": kind, "error": err.Error()}
		if errors.Is(err, ErrUnauthorized) {
			if s.creds.Invalidate() {
				s.logger.WithFields(fields).Error("Upstream rejected access credential, credential invalidated")
			}
		} else {
			s.logger.WithFields(fields).Warn("Failed to fetch numbers")
		}
		observability.CaptureException(ctx, err, map[string]string{"numbers.kind": string(kind)})
		return s.unchanged(), err
	}

	prev, curr := s.window.Update(numbers)
	span.SetAttributes(
		attribute.Int("numbers.fetched", len(numbers)),
		attribute.Int("window.size", len(curr)),
	)

	return models.NumbersResponse{
		WindowPrevState: prev,
		WindowCurrState: curr,
		Numbers:         nonNil(numbers),
		Avg:             FormatFixed(Mean(curr), 2),
	}, nil
}

func (s *NumberService) unchanged() models.NumbersResponse {
	snap := s.window.Snapshot()
	return models.NumbersResponse{
		WindowPrevState: snap,
		WindowCurrState: snap,
		Numbers:         []float64{},
		Avg:             FormatFixed(Mean(snap), 2),
	}
}

func nonNil(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}
