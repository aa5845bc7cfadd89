package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/infrastructure/resilience"
)

func classifyNATSError(err error) resilience.Verdict {
	if err == nil {
		return resilience.Verdict{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Verdict{}
	}
	if resilience.IsCircuitOpen(err) || isConnectivityError(err) {
		return resilience.Verdict{Retry: true, Trip: true}
	}
	return resilience.Verdict{Trip: true}
}

func isConnectivityError(err error) bool {
	return errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionReconnecting) ||
		errors.Is(err, nats.ErrDisconnected)
}

// wrapTemporaryIfNeeded marks connectivity failures so callers can answer 503.
func wrapTemporaryIfNeeded(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retry {
		return domain.WrapError(domain.ErrTemporary, "nats", err)
	}
	return err
}
