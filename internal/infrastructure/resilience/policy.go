package resilience

import "time"

// Policy bounds retries and the per-operation circuit breaker.
type Policy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	Breaker BreakerPolicy
}

type BreakerPolicy struct {
	Enabled          bool
	MinRequests      uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:       3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
		Multiplier:     2.0,
		Breaker: BreakerPolicy{
			Enabled:          true,
			MinRequests:      10,
			FailureRatio:     0.5,
			OpenTimeout:      30 * time.Second,
			HalfOpenMaxCalls: 2,
		},
	}
}

func (p Policy) withDefaults() Policy {
	out := p
	def := DefaultPolicy()

	if out.Attempts <= 0 {
		out.Attempts = def.Attempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = def.Multiplier
	}

	b := &out.Breaker
	if b.MinRequests == 0 {
		b.MinRequests = def.Breaker.MinRequests
	}
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		b.FailureRatio = def.Breaker.FailureRatio
	}
	if b.OpenTimeout <= 0 {
		b.OpenTimeout = def.Breaker.OpenTimeout
	}
	if b.HalfOpenMaxCalls == 0 {
		b.HalfOpenMaxCalls = def.Breaker.HalfOpenMaxCalls
	}
	return out
}

// backoff returns the wait before attempt n+1.
func (p Policy) backoff(n int) time.Duration {
	wait := p.InitialBackoff
	for i := 1; i < n; i++ {
		wait = time.Duration(float64(wait) * p.Multiplier)
		if wait >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return wait
}
