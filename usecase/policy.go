package usecase

import (
	"go.uber.org/zap"

	"github.com/fastygo/storecore/internal/metrics"
)

// Policy decides what an endpoint serves when a scoring engine fails.
type Policy int

const (
	// HardFail surfaces the failure to the caller.
	HardFail Policy = iota
	// EmptyOnFailure serves an empty result of the endpoint's shape.
	EmptyOnFailure
	// FallbackOnFailure serves a locally computed result.
	FallbackOnFailure
)

func (p Policy) String() string {
	switch p {
	case EmptyOnFailure:
		return "empty"
	case FallbackOnFailure:
		return "fallback"
	default:
		return "hard_fail"
	}
}

// Endpoint classes.
const (
	ClassRecommendation = "recommendation"
	ClassSearch         = "search"
	ClassPurchase       = "purchase"
)

var policies = map[string]Policy{
	ClassRecommendation: EmptyOnFailure,
	ClassSearch:         FallbackOnFailure,
	ClassPurchase:       HardFail,
}

// PolicyFor returns the degrade policy of an endpoint class. Unknown
// classes hard-fail.
func PolicyFor(class string) Policy {
	return policies[class]
}

// Degraded records that endpoint served a degraded response under its
// class policy.
func Degraded(logger *zap.Logger, endpoint, class string, err error) Policy {
	policy := PolicyFor(class)
	if logger != nil {
		logger.Warn("serving degraded response",
			zap.String("endpoint", endpoint),
			zap.String("policy", policy.String()),
			zap.Error(err))
	}
	metrics.Degraded.WithLabelValues(endpoint, policy.String()).Inc()
	return policy
}
