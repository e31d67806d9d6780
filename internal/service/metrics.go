package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Access tokens issued on successful login",
		},
	)
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Rejected logins and token verifications by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(TokensIssued)
	prometheus.MustRegister(AuthFailures)
}

// FailureReason names the kind of an authentication error for logs and metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	default:
		return "other"
	}
}
