package carrier

import (
	"strings"

	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

// Class buckets a failed carrier call for recovery decisions.
type Class string

const (
	// ClassAuthExpired means the cached token was rejected and must be
	// invalidated before the next call.
	ClassAuthExpired Class = "auth_expired"
	// ClassTransient covers transport failures and carrier 5xx responses.
	ClassTransient Class = "transient"
	// ClassPermanent is everything else; retrying without changing the
	// request will not help.
	ClassPermanent Class = "permanent"
)

// tokenRejectedFragment is the carrier's only tell for a corrupt or expired
// token: it does not expose a structured auth-expired status, so this
// substring match is a best-effort heuristic, not a guarantee.
const tokenRejectedFragment = "wrong number of segments"

// Classify inspects a carrier call error and decides how to recover from it.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		return ClassPermanent
	}

	if containsTokenRejection(typed) {
		return ClassAuthExpired
	}

	switch typed.Code() {
	case pkgerrors.CodeCarrierAuth:
		return ClassAuthExpired
	case pkgerrors.CodeDependency:
		return ClassTransient
	case pkgerrors.CodeCarrier:
		if details, ok := typed.Details().(map[string]any); ok {
			if status, ok := details["status"].(int); ok && status >= 500 {
				return ClassTransient
			}
		}
		return ClassPermanent
	}
	return ClassPermanent
}

func containsTokenRejection(typed *pkgerrors.Error) bool {
	if strings.Contains(strings.ToLower(typed.Error()), tokenRejectedFragment) {
		return true
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return false
	}
	message, _ := details["message"].(string)
	return strings.Contains(strings.ToLower(message), tokenRejectedFragment)
}
