package carrier

import (
	"errors"
	"testing"

	pkgerrors "github.com/devkarki/shopveda-backend/pkg/errors"
)

func TestClassifyTokenRejection(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeCarrier, "carrier rejected request").
		WithDetails(map[string]any{"status": 401, "message": "Wrong number of segments"})
	if got := Classify(err); got != ClassAuthExpired {
		t.Fatalf("expected auth_expired for token rejection, got %s", got)
	}
}

func TestClassifyTokenRejectionInMessage(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeCarrier, "wrong number of segments")
	if got := Classify(err); got != ClassAuthExpired {
		t.Fatalf("expected auth_expired, got %s", got)
	}
}

func TestClassifyAuthCode(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeCarrierAuth, "carrier auth failed")
	if got := Classify(err); got != ClassAuthExpired {
		t.Fatalf("expected auth_expired, got %s", got)
	}
}

func TestClassifyTransient(t *testing.T) {
	cases := []error{
		pkgerrors.New(pkgerrors.CodeDependency, "carrier unreachable"),
		pkgerrors.New(pkgerrors.CodeCarrier, "carrier error").
			WithDetails(map[string]any{"status": 503, "message": "upstream down"}),
	}
	for _, err := range cases {
		if got := Classify(err); got != ClassTransient {
			t.Fatalf("expected transient for %v, got %s", err, got)
		}
	}
}

func TestClassifyPermanent(t *testing.T) {
	cases := []error{
		nil,
		errors.New("plain error"),
		pkgerrors.New(pkgerrors.CodeValidation, "invalid payload"),
		pkgerrors.New(pkgerrors.CodeCarrier, "carrier error").
			WithDetails(map[string]any{"status": 422, "message": "invalid pincode"}),
	}
	for _, err := range cases {
		if got := Classify(err); got != ClassPermanent {
			t.Fatalf("expected permanent for %v, got %s", err, got)
		}
	}
}
