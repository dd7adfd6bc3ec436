package testutil

import (
	"errors"
	"testing"
)

// AssertErrorKind fails the test unless err carries the given kind tag
// somewhere in its chain. Matching goes through the KindTag method
// rather than the concrete error type so this package can be imported
// from the root package's own tests.
func AssertErrorKind[K ~string](t *testing.T, err error, kind K) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error of kind %q, got nil", string(kind))
	}
	var tagged interface{ KindTag() string }
	if !errors.As(err, &tagged) {
		t.Errorf("expected error of kind %q, got untagged error %v", string(kind), err)
		return
	}
	if tagged.KindTag() != string(kind) {
		t.Errorf("expected error of kind %q, got kind %q: %v", string(kind), tagged.KindTag(), err)
	}
}
