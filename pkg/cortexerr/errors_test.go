package cortexerr

import "testing"

func TestFromAPIKnownCodes(t *testing.T) {
	cases := []struct {
		code int
		want Kind
	}{
		{CodeNoHeadsetConnected, KindNotFound},
		{CodeInvalidLicenseID, KindPermissionDenied},
		{CodeInvalidCortexToken, KindTokenInvalid},
		{CodeTokenExpired, KindTokenInvalid},
		{CodeMethodNotFound, KindProtocol},
		{CodeUserNotLoggedIn, KindPermissionDenied},
	}
	for _, c := range cases {
		err := FromAPI("queryHeadsets", c.code, "msg", nil)
		if err.Kind != c.want {
			t.Errorf("code %d: got kind %s, want %s", c.code, err.Kind, c.want)
		}
	}
}

func TestFromAPIUnknownCodeDefaultsToServer(t *testing.T) {
	err := FromAPI("m", -99999, "weird", nil)
	if err.Kind != KindServer {
		t.Fatalf("expected KindServer, got %s", err.Kind)
	}
}

func TestRetryableClassification(t *testing.T) {
	transient := []Kind{KindConnectionClosed, KindTransport, KindTimeout, KindTokenInvalid}
	for _, k := range transient {
		e := &Error{Kind: k}
		if !e.Retryable() {
			t.Errorf("expected %s to be retryable", k)
		}
	}

	permanent := []Kind{KindInvalidArgument, KindNotFound, KindPermissionDenied, KindProtocol, KindServer, KindConfig}
	for _, k := range permanent {
		e := &Error{Kind: k}
		if e.Retryable() {
			t.Errorf("expected %s to not be retryable", k)
		}
	}
}

func TestKindOfAndRetryableHelpers(t *testing.T) {
	err := New(KindTimeout, "deadline exceeded")
	if KindOf(err) != KindTimeout {
		t.Fatalf("KindOf mismatch")
	}
	if !Retryable(err) {
		t.Fatalf("expected timeout to be retryable")
	}

	plain := New(KindNotFound, "missing")
	if Retryable(plain) {
		t.Fatalf("expected not-found to not be retryable")
	}
}

func TestWithMethodDoesNotMutateOriginal(t *testing.T) {
	base := New(KindInvalidArgument, "bad value")
	withMethod := base.WithMethod("subscribe")

	if base.Method != "" {
		t.Fatalf("original error mutated: %q", base.Method)
	}
	if withMethod.Method != "subscribe" {
		t.Fatalf("expected method to be set, got %q", withMethod.Method)
	}
}
