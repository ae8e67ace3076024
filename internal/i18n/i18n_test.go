package i18n_test

import (
	"strings"
	"testing"

	"sonarrbot/internal/i18n"
)

func TestLookupKnownKey(t *testing.T) {
	catalog, err := i18n.New("en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := catalog.T("invalidPassword"); got != "Invalid password." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestUnknownKeyReturnsKey(t *testing.T) {
	catalog, err := i18n.New("en")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := catalog.T("noSuchKey"); got != "noSuchKey" {
		t.Fatalf("expected key echoed back, got %q", got)
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	catalog, err := i18n.New("zz-gibberish")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := catalog.T("notAuthorized"); !strings.Contains(got, "not authorized") {
		t.Fatalf("expected english fallback, got %q", got)
	}
}
