package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCustomErrorIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("analyze: %w", ErrInputNotFound.Wrap(errors.New("no such file")))

	if !errors.Is(wrapped, ErrInputNotFound) {
		t.Fatalf("errors.Is should match by code")
	}
	if errors.Is(wrapped, ErrDetectorUnavailable) {
		t.Fatalf("errors.Is matched a different code")
	}

	ce := AsCustomError(wrapped)
	if ce.Status != http.StatusNotFound || ce.Code != ErrCodeInputNotFound {
		t.Fatalf("AsCustomError = %+v", ce)
	}
}

func TestAsCustomErrorFallsBackToInternal(t *testing.T) {
	ce := AsCustomError(errors.New("boom"))
	if ce.Code != ErrCodeInternalError || ce.Status != http.StatusInternalServerError {
		t.Fatalf("plain error mapped to %+v", ce)
	}
	if AsCustomError(nil) != nil {
		t.Fatalf("nil error should map to nil")
	}
}

func TestWithRawKeepsTemplateUntouched(t *testing.T) {
	e := ErrUnparsableModelOutput.WithRaw("not json")
	if e.Raw != "not json" {
		t.Fatalf("Raw = %q", e.Raw)
	}
	if ErrUnparsableModelOutput.Raw != "" {
		t.Fatalf("predefined error was mutated")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":            `{"a":1}`,
		"here you go: [1,2] thanks":          `[1,2]`,
		"{\"recipes\":[{\"x\":1}]} trailing": `{"recipes":[{"x":1}]}`,
		"no json at all":                     "no json at all",
	}
	for in, want := range cases {
		if got := ExtractJSON(in); got != want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]any
	if err := ParseJSON(`{"a":1} {"b":2}`, &v); err == nil {
		t.Fatalf("expected error for trailing JSON value")
	}
	if err := ParseJSON(`{"a":1}`, &v); err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
}

func TestDateHelpers(t *testing.T) {
	if !IsValidDate("2024-05-01") || IsValidDate("2024/05/01") {
		t.Fatalf("IsValidDate misclassified input")
	}
	if DerefString(nil, "x") != "x" || DerefString(StringPtr("y"), "x") != "y" {
		t.Fatalf("DerefString")
	}
}
