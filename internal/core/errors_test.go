package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_MatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrNoData, fmt.Errorf("fetch returned nothing"))

	if !errors.Is(wrapped, ErrNoData) {
		t.Error("errors.Is(wrapped, ErrNoData) = false, want true")
	}
	if errors.Is(wrapped, ErrMissingClose) {
		t.Error("errors.Is(wrapped, ErrMissingClose) = true, want false")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	wrapped := WrapError(ErrProviderFailed, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
}

func TestError_Message(t *testing.T) {
	if got := ErrNoData.Error(); !strings.Contains(got, "NO_DATA") {
		t.Errorf("Error() = %q, want code NO_DATA included", got)
	}

	wrapped := WrapError(ErrNoData, fmt.Errorf("boom"))
	if got := wrapped.Error(); !strings.Contains(got, "boom") {
		t.Errorf("Error() = %q, want cause included", got)
	}
}
