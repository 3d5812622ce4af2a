package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

var errSentinel = errors.New("sentinel")

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "bad query", http.StatusBadRequest)

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code %s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "bad query" {
		t.Errorf("expected message 'bad query', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("disk full")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "reservation not found",
			},
			expected: "NOT_FOUND: reservation not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "failed to save reservations",
				Err:     errors.New("disk full"),
			},
			expected: "INTERNAL_ERROR: failed to save reservations (caused by: disk full)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.appErr.Error()
			if got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := SchedulingConflict("overlaps 09:00-11:00", errSentinel)

	if !errors.Is(appErr, errSentinel) {
		t.Errorf("errors.Is should find the sentinel through AppError")
	}
}

func TestAppError_WithDetails(t *testing.T) {
	err := InvalidField("start", "start must be HH:MM", errSentinel)
	err = err.WithDetails(map[string]any{"value": "9am"})

	if err.Details[DetailField] != "start" {
		t.Errorf("expected field 'start' to survive WithDetails, got %v", err.Details[DetailField])
	}
	if err.Details["value"] != "9am" {
		t.Errorf("expected value '9am', got %v", err.Details["value"])
	}
}

func TestInvalidField(t *testing.T) {
	err := InvalidField("duration", "duration must be a whole number of hours", errSentinel)

	if err.Code != CodeInvalidField {
		t.Errorf("expected code %s, got %s", CodeInvalidField, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
	if err.Field() != "duration" {
		t.Errorf("Field() = %q, want %q", err.Field(), "duration")
	}
}

func TestSchedulingConflict(t *testing.T) {
	err := SchedulingConflict("room 4 is taken", nil)

	if err.Code != CodeSchedulingConflict {
		t.Errorf("expected code %s, got %s", CodeSchedulingConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Field() != "" {
		t.Errorf("Field() should be empty for non-field errors, got %q", err.Field())
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("Reservation", nil)

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.Message != "Reservation not found" {
		t.Errorf("expected message 'Reservation not found', got %s", err.Message)
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Reservation", "abc", errSentinel)

	if err.Details["id"] != "abc" {
		t.Errorf("expected id 'abc', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Reservation" {
		t.Errorf("expected resource 'Reservation', got %v", err.Details["resource"])
	}
}

func TestCancelled(t *testing.T) {
	err := Cancelled("cancellation declined", nil)

	if err.Code != CodeCancelled {
		t.Errorf("expected code %s, got %s", CodeCancelled, err.Code)
	}
	if err.HTTPStatus != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, err.HTTPStatus)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Reservation", nil)
	wrapped := fmt.Errorf("modify: %w", appErr)
	regularErr := errors.New("regular error")

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(regularErr) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Reservation", nil)
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("book: %w", SchedulingConflict("taken", nil))

	if !HasCode(err, CodeSchedulingConflict) {
		t.Errorf("HasCode() should match the wrapped AppError code")
	}
	if HasCode(err, CodeNotFound) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errSentinel, CodeInternal) {
		t.Errorf("HasCode() should be false for plain errors")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	jsonStr := string(InvalidField("room", "unknown room \"7\"", nil).ToJSON())

	if !strings.Contains(jsonStr, CodeInvalidField) {
		t.Errorf("ToJSON() should contain error code, got %s", jsonStr)
	}
	if !strings.Contains(jsonStr, `"field":"room"`) {
		t.Errorf("ToJSON() should contain the field detail, got %s", jsonStr)
	}
}
