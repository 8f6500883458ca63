package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Asset"), http.StatusNotFound},
		{NewValidationError("bad quantity"), http.StatusBadRequest},
		{NewInsufficientStockError("no stock"), http.StatusConflict},
		{NewConflictError("already approved"), http.StatusConflict},
		{NewConsistencyError("pool mismatch"), http.StatusInternalServerError},
		{errors.New("driver broke"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatusWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("approving request: %w", NewInsufficientStockError("only 2 left"))
	if got := HTTPStatus(wrapped); got != http.StatusConflict {
		t.Fatalf("wrapped insufficient stock should map to 409, got %d", got)
	}
}

func TestIsConsistencyError(t *testing.T) {
	if !IsConsistencyError(NewConsistencyError("qty != pool")) {
		t.Fatal("expected consistency error to be detected")
	}
	if IsConsistencyError(NewConflictError("taken")) {
		t.Fatal("conflict is not a consistency error")
	}
	wrapped := fmt.Errorf("outer: %w", NewConsistencyError("inner"))
	if !IsConsistencyError(wrapped) {
		t.Fatal("wrapped consistency error should be detected")
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NewNotFoundError("AssetRequest")
	if err.Error() != "AssetRequest not found" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
