package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/angelmondragon/giftstore-backend/pkg/errors"
	"github.com/angelmondragon/giftstore-backend/pkg/logger"
	"github.com/angelmondragon/giftstore-backend/pkg/types"
)

func TestWriteStoreEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteStore(w, http.StatusCreated, map[string]string{"storeId": "st_001"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if body["success"] != true {
		t.Fatalf("expected success flag, got %v", body)
	}
	store, ok := body["store"].(map[string]any)
	if !ok || store["storeId"] != "st_001" {
		t.Fatalf("unexpected store payload %v", body["store"])
	}
}

func TestWriteMessageEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, http.StatusOK, "Product deleted successfully")

	var body types.MessageEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if !body.Success || body.Message != "Product deleted successfully" {
		t.Fatalf("unexpected body %+v", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestWriteErrorUsesDomainMessage(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("lookup: %w", pkgerrors.New(pkgerrors.CodeNotFound, "Store not found"))
	WriteError(context.Background(), logger.Nop(), w, err)

	if got := w.Code; got != http.StatusNotFound {
		t.Fatalf("expected status 404 but got %d", got)
	}

	var body types.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error != "Store not found" {
		t.Fatalf("unexpected error message %q", body.Error)
	}
	if body.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", body.Code)
	}
}

func TestWriteErrorValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "Store ID and status are required").
		WithDetails(map[string]string{"status": "is required"})
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusBadRequest {
		t.Fatalf("expected status 400 but got %d", got)
	}

	var body types.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Details == nil {
		t.Fatalf("expected details in public payload")
	}
}

func TestWriteErrorNotificationFailure(t *testing.T) {
	w := httptest.NewRecorder()
	cause := errors.New("dial tcp: connection refused")
	WriteError(context.Background(), logger.Nop(), w, pkgerrors.Wrap(pkgerrors.CodeNotification, cause, "smtp relay rejected message"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}
	var body types.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Error != "Failed to send email" {
		t.Fatalf("expected public notification message, got %q", body.Error)
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("boom"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Code)
	}
	if body.Error != "internal server error" {
		t.Fatalf("internal causes must not leak, got %q", body.Error)
	}
	if body.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}
