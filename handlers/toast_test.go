package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/pocketbase/pocketbase/core"
)

func newToastEvent() (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Response = rec
	return e, rec
}

func parseToast(t *testing.T, rec *httptest.ResponseRecorder) (map[string]json.RawMessage, map[string]string) {
	t.Helper()
	trigger := rec.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("expected HX-Trigger header to be set")
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %v", err)
	}
	var toast map[string]string
	if err := json.Unmarshal(parsed["showToast"], &toast); err != nil {
		t.Fatalf("showToast is not valid JSON: %v", err)
	}
	return parsed, toast
}

func TestSetToast(t *testing.T) {
	tests := []struct {
		toastType string
		message   string
	}{
		{"success", "Line item added"},
		{"error", "Something went wrong"},
		{"info", "Award withdrawn"},
		{"warning", `Bid "Acme" <over budget>`},
		{"success", "line1\nline2"},
	}

	for _, tt := range tests {
		t.Run(tt.toastType+"/"+tt.message, func(t *testing.T) {
			e, rec := newToastEvent()
			SetToast(e, tt.toastType, tt.message)

			_, toast := parseToast(t, rec)
			if toast["type"] != tt.toastType {
				t.Errorf("type = %q, want %q", toast["type"], tt.toastType)
			}
			if toast["message"] != tt.message {
				t.Errorf("message = %q, want %q", toast["message"], tt.message)
			}
		})
	}
}

func TestSetToast_MergesWithExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", `{"totalsChanged":{"estimate":"abc"}}`)

	SetToast(e, "success", "Merged toast")

	parsed, toast := parseToast(t, rec)
	if _, ok := parsed["totalsChanged"]; !ok {
		t.Error("expected totalsChanged to be preserved after merge")
	}
	if toast["message"] != "Merged toast" {
		t.Errorf("message = %q", toast["message"])
	}
}

func TestSetToast_OverwritesInvalidExisting(t *testing.T) {
	e, rec := newToastEvent()
	rec.Header().Set("HX-Trigger", "notValidJSON")

	SetToast(e, "error", "Overwritten")

	parsed, _ := parseToast(t, rec)
	if len(parsed) != 1 {
		t.Errorf("expected only showToast after overwrite, got %v", parsed)
	}
}

func TestSetToast_FlashCookie(t *testing.T) {
	e, rec := newToastEvent()
	SetToast(e, "success", "Saved")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "flash_toast" {
		t.Fatalf("expected flash_toast cookie, got %v", cookies)
	}
	raw, err := url.QueryUnescape(cookies[0].Value)
	if err != nil {
		t.Fatal(err)
	}
	var toast map[string]string
	if err := json.Unmarshal([]byte(raw), &toast); err != nil {
		t.Fatalf("cookie is not JSON: %v", err)
	}
	if toast["message"] != "Saved" {
		t.Errorf("cookie message = %q", toast["message"])
	}
}

func TestErrorToast(t *testing.T) {
	tests := []struct {
		code int
		msg  string
	}{
		{http.StatusBadRequest, "Invalid input"},
		{http.StatusNotFound, "Estimate not found"},
		{http.StatusConflict, "another bid in this package is already selected"},
		{http.StatusLocked, "schedule of values is locked for editing"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			e, rec := newToastEvent()

			if err := ErrorToast(e, tt.code, tt.msg); err != nil {
				t.Fatalf("ErrorToast returned error: %v", err)
			}
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			if rec.Header().Get("HX-Reswap") != "none" {
				t.Error("expected HX-Reswap: none")
			}
			if rec.Body.String() != tt.msg {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.msg)
			}
			_, toast := parseToast(t, rec)
			if toast["type"] != "error" {
				t.Errorf("toast type = %q, want error", toast["type"])
			}
		})
	}
}
