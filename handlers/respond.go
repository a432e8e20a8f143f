package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"buildledger/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// respond renders component for HTMX requests and payload as JSON otherwise.
func respond(e *core.RequestEvent, status int, payload any, component templ.Component) error {
	if isHTMX(e) && component != nil {
		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		e.Response.WriteHeader(status)
		return component.Render(e.Request.Context(), e.Response)
	}
	return e.JSON(status, payload)
}

// statusForError maps engine and store errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSOVLocked):
		return http.StatusLocked
	case errors.Is(err, services.ErrScheduledValuesFrozen),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotRevisable),
		errors.Is(err, services.ErrEstimateNotAccepted),
		errors.Is(err, services.ErrAlreadyAwarded),
		errors.Is(err, services.ErrBidRejected),
		errors.Is(err, services.ErrBidNotSelected):
		return http.StatusConflict
	case errors.Is(err, services.ErrBidNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// failWith reports err to the client. Unexpected errors are logged under tag
// and replaced with a generic message.
func failWith(e *core.RequestEvent, tag string, err error) error {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", tag, err)
		return ErrorToast(e, status, "Something went wrong. Please try again.")
	}
	return ErrorToast(e, status, err.Error())
}

// formFloat parses a numeric form value. A blank value reads as zero.
func formFloat(e *core.RequestEvent, name string) (float64, error) {
	raw := strings.TrimSpace(e.Request.FormValue(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(raw, "$"), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

func sanitizeFilename(s string) string {
	r := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-")
	return r.Replace(s)
}

// sendFile writes body as a download.
func sendFile(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, err := e.Response.Write(body)
	return err
}
