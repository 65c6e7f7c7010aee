package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gatherly.app/internal/social"
)

type eventRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	WithWho     []string `json:"withWho"`
}

type shareEventRequest struct {
	Email string `json:"email"`
}

type rsvpRequest struct {
	Status string `json:"status"`
}

func (a *API) handleEventsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createEvent(w, r)
	case http.MethodGet:
		a.listEvents(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleEventResource dispatches /api/events/{id}[,/share,/attend].
func (a *API) handleEventResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if path == "" {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}

	idPart, action, _ := strings.Cut(path, "/")
	eventID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}

	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			a.getEvent(w, r, eventID)
		case http.MethodPut:
			a.updateEvent(w, r, eventID)
		case http.MethodDelete:
			a.deleteEvent(w, r, eventID)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case "share":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		a.shareEvent(w, r, eventID)
	case "attend":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		a.attendEvent(w, r, eventID)
	default:
		writeError(w, http.StatusNotFound, "Event not found.")
	}
}

func (a *API) handleEventInvites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	invites, err := a.store.PendingInvites(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load invites.")
		return
	}
	if invites == nil {
		invites = []social.EventInvite{}
	}
	writeJSON(w, http.StatusOK, invites)
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, ok := a.validateEventRequest(w, req)
	if !ok {
		return
	}

	event, err := a.store.CreateEvent(r.Context(), social.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
		OwnerID:     principal.UserID,
		WithWho:     req.WithWho,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create event.")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	events, err := a.store.EventsByOwner(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load events.")
		return
	}
	if events == nil {
		events = []social.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	event, err := a.store.EventByID(r.Context(), eventID, principal.UserID)
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load event.")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, ok := a.validateEventRequest(w, req)
	if !ok {
		return
	}

	event, err := a.store.UpdateEvent(r.Context(), eventID, principal.UserID, social.EventUpdate{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        date,
		Location:    strings.TrimSpace(req.Location),
	})
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update event.")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	err := a.store.DeleteEvent(r.Context(), eventID, principal.UserID)
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete event.")
		return
	}
	writeMessage(w, http.StatusOK, "Event deleted successfully.")
}

func (a *API) shareEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req shareEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireFields(w, missingIf(strings.TrimSpace(req.Email) == "", "email")) {
		return
	}

	// Only the owner may share, so the owner-scoped read doubles as
	// the permission check.
	if _, err := a.store.EventByID(r.Context(), eventID, principal.UserID); err != nil {
		if errors.Is(err, social.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Event not found.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to share event.")
		return
	}

	target, err := a.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to share event.")
		return
	}

	err = a.store.ShareEvent(r.Context(), eventID, target.ID)
	switch {
	case errors.Is(err, social.ErrAlreadyShared):
		writeError(w, http.StatusBadRequest, "Event already shared with this user.")
		return
	case errors.Is(err, social.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to share event.")
		return
	}
	writeMessage(w, http.StatusOK, "Event shared successfully.")
}

func (a *API) attendEvent(w http.ResponseWriter, r *http.Request, eventID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req rsvpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !social.ValidRSVP(req.Status) {
		writeError(w, http.StatusBadRequest,
			`Invalid RSVP status. Allowed values are "Attending" and "Not Attending".`)
		return
	}

	previous, err := a.store.RSVP(r.Context(), eventID, principal.UserID, req.Status)
	switch {
	case errors.Is(err, social.ErrAlreadyRSVPed):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("You have already RSVPed as %q.", previous))
		return
	case errors.Is(err, social.ErrNotFound):
		writeError(w, http.StatusNotFound, "Event not found.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to record RSVP.")
		return
	}
	writeMessage(w, http.StatusOK, "RSVP recorded successfully.")
}

func (a *API) validateEventRequest(w http.ResponseWriter, req eventRequest) (time.Time, bool) {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if !requireFields(w, missing) {
		return time.Time{}, false
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be an RFC 3339 timestamp.")
		return time.Time{}, false
	}
	return date, true
}

func missingIf(cond bool, field string) []string {
	if cond {
		return []string{field}
	}
	return nil
}
