package httpapi

import (
	"errors"
	"net/http"

	"gatherly.app/internal/social"
)

type friendRequest struct {
	FriendUserID int64 `json:"friendUserId"`
}

func (a *API) handleFriendAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req friendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireFields(w, missingIf(req.FriendUserID == 0, "friendUserId")) {
		return
	}
	if req.FriendUserID == principal.UserID {
		writeError(w, http.StatusBadRequest, "You cannot add yourself as a friend.")
		return
	}

	if _, err := a.store.UserByID(r.Context(), req.FriendUserID); err != nil {
		if errors.Is(err, social.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Friend not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add friend.")
		return
	}

	err := a.store.AddFriend(r.Context(), principal.UserID, req.FriendUserID)
	switch {
	case errors.Is(err, social.ErrAlreadyFriends):
		writeError(w, http.StatusBadRequest, "Friendship already exists")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to add friend.")
		return
	}
	writeMessage(w, http.StatusCreated, "Friend added successfully.")
}

func (a *API) handleFriendRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req friendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireFields(w, missingIf(req.FriendUserID == 0, "friendUserId")) {
		return
	}

	err := a.store.RemoveFriend(r.Context(), principal.UserID, req.FriendUserID)
	switch {
	case errors.Is(err, social.ErrNotFound):
		writeError(w, http.StatusNotFound, "Friend not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to remove friend.")
		return
	}
	writeMessage(w, http.StatusOK, "Friend removed successfully.")
}

func (a *API) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	ids, err := a.store.Friends(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load friends.")
		return
	}

	friends := make([]social.User, 0, len(ids))
	for _, id := range ids {
		user, err := a.store.UserByID(r.Context(), id)
		if errors.Is(err, social.ErrNotFound) {
			continue
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load friends.")
			return
		}
		friends = append(friends, user)
	}
	writeJSON(w, http.StatusOK, friends)
}
