package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gatherly.app/internal/audit"
	"gatherly.app/internal/invite"
	"gatherly.app/internal/social"
)

const recentMessageLimit = 20

type createChatRequest struct {
	ChatName string  `json:"chatName"`
	UserIDs  []int64 `json:"userIds"`
}

type chatMessageRequest struct {
	Content string `json:"content"`
}

type chatInviteRequest struct {
	InviteeUserID int64 `json:"inviteeUserId"`
}

func (a *API) handleChatsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	chats, err := a.store.ChatsByUser(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load chats.")
		return
	}
	if chats == nil {
		chats = []social.Chat{}
	}
	writeJSON(w, http.StatusOK, chats)
}

// handleChatResource dispatches /api/chats/join/{id}, /leave/{id},
// /message/{id}, /{id}/messages and /{id}/invite.
func (a *API) handleChatResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/chats/")
	first, rest, _ := strings.Cut(path, "/")

	switch first {
	case "join", "leave", "message":
		chatID, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Chat does not exist.")
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		switch first {
		case "join":
			a.joinChat(w, r, chatID)
		case "leave":
			a.leaveChat(w, r, chatID)
		case "message":
			a.postMessage(w, r, chatID)
		}
	default:
		chatID, err := strconv.ParseInt(first, 10, 64)
		if err != nil {
			writeError(w, http.StatusNotFound, "Chat does not exist.")
			return
		}
		switch rest {
		case "messages":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			a.listMessages(w, r, chatID)
		case "invite":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			a.createChatInvite(w, r, chatID)
		default:
			writeError(w, http.StatusNotFound, "Chat does not exist.")
		}
	}
}

func (a *API) handleChatCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req createChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var missing []string
	if strings.TrimSpace(req.ChatName) == "" {
		missing = append(missing, "chatName")
	}
	if len(req.UserIDs) == 0 {
		missing = append(missing, "userIds")
	}
	if !requireFields(w, missing) {
		return
	}

	friends, err := a.store.AreFriends(r.Context(), principal.UserID, req.UserIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create chat.")
		return
	}
	if !friends {
		writeError(w, http.StatusBadRequest, "Some user IDs are not valid friends.")
		return
	}

	chat, err := a.store.CreateChat(r.Context(), strings.TrimSpace(req.ChatName), len(req.UserIDs) > 1, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create chat.")
		return
	}
	members := append([]int64{principal.UserID}, req.UserIDs...)
	if err := a.store.AddChatMembers(r.Context(), chat.ID, members); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create chat.")
		return
	}
	writeJSON(w, http.StatusCreated, chat)
}

func (a *API) joinChat(w http.ResponseWriter, r *http.Request, chatID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	exists, err := a.store.ChatExists(r.Context(), chatID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to join chat.")
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Chat does not exist.")
		return
	}

	member, err := a.store.IsChatMember(r.Context(), chatID, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to join chat.")
		return
	}
	if member {
		writeError(w, http.StatusBadRequest, "User is already a member of this chat.")
		return
	}

	if err := a.store.AddChatMembers(r.Context(), chatID, []int64{principal.UserID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to join chat.")
		return
	}
	writeMessage(w, http.StatusOK, "Joined chat successfully.")
}

func (a *API) leaveChat(w http.ResponseWriter, r *http.Request, chatID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	err := a.store.RemoveChatMember(r.Context(), chatID, principal.UserID)
	switch {
	case errors.Is(err, social.ErrNotMember):
		writeError(w, http.StatusBadRequest, "User is not a member of this chat.")
		return
	case errors.Is(err, social.ErrNotFound):
		writeError(w, http.StatusNotFound, "Chat does not exist.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to leave chat.")
		return
	}
	writeMessage(w, http.StatusOK, "Left chat successfully.")
}

func (a *API) postMessage(w http.ResponseWriter, r *http.Request, chatID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req chatMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireFields(w, missingIf(strings.TrimSpace(req.Content) == "", "content")) {
		return
	}

	member, err := a.store.IsChatMember(r.Context(), chatID, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message.")
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, "User is not a member of this chat.")
		return
	}

	messageID, err := a.store.AddMessage(r.Context(), chatID, principal.UserID, req.Content)
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Chat does not exist.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message.")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"messageId": messageID})
}

func (a *API) listMessages(w http.ResponseWriter, r *http.Request, chatID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	member, err := a.store.IsChatMember(r.Context(), chatID, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load messages.")
		return
	}
	if !member {
		writeError(w, http.StatusForbidden, "User is not a member of this chat.")
		return
	}

	messages, err := a.store.RecentMessages(r.Context(), chatID, recentMessageLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load messages.")
		return
	}
	if messages == nil {
		messages = []social.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (a *API) createChatInvite(w http.ResponseWriter, r *http.Request, chatID int64) {
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	var req chatInviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !requireFields(w, missingIf(req.InviteeUserID == 0, "inviteeUserId")) {
		return
	}

	link, err := a.invites.CreateInvite(r.Context(), chatID, principal.UserID, req.InviteeUserID)
	switch {
	case errors.Is(err, invite.ErrNotMember):
		writeError(w, http.StatusForbidden, "User is not a member of this chat.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to create invite.")
		return
	}

	_ = audit.LogEvent(r.Context(), "chat.invite.issued", map[string]any{
		"chat_id":    chatID,
		"invitee_id": req.InviteeUserID,
	})

	writeJSON(w, http.StatusOK, map[string]any{"inviteLink": link})
}

func (a *API) handleInviteAccept(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	principal, ok := principalOr401(w, r)
	if !ok {
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Invite token is required.")
		return
	}

	chatID, err := a.invites.AcceptInvite(r.Context(), token, principal.UserID)
	switch {
	case errors.Is(err, invite.ErrExpired):
		writeError(w, http.StatusBadRequest, "Invite link has expired.")
		return
	case errors.Is(err, invite.ErrInvalid):
		writeError(w, http.StatusBadRequest, "Invalid invite token.")
		return
	case errors.Is(err, invite.ErrForbidden):
		writeError(w, http.StatusForbidden, "This invite was not issued to you.")
		return
	case errors.Is(err, invite.ErrChatGone):
		writeError(w, http.StatusNotFound, "Chat does not exist.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to accept invite.")
		return
	}

	// Re-accepting an invite for a chat already joined is an explicit
	// rejection, not a duplicate membership row.
	member, err := a.store.IsChatMember(r.Context(), chatID, principal.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to accept invite.")
		return
	}
	if member {
		writeError(w, http.StatusBadRequest, "User is already a member of this chat.")
		return
	}

	if err := a.store.AddChatMembers(r.Context(), chatID, []int64{principal.UserID}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to accept invite.")
		return
	}

	_ = audit.LogEvent(r.Context(), "chat.invite.accepted", map[string]any{
		"chat_id": chatID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Joined chat successfully.",
		"chatId":  chatID,
	})
}
