package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/go-courses/internal/httpx"
	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/repo"
	"github.com/diewo77/go-courses/internal/routes"
)

type MessageHandler struct{ Base }

func NewMessageHandler(b Base) *MessageHandler { return &MessageHandler{Base: b} }

// Inbox lists conversation partners with last message and unread count. All
// admin traffic collapses into one support row for non-admin users.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	u, _ := h.Gate.CurrentUser()
	partners := h.Repo.ConversationPartners(u.ID)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"conversations": partners})
		return
	}
	h.render(w, r, routes.Messages, "messages.html", map[string]any{"Conversations": partners})
}

// Conversation shows the thread with one partner and marks it read. The
// partner id "support" resolves to the synthetic admin thread.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("param")
	if partnerID == repo.SupportPartnerID {
		h.SupportChat(w, r)
		return
	}
	u, _ := h.Gate.CurrentUser()
	partner, found := h.Repo.FindUserByID(partnerID)
	if !found {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
			return
		}
		redirect(w, r, routes.Messages)
		return
	}
	msgs := h.Repo.ConversationBetween(u.ID, partnerID)
	if err := h.Repo.MarkConversationRead(u.ID, partnerID); err != nil {
		// Unread badges may lag; nothing else breaks.
		_ = err
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"partner": partner.Username, "messages": msgs})
		return
	}
	h.render(w, r, routes.Conversation, "conversation.html", map[string]any{
		"Partner": partner, "PartnerID": partnerID, "Messages": msgs, "Me": u.ID,
	})
}

// SupportChat is the parameterless alias of Conversation pinned to the admin
// team. For an admin user it falls back to the inbox, where each requester
// appears individually.
func (h *MessageHandler) SupportChat(w http.ResponseWriter, r *http.Request) {
	u, _ := h.Gate.CurrentUser()
	if u.Role == models.RoleAdmin {
		redirect(w, r, routes.Messages)
		return
	}
	msgs := h.Repo.SupportConversation(u.ID)
	if err := h.Repo.MarkSupportRead(u.ID); err != nil {
		_ = err
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"partner": "Support", "messages": msgs})
		return
	}
	h.render(w, r, routes.SupportChat, "conversation.html", map[string]any{
		"Partner": models.User{Username: "Support"}, "PartnerID": repo.SupportPartnerID,
		"Messages": msgs, "Me": u.ID, "Support": true,
	})
}

// Send posts a message to a partner. Sending to "support" targets the first
// admin account, which is enough for the collapsed thread to pick it up.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	u, _ := h.Gate.CurrentUser()
	partnerID := r.PathValue("param")
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		h.sendOutcome(w, r, partnerID, http.StatusBadRequest, "message.empty")
		return
	}

	recipient := partnerID
	if partnerID == repo.SupportPartnerID {
		admins := h.Repo.AdminIDs()
		if len(admins) == 0 {
			h.sendOutcome(w, r, partnerID, http.StatusNotFound, "message.no_support")
			return
		}
		recipient = admins[0]
	} else if _, found := h.Repo.FindUserByID(partnerID); !found {
		h.sendOutcome(w, r, partnerID, http.StatusNotFound, "user_not_found")
		return
	}

	m, err := h.Repo.AddMessage(u.ID, recipient, content)
	if err != nil {
		h.sendOutcome(w, r, partnerID, http.StatusInternalServerError, "persist_failed")
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, map[string]any{"message": m})
		return
	}
	if partnerID == repo.SupportPartnerID {
		redirect(w, r, routes.SupportChat)
		return
	}
	redirect(w, r, routes.Conversation, partnerID)
}

func (h *MessageHandler) sendOutcome(w http.ResponseWriter, r *http.Request, partnerID string, status int, code string) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, status, code, nil)
		return
	}
	if partnerID == repo.SupportPartnerID || partnerID == "" {
		redirect(w, r, routes.SupportChat)
		return
	}
	redirect(w, r, routes.Conversation, partnerID)
}
