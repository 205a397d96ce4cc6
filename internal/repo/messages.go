package repo

import (
	"sort"

	"github.com/diewo77/go-courses/internal/models"
	"github.com/diewo77/go-courses/internal/store"
)

// SupportPartnerID is the synthetic partner id under which every exchange with
// the admin team is collapsed in a non-admin inbox.
const SupportPartnerID = "support"

// ConversationSummary is one row of the inbox: a partner plus the derived
// last-message/unread state. Support threads carry the synthetic partner id.
type ConversationSummary struct {
	PartnerID   string         `json:"partnerId"`
	PartnerName string         `json:"partnerName"`
	Support     bool           `json:"support"`
	LastMessage models.Message `json:"lastMessage"`
	Unread      int            `json:"unread"`
}

// AddMessage appends a message with the current timestamp, unread.
func (r *Repository) AddMessage(senderID, recipientID, content string) (models.Message, error) {
	m := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   now(),
	}
	err := store.Update(r.s, store.KeyMessages, func(msgs []models.Message) ([]models.Message, error) {
		return append(msgs, m), nil
	})
	return m, err
}

func (r *Repository) allMessages() []models.Message {
	msgs, _ := store.Read[[]models.Message](r.s, store.KeyMessages)
	return msgs
}

// ConversationBetween returns every message exchanged between a and b, oldest
// first. Conversations are derived on demand, never stored.
func (r *Repository) ConversationBetween(a, b string) []models.Message {
	var out []models.Message
	for _, m := range r.allMessages() {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out
}

// SupportConversation returns the synthetic thread between userID and the set
// of admin accounts, oldest first.
func (r *Repository) SupportConversation(userID string) []models.Message {
	admins := toSet(r.AdminIDs())
	var out []models.Message
	for _, m := range r.allMessages() {
		if (m.SenderID == userID && admins[m.RecipientID]) || (admins[m.SenderID] && m.RecipientID == userID) {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out
}

// ConversationPartners derives the inbox for userID: one summary per direct
// partner, with all admin traffic collapsed into a single support row when the
// user is not an admin. Rows are ordered newest conversation first.
func (r *Repository) ConversationPartners(userID string) []ConversationSummary {
	me, _ := r.FindUserByID(userID)
	isAdmin := me.Role == models.RoleAdmin
	admins := toSet(r.AdminIDs())

	byPartner := map[string]*ConversationSummary{}
	for _, m := range r.allMessages() {
		var partner string
		switch {
		case m.SenderID == userID:
			partner = m.RecipientID
		case m.RecipientID == userID:
			partner = m.SenderID
		default:
			continue
		}
		key := partner
		support := false
		if !isAdmin && admins[partner] {
			key = SupportPartnerID
			support = true
		}
		s := byPartner[key]
		if s == nil {
			s = &ConversationSummary{PartnerID: key, Support: support}
			byPartner[key] = s
		}
		if m.Timestamp >= s.LastMessage.Timestamp {
			s.LastMessage = m
		}
		if m.RecipientID == userID && !m.Read {
			s.Unread++
		}
	}

	out := make([]ConversationSummary, 0, len(byPartner))
	for _, s := range byPartner {
		if s.Support {
			s.PartnerName = "Support"
		} else if p, ok := r.FindUserByID(s.PartnerID); ok {
			s.PartnerName = p.Username
		} else {
			s.PartnerName = s.PartnerID
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.Timestamp > out[j].LastMessage.Timestamp
	})
	return out
}

// MarkConversationRead marks everything sent by partnerID to userID as read.
func (r *Repository) MarkConversationRead(userID, partnerID string) error {
	return store.Update(r.s, store.KeyMessages, func(msgs []models.Message) ([]models.Message, error) {
		for i := range msgs {
			if msgs[i].RecipientID == userID && msgs[i].SenderID == partnerID {
				msgs[i].Read = true
			}
		}
		return msgs, nil
	})
}

// MarkSupportRead marks everything sent by any admin to userID as read.
func (r *Repository) MarkSupportRead(userID string) error {
	admins := toSet(r.AdminIDs())
	return store.Update(r.s, store.KeyMessages, func(msgs []models.Message) ([]models.Message, error) {
		for i := range msgs {
			if msgs[i].RecipientID == userID && admins[msgs[i].SenderID] {
				msgs[i].Read = true
			}
		}
		return msgs, nil
	})
}

// UnreadCount is the badge number shown in the navigation chrome.
func (r *Repository) UnreadCount(userID string) int {
	n := 0
	for _, m := range r.allMessages() {
		if m.RecipientID == userID && !m.Read {
			n++
		}
	}
	return n
}

func sortMessages(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp < msgs[j].Timestamp })
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
