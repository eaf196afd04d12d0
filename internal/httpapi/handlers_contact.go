package httpapi

import (
	"net/http"
	"time"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Remaining int       `json:"remaining"`
}

func (a *api) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	m, err := a.contactSvc.Submit(r.Context(), req.Name, req.Email, req.Company, req.Message, clientIP(r))
	if err != nil {
		if m.ID != "" {
			// Stored but the notification email failed; the submitter does
			// not need to resubmit.
			a.logger.Error("contact notification failed", "error", err, "message_id", m.ID)
		} else {
			WriteDomainError(w, err)
			return
		}
	}

	WriteJSON(w, http.StatusCreated, contactResponse{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		Remaining: a.contactSvc.Remaining(req.Email),
	})
}

type contactMessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company,omitempty"`
	Message   string    `json:"message"`
	ClientIP  string    `json:"client_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *api) handleContactMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.contactSvc.ListMessages(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]contactMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, contactMessageResponse{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			Company:   m.Company,
			Message:   m.Message,
			ClientIP:  m.ClientIP,
			CreatedAt: m.CreatedAt,
		})
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": out})
}
