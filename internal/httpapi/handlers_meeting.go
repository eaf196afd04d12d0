package httpapi

import "net/http"

type meetingJoinRequest struct {
	Room        string `json:"room"`
	DisplayName string `json:"display_name"`
}

func (a *api) handleMeetingJoin(w http.ResponseWriter, r *http.Request) {
	var req meetingJoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	join, err := a.meetingSvc.JoinToken(req.Room, req.DisplayName)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, join)
}
