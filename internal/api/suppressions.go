package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type suppressionReq struct {
	VMID      string `json:"vm_id,omitempty"`
	Category  string `json:"category,omitempty"`
	ReasonSub string `json:"reason_sub,omitempty"`
	Reason    string `json:"reason"`
	TTLDays   int    `json:"ttl_days,omitempty"`
}

func (s *Server) handleListSuppressions(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") != "false"
	items, err := s.DB.ListSuppressions(activeOnly)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "active_only": activeOnly})
}

func (s *Server) handleCreateSuppression(w http.ResponseWriter, r *http.Request) {
	var in suppressionReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(in.Reason) == "" {
		s.err(w, http.StatusBadRequest, "reason is required")
		return
	}
	if in.VMID == "" && in.Category == "" && in.ReasonSub == "" {
		s.err(w, http.StatusBadRequest, "at least one of vm_id, category, reason_sub is required")
		return
	}
	ttl := in.TTLDays
	if ttl <= 0 {
		ttl = 90
	}
	u, _ := userFromCtx(r.Context())
	expires := time.Now().UTC().AddDate(0, 0, ttl)
	id, err := s.DB.CreateSuppression(in.VMID, strings.ToLower(in.Category), in.ReasonSub, in.Reason, u.Username, expires)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "expires_at": expires})
}

func (s *Server) handleRevokeSuppression(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.err(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.DB.RevokeSuppression(id); err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
