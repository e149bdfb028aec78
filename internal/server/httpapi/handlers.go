package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mediaplanhq/campaignstore/internal/common"
	"github.com/mediaplanhq/campaignstore/internal/server/models"
	"github.com/mediaplanhq/campaignstore/internal/server/services"
)

type blockDTO struct {
	ID          string         `json:"id,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	MediaRef    string         `json:"mediaRef,omitempty"`
}

type dayDTO struct {
	Day    int        `json:"day"`
	Date   string     `json:"date,omitempty"`
	Blocks []blockDTO `json:"blocks"`
}

type saveRequest struct {
	CampaignID              string         `json:"campaignId,omitempty"`
	Name                    string         `json:"name"`
	OriginalPrompt          string         `json:"originalPrompt,omitempty"`
	CharacterConfig         map[string]any `json:"characterConfig,omitempty"`
	ClientObservedUpdatedAt *time.Time     `json:"clientObservedUpdatedAt,omitempty"`
	Days                    []dayDTO       `json:"days"`
}

type saveResponse struct {
	CampaignID string    `json:"campaignId"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type campaignResponse struct {
	ID              string         `json:"id"`
	TenantID        string         `json:"tenantId"`
	Name            string         `json:"name"`
	OriginalPrompt  string         `json:"originalPrompt,omitempty"`
	CharacterConfig map[string]any `json:"characterConfig,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	CreatedBy       string         `json:"createdBy"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	UpdatedBy       string         `json:"updatedBy"`
	Days            []dayDTO       `json:"days"`
}

type errorResponse struct {
	Error     string     `json:"error"`
	Message   string     `json:"message,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string, conflict *common.ConflictError) {
	resp := errorResponse{Error: code, Message: message}
	if conflict != nil {
		resp.UpdatedBy = conflict.UpdatedBy
		at := conflict.UpdatedAt
		resp.UpdatedAt = &at
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps the engine's typed errors onto the API's status
// codes and error codes.
func writeEngineError(w http.ResponseWriter, err error) {
	var conflict *common.ConflictError
	var upload *common.UploadError
	switch {
	case errors.Is(err, common.ErrDuplicateName):
		writeError(w, http.StatusConflict, "DUPLICATE_NAME", "a campaign with this name already exists", nil)
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "SAVE_CONFLICT", "campaign was updated by someone else", conflict)
	case errors.Is(err, common.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "ACCESS_DENIED", "campaign belongs to another tenant", nil)
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "campaign not found", nil)
	case errors.As(err, &upload):
		writeError(w, http.StatusBadGateway, "UPLOAD_FAILED", "media upload failed", nil)
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func daysFromDTO(in []dayDTO) []*models.Day {
	days := make([]*models.Day, 0, len(in))
	for _, d := range in {
		day := &models.Day{Day: d.Day, Date: d.Date}
		for _, b := range d.Blocks {
			day.Blocks = append(day.Blocks, &models.ContentBlock{
				ID:          b.ID,
				ContentType: b.ContentType,
				Fields:      b.Fields,
				MediaRef:    b.MediaRef,
			})
		}
		days = append(days, day)
	}
	return days
}

func daysToDTO(in []*models.Day) []dayDTO {
	days := make([]dayDTO, 0, len(in))
	for _, d := range in {
		day := dayDTO{Day: d.Day, Date: d.Date, Blocks: []blockDTO{}}
		for _, b := range d.Blocks {
			day.Blocks = append(day.Blocks, blockDTO{
				ID:          b.ID,
				ContentType: b.ContentType,
				Fields:      b.Fields,
				MediaRef:    b.MediaRef,
			})
		}
		days = append(days, day)
	}
	return days
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error(), nil)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required", nil)
		return
	}

	res, err := s.engine.Save(r.Context(), services.SaveInput{
		TenantID:                claims.TenantID,
		ActorID:                 claims.ActorID,
		CampaignID:              req.CampaignID,
		Name:                    req.Name,
		Days:                    daysFromDTO(req.Days),
		ClientObservedUpdatedAt: req.ClientObservedUpdatedAt,
		OriginalPrompt:          req.OriginalPrompt,
		CharacterConfig:         req.CharacterConfig,
	})
	if err != nil {
		s.log.Error(r.Context(), "save failed", "error", err)
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveResponse{CampaignID: res.CampaignID, UpdatedAt: res.UpdatedAt})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	res, err := s.engine.Load(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if res.Campaign.TenantID != claims.TenantID {
		writeEngineError(w, common.ErrAccessDenied)
		return
	}

	writeJSON(w, http.StatusOK, campaignResponse{
		ID:              res.Campaign.ID,
		TenantID:        res.Campaign.TenantID,
		Name:            res.Campaign.Name,
		OriginalPrompt:  res.Campaign.OriginalPrompt,
		CharacterConfig: res.Campaign.CharacterConfig,
		CreatedAt:       res.Campaign.CreatedAt,
		CreatedBy:       res.Campaign.CreatedBy,
		UpdatedAt:       res.Campaign.UpdatedAt,
		UpdatedBy:       res.Campaign.UpdatedBy,
		Days:            daysToDTO(res.Days),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	id := chi.URLParam(r, "id")

	// Tenancy check happens against the stored campaign, not the URL.
	res, err := s.engine.Load(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if res.Campaign.TenantID != claims.TenantID {
		writeEngineError(w, common.ErrAccessDenied)
		return
	}

	if err := s.engine.Delete(r.Context(), id); err != nil {
		s.log.Error(r.Context(), "delete failed", "error", err)
		writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
