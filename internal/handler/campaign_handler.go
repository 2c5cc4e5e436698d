package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"botpanel/internal/models"
	"botpanel/internal/repository"
	"botpanel/internal/service"
)

// CampaignHandler handles HTTP requests for campaign operations
type CampaignHandler struct {
	campaignService *service.CampaignService
	log             zerolog.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService *service.CampaignService, log zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, log: log}
}

// Create handles POST /api/campaigns - creates a new campaign
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCampaignRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is empty")
			return
		}
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	campaign, err := h.campaignService.CreateCampaign(r.Context(), &req)
	if err != nil {
		HandleServiceError(w, err, h.log)
		return
	}

	WriteCreated(w, campaign)
}

// List handles GET /api/campaigns - lists campaigns with filters
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	perPage := 20
	if perPageStr := query.Get("per_page"); perPageStr != "" {
		if pp, err := strconv.Atoi(perPageStr); err == nil && pp > 0 {
			perPage = pp
		}
	}
	if perPage > 100 {
		perPage = 100
	}

	filters := repository.CampaignFilters{
		Page:     page,
		PageSize: perPage,
	}

	if statusStr := query.Get("status"); statusStr != "" {
		validStatuses := map[string]models.CampaignStatus{
			"pending": models.CampaignStatusPending,
			"sending": models.CampaignStatusSending,
			"sent":    models.CampaignStatusSent,
			"failed":  models.CampaignStatusFailed,
		}
		if status, ok := validStatuses[statusStr]; ok {
			filters.Status = &status
		} else {
			WriteValidationError(w, "invalid status: must be one of pending, sending, sent, failed")
			return
		}
	}

	campaigns, pagination, err := h.campaignService.ListCampaigns(r.Context(), filters)
	if err != nil {
		HandleServiceError(w, err, h.log)
		return
	}

	WriteOK(w, ListCampaignsResponse{
		Campaigns:  campaigns,
		Pagination: pagination,
	})
}

// GetByID handles GET /api/campaigns/{id} - gets a campaign with progress
func (h *CampaignHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetCampaign(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.log)
		return
	}

	WriteOK(w, campaign)
}

// Delete handles DELETE /api/campaigns/{id} - deletes a pending campaign
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(w, r)
	if !ok {
		return
	}

	if err := h.campaignService.DeleteCampaign(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.log)
		return
	}

	WriteNoContent(w)
}

// ListRecipients handles GET /api/recipients - lists broadcast recipients
func (h *CampaignHandler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))

	recipients, pagination, err := h.campaignService.ListRecipients(r.Context(), page, perPage)
	if err != nil {
		HandleServiceError(w, err, h.log)
		return
	}

	WriteOK(w, ListRecipientsResponse{
		Recipients: recipients,
		Pagination: pagination,
	})
}

func campaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		WriteValidationError(w, "invalid campaign ID")
		return 0, false
	}

	return id, true
}

// Response types

// ListCampaignsResponse represents the response for listing campaigns
type ListCampaignsResponse struct {
	Campaigns  []*service.CampaignWithProgress `json:"campaigns"`
	Pagination *service.PaginationInfo         `json:"pagination"`
}

// ListRecipientsResponse represents the response for listing recipients
type ListRecipientsResponse struct {
	Recipients []*models.Recipient     `json:"recipients"`
	Pagination *service.PaginationInfo `json:"pagination"`
}
