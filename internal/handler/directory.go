package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// ListStaff возвращает список сотрудников.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.ListStaff(r.Context())
	if err != nil {
		h.writeError(w, err, "list staff error")
		return
	}

	resp := make([]staffResponse, 0, len(staff))
	for _, s := range staff {
		resp = append(resp, newStaffResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetStaff возвращает карточку сотрудника.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.StaffMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get staff error")
		return
	}
	writeJSON(w, http.StatusOK, staffDetail(s))
}

type taskRequest struct {
	TaskType    string `json:"task_type"`
	Description string `json:"description"`
}

// AddChefTask выдаёт повару поручение.
func (h *Handler) AddChefTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	chef, _, err := h.service.AddChefTask(r.Context(), actor(r), chi.URLParam(r, "id"), model.TaskType(req.TaskType), req.Description)
	if err != nil {
		h.writeError(w, err, "add chef task error")
		return
	}
	writeJSON(w, http.StatusCreated, newChefDetailResponse(chef))
}

// StartChefTask переводит поручение повара в работу.
func (h *Handler) StartChefTask(w http.ResponseWriter, r *http.Request) {
	chef, err := h.service.StartChefTask(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.writeError(w, err, "start chef task error")
		return
	}
	writeJSON(w, http.StatusOK, newChefDetailResponse(chef))
}

// CompleteChefTask отмечает поручение повара выполненным.
func (h *Handler) CompleteChefTask(w http.ResponseWriter, r *http.Request) {
	chef, err := h.service.CompleteChefTask(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "taskID"))
	if err != nil {
		h.writeError(w, err, "complete chef task error")
		return
	}
	writeJSON(w, http.StatusOK, newChefDetailResponse(chef))
}

type leaveDecisionRequest struct {
	Approved *bool `json:"approved"`
}

// DecideLeave утверждает или отклоняет заявку повара на отпуск.
func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	var req leaveDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Approved == nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	chef, err := h.service.DecideLeave(r.Context(), actor(r), chi.URLParam(r, "id"), chi.URLParam(r, "requestID"), *req.Approved)
	if err != nil {
		h.writeError(w, err, "decide leave error")
		return
	}
	writeJSON(w, http.StatusOK, newChefDetailResponse(chef))
}

// GetCustomer возвращает карточку гостя.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Customer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get customer error")
		return
	}
	writeJSON(w, http.StatusOK, newCustomerResponse(&c))
}

type visitRequest struct {
	Amount float64 `json:"amount"`
}

// RecordVisit учитывает визит гостя.
func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.RecordVisit(r.Context(), actor(r), chi.URLParam(r, "id"), req.Amount)
	if err != nil {
		h.writeError(w, err, "record visit error")
		return
	}
	writeJSON(w, http.StatusOK, newCustomerResponse(&c))
}

type tierRequest struct {
	Tier string `json:"tier"`
}

// UpgradeTier повышает уровень лояльности гостя.
func (h *Handler) UpgradeTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.UpgradeTier(r.Context(), actor(r), chi.URLParam(r, "id"), req.Tier)
	if err != nil {
		h.writeError(w, err, "upgrade tier error")
		return
	}
	writeJSON(w, http.StatusOK, newCustomerResponse(&c))
}

// ListCampaigns возвращает список маркетинговых кампаний.
func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		h.writeError(w, err, "list campaigns error")
		return
	}

	resp := make([]campaignResponse, 0, len(campaigns))
	for i := range campaigns {
		resp = append(resp, newCampaignResponse(&campaigns[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetCampaign возвращает кампанию по идентификатору.
func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Campaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get campaign error")
		return
	}
	writeJSON(w, http.StatusOK, newCampaignResponse(&c))
}

// AdvanceCampaign переводит кампанию на следующий этап.
func (h *Handler) AdvanceCampaign(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	c, err := h.service.AdvanceCampaign(r.Context(), actor(r), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, err, "advance campaign error")
		return
	}
	writeJSON(w, http.StatusOK, newCampaignResponse(&c))
}
