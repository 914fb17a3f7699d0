package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/domain/crm"
	"github.com/cmlabs-hris/kpi-pulse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CRMHandler interface {
	ListContacts(w http.ResponseWriter, r *http.Request)
	CreateContact(w http.ResponseWriter, r *http.Request)
	UpdateContact(w http.ResponseWriter, r *http.Request)

	ListFollowups(w http.ResponseWriter, r *http.Request)
	CreateFollowup(w http.ResponseWriter, r *http.Request)
	UpdateFollowup(w http.ResponseWriter, r *http.Request)

	ListMeetings(w http.ResponseWriter, r *http.Request)
	CreateMeeting(w http.ResponseWriter, r *http.Request)

	ListAccounts(w http.ResponseWriter, r *http.Request)
	CreateAccount(w http.ResponseWriter, r *http.Request)
	UpdateAccount(w http.ResponseWriter, r *http.Request)
}

type CRMHandlerImpl struct {
	crmService crm.CRMService
}

func NewCRMHandler(crmService crm.CRMService) CRMHandler {
	return &CRMHandlerImpl{crmService: crmService}
}

// ===== CONTACTS =====

func (h *CRMHandlerImpl) ListContacts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	contacts, err := h.crmService.ListContacts(r.Context(), actor, crm.ContactFilter{
		EmployeeID: q.Get("employee_id"),
		Category:   q.Get("category"),
		Search:     q.Get("search"),
	})
	if err != nil {
		slog.Error("ListContacts service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, contacts)
}

func (h *CRMHandlerImpl) CreateContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.CreateContactRequest
	if !decodeJSON(w, r, "CreateContact", &req) {
		return
	}

	contact, err := h.crmService.CreateContact(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateContact service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Contact created successfully", contact)
}

func (h *CRMHandlerImpl) UpdateContact(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.UpdateContactRequest
	if !decodeJSON(w, r, "UpdateContact", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	contact, err := h.crmService.UpdateContact(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpdateContact service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Contact updated successfully", contact)
}

// ===== FOLLOWUPS =====

func (h *CRMHandlerImpl) ListFollowups(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := newQueryParams(r)
	filter := crm.FollowupFilter{
		ContactID:  q.String("contact_id"),
		EmployeeID: q.String("employee_id"),
		Completed:  q.Bool("completed"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	followups, err := h.crmService.ListFollowups(r.Context(), actor, filter)
	if err != nil {
		slog.Error("ListFollowups service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, followups)
}

func (h *CRMHandlerImpl) CreateFollowup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.CreateFollowupRequest
	if !decodeJSON(w, r, "CreateFollowup", &req) {
		return
	}

	followup, err := h.crmService.CreateFollowup(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateFollowup service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Followup created successfully", followup)
}

func (h *CRMHandlerImpl) UpdateFollowup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.UpdateFollowupRequest
	if !decodeJSON(w, r, "UpdateFollowup", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	followup, err := h.crmService.UpdateFollowup(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpdateFollowup service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Followup updated successfully", followup)
}

// ===== MEETINGS =====

func (h *CRMHandlerImpl) ListMeetings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	meetings, err := h.crmService.ListMeetings(r.Context(), actor, crm.MeetingFilter{
		ContactID:  q.Get("contact_id"),
		EmployeeID: q.Get("employee_id"),
	})
	if err != nil {
		slog.Error("ListMeetings service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, meetings)
}

func (h *CRMHandlerImpl) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.CreateMeetingRequest
	if !decodeJSON(w, r, "CreateMeeting", &req) {
		return
	}

	meeting, err := h.crmService.CreateMeeting(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateMeeting service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Meeting logged successfully", meeting)
}

// ===== ACCOUNTS =====

func (h *CRMHandlerImpl) ListAccounts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	accounts, err := h.crmService.ListAccounts(r.Context(), actor, crm.AccountFilter{
		ContactID:  q.Get("contact_id"),
		EmployeeID: q.Get("employee_id"),
	})
	if err != nil {
		slog.Error("ListAccounts service error", "error", err)
		response.HandleError(w, err)
		return
	}
	list(w, accounts)
}

func (h *CRMHandlerImpl) CreateAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.CreateAccountRequest
	if !decodeJSON(w, r, "CreateAccount", &req) {
		return
	}

	account, err := h.crmService.CreateAccount(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateAccount service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Account created successfully", account)
}

func (h *CRMHandlerImpl) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req crm.UpdateAccountRequest
	if !decodeJSON(w, r, "UpdateAccount", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	account, err := h.crmService.UpdateAccount(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpdateAccount service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Account updated successfully", account)
}
