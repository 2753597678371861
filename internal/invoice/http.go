package invoice

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/common/httpx"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"gorm.io/gorm"
)

// HTTPHandler 发票管理入口。金额字段只读：路由上没有任何手填金额的入口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/invoices", h.handleCollection)
	mux.HandleFunc("/invoices/", h.handleItem)
}

func (h *HTTPHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (h *HTTPHandler) handleItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/invoices/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		httpx.JSONError(w, http.StatusNotFound, "invoice id required", nil)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "cars" && r.Method == http.MethodPost:
		h.addCars(w, r, id)
	case action == "cars" && r.Method == http.MethodDelete:
		h.removeCars(w, r, id)
	case action == "amount" && r.Method == http.MethodPost:
		h.updateAmount(w, r, id)
	case action == "pay" && r.Method == http.MethodPost:
		h.pay(w, r, id)
	case action == "check-overdue" && r.Method == http.MethodPost:
		h.checkOverdue(w, r, id)
	default:
		httpx.JSONError(w, http.StatusNotFound, "unknown route", nil)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientID  string `json:"client_id"`
		IssueDate string `json:"issue_date"`
		DueDate   string `json:"due_date"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	issue, err := parseDate(body.IssueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid issue_date", err.Error())
		return
	}
	due, err := parseDate(body.DueDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid due_date", err.Error())
		return
	}

	inv, err := h.svc.IssueInvoice(r.Context(), IssueInvoiceInput{
		ClientID:  body.ClientID,
		IssueDate: issue,
		DueDate:   due,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *HTTPHandler) addCars(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		CarIDs []string `json:"car_ids"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	inv, err := h.svc.AddCars(r.Context(), id, body.CarIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) removeCars(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		CarIDs []string `json:"car_ids"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	inv, err := h.svc.RemoveCars(r.Context(), id, body.CarIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) updateAmount(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.svc.UpdateAmount(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) pay(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.svc.Pay(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) checkOverdue(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.svc.RefreshOverdue(r.Context(), id, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	inv, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	invoices, total, err := h.svc.ListInvoices(r.Context(), q.Get("client_id"), Status(q.Get("status")), offset, limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": total})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
}
