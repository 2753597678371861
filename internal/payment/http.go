package payment

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CarLogiLine/CarLogiLine/internal/common/httpx"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// HTTPHandler 付款台账入口。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/payments", h.handleCollection)
	mux.HandleFunc("/payments/", h.handleItem)
}

// paymentView 响应视图：带派生余额。
type paymentView struct {
	Payment
	Balance decimal.Decimal `json:"balance"`
}

func viewOf(p *Payment) paymentView {
	return paymentView{Payment: *p, Balance: p.Balance()}
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
	rest := strings.TrimPrefix(r.URL.Path, "/payments/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		httpx.JSONError(w, http.StatusNotFound, "payment id required", nil)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		h.update(w, r, id)
	case action == "record" && r.Method == http.MethodPost:
		h.record(w, r, id)
	case action == "status" && r.Method == http.MethodPost:
		h.setStatus(w, r, id)
	default:
		httpx.JSONError(w, http.StatusNotFound, "unknown route", nil)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CarID       string          `json:"car_id"`
		ContainerID string          `json:"container_id"`
		AmountDue   decimal.Decimal `json:"amount_due"`
		AmountPaid  decimal.Decimal `json:"amount_paid"`
		DueDate     *string         `json:"due_date"`
		Status      string          `json:"status"`
		PaymentType string          `json:"payment_type"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	in := CreatePaymentInput{
		CarID:       body.CarID,
		ContainerID: body.ContainerID,
		AmountDue:   body.AmountDue,
		AmountPaid:  body.AmountPaid,
		Status:      Status(body.Status),
		PaymentType: Type(body.PaymentType),
	}
	if body.DueDate != nil {
		due, err := time.Parse("2006-01-02", strings.TrimSpace(*body.DueDate))
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid due_date", err.Error())
			return
		}
		in.DueDate = &due
	}

	p, err := h.svc.CreatePayment(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(p))
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		AmountDue  *decimal.Decimal `json:"amount_due"`
		AmountPaid *decimal.Decimal `json:"amount_paid"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	p, err := h.svc.SetAmounts(r.Context(), id, body.AmountDue, body.AmountPaid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p))
}

// record 记一笔实收。
func (h *HTTPHandler) record(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	p, err := h.svc.RecordPayment(r.Context(), id, body.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p))
}

func (h *HTTPHandler) setStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	p, err := h.svc.SetStatus(r.Context(), id, Status(body.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p))
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p))
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		CarID:       q.Get("car_id"),
		ContainerID: q.Get("container_id"),
		Status:      Status(q.Get("status")),
	}
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	payments, total, err := h.svc.ListPayments(r.Context(), f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	items := make([]paymentView, 0, len(payments))
	for i := range payments {
		items = append(items, viewOf(&payments[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
}
