package container

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

// HTTPHandler 集装箱管理入口。状态变更是唯一会触发级联的操作。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/containers", h.handleCollection)
	mux.HandleFunc("/containers/", h.handleItem)
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
	rest := strings.TrimPrefix(r.URL.Path, "/containers/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		httpx.JSONError(w, http.StatusNotFound, "container id required", nil)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		h.update(w, r, id)
	case action == "status" && r.Method == http.MethodPost:
		h.applyStatus(w, r, id)
	default:
		httpx.JSONError(w, http.StatusNotFound, "unknown route", nil)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Number      string           `json:"number"`
		ArrivalDate string           `json:"arrival_date"`
		WarehouseID string           `json:"warehouse_id"`
		Status      string           `json:"status"`
		THS         *decimal.Decimal `json:"ths"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	arrival, err := parseDate(body.ArrivalDate)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid arrival_date", err.Error())
		return
	}

	c, err := h.svc.ScheduleContainer(r.Context(), ScheduleContainerInput{
		Number:      body.Number,
		ArrivalDate: arrival,
		WarehouseID: body.WarehouseID,
		Status:      Status(body.Status),
		THS:         body.THS,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		ArrivalDate *string          `json:"arrival_date"`
		WarehouseID *string          `json:"warehouse_id"`
		THS         *decimal.Decimal `json:"ths"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	in := UpdateContainerInput{WarehouseID: body.WarehouseID, THS: body.THS}
	if body.ArrivalDate != nil {
		arrival, err := parseDate(*body.ArrivalDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid arrival_date", err.Error())
			return
		}
		in.ArrivalDate = &arrival
	}

	c, err := h.svc.UpdateContainer(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// applyStatus 状态变更入口：级联结果（受影响车辆）一并返回。
func (h *HTTPHandler) applyStatus(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	affected, err := h.svc.ApplyStatusChange(r.Context(), id, Status(body.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":        body.Status,
		"affected_cars": affected,
	})
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.svc.GetContainer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	containers, total, err := h.svc.ListContainers(r.Context(), Status(q.Get("status")), q.Get("warehouse_id"), offset, limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": containers, "total": total})
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// writeDomainError 把领域错误映射为 HTTP 状态码。
// 校验失败与未找到区分开，级联被拒绝时管理端能看到具体原因。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
	case IsValidation(err):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	}
}
