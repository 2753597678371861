package car

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

// HTTPHandler 车辆管理入口（管理端 CRUD + 核心操作）。
type HTTPHandler struct {
	svc *Service
	log logger.Logger
}

func NewHTTPHandler(svc *Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{svc: svc, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/cars", h.handleCollection)
	mux.HandleFunc("/cars/", h.handleItem)
}

// carView 响应视图：带派生的在库天数。
type carView struct {
	Car
	DaysInStorage int `json:"days_in_storage"`
}

func viewOf(c *Car, today time.Time) carView {
	return carView{Car: *c, DaysInStorage: DaysInStorage(c, today)}
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
	rest := strings.TrimPrefix(r.URL.Path, "/cars/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		httpx.JSONError(w, http.StatusNotFound, "car id required", nil)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		h.update(w, r, id)
	case action == "costs" && r.Method == http.MethodPost:
		h.setCosts(w, r, id)
	case action == "store" && r.Method == http.MethodPost:
		h.store(w, r, id)
	default:
		httpx.JSONError(w, http.StatusNotFound, "unknown route", nil)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VIN         string `json:"vin"`
		Make        string `json:"make"`
		ClientID    string `json:"client_id"`
		ContainerID string `json:"container_id"`
		Title       string `json:"title"`
		Procedure   string `json:"procedure"`
		Status      string `json:"storage_status"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	c, err := h.svc.RegisterCar(r.Context(), RegisterCarInput{
		VIN:         body.VIN,
		Make:        body.Make,
		ClientID:    body.ClientID,
		ContainerID: body.ContainerID,
		Title:       Title(body.Title),
		Procedure:   Procedure(body.Procedure),
		Status:      StorageStatus(body.Status),
	})
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, viewOf(c, time.Now()))
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Make        *string `json:"make"`
		ClientID    *string `json:"client_id"`
		ContainerID *string `json:"container_id"`
		Title       *string `json:"title"`
		Procedure   *string `json:"procedure"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	in := UpdateCarInput{
		Make:        body.Make,
		ClientID:    body.ClientID,
		ContainerID: body.ContainerID,
	}
	if body.Title != nil {
		t := Title(*body.Title)
		in.Title = &t
	}
	if body.Procedure != nil {
		p := Procedure(*body.Procedure)
		in.Procedure = &p
	}

	c, err := h.svc.UpdateCar(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(c, time.Now()))
}

func (h *HTTPHandler) setCosts(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		THS           *decimal.Decimal `json:"ths"`
		Sklad         *decimal.Decimal `json:"sklad"`
		DaysCost      *decimal.Decimal `json:"days_cost"`
		Prof          *decimal.Decimal `json:"prof"`
		SkladCombined *decimal.Decimal `json:"sklad_combined"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}

	c, err := h.svc.SetCosts(r.Context(), id, CostInput{
		THS:           body.THS,
		Sklad:         body.Sklad,
		DaysCost:      body.DaysCost,
		Prof:          body.Prof,
		SkladCombined: body.SkladCombined,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(c, time.Now()))
}

func (h *HTTPHandler) store(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.svc.Store(r.Context(), id, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(c, time.Now()))
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.svc.GetCar(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(c, time.Now()))
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{
		ClientID:    q.Get("client_id"),
		ContainerID: q.Get("container_id"),
		Status:      StorageStatus(q.Get("storage_status")),
	}
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	cars, total, err := h.svc.ListCars(r.Context(), f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	now := time.Now()
	items := make([]carView, 0, len(cars))
	for i := range cars {
		items = append(items, viewOf(&cars[i], now))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// writeDomainError 把领域错误映射为 HTTP 状态码。
func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
}
