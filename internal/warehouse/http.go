package warehouse

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/CarLogiLine/CarLogiLine/internal/common/httpx"
	"github.com/CarLogiLine/CarLogiLine/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HTTPHandler 仓库管理入口（简单 CRUD，无核心规则）。
type HTTPHandler struct {
	repo *Repo
	log  logger.Logger
}

func NewHTTPHandler(repo *Repo, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/warehouses", h.handleCollection)
	mux.HandleFunc("/warehouses/", h.handleItem)
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
	id := strings.TrimPrefix(r.URL.Path, "/warehouses/")
	if id == "" || strings.Contains(id, "/") {
		httpx.JSONError(w, http.StatusNotFound, "unknown route", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut, http.MethodPatch:
		h.update(w, r, id)
	default:
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	}
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Location string `json:"location"`
		Capacity int    `json:"capacity"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "name required", nil)
		return
	}

	wh := &Warehouse{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(body.Name),
		Location: strings.TrimSpace(body.Location),
		Capacity: body.Capacity,
	}
	if err := h.repo.Create(r.Context(), wh); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, wh)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	wh, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
		Capacity *int    `json:"capacity"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if body.Name != nil {
		wh.Name = strings.TrimSpace(*body.Name)
	}
	if body.Location != nil {
		wh.Location = strings.TrimSpace(*body.Location)
	}
	if body.Capacity != nil {
		wh.Capacity = *body.Capacity
	}

	if err := h.repo.Save(r.Context(), wh); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, wh)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	wh, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wh)
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	warehouses, total, err := h.repo.List(r.Context(), offset, limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": warehouses, "total": total})
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
}
