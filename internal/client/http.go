package client

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

// HTTPHandler 客户管理入口（简单 CRUD，无核心规则）。
type HTTPHandler struct {
	repo *Repo
	log  logger.Logger
}

func NewHTTPHandler(repo *Repo, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{repo: repo, log: log}
}

// Register 挂载路由。
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/clients", h.handleCollection)
	mux.HandleFunc("/clients/", h.handleItem)
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
	id := strings.TrimPrefix(r.URL.Path, "/clients/")
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
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "name required", nil)
		return
	}

	c := &Client{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(body.Name),
		Email:   strings.TrimSpace(body.Email),
		Phone:   strings.TrimSpace(body.Phone),
		Address: strings.TrimSpace(body.Address),
	}
	if err := h.repo.Create(r.Context(), c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *HTTPHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", err.Error())
		return
	}
	if body.Name != nil {
		c.Name = strings.TrimSpace(*body.Name)
	}
	if body.Email != nil {
		c.Email = strings.TrimSpace(*body.Email)
	}
	if body.Phone != nil {
		c.Phone = strings.TrimSpace(*body.Phone)
	}
	if body.Address != nil {
		c.Address = strings.TrimSpace(*body.Address)
	}

	if err := h.repo.Save(r.Context(), c); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *HTTPHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.repo.GetByID(r.Context(), id)
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

	clients, total, err := h.repo.List(r.Context(), q.Get("name"), offset, limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total})
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not found", nil)
		return
	}
	httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
}
