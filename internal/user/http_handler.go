package user

import (
	"errors"
	"net/http"
	"strings"

	"libralink/internal/httpx"
	"libralink/internal/platform/crypto"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,password_strength"`
}

type setRoleReq struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toResponse(u User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// RegisterUser handles POST /users/register
// @Summary Register a new user
// @Description Create a new user account
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /users/register [post]
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		httpx.InternalError(w, r)
		return
	}

	newUser, err := h.service.Register(r.Context(), strings.TrimSpace(req.Email), req.Username, hashedPassword)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.Conflict(w, r, "Email already exists")
			return
		}
		httpx.InternalError(w, r)
		return
	}

	httpx.JSONSuccessCreated(w, r, toResponse(newUser))
}

// GetCurrentUser handles GET /me
// @Summary Get current user
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me [get]
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		httpx.Unauthorized(w, r)
		return
	}

	httpx.JSONSuccess(w, r, toResponse(u), nil)
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security Bearer
// @Param q query string false "Email or username filter"
// @Param role query string false "USER or ADMIN"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /admin/users [get]
func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := httpx.PageFrom(r)
	query := ListQuery{
		Q:      strings.TrimSpace(r.URL.Query().Get("q")),
		Role:   strings.ToUpper(r.URL.Query().Get("role")),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}

	users, total, err := h.service.List(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidRole) {
			httpx.BadRequest(w, r, "role must be USER or ADMIN")
			return
		}
		httpx.InternalError(w, r)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	httpx.JSONSuccess(w, r, out, page.Meta(total))
}

// SetRole handles PATCH /admin/users/{id}/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "User ID"
// @Param request body setRoleReq true "New role"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /admin/users/{id}/role [patch]
func (h *HTTPHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	targetID := r.PathValue("id")
	if targetID == "" {
		httpx.BadRequest(w, r, "Invalid user ID")
		return
	}

	var req setRoleReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	u, err := h.service.SetRole(r.Context(), httpx.UserIDFrom(r), targetID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfDemotion):
			httpx.Conflict(w, r, "You cannot change your own role")
		case errors.Is(err, ErrInvalidRole):
			httpx.BadRequest(w, r, "role must be USER or ADMIN")
		case errors.Is(err, ErrNotFound):
			httpx.NotFound(w, r, "User not found")
		default:
			httpx.InternalError(w, r)
		}
		return
	}

	httpx.JSONSuccess(w, r, toResponse(u), nil)
}
