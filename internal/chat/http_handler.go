package chat

import (
	"errors"
	"net/http"

	"libralink/internal/httpx"
	"libralink/internal/platform/genai"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type chatReq struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func aiUnavailable(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusServiceUnavailable, "AI_UNAVAILABLE", "The assistant is not available", nil)
}

// Chat handles POST /chat
// @Summary Ask the library assistant
// @Tags chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body chatReq true "Message"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /chat [post]
func (h *HTTPHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	if !h.service.Available() {
		aiUnavailable(w, r)
		return
	}

	var req chatReq
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	reply, err := h.service.Reply(r.Context(), userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage):
			httpx.BadRequest(w, r, err.Error())
		case errors.Is(err, genai.ErrUnavailable):
			aiUnavailable(w, r)
		default:
			httpx.JSONError(w, r, http.StatusBadGateway, "AI_UNAVAILABLE", "The assistant could not answer right now", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, reply, nil)
}

// History handles GET /chat/history
// @Summary Recent assistant conversation
// @Tags chat
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /chat/history [get]
func (h *HTTPHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	msgs, err := h.service.History(r.Context(), userID)
	if err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccess(w, r, msgs, nil)
}

// ClearHistory handles DELETE /chat/history
// @Summary Forget the assistant conversation
// @Tags chat
// @Security Bearer
// @Success 204 "No Content"
// @Router /chat/history [delete]
func (h *HTTPHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.Unauthorized(w, r)
		return
	}
	if err := h.service.ClearHistory(r.Context(), userID); err != nil {
		httpx.InternalError(w, r)
		return
	}
	httpx.JSONSuccessNoContent(w)
}
