package form

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/futig/lab-assistant/internal/catalog"
	"github.com/futig/lab-assistant/internal/entity"
	"github.com/futig/lab-assistant/internal/pkg/logger"
	"github.com/futig/lab-assistant/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	FormPath   = "/form"
	SubmitPath = "/form/submit"
	tokenParam = "t"

	maxPayloadSize = 64 * 1024
)

type Handler struct {
	tokens    TokenStore
	submitter Submitter
	catalog   *catalog.Catalog
}

func NewHandler(tokens TokenStore, submitter Submitter, cat *catalog.Catalog) *Handler {
	return &Handler{
		tokens:    tokens,
		submitter: submitter,
		catalog:   cat,
	}
}

// Page handles GET /form and renders the analysis form
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "FormPage")

	token := r.URL.Query().Get(tokenParam)
	ticket, err := h.tokens.Peek(token)
	if err != nil {
		ctxzap.Info(ctx, "form opened with unknown token")
		renderExpired(w)
		return
	}

	var buf bytes.Buffer
	data := pageData{
		Token:      token,
		SubmitPath: SubmitPath,
		Groups:     h.catalog.Groups(),
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		ctxzap.Error(ctx, "failed to render form", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctxzap.Debug(ctx, "form served", zap.Int64("user_id", ticket.UserID))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// Submit handles POST /form/submit and forwards the JSON body to the chat
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "FormSubmit")

	token := r.URL.Query().Get(tokenParam)
	if _, err := h.tokens.Peek(token); err != nil {
		ctxzap.Info(ctx, "form submitted with unknown token")
		response.Error(w, http.StatusNotFound, "form link is expired or already used")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "payload is too large")
			return
		}
		ctxzap.Warn(ctx, "failed to read form payload", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "failed to read payload")
		return
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		response.Error(w, http.StatusBadRequest, "payload is empty")
		return
	}

	ticket, err := h.tokens.Consume(token)
	if err != nil {
		if errors.Is(err, entity.ErrTokenNotFound) {
			response.Error(w, http.StatusNotFound, "form link is expired or already used")
			return
		}
		ctxzap.Error(ctx, "failed to consume form token", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ctx = logger.WithUser(ctx, ticket.UserID, ticket.ChatID)

	if err := h.submitter.SubmitForm(ctx, ticket.UserID, ticket.ChatID, payload); err != nil {
		h.tokens.Restore(token, ticket)
		if errors.Is(err, entity.ErrRateLimited) {
			ctxzap.Warn(ctx, "form payload rate limited")
			response.Error(w, http.StatusTooManyRequests, "too many requests, try again in a minute")
			return
		}
		ctxzap.Error(ctx, "failed to deliver form payload", zap.Error(err))
		response.Error(w, http.StatusServiceUnavailable, "bot is busy, try again later")
		return
	}

	ctxzap.Info(ctx, "form payload accepted", zap.Int("size", len(payload)))
	response.Accepted(w, response.StatusResponse{Status: "accepted"})
}
