package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ask-web/internal/usecase"
	"ask-web/internal/web"
)

const (
	maxFormBytes    = 64 << 10
	formQuestion    = "question"
	contentTypeHTML = "text/html; charset=utf-8"
)

type AskUseCase interface {
	Ask(ctx context.Context, in usecase.AskInput) (usecase.AskOutput, error)
}

type Handler struct {
	uc     AskUseCase
	pages  *web.Renderer
	router http.Handler
}

func NewHandler(uc AskUseCase, pages *web.Renderer) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if pages == nil {
		return nil, errors.New("handler: renderer must not be nil")
	}
	h := &Handler{uc: uc, pages: pages}
	h.router = h.routes()
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(correlationID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/ask", h.ask)
	r.Get("/health", handleHealth)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, web.Page{})
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		slog.WarnContext(r.Context(), "invalid form submission", "correlation_id", CorrelationIDFrom(r.Context()), "err", err)
		h.render(w, r, http.StatusBadRequest, web.Page{Error: "The form could not be read."})
		return
	}
	question := r.PostFormValue(formQuestion)

	out, err := h.uc.Ask(r.Context(), usecase.AskInput{Question: question})
	if err != nil {
		status, message := classifyError(err)
		slog.ErrorContext(r.Context(), "ask failed",
			"correlation_id", CorrelationIDFrom(r.Context()),
			"status", status,
			"err", err,
		)
		h.render(w, r, status, web.Page{Question: question, Error: message})
		return
	}

	slog.InfoContext(r.Context(), "question answered",
		"correlation_id", CorrelationIDFrom(r.Context()),
		"model", out.Model,
		"answer_len", len(out.Answer),
	)
	h.render(w, r, http.StatusOK, web.Page{Question: question, Answer: out.Answer})
}

// render buffers the page so a template failure can still produce a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page web.Page) {
	var buf bytes.Buffer
	if err := h.pages.Render(&buf, page); err != nil {
		slog.ErrorContext(r.Context(), "render failed", "correlation_id", CorrelationIDFrom(r.Context()), "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func classifyError(err error) (int, string) {
	ucErr, ok := usecase.AsError(err)
	if !ok {
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		if ucErr.Reason == usecase.ReasonQuestionTooLong {
			return http.StatusBadRequest, "That question is too long."
		}
		return http.StatusBadRequest, "Please enter a question."
	case usecase.ErrorInvalidQuestion:
		return http.StatusBadRequest, "That question can't be answered."
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, "The answer service is busy. Try again in a moment."
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, "The answer service could not be reached."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}
