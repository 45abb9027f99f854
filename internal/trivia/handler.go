package trivia

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/httpx"
)

// Source is the upstream the handlers proxy to.
type Source interface {
	ListCategories(ctx context.Context) ([]byte, error)
	FetchQuiz(ctx context.Context, q QuizQuery) ([]byte, error)
}

type Handler struct {
	src    Source
	logger *zap.SugaredLogger
}

func NewHandler(src Source, logger *zap.SugaredLogger) *Handler {
	return &Handler{src: src, logger: logger}
}

func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	body, err := h.src.ListCategories(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch categories")
		return
	}
	httpx.WriteRaw(w, http.StatusOK, body)
}

func (h *Handler) Quiz(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body, err := h.src.FetchQuiz(r.Context(), QuizQuery{
		Amount:     q.Get("amount"),
		Category:   q.Get("category"),
		Difficulty: q.Get("difficulty"),
		Type:       q.Get("type"),
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err, "Failed to fetch questions")
		return
	}
	httpx.WriteRaw(w, http.StatusOK, body)
}
