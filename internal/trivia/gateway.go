// Package trivia proxies quiz categories and questions from an Open Trivia
// DB compatible upstream.
package trivia

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-study/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-study/internal/metrics"
)

const (
	breakerName     = "trivia-api"
	maxPayloadBytes = 4 << 20

	// responseCodeNoResults is the upstream's "not enough questions" code.
	responseCodeNoResults = 1
)

var (
	ErrCategories = apperr.Upstream("Failed to fetch categories")
	ErrQuestions  = apperr.Upstream("Failed to fetch questions")
	ErrNoResults  = apperr.NotFound("No results found for the specified parameters")
)

// QuizQuery holds the optional filters of FetchQuiz. Empty fields are not
// forwarded, except Amount which defaults to 10.
type QuizQuery struct {
	Amount     string
	Category   string
	Difficulty string
	Type       string
}

func (q QuizQuery) values() url.Values {
	v := url.Values{}
	amount := strings.TrimSpace(q.Amount)
	if amount == "" {
		amount = "10"
	}
	v.Set("amount", amount)
	for k, val := range map[string]string{"category": q.Category, "difficulty": q.Difficulty, "type": q.Type} {
		if val = strings.TrimSpace(val); val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Gateway calls the upstream with a bounded timeout behind a circuit breaker.
// When the circuit is open calls fail without touching the network.
type Gateway struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.SugaredLogger
	maxBody int64
}

func NewGateway(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Gateway {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller that went away says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cb:      cb,
		logger:  logger,
		maxBody: maxPayloadBytes,
	}
}

// ListCategories returns the upstream category listing unmodified.
func (g *Gateway) ListCategories(ctx context.Context) ([]byte, error) {
	body, err := g.fetch(ctx, "categories", g.baseURL+"/api_category.php")
	if err != nil {
		return nil, ErrCategories
	}
	return body, nil
}

// FetchQuiz returns the upstream question payload unmodified.
func (g *Gateway) FetchQuiz(ctx context.Context, q QuizQuery) ([]byte, error) {
	body, err := g.fetch(ctx, "questions", g.baseURL+"/api.php?"+q.values().Encode())
	if err != nil {
		return nil, ErrQuestions
	}
	if gjson.GetBytes(body, "response_code").Int() == responseCodeNoResults {
		metrics.UpstreamRequestsTotal.WithLabelValues("questions", "no_results").Inc()
		return nil, ErrNoResults
	}
	return body, nil
}

func (g *Gateway) fetch(ctx context.Context, endpoint, target string) ([]byte, error) {
	body, err := g.cb.Execute(func() ([]byte, error) {
		return g.get(ctx, target)
	})
	if err != nil {
		outcome := "failure"
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "rejected"
		case errors.Is(err, context.Canceled):
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "canceled").Inc()
			g.logger.Debugw("trivia upstream call canceled", "endpoint", endpoint)
			return nil, err
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		g.logger.Warnw("trivia upstream call failed", "endpoint", endpoint, "outcome", outcome, "err", err)
		return nil, err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}

func (g *Gateway) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > g.maxBody {
		return nil, fmt.Errorf("upstream payload exceeds %d bytes", g.maxBody)
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("upstream returned invalid JSON")
	}
	return body, nil
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
