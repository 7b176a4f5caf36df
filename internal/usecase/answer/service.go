// Package answer composes grounded recommendations from retrieved listings.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/domain"
	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
)

// Service is the retrieval-augmented answerer.
type Service struct {
	embed   Embedder
	search  Searcher
	llm     Completer
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an answer service. timeout bounds each completion call; <= 0
// leaves only the caller's deadline.
func New(embed Embedder, search Searcher, llm Completer, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{embed: embed, search: search, llm: llm, timeout: timeout, logger: logger}
}

// Query embeds the query, retrieves the top k listings and asks the completion
// provider for a recommendation grounded in them.
func (s *Service) Query(ctx context.Context, query string, k int) (domanswer.Answer, error) {
	req, err := domanswer.NewRequest(query, k)
	if err != nil {
		return domanswer.Answer{}, err
	}

	vec, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("embed query: %w", err)
	}

	res, err := s.search.Search(ctx, vec, req.K())
	if err != nil {
		return domanswer.Answer{}, fmt.Errorf("search listings: %w", err)
	}
	if len(res.Hits) == 0 {
		s.logger.Info("Query matched no listings", zap.String("strategy", string(res.Strategy)))
		return domanswer.Empty(req.Query(), req.K()), nil
	}

	prompt := BuildPrompt(req.Query(), res.Hits)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return domanswer.Answer{}, err
	}

	out := domanswer.Answer{
		Query:      req.Query(),
		AnswerText: text,
		Sources:    make([]string, 0, len(res.Hits)),
		K:          req.K(),
		Retrieved:  make([]domanswer.Retrieved, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		out.Sources = append(out.Sources, h.Listing.ID())
		out.Retrieved = append(out.Retrieved, domanswer.Retrieved{
			ID:       h.Listing.ID(),
			Score:    h.Score,
			FullText: h.Listing.FullText(),
		})
	}

	s.logger.Info("Query answered",
		zap.Int("k", req.K()),
		zap.Int("sources", len(out.Sources)),
		zap.String("strategy", string(res.Strategy)),
	)
	return out, nil
}

func (s *Service) complete(ctx context.Context, prompt domain.Prompt) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.llm.Complete(callCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", &domain.CompletionError{Err: fmt.Errorf("%w after %s: %w", domain.ErrTimeout, s.timeout, err)}
		}
		return "", &domain.CompletionError{Err: err}
	}

	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", &domain.CompletionError{Err: errors.New("provider returned empty text")}
	}
	return text, nil
}
