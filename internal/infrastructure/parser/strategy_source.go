package parser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"solaintel/internal/config"
	"solaintel/internal/domain"
	"solaintel/internal/ports"
	"solaintel/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Fetch iterates over configured sources and executes their scanners.
// A single broken source is logged and skipped so one dead feed cannot
// starve the whole digest.
func (s *StrategySource) Fetch(ctx context.Context, now time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch sources", "sources", len(s.sources), "day", now.Format("2006-01-02"))

	var aggregated []domain.Article
	for _, source := range s.sources {
		strategy, err := s.registry.Resolve(source.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source.Name, err)
		}

		req := scanner.Request{
			Now:        now,
			SourceName: source.Name,
			Category:   source.Category,
			URL:        source.URL,
			Options:    source.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.warn("source failed, skipping", "source", source.Name, "error", err)
			continue
		}

		for i := range results {
			if results[i].Publisher == "" {
				results[i].Publisher = source.Name
			}
		}
		s.debug("source produced articles", "source", source.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
