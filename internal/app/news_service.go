package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agrolink/agrolink/internal/storage"
)

type NewsService struct {
	news   storage.NewsRepository
	logger *slog.Logger
}

func NewNewsService(news storage.NewsRepository, logger *slog.Logger) *NewsService {
	return &NewsService{
		news:   news,
		logger: serviceLogger(logger, "news"),
	}
}

func (s *NewsService) Create(ctx context.Context, req CreateNewsRequest) (int64, error) {
	if strings.TrimSpace(req.Title) == "" {
		return 0, fmt.Errorf("%w: title is required", ErrValidation)
	}
	item := &storage.NewsItem{Title: req.Title, Content: req.Content}
	if err := s.news.Create(ctx, item); err != nil {
		s.logger.Error("create news item failed", "error", err)
		return 0, nil
	}
	return item.ID, nil
}

func (s *NewsService) List(ctx context.Context) []storage.NewsItem {
	items, err := s.news.List(ctx)
	if err != nil {
		s.logger.Error("list news failed", "error", err)
		return []storage.NewsItem{}
	}
	return items
}

func (s *NewsService) Delete(ctx context.Context, id int64) bool {
	removed, err := s.news.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete news item failed", "news_id", id, "error", err)
		return false
	}
	return removed
}
