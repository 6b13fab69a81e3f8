package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/wordpress"
	"github.com/Yukoval-Dakia/stone/pkg/htmlx"
)

type ContentService interface {
	PageBySlug(ctx context.Context, slug string) (*wordpress.Document, error)
	RecentPosts(ctx context.Context) ([]wordpress.Document, error)
	PostByID(ctx context.Context, id int) (*wordpress.Document, error)
}

type contentService struct {
	wp  *wordpress.Client
	log *zap.Logger
}

// NewContentService wraps the upstream client and normalizes every rendered
// content body before it leaves the API. All three operations normalize
// uniformly, single-post included.
func NewContentService(wp *wordpress.Client, log *zap.Logger) ContentService {
	return &contentService{wp: wp, log: log}
}

func (s *contentService) PageBySlug(ctx context.Context, slug string) (*wordpress.Document, error) {
	page, err := s.wp.PageBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.normalize(page)
	return page, nil
}

func (s *contentService) RecentPosts(ctx context.Context) ([]wordpress.Document, error) {
	posts, err := s.wp.RecentPosts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		s.normalize(&posts[i])
	}
	return posts, nil
}

func (s *contentService) PostByID(ctx context.Context, id int) (*wordpress.Document, error) {
	post, err := s.wp.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.normalize(post)
	return post, nil
}

// normalize rewrites the document's content HTML in place. A normalizer
// failure keeps the raw HTML; serving unstyled content beats serving an
// error page.
func (s *contentService) normalize(doc *wordpress.Document) {
	out, err := htmlx.Normalize(doc.Content.Rendered)
	if err != nil {
		s.log.Warn("HTML normalization failed",
			zap.Int("document_id", doc.ID),
			zap.Error(err))
		return
	}
	doc.Content.Rendered = out
}
