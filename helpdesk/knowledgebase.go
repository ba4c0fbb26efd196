package helpdesk

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// FAQ is a question/answer pair in the knowledge base.
type FAQ struct {
	ID           string `json:"id"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	CategoryID   string `json:"categoryId,omitempty"`
	HelpfulCount int    `json:"helpfulCount"`
}

// FAQPage is one page of FAQs.
type FAQPage struct {
	FAQs       []FAQ `json:"faqs"`
	TotalItems int   `json:"totalItems"`
}

// Article is a long-form knowledge base entry.
type Article struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID string `json:"categoryId,omitempty"`
	ViewCount  int    `json:"viewCount"`
}

// KnowledgeBaseService reads and manages /knowledge-base content.
type KnowledgeBaseService struct {
	rest *resty.Client
}

// ListFAQs returns a page of FAQs, optionally limited to one category.
func (s *KnowledgeBaseService) ListFAQs(ctx context.Context, page, size int, categoryID string) (*FAQPage, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var out FAQPage
	request := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page": strconv.Itoa(page),
			"size": strconv.Itoa(size),
		}).
		SetResult(&out)
	if categoryID != "" {
		request.SetQueryParam("categoryId", categoryID)
	}
	resp, err := request.Get("/knowledge-base/faqs")
	if err := checkResponse(resp, err, "KnowledgeBaseService.ListFAQs"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFAQ returns one FAQ.
func (s *KnowledgeBaseService) GetFAQ(ctx context.Context, id string) (*FAQ, error) {
	var out FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/knowledge-base/faqs/%s", id))
	if err := checkResponse(resp, err, "KnowledgeBaseService.GetFAQ"); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFAQ adds an FAQ.
func (s *KnowledgeBaseService) CreateFAQ(ctx context.Context, faq FAQ) (*FAQ, error) {
	var out FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(faq).
		SetResult(&out).
		Post("/knowledge-base/faqs")
	if err := checkResponse(resp, err, "KnowledgeBaseService.CreateFAQ"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateFAQ replaces an FAQ.
func (s *KnowledgeBaseService) UpdateFAQ(ctx context.Context, faq FAQ) (*FAQ, error) {
	var out FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetBody(faq).
		SetResult(&out).
		Put(fmt.Sprintf("/knowledge-base/faqs/%s", faq.ID))
	if err := checkResponse(resp, err, "KnowledgeBaseService.UpdateFAQ"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteFAQ removes an FAQ.
func (s *KnowledgeBaseService) DeleteFAQ(ctx context.Context, id string) error {
	resp, err := s.rest.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/knowledge-base/faqs/%s", id))
	return checkResponse(resp, err, "KnowledgeBaseService.DeleteFAQ")
}

// MarkFAQHelpful bumps the helpful counter.
func (s *KnowledgeBaseService) MarkFAQHelpful(ctx context.Context, id string) (*FAQ, error) {
	var out FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Post(fmt.Sprintf("/knowledge-base/faqs/%s/helpful", id))
	if err := checkResponse(resp, err, "KnowledgeBaseService.MarkFAQHelpful"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchFAQs runs a full-text search.
func (s *KnowledgeBaseService) SearchFAQs(ctx context.Context, query string) ([]FAQ, error) {
	var out []FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&out).
		Get("/knowledge-base/faqs/search")
	if err := checkResponse(resp, err, "KnowledgeBaseService.SearchFAQs"); err != nil {
		return nil, err
	}
	return out, nil
}

// PopularFAQs returns the most helpful FAQs.
func (s *KnowledgeBaseService) PopularFAQs(ctx context.Context, limit int) ([]FAQ, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []FAQ
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/knowledge-base/faqs/popular")
	if err := checkResponse(resp, err, "KnowledgeBaseService.PopularFAQs"); err != nil {
		return nil, err
	}
	return out, nil
}

// ListArticles returns all articles, optionally limited to one category.
func (s *KnowledgeBaseService) ListArticles(ctx context.Context, categoryID string) ([]Article, error) {
	var out []Article
	request := s.rest.R().SetContext(ctx).SetResult(&out)
	if categoryID != "" {
		request.SetQueryParam("categoryId", categoryID)
	}
	resp, err := request.Get("/knowledge-base/articles")
	if err := checkResponse(resp, err, "KnowledgeBaseService.ListArticles"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetArticle returns one article.
func (s *KnowledgeBaseService) GetArticle(ctx context.Context, id string) (*Article, error) {
	var out Article
	resp, err := s.rest.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/knowledge-base/articles/%s", id))
	if err := checkResponse(resp, err, "KnowledgeBaseService.GetArticle"); err != nil {
		return nil, err
	}
	return &out, nil
}
