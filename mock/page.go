package mock

import (
	"context"

	"github.com/fwojciec/arachne"
)

var _ arachne.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of arachne.PageStore.
type PageStore struct {
	SaveFn func(ctx context.Context, page *arachne.Page) error
}

func (s *PageStore) Save(ctx context.Context, page *arachne.Page) error {
	return s.SaveFn(ctx, page)
}

var _ arachne.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of arachne.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*arachne.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*arachne.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ arachne.Converter = (*Converter)(nil)

// Converter is a mock implementation of arachne.Converter.
type Converter struct {
	ConvertFn func(html string, pageURL string) (string, error)
}

func (c *Converter) Convert(html string, pageURL string) (string, error) {
	return c.ConvertFn(html, pageURL)
}

var _ arachne.LinkSelector = (*LinkSelector)(nil)

// LinkSelector is a mock implementation of arachne.LinkSelector.
type LinkSelector struct {
	ExtractLinksFn func(html string, baseURL string) ([]arachne.Location, error)
}

func (s *LinkSelector) ExtractLinks(html string, baseURL string) ([]arachne.Location, error) {
	return s.ExtractLinksFn(html, baseURL)
}

var _ arachne.PageService = (*PageService)(nil)

// PageService is a mock implementation of arachne.PageService.
type PageService struct {
	FindPageByURLFn func(ctx context.Context, url string) (*arachne.Page, error)
	FindPagesFn     func(ctx context.Context, filter arachne.PageFilter) ([]*arachne.Page, error)
}

func (s *PageService) FindPageByURL(ctx context.Context, url string) (*arachne.Page, error) {
	return s.FindPageByURLFn(ctx, url)
}

func (s *PageService) FindPages(ctx context.Context, filter arachne.PageFilter) ([]*arachne.Page, error) {
	return s.FindPagesFn(ctx, filter)
}
