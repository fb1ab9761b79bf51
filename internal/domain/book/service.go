package book

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/domain/source"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/id"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/template"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Search outcomes reported to the Observer.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Task names reported to the Observer.
const (
	TaskSearch  = "search"
	TaskToc     = "toc"
	TaskContent = "content"
)

// SourceLookup resolves book sources.
type SourceLookup interface {
	Source(ctx context.Context, id string) (*source.Source, error)
	Enabled(ctx context.Context) ([]*source.Source, error)
}

// Fetcher retrieves a page for a request spec.
type Fetcher interface {
	Fetch(ctx context.Context, spec string, sourceHeaders map[string]string) (*client.Response, error)
}

// Observer receives extraction statistics.
type Observer interface {
	ObserveExtracted(task string, items int)
	ObserveSearchSource(outcome string)
	ObserveTocPages(pages int)
}

// Config tunes the service
type Config struct {
	SearchConcurrency int
	TocMaxPages       int
	Sanitizer         Sanitizer
}

// Service runs fetch and extract pipelines for the book endpoints.
type Service struct {
	sources  SourceLookup
	fetcher  Fetcher
	config   Config
	logger   *zap.Logger
	observer Observer
}

// NewService creates a book service
func NewService(sources SourceLookup, fetcher Fetcher, cfg Config, logger *zap.Logger) *Service {
	if cfg.SearchConcurrency <= 0 {
		cfg.SearchConcurrency = 8
	}
	if cfg.TocMaxPages <= 0 || cfg.TocMaxPages > MaxPages {
		cfg.TocMaxPages = MaxPages
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sources: sources, fetcher: fetcher, config: cfg, logger: logger, observer: nopObserver{}}
}

// SetObserver installs a statistics observer.
func (s *Service) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	s.observer = o
}

// Search queries one source when sourceID is set, otherwise every enabled
// searchable source. Per-source fetch failures yield no results for that
// source and never fail the whole search.
func (s *Service) Search(ctx context.Context, keyword, sourceID string, page int) ([]SearchResult, error) {
	var (
		mu     sync.Mutex
		chunks = map[string][]SearchResult{}
	)
	targets, err := s.searchTargets(ctx, keyword, sourceID)
	if err != nil {
		return nil, err
	}
	s.fanOut(ctx, s.taskLogger(TaskSearch), targets, keyword, page, func(r SourceResults) {
		mu.Lock()
		chunks[r.SourceID] = r.Results
		mu.Unlock()
	})

	results := []SearchResult{}
	for _, src := range targets {
		results = append(results, chunks[src.URL]...)
	}
	return results, nil
}

// SearchStream is Search with per-source delivery: emit is called once per
// source as soon as it completes. Calls to emit are serialized.
func (s *Service) SearchStream(ctx context.Context, keyword, sourceID string, page int, emit func(SourceResults)) error {
	targets, err := s.searchTargets(ctx, keyword, sourceID)
	if err != nil {
		return err
	}
	var mu sync.Mutex
	s.fanOut(ctx, s.taskLogger(TaskSearch), targets, keyword, page, func(r SourceResults) {
		mu.Lock()
		defer mu.Unlock()
		emit(r)
	})
	return nil
}

func (s *Service) searchTargets(ctx context.Context, keyword, sourceID string) ([]*source.Source, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, fmt.Errorf("%w: keyword", ErrMissingParam)
	}
	if sourceID != "" {
		src, err := s.sources.Source(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		return []*source.Source{src}, nil
	}

	enabled, err := s.sources.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	targets := make([]*source.Source, 0, len(enabled))
	for _, src := range enabled {
		if src.Searchable() {
			targets = append(targets, src)
		}
	}
	return targets, nil
}

// taskLogger tags every log line of one search fan-out or toc crawl with a
// shared task id.
func (s *Service) taskLogger(task string) *zap.Logger {
	return s.logger.With(zap.String("task", task), zap.Stringer("task_id", id.NewTaskID()))
}

func (s *Service) fanOut(ctx context.Context, log *zap.Logger, targets []*source.Source, keyword string, page int, done func(SourceResults)) {
	g := new(errgroup.Group)
	g.SetLimit(s.config.SearchConcurrency)

	log.Debug("Search started", zap.String("keyword", keyword), zap.Int("sources", len(targets)))
	for _, src := range targets {
		g.Go(func() error {
			done(s.searchSource(ctx, log, src, keyword, page))
			return nil
		})
	}
	_ = g.Wait()
	log.Debug("Search finished", zap.String("keyword", keyword))
}

func (s *Service) searchSource(ctx context.Context, log *zap.Logger, src *source.Source, keyword string, page int) (out SourceResults) {
	out = SourceResults{SourceID: src.URL, Results: []SearchResult{}}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Search panicked", zap.String("source", src.URL), zap.Any("panic", r))
			out = SourceResults{SourceID: src.URL, Results: []SearchResult{}, Err: fmt.Errorf("search panicked: %v", r)}
			s.observer.ObserveSearchSource(OutcomeFailed)
		}
	}()

	if !src.Searchable() {
		s.observer.ObserveSearchSource(OutcomeSkipped)
		return out
	}
	target := template.Render(src.SearchURL, keyword, page)
	if target == "" {
		s.observer.ObserveSearchSource(OutcomeSkipped)
		return out
	}

	resp, err := s.fetch(ctx, src, target)
	if err != nil {
		log.Warn("Search fetch failed",
			zap.String("source", src.URL), zap.String("url", target), zap.Error(err))
		out.Err = err
		s.observer.ObserveSearchSource(OutcomeFailed)
		return out
	}

	out.Results = ExtractSearchResults(resp.Body, src, resp.FinalURL)
	s.observer.ObserveExtracted(TaskSearch, len(out.Results))
	if len(out.Results) == 0 {
		s.observer.ObserveSearchSource(OutcomeEmpty)
	} else {
		s.observer.ObserveSearchSource(OutcomeOK)
	}
	return out
}

// Info fetches a book detail page. A blank toc URL falls back to bookURL.
func (s *Service) Info(ctx context.Context, sourceID, bookURL string) (*Info, error) {
	if sourceID == "" || bookURL == "" {
		return nil, fmt.Errorf("%w: sourceId and bookUrl are required", ErrMissingParam)
	}
	src, err := s.sources.Source(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, src, bookURL)
	if err != nil {
		return nil, err
	}

	info := ExtractBookInfo(resp.Body, src, resp.FinalURL)
	if info.TocURL == "" {
		info.TocURL = bookURL
	}
	return info, nil
}

// Toc crawls the table of contents starting at tocURL.
func (s *Service) Toc(ctx context.Context, sourceID, tocURL string) ([]Chapter, error) {
	if sourceID == "" || tocURL == "" {
		return nil, fmt.Errorf("%w: sourceId and tocUrl are required", ErrMissingParam)
	}
	src, err := s.sources.Source(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	log := s.taskLogger(TaskToc)
	chapters, pages, err := Crawl(ctx, tocURL, s.config.TocMaxPages, func(ctx context.Context, url string) ([]Chapter, string, error) {
		resp, err := s.fetch(ctx, src, url)
		if err != nil {
			return nil, "", err
		}
		page := ExtractTocPage(resp.Body, src, resp.FinalURL)
		return page.Chapters, page.NextTocURL, nil
	})
	s.observer.ObserveTocPages(pages)
	if err != nil {
		log.Warn("Toc crawl failed",
			zap.String("source", src.URL), zap.String("url", tocURL), zap.Int("pages", pages), zap.Error(err))
		return nil, err
	}
	s.observer.ObserveExtracted(TaskToc, len(chapters))
	log.Debug("Toc crawled", zap.String("url", tocURL), zap.Int("pages", pages), zap.Int("chapters", len(chapters)))
	return chapters, nil
}

// Content fetches one chapter. Relative links resolve against chapterURL.
func (s *Service) Content(ctx context.Context, sourceID, chapterURL string) (*Content, error) {
	if sourceID == "" || chapterURL == "" {
		return nil, fmt.Errorf("%w: sourceId and chapterUrl are required", ErrMissingParam)
	}
	src, err := s.sources.Source(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetch(ctx, src, chapterURL)
	if err != nil {
		return nil, err
	}

	content := ExtractContent(resp.Body, src, chapterURL, s.config.Sanitizer)
	s.observer.ObserveExtracted(TaskContent, 1)
	return content, nil
}

func (s *Service) fetch(ctx context.Context, src *source.Source, target string) (*client.Response, error) {
	resp, err := s.fetcher.Fetch(ctx, target, client.ParseHeaderSpec(src.Header))
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	if resp.FinalURL == "" {
		resp.FinalURL = target
	}
	return resp, nil
}

type nopObserver struct{}

func (nopObserver) ObserveExtracted(string, int) {}
func (nopObserver) ObserveSearchSource(string)   {}
func (nopObserver) ObserveTocPages(int)          {}
