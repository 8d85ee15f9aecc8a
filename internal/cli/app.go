package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rohmanhakim/vnlaw-crawler/internal/access"
	"github.com/rohmanhakim/vnlaw-crawler/internal/attachment"
	"github.com/rohmanhakim/vnlaw-crawler/internal/config"
	"github.com/rohmanhakim/vnlaw-crawler/internal/crawler"
	"github.com/rohmanhakim/vnlaw-crawler/internal/document"
	"github.com/rohmanhakim/vnlaw-crawler/internal/enrich"
	"github.com/rohmanhakim/vnlaw-crawler/internal/extractor"
	"github.com/rohmanhakim/vnlaw-crawler/internal/logger"
	"github.com/rohmanhakim/vnlaw-crawler/internal/mdconvert"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metadata"
	"github.com/rohmanhakim/vnlaw-crawler/internal/metrics"
	"github.com/rohmanhakim/vnlaw-crawler/internal/portal"
	"github.com/rohmanhakim/vnlaw-crawler/internal/preview"
	"github.com/rohmanhakim/vnlaw-crawler/internal/sanitizer"
	"github.com/rohmanhakim/vnlaw-crawler/internal/storage"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/retry"
	"github.com/rohmanhakim/vnlaw-crawler/pkg/timeutil"
	"golang.org/x/time/rate"
)

const metricsShutdownTimeout = 5 * time.Second

// app holds the process-wide collaborators of one command run.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	recorder *metadata.Recorder
	store    storage.Store
	closers  []func()
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := logger.New(logger.Config{Level: cfg.LogLevel(), Encoding: cfg.LogEncoding()})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	a := &app{
		cfg:      cfg,
		log:      log,
		recorder: metadata.NewRecorder(log, metrics.New(reg)),
	}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	if addr := cfg.MetricsAddr(); addr != "" {
		a.serveMetrics(addr, reg)
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", "addr", addr, "error", err.Error())
		}
	}()
	a.log.Info("serving metrics", "addr", addr)

	a.closers = append(a.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	})
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.StoreDriver() {
	case config.StoreDriverMemory:
		a.log.Warn("using the in-memory store, nothing will be persisted")
		a.store = storage.NewMemoryStore()
		return nil
	case config.StoreDriverPostgres:
		db, err := storage.Open(ctx, a.cfg.DatabaseURL())
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })

		store := storage.NewPostgresStore(db, a.recorder)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		a.store = store
		return nil
	default:
		return fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, a.cfg.StoreDriver())
	}
}

// newClient returns an access client for one site. All clients share the
// global request-rate limiter.
func (a *app) newClient(base url.URL, timeout time.Duration, limiter *rate.Limiter) *access.Client {
	return access.NewClient(a.recorder, access.ClientParam{
		BaseURL:        base,
		UserAgent:      a.cfg.UserAgent(),
		DefaultTimeout: timeout,
		RetryParam: retry.NewRetryParam(
			a.cfg.Jitter(),
			a.cfg.RandomSeed(),
			a.cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				a.cfg.BackoffInitialDuration(),
				a.cfg.BackoffMultiplier(),
				a.cfg.BackoffMaxDuration(),
			),
		),
		Limiter: limiter,
	})
}

func (a *app) crawler() *crawler.Crawler {
	var limiter *rate.Limiter
	if rps := a.cfg.RequestsPerSecond(); rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	vbplClient := a.newClient(a.cfg.VbplBaseURL(), a.cfg.Timeout(), limiter)
	anleClient := a.newClient(a.cfg.AnleBaseURL(), a.cfg.CaseLawTimeout(), limiter)
	registryClient := a.newClient(a.cfg.ConcettiBaseURL(), a.cfg.Timeout(), limiter)
	// attachment URLs are absolute and span several hosts
	downloadClient := a.newClient(url.URL{}, a.cfg.Timeout(), limiter)

	domExtractor := extractor.NewDomExtractor(a.recorder)

	var fallback portal.FullTextSource
	if tvpl, ok := a.cfg.TvplBaseURL(); ok {
		fallback = portal.NewTvplFallback(a.recorder, a.newClient(tvpl, a.cfg.Timeout(), limiter), domExtractor)
	}

	anleBase := a.cfg.AnleBaseURL()
	portals := []portal.Portal{
		portal.NewAnlePortal(a.recorder, anleClient, portal.AnleParam{
			BaseURL: anleBase.String(),
			Timeout: a.cfg.CaseLawTimeout(),
		}),
	}
	for _, collection := range []document.Collection{document.CollectionPhapQuy, document.CollectionHopNhat} {
		portals = append(portals, portal.NewVbplPortal(a.recorder, vbplClient, domExtractor, portal.VbplParam{
			Collection: collection,
			PageSize:   a.cfg.VbplPageSize(),
			PDFBaseURL: a.cfg.VbplPDFBaseURL(),
			Fallback:   fallback,
		}))
	}

	resolver := attachment.NewLocalResolver(a.recorder, downloadClient, attachment.ResolveParam{
		OutputDir: a.cfg.OutputDir(),
		HashAlgo:  a.cfg.HashAlgo(),
	})
	concetti := a.cfg.ConcettiBaseURL()
	matcher := enrich.NewMatcher(
		a.recorder,
		enrich.NewConcettiClient(a.recorder, registryClient, concetti.String()),
		resolver,
		enrich.MatchParam{
			Threshold: a.cfg.MatchThreshold(),
			MaxPages:  a.cfg.MatchMaxPages(),
		},
	)

	return crawler.NewCrawler(crawler.Dependencies{
		MetadataSink:   a.recorder,
		CrawlFinalizer: a.recorder,
		Logger:         a.log,
		Store:          a.store,
		Portals:        portals,
		Resolver:       resolver,
		Enricher:       matcher,
		Sanitizer:      sanitizer.NewHTMLSanitizer(a.recorder),
	}, crawler.CrawlerParam{
		Concurrency: a.cfg.Concurrency(),
		PageDelay:   a.cfg.PageDelay(),
		GraphDelay:  a.cfg.GraphDelay(),
	})
}

func (a *app) exporter() *preview.Exporter {
	return preview.NewExporter(a.recorder, a.store, mdconvert.NewRule(a.recorder), a.cfg.OutputDir())
}
