package providers

import (
	"github.com/samber/do/v2"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
	"github.com/macontouch/notebook/internal/ratelimit"
	"github.com/macontouch/notebook/internal/remote"
)

// FetcherHandle wraps the snapshot fetcher and owns its rate limiter.
type FetcherHandle struct {
	*remote.Fetcher
	limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *FetcherHandle) Shutdown() error {
	h.limiter.Stop()
	return nil
}

// ProvideFetcher provides the rate limited remote snapshot fetcher.
func ProvideFetcher(i do.Injector) (*FetcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	limiter := ratelimit.New(cfg.Remote.Rate, cfg.Remote.Burst)
	fetcher, err := remote.NewFetcher(remote.Config{
		URL:     cfg.Remote.URL,
		Timeout: cfg.Remote.Timeout,
	}, limiter, log.Component("remote"))
	if err != nil {
		limiter.Stop()
		return nil, err
	}

	log.Info("Remote fetcher configured",
		"url", fetcher.URL(),
		"timeout", cfg.Remote.Timeout,
		"rate", cfg.Remote.Rate,
	)

	return &FetcherHandle{Fetcher: fetcher, limiter: limiter}, nil
}
