package main

import (
	"fmt"

	"go.uber.org/ratelimit"

	"github.com/l3uddz/seedr-adapter/pkg/config"
	"github.com/l3uddz/seedr-adapter/pkg/fetcher"
	"github.com/l3uddz/seedr-adapter/pkg/localdisk"
	"github.com/l3uddz/seedr-adapter/pkg/mapping"
	"github.com/l3uddz/seedr-adapter/pkg/ownership"
	"github.com/l3uddz/seedr-adapter/pkg/seedr"
	"github.com/l3uddz/seedr-adapter/pkg/seedrapi"
)

// buildAdapter wires C1-C5 from configuration, the way a hosting
// application (the movie-collection manager) would at plugin-registry
// time (spec §1 "the plugin registry that instantiates the adapter" is
// itself out of scope; this is that wiring, reproduced for the CLI).
func buildAdapter(cfg *config.Configuration) (*seedr.Adapter, error) {
	disk := localdisk.New()
	if err := disk.Test(cfg.DownloadDirectory); err != nil {
		return nil, fmt.Errorf("download directory %q is not usable: %w", cfg.DownloadDirectory, err)
	}

	rl := ratelimit.New(5) // 5 req/s, conservative default against Seedr's rate limits
	api := seedrapi.NewClient(seedrapi.Options{
		Email:        cfg.Email,
		Password:     cfg.Password,
		RateLimiter:  rl,
		ListRetryMax: 0,
	})

	store := mapping.NewStore()
	f := fetcher.New(api, disk, store, cfg.DownloadDirectory)

	var registry ownership.Registry
	if cfg.MultiTenancyConfigured() {
		redisReg, err := ownership.NewRedis(cfg.RedisConnectionString, cfg.InstanceTag)
		if err != nil {
			return nil, fmt.Errorf("build ownership registry: %w", err)
		}
		registry = redisReg
	} else {
		registry = ownership.NewNoop()
	}

	return seedr.New(seedr.Options{
		Config:    cfg,
		API:       api,
		Ownership: registry,
		Store:     store,
		Fetcher:   f,
		Disk:      disk,
	}), nil
}

func loadConfig() (*config.Configuration, error) {
	return config.Load(flagConfigFile)
}
