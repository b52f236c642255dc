package main

import (
	"path/filepath"

	"github.com/genomectl/repogenome/internal/analyzer"
	ctxassembler "github.com/genomectl/repogenome/internal/context"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/history"
	"github.com/genomectl/repogenome/internal/llm"
	"github.com/genomectl/repogenome/internal/merge"
	"github.com/genomectl/repogenome/internal/query"
	"github.com/genomectl/repogenome/internal/serving"
	"github.com/genomectl/repogenome/internal/subsystems"

	"github.com/genomectl/repogenome/internal/cache"
)

// buildEngine assembles a serving.Engine from the loaded config and
// the resolved repo root. It does not scan — callers run Scan or Load
// as appropriate for the command at hand.
func buildEngine() (*serving.Engine, error) {
	var limiter *llm.RateLimiter
	if cfg.Cache.SharedCacheURL != "" && cfg.API.LLMKey != "" {
		if rl, err := llm.NewRateLimiter(cfg.Cache.SharedCacheURL); err == nil {
			limiter = rl
		}
	}
	var llmClient subsystems.LLMClient
	if c := llm.NewClient(cfg.API.LLMKey, cfg.API.LLMModel, limiter); c.IsEnabled() {
		llmClient = c
	}

	subs := enabledSubsystems()

	engineCfg := serving.Config{
		RepoRoot:    repoRoot,
		PersistPath: persistPath(),
		Workers:     cfg.Engine.Workers,
		Registry:    analyzer.NewDefaultRegistry(),
		Subsystems:  subs,
		Capabilities: subsystems.Capabilities{
			HistorySource:  historySource(),
			LLM:            llmClient,
			RepoRoot:       repoRoot,
			HistoryDays:    365,
			HotspotK:       20,
			LegacyPatterns: cfg.Engine.LegacyPatterns,
		},
		MergeOptions: merge.Options{
			EngineVersion:  version,
			SchemaVersion:  cfg.Engine.SchemaVersion,
			Mode:           genome.ModeStandard,
			HotspotK:       20,
			LegacyPatterns: cfg.Engine.LegacyPatterns,
		},
	}

	var cacheStore cache.Store = cache.NewMemoryStore(cfg.Query.CacheTTL, cfg.Query.CacheMaxEntries)
	queryCache := query.NewCache(cacheStore)

	store, err := ctxassembler.OpenBoltStore(cfg.Context.SessionStorePath)
	if err != nil {
		return nil, err
	}
	assembler := ctxassembler.NewAssembler(store)

	return serving.NewEngine(engineCfg, queryCache, assembler), nil
}

func persistPath() string {
	return filepath.Join(".repogenome", "genome.json")
}

// historySource picks ChronoMap's commit source. A local git checkout
// at repoRoot wins when present; otherwise, if --repo was given as an
// "owner/name" slug, fall back to the hosted GitHub API.
func historySource() history.Source {
	if history.GitBinaryAvailable(repoRoot) {
		return history.NewGitSource()
	}
	if owner, name, err := history.ParseOwnerRepo(repoRoot); err == nil {
		return history.NewGitHubSource(cfg.API.GitHubToken, owner, name, cfg.API.GitHubRepoRPS)
	}
	return history.NewGitSource()
}

func enabledSubsystems() []subsystems.Subsystem {
	enabled := cfg.Engine.EnabledSubsystem
	return []subsystems.Subsystem{
		subsystems.NewFlowWeaver(!enabled["flowweaver"]),
		subsystems.NewIntentAtlas(!enabled["intentatlas"]),
		subsystems.NewChronoMap(!enabled["chronomap"]),
		subsystems.NewContractLens(!enabled["contractlens"]),
		subsystems.NewTestGalaxy(!enabled["testgalaxy"]),
		subsystems.NewRiskLens(!enabled["risklens"]),
	}
}
