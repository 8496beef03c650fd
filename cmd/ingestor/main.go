// In file: cmd/ingestor/main.go

// Package main implements the offline seeding tool for the intent cache.
// It reads labelled utterances from YAML files and saves them into the
// configured intent store, so the cache strategy answers them from the very
// first request. When REDIS_ADDR is set the Redis cache is warmed as well.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
	"github.com/chengwenxing-cmd/VoiceService/internal/logger"
	"github.com/chengwenxing-cmd/VoiceService/internal/store"
	"github.com/chengwenxing-cmd/VoiceService/internal/strategy"
)

// =================================================================================
// Configuration
// =================================================================================

const (
	defaultDatabaseURL    = "sqlite://./voice_service.db"
	defaultSourceDataDir  = "./data/intents"
	defaultConcurrency    = 8
	defaultSeedConfidence = 0.95
	defaultCacheTTL       = 24 * time.Hour
	saveTimeout           = 5 * time.Second
)

type Config struct {
	DatabaseURL   string
	RedisAddr     string
	CacheTTL      time.Duration
	SourceDataDir string
	Concurrency   int
	LogLevel      string
}

func loadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CacheTTL:      defaultCacheTTL,
		SourceDataDir: getEnv("SOURCE_DATA_DIR", defaultSourceDataDir),
		Concurrency:   defaultConcurrency,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	if raw := os.Getenv("INGEST_CONCURRENCY"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errors.Errorf("INGEST_CONCURRENCY must be a positive integer, got %q", raw)
		}
		cfg.Concurrency = n
	}
	if raw := os.Getenv("INTENT_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, "invalid INTENT_CACHE_TTL")
		}
		cfg.CacheTTL = d
	}
	return cfg, nil
}

// getEnv is a helper to read an env var or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// =================================================================================
// Seed Files
// =================================================================================

// seedFile is the on-disk layout of one YAML file under the source directory.
type seedFile struct {
	Examples []seedExample `yaml:"examples"`
}

type seedExample struct {
	Text       string         `yaml:"text"`
	Intent     string         `yaml:"intent"`
	Confidence float64        `yaml:"confidence"`
	Entities   map[string]any `yaml:"entities"`
}

// loadSeeds reads every .yaml/.yml file below dir. Entries are validated and
// de-duplicated by text; a later entry for the same text replaces an earlier one.
func loadSeeds(dir string, log *zap.Logger) ([]*intent.Intent, error) {
	byText := make(map[string]*intent.Intent)
	var order []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}
		var f seedFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return errors.Wrapf(err, "parse %s", path)
		}
		for idx, ex := range f.Examples {
			in, err := ex.toIntent()
			if err != nil {
				return errors.Wrapf(err, "%s: example %d", path, idx+1)
			}
			if _, seen := byText[in.Text()]; seen {
				log.Warn("duplicate seed text, keeping the later entry",
					zap.String("file", path), zap.String("text", in.Text()))
			} else {
				order = append(order, in.Text())
			}
			byText[in.Text()] = in
		}
		log.Debug("seed file parsed", zap.String("file", path), zap.Int("examples", len(f.Examples)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*intent.Intent, 0, len(order))
	for _, text := range order {
		out = append(out, byText[text])
	}
	return out, nil
}

func (ex seedExample) toIntent() (*intent.Intent, error) {
	text := strings.TrimSpace(ex.Text)
	if text == "" {
		return nil, errors.New("text is empty")
	}
	t := intent.ParseType(ex.Intent)
	if t == intent.Unknown {
		return nil, errors.Errorf("intent %q is not a cacheable intent type", ex.Intent)
	}
	conf := ex.Confidence
	if conf == 0 {
		conf = defaultSeedConfidence
	}
	if conf < strategy.CacheMinConfidence || conf > 1 {
		return nil, errors.Errorf("confidence %.2f must be within [%.2f, 1]", conf, strategy.CacheMinConfidence)
	}
	return intent.New(t, conf, text, ex.Entities), nil
}

// =================================================================================
// Ingestor Service
// =================================================================================

type Ingestor struct {
	config *Config
	store  store.IntentStore
	logger *zap.Logger
}

func NewIngestor(cfg *Config, s store.IntentStore, log *zap.Logger) *Ingestor {
	return &Ingestor{config: cfg, store: s, logger: log}
}

// Run loads the seed files and saves every example, at most Concurrency at a
// time. It returns the number of saved intents.
func (i *Ingestor) Run(ctx context.Context) (int, error) {
	i.logger.Info("🚀 Starting intent cache seeding...", zap.String("source", i.config.SourceDataDir))
	seeds, err := loadSeeds(i.config.SourceDataDir, i.logger)
	if err != nil {
		return 0, errors.Wrap(err, "failed to load seed files")
	}
	if len(seeds) == 0 {
		i.logger.Warn("no seed examples found, nothing to do")
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.config.Concurrency)
	for _, in := range seeds {
		in := in
		g.Go(func() error {
			saveCtx, cancel := context.WithTimeout(gctx, saveTimeout)
			defer cancel()
			if err := i.store.Save(saveCtx, in); err != nil {
				return errors.Wrapf(err, "save %q", in.Text())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	i.logger.Info("✅ Intent cache seeding complete.", zap.Int("intents", len(seeds)))
	return len(seeds), nil
}

// openStore opens the intent store and fronts it with Redis when configured.
// The returned func closes everything that was opened.
func openStore(ctx context.Context, cfg *Config, log *zap.Logger) (store.IntentStore, func() error, error) {
	s, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisAddr == "" {
		return s, s.Close, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		_ = s.Close()
		return nil, nil, errors.Wrapf(err, "could not connect to Redis at %s", cfg.RedisAddr)
	}
	closeAll := func() error {
		rerr := rdb.Close()
		if err := s.Close(); err != nil {
			return err
		}
		return rerr
	}
	return store.NewRedisCache(s, rdb, cfg.CacheTTL, log), closeAll, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration Error: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogLevel, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	s, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to open intent store", zap.Error(err))
	}

	_, err = NewIngestor(cfg, s, log.Named("ingestor")).Run(ctx)
	if cerr := closeStore(); cerr != nil {
		log.Warn("error while closing intent store", zap.Error(cerr))
	}
	if err != nil {
		log.Error("❌ Ingestion process failed", zap.Error(err))
		os.Exit(1)
	}
}
