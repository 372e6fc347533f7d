// Package app wires configuration into a running SpotSurfer stack.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alexanderramin/spotsurfer/internal/assistant"
	"github.com/alexanderramin/spotsurfer/internal/config"
	"github.com/alexanderramin/spotsurfer/internal/db"
	"github.com/alexanderramin/spotsurfer/internal/enrich"
	"github.com/alexanderramin/spotsurfer/internal/geo"
	"github.com/alexanderramin/spotsurfer/internal/knowledge"
	"github.com/alexanderramin/spotsurfer/internal/llm"
	"github.com/alexanderramin/spotsurfer/internal/location"
	"github.com/alexanderramin/spotsurfer/internal/maps"
	"github.com/alexanderramin/spotsurfer/internal/prompt"
	"github.com/alexanderramin/spotsurfer/internal/provider"
	"github.com/alexanderramin/spotsurfer/internal/push"
	"github.com/alexanderramin/spotsurfer/internal/server"
	"github.com/alexanderramin/spotsurfer/internal/weather"
)

const geocodeCacheTTL = 30 * time.Minute

// Runtime is the assembled application.
type Runtime struct {
	Config    config.Config
	Logger    *slog.Logger
	Assistant *assistant.Assistant
	// Push is nil when VAPID keys are not configured.
	Push   *push.Service
	Server *server.Server

	policy  *prompt.PolicyFile
	closers []io.Closer
}

// Build assembles every component from cfg. Logs and telemetry go to logOut.
func Build(ctx context.Context, cfg config.Config, logOut io.Writer) (*Runtime, error) {
	logger := config.NewLogger(logOut, cfg.LogLevel)
	rt := &Runtime{Config: cfg, Logger: logger}

	places, err := geo.LoadGazetteer(cfg.GazetteerPath)
	if err != nil {
		return nil, fmt.Errorf("loading gazetteer: %w", err)
	}

	pcOpts := provider.DefaultOptions()
	pcOpts.Timeout = cfg.ProviderTimeout
	pc := provider.NewClient(pcOpts, nil)

	var geocoder maps.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		geocoder = maps.NewGoogleGeocoder(cfg.MapsAPIKey, cfg.GeocodeURL, pc, logger)
	default:
		geocoder = maps.NewNominatimGeocoder(cfg.NominatimURL, pc, logger)
	}
	geocoder = maps.NewCachedGeocoder(geocoder, geocodeCacheTTL)

	wcfg := weather.DefaultConfig()
	wcfg.APIKey = cfg.WeatherAPIKey
	if cfg.WeatherURL != "" {
		wcfg.BaseURL = cfg.WeatherURL
	}
	directions := maps.NewDirections(cfg.MapsAPIKey, cfg.DirectionsURL, pc, logger)
	enricher := enrich.NewEnricher(weather.NewClient(wcfg, pc, logger), directions, geocoder, enrich.Options{
		MaxStops: cfg.RouteMaxStops,
		Logger:   logger,
	})

	var policy prompt.PolicySource = prompt.StaticPolicy(prompt.DefaultPolicy())
	if cfg.PolicyPath != "" {
		pf, err := prompt.OpenPolicyFile(cfg.PolicyPath, logger)
		if err != nil {
			return nil, fmt.Errorf("loading policy: %w", err)
		}
		rt.policy = pf
		policy = pf
	}

	var kb string
	if cfg.KnowledgeBase != "" {
		src, err := knowledge.ParseSource(cfg.KnowledgeBase, cfg.S3)
		if err != nil {
			logger.Error("knowledge base source", "error", err)
		} else {
			kb = knowledge.LoadOrEmpty(ctx, src, logger)
		}
	}

	composer := prompt.NewComposer(prompt.Options{
		Policy:        policy,
		KnowledgeBase: kb,
		Location:      cfg.Location,
	})

	rt.Assistant = assistant.New(assistant.Deps{
		Matcher:  geo.NewMatcher(places),
		Resolver: location.NewResolver(geocoder, logger),
		Enricher: enricher,
		Composer: composer,
		LLM:      buildLLM(cfg.LLM, logOut, logger),
		Logger:   logger,
	}, assistant.NewLogObserver(logOut))

	if cfg.PushEnabled() {
		store, err := rt.buildStore(ctx)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Push = push.NewService(store, push.NewWebPushSender(cfg.VAPID, nil), logger)
	}

	rt.Server = &server.Server{
		Assistant: rt.Assistant,
		StaticDir: cfg.StaticDir,
		Addr:      cfg.Addr,
		Logger:    logger,
	}
	if rt.Push != nil {
		rt.Server.Push = rt.Push
	}
	return rt, nil
}

func buildLLM(cfg llm.LLMConfig, logOut io.Writer, logger *slog.Logger) llm.LLMClient {
	if !cfg.Enabled {
		logger.Info("llm disabled, answers will use the fallback text")
		return nil
	}
	var observer llm.Observer = llm.NoopObserver{}
	if cfg.LogCalls {
		observer = llm.NewLogObserver(logOut)
	}
	client, err := llm.New(cfg, observer)
	if err != nil {
		logger.Warn("llm unavailable, answers will use the fallback text", "error", err)
		return nil
	}
	return client
}

func (rt *Runtime) buildStore(ctx context.Context) (push.Store, error) {
	switch rt.Config.PushStore {
	case config.PushStoreSQLite:
		conn, err := db.OpenDB(rt.Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening push database: %w", err)
		}
		rt.closers = append(rt.closers, conn)
		return push.NewSQLiteStore(conn), nil
	case config.PushStoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: rt.Config.RedisAddr, Password: rt.Config.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		rt.closers = append(rt.closers, rdb)
		return push.NewRedisStore(rdb, ""), nil
	default:
		return push.NewMemoryStore(), nil
	}
}

// Serve runs the HTTP server, the policy watcher and, when Kafka is
// configured, the notification worker until ctx is cancelled.
func (rt *Runtime) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if rt.policy != nil {
		if err := rt.policy.Watch(ctx); err != nil {
			rt.Logger.Warn("policy hot reload disabled", "error", err)
		}
	}

	var wg sync.WaitGroup
	if rt.Push != nil && rt.Config.KafkaEnabled() {
		worker := push.NewWorker(push.NewKafkaReader(rt.Config.Kafka), rt.Push, rt.Logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.Logger.Info("notification worker started", "topic", rt.Config.Kafka.Topic)
			if err := worker.Run(ctx); err != nil {
				rt.Logger.Error("notification worker stopped", "error", err)
			}
		}()
	}

	err := rt.Server.ListenAndServe(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close releases databases and connections.
func (rt *Runtime) Close() error {
	var errs []error
	for _, c := range rt.closers {
		errs = append(errs, c.Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
