package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/doeshing/panel-go/internal/application/command"
	appconfig "github.com/doeshing/panel-go/internal/application/config"
	"github.com/doeshing/panel-go/internal/application/doctor"
	"github.com/doeshing/panel-go/internal/domain"
	"github.com/doeshing/panel-go/internal/infrastructure/analyzer"
	"github.com/doeshing/panel-go/internal/infrastructure/config"
	"github.com/doeshing/panel-go/internal/infrastructure/confirmation"
	"github.com/doeshing/panel-go/internal/infrastructure/dispatcher"
	"github.com/doeshing/panel-go/internal/infrastructure/handlers"
	"github.com/doeshing/panel-go/internal/infrastructure/history"
	"github.com/doeshing/panel-go/internal/infrastructure/monitoring"
	"github.com/doeshing/panel-go/internal/infrastructure/resolver"
	"github.com/doeshing/panel-go/internal/infrastructure/session"
	"github.com/doeshing/panel-go/internal/pkg/logger"
	"github.com/doeshing/panel-go/internal/ports"
)

// warmStartTimeout bounds loading archived history at startup.
const warmStartTimeout = 3 * time.Second

// Options select the config file and log verbosity.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	CommandService *command.Service
	DoctorService  *doctor.Service
	History        *history.RingStore
	Archive        ports.HistoryArchive
	Monitoring     *monitoring.Controller
	Insights       *monitoring.MemorySink
	Sessions       *session.EnvProvider
	Handlers       *handlers.Set
	Logger         *logger.ZapLogger

	nats *monitoring.NATSSink
}

// BuildContainer constructs the dependency graph. Optional infrastructure
// (archive, NATS) degrades to in-memory operation when unreachable.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, errors.WithHint(err, "run `panel config validate` after fixing "+cfgLoader.Path())
	}

	log, err := logger.New(logger.Options{Verbose: opts.Verbose, Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}

	lexicon, err := analyzer.LoadLexicon(cfg.Analyzer.LexiconFile)
	if err != nil {
		return nil, err
	}
	catalog, err := resolver.LoadCatalog(cfg.Resolver.CatalogFile)
	if err != nil {
		return nil, err
	}

	set := handlers.NewSet(nil, catalog.Commands)
	dispatch := dispatcher.New(cfg.GetDispatchTimeout(), log)
	for module, handler := range set.ByModule() {
		dispatch.Register(module, handler)
	}

	archive, err := history.OpenArchive(&cfg)
	probe := archive
	if err != nil {
		log.Warn("history archive unavailable, keeping history in memory", map[string]interface{}{
			"driver": cfg.GetArchiveDriver(),
			"error":  err.Error(),
		})
		archive = history.NopArchive{}
		probe = nil
	}
	store := history.NewRingStore(history.Options{Capacity: cfg.GetHistoryCapacity(), Archive: archive, Logger: log})
	warmStart(ctx, store, archive, log)

	memorySink := monitoring.NewMemorySink(cfg.GetInsightBuffer())
	var sink ports.InsightSink = memorySink
	var natsSink *monitoring.NATSSink
	if cfg.IsNATSEnabled() {
		natsSink, err = monitoring.ConnectNATSSink(cfg.Monitoring.NATS.URL, cfg.GetNATSSubject())
		if err != nil {
			log.Warn("nats unavailable, insights stay in memory", map[string]interface{}{"error": err.Error()})
		} else {
			sink = monitoring.MultiSink{memorySink, natsSink}
		}
	}
	controller := monitoring.NewController(monitoring.Options{
		Generator:         monitoring.NewHistoryInsights(store, nil),
		Sink:              sink,
		RealtimeInterval:  cfg.GetRealtimeInterval(),
		ProactiveSchedule: cfg.GetProactiveSchedule(),
		Logger:            log,
	})

	sessions := session.NewEnvProvider(cfg)
	commandService := &command.Service{
		Analyzer: analyzer.New(lexicon),
		Resolver: resolver.New(catalog, resolver.Options{
			ConfidenceFloor:       cfg.GetConfidenceFloor(),
			ConfirmationThreshold: cfg.GetConfirmationThreshold(),
		}),
		Gate:       confirmation.New(confirmation.Options{TTL: cfg.GetConfirmationTTL(), Logger: log}),
		Dispatcher: dispatch,
		History:    store,
		Monitoring: controller,
		Insights:   memorySink,
		Sessions:   sessions,
		Logger:     log,
	}

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Archive:        probe,
		Intents:        lexicon.IntentNames(),
		Expects:        lexicon.Expectations(),
		Catalog:        catalog.Commands,
		Modules:        dispatch.Modules(),
	}

	return &Container{
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		CommandService: commandService,
		DoctorService:  doctorService,
		History:        store,
		Archive:        archive,
		Monitoring:     controller,
		Insights:       memorySink,
		Sessions:       sessions,
		Handlers:       set,
		Logger:         log,
		nats:           natsSink,
	}, nil
}

// Close stops monitoring and releases the archive and NATS connection.
func (c *Container) Close() error {
	c.Monitoring.StopAll()

	var g errgroup.Group
	g.Go(c.Archive.Close)
	if c.nats != nil {
		g.Go(c.nats.Close)
	}
	err := g.Wait()
	_ = c.Logger.Sync()
	return err
}

func warmStart(ctx context.Context, store *history.RingStore, archive ports.HistoryArchive, log ports.Logger) {
	ctx, cancel := context.WithTimeout(ctx, warmStartTimeout)
	defer cancel()
	entries, err := archive.Recent(ctx, store.Capacity())
	if err != nil {
		log.Warn("history warm start failed", map[string]interface{}{"error": err.Error()})
		return
	}
	store.Restore(entries)
}
