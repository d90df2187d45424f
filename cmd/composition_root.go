package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/authz"
	"fulfillment/internal/adapters/out/lognotifier"
	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/rabbitmq"
	redisadapter "fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/core/application/editing"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// changeFeed is both sides of the row change feed.
type changeFeed interface {
	ports.ChangeFeed
	ports.ChangePublisher
}

// CompositionRoot owns the infrastructure clients and builds every handler on top
// of them.
type CompositionRoot struct {
	cfg    Config
	gormDB *gorm.DB
	logger *zap.Logger
	clock  func() time.Time

	uowFactory *postgres.GormUnitOfWorkFactory
	store      *postgres.GormStore
	mapper     services.StatusPhaseMapper
	policy     services.TransitionPolicy
	feed       changeFeed
	gate       ports.TransitionGate
	notifier   ports.Notifier
	authorizer ports.PhaseAuthorizer

	sessions *editing.SessionManager

	closers []io.Closer
}

// NewCompositionRoot connects the optional Redis and RabbitMQ backends and installs
// the change feed plugin on gormDB. Without Redis the gate and feed only serve this
// process.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		cfg:    cfg,
		gormDB: gormDB,
		logger: logger,
		clock:  time.Now,
		store:  postgres.NewGormStore(gormDB),
		mapper: services.NewStatusPhaseMapper(logger),
	}
	c.policy = services.NewTransitionPolicy(services.NewSLAPolicy(cfg.SLADays), c.clock)

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.closers = append(c.closers, client)
		c.feed = redisadapter.NewChangeFeed(client, cfg.FeedChannelPrefix, logger)
		c.gate = redisadapter.NewTransitionGate(client, "", cfg.TransitionLockTTL, logger)
		logger.Info("using redis change feed and transition gate", zap.String("addr", cfg.RedisAddr))
	} else {
		c.feed = memory.NewChangeFeed(cfg.LocalFeedBuffer, logger)
		c.gate = memory.NewTransitionGate()
		logger.Info("using in-process change feed and transition gate")
	}

	plugin := postgres.NewChangeFeedPlugin(c.feed, logger)
	if err := gormDB.Use(plugin); err != nil {
		return nil, c.failWith(fmt.Errorf("install change feed plugin: %w", err))
	}
	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, plugin)

	if cfg.RabbitMQURL != "" {
		conn, ch, err := rabbitmq.Connect(cfg.RabbitMQURL)
		if err != nil {
			return nil, c.failWith(err)
		}
		c.closers = append(c.closers, conn)
		notifier, err := rabbitmq.NewNotifier(ch, cfg.NotificationsTopic, c.clock)
		if err != nil {
			return nil, c.failWith(err)
		}
		c.notifier = notifier
	} else {
		c.notifier = lognotifier.New(logger)
	}

	grants, err := authz.ParseGrants(cfg.PhaseGrants)
	if err != nil {
		return nil, c.failWith(fmt.Errorf("PHASE_GRANTS: %w", err))
	}
	if c.authorizer, err = authz.NewStaticPhaseAuthorizer(grants); err != nil {
		return nil, c.failWith(fmt.Errorf("PHASE_GRANTS: %w", err))
	}

	c.sessions = editing.NewSessionManager(editing.SessionDeps{
		Store:        c.store,
		Feed:         c.feed,
		Transitions:  c.CreateTransitionOrderCommandHandler(),
		ItemStatus:   c.CreateChangeItemStatusCommandHandler(),
		Items:        c.CreateSaveItemsCommandHandler(),
		Fields:       c.CreateSaveOrderFieldCommandHandler(),
		Notifier:     c.notifier,
		Limits:       cfg.FieldLimits,
		Quiet:        cfg.AutosaveQuiet,
		WriteTimeout: cfg.WriteTimeout,
		Clock:        c.clock,
		Logger:       logger,
	})
	return c, nil
}

func (c *CompositionRoot) transitionDeps() commands.TransitionDeps {
	return commands.TransitionDeps{
		Store:      c.store,
		Gate:       c.gate,
		Authorizer: c.authorizer,
		Notifier:   c.notifier,
		Policy:     c.policy,
		Logger:     c.logger,
		Clock:      c.clock,
	}
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.clock)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.transitionDeps())
}

func (c *CompositionRoot) CreateChangeItemStatusCommandHandler() commands.ChangeItemStatusCommandHandler {
	return commands.NewChangeItemStatusCommandHandler(c.transitionDeps(), services.NewCascadeRules())
}

func (c *CompositionRoot) CreateSaveItemsCommandHandler() commands.SaveItemsCommandHandler {
	return commands.NewSaveItemsCommandHandler(c.store, c.clock, c.logger)
}

func (c *CompositionRoot) CreateSaveOrderFieldCommandHandler() commands.SaveOrderFieldCommandHandler {
	return commands.NewSaveOrderFieldCommandHandler(c.store, c.cfg.FieldLimits, c.clock, c.logger)
}

func (c *CompositionRoot) CreateWarnOverdueOrdersCommandHandler() commands.WarnOverdueOrdersCommandHandler {
	return commands.NewWarnOverdueOrdersCommandHandler(c.store, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateGetPhaseBoardQueryHandler() queries.GetPhaseBoardQueryHandler {
	return queries.NewGetPhaseBoardQueryHandler(c.gormDB, c.mapper)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) SessionManager() *editing.SessionManager {
	return c.sessions
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		Transition:       c.CreateTransitionOrderCommandHandler(),
		ChangeItemStatus: c.CreateChangeItemStatusCommandHandler(),
		Board:            c.CreateGetPhaseBoardQueryHandler(),
		History:          c.CreateGetOrderHistoryQueryHandler(),
		Sessions:         c.sessions,
	}, c.clock, c.logger)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateWarnOverdueOrdersCommandHandler(),
		c.sessions,
		c.cfg.SessionIdleTimeout,
		jobs.Schedules{
			DeadlineMonitor: c.cfg.DeadlineMonitorSchedule,
			SessionSweeper:  c.cfg.SessionSweeperSchedule,
		},
		c.clock,
		c.logger,
	)
}

// Close closes every open session without saving, then the backend clients.
func (c *CompositionRoot) Close() error {
	var closeErrs []error
	if c.sessions != nil {
		if err := c.sessions.CloseAll(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	if n, ok := c.notifier.(io.Closer); ok {
		if err := n.Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	return errors.Join(closeErrs...)
}

func (c *CompositionRoot) failWith(err error) error {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	return err
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
