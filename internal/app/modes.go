package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"dashtrack/internal/browser"
	"dashtrack/internal/containerizer"
	"dashtrack/internal/orchestrator"
	"dashtrack/internal/order"
	"dashtrack/internal/services"
	"dashtrack/internal/workerpool"
	"dashtrack/pkg/logging"
)

// workerResources is the private state of one import worker.
type workerResources struct {
	client *goredis.Client
	driver *browser.Driver
}

// runStore starts the store through the orchestrator, performs the order
// round trip and optionally imports orders. SIGINT and SIGTERM cancel ctx;
// the orchestrator tears the store down on every exit path.
func runStore(ctx context.Context, cfg *Config, svcs *Services, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dc := cfg.DashtrackConfig

	var orders []order.Order
	if cfg.ImportFile != "" {
		var err error
		orders, err = order.ReadFile(cfg.ImportFile)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Starting %s service...\n", svcs.Store.GetName())

	orchCfg := orchestrator.Config{
		Services:      []services.Service{svcs.Store},
		HealthTimeout: dc.Store.HealthTimeout,
		StrictStart:   dc.StrictStart,
		Credentials:   storeCredentials(dc.Store),
	}

	err := orchestrator.With(ctx, orchCfg, func(o *orchestrator.Orchestrator) error {
		fmt.Fprintf(out, "Service %s is ready at %s\n", svcs.Store.GetName(), svcs.Store.Addr())
		for _, st := range o.GetAllServices() {
			logging.Info("Run", "Service %s (%s): state %s, health %s", st.Name, st.Type, st.State, st.Health)
		}

		if err := o.Run(ctx, func(ctx context.Context, conn services.Connection) error {
			return roundTrip(ctx, conn, out)
		}); err != nil {
			return err
		}

		if len(orders) > 0 {
			return importOrders(ctx, cfg, svcs, orders, out)
		}
		return nil
	})
	if err != nil {
		logging.Error("Run", err, "Run failed")
		return err
	}

	fmt.Fprintf(out, "Stopped %s service\n", svcs.Store.GetName())
	return nil
}

// roundTrip saves the sample order and reads it back.
func roundTrip(ctx context.Context, conn services.Connection, out io.Writer) error {
	client, ok := conn.(*goredis.Client)
	if !ok {
		return fmt.Errorf("unexpected connection type %T", conn)
	}

	sample := order.Sample()
	if err := order.Save(ctx, client, sample); err != nil {
		return err
	}

	loaded, err := order.Load(ctx, client, sample.ID)
	if err != nil {
		return err
	}

	logging.Info("Run", "Order %s round trip succeeded", loaded.ID)
	fmt.Fprintf(out, "Saved order %s: %s, %.2f on %s (%d item(s))\n",
		loaded.ID, loaded.RestaurantName, loaded.AmountSpentTotal, loaded.DateOfOrder, len(loaded.Items))
	return nil
}

// importOrders saves orders through a worker pool. Every worker holds its own
// store client and, when enabled, a browser driver descriptor.
func importOrders(ctx context.Context, cfg *Config, svcs *Services, orders []order.Order, out io.Writer) error {
	dc := cfg.DashtrackConfig
	creds := storeCredentials(dc.Store)

	logLevel := logging.ParseLevel(dc.Logging.Level)
	if cfg.Debug {
		logLevel = logging.LevelDebug
	}

	pool, err := workerpool.New(ctx, workerpool.Config[*workerResources]{
		Workers:    dc.Workers.Workers,
		MaxWorkers: dc.Workers.MaxWorkers,
		LogFile:    dc.Workers.LogFile,
		LogLevel:   logLevel,
		Acquire: func(ctx context.Context, workerID int) (*workerResources, error) {
			client, err := svcs.Store.Client(ctx, creds)
			if err != nil {
				return nil, err
			}
			res := &workerResources{client: client}
			if svcs.Browser != nil {
				driver, err := svcs.Browser.Resolve(ctx)
				if err != nil {
					_ = client.Close()
					return nil, err
				}
				res.driver = &driver
			}
			return res, nil
		},
		Release: func(workerID int, res *workerResources) {
			if err := res.client.Close(); err != nil {
				logging.Warn("Import", "Failed to close client of worker %d: %v", workerID, err)
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start import workers: %w", err)
	}

	for i := range orders {
		o := orders[i]
		task := workerpool.Task[*workerResources]{
			ID: o.ID,
			Run: func(ctx context.Context, res *workerResources) error {
				return order.Save(ctx, res.client, &o)
			},
		}
		if err := pool.Submit(task); err != nil {
			logging.Error("Import", err, "Failed to submit order for %s", o.RestaurantName)
		}
	}

	// Queued orders are dropped if the run is interrupted
	drain := ctx.Err() == nil
	if err := pool.Shutdown(context.WithoutCancel(ctx), drain); err != nil {
		return err
	}

	stats := pool.Stats()
	fmt.Fprintf(out, "Imported %d of %d order(s)", stats.Succeeded, len(orders))
	if stats.Failed > 0 {
		fmt.Fprintf(out, ", %d failed (see %s)", stats.Failed, dc.Workers.LogFile)
	}
	fmt.Fprintln(out)

	if stats.Failed > 0 || stats.Discarded > 0 {
		return fmt.Errorf("import incomplete: %d failed, %d discarded", stats.Failed, stats.Discarded)
	}
	return nil
}

// StoreStatus describes the store container as seen by the runtime and a
// health probe.
type StoreStatus struct {
	Name           string
	Container      string
	ContainerID    string
	Exists         bool
	Running        bool
	Address        string
	Health         services.HealthStatus
	HealthErr      error
	PasswordSource string
}

// Status inspects the store container without starting it. A running
// container is probed for health.
func (a *Application) Status(ctx context.Context) (StoreStatus, error) {
	store := a.services.Store
	dc := a.config.DashtrackConfig

	status := StoreStatus{
		Name:           store.GetName(),
		Container:      dc.Store.ContainerName,
		Health:         services.HealthUnknown,
		PasswordSource: dc.Store.PasswordSource(),
	}

	cs, err := store.Attach(ctx)
	status.ContainerID = shortContainerID(cs)
	status.Exists = cs.Exists
	status.Running = cs.Running
	if err != nil {
		return status, fmt.Errorf("failed to inspect %s: %w", dc.Store.ContainerName, err)
	}
	if !cs.Running {
		return status, nil
	}

	status.Address = store.Addr()
	status.Health, status.HealthErr = store.CheckHealth(ctx)
	return status, nil
}

// StopStore stops and removes a running store container. It reports false
// when there was nothing to stop.
func (a *Application) StopStore(ctx context.Context) (bool, error) {
	store := a.services.Store

	cs, err := store.Attach(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", store.GetName(), err)
	}
	if !cs.Running {
		if cs.Exists {
			// Leftover stopped container
			if err := a.services.Runtime.RemoveContainer(ctx, cs.ID); err != nil {
				return false, services.NewServiceStopError(store.GetName(), err)
			}
			return true, nil
		}
		return false, nil
	}

	if err := store.Stop(ctx); err != nil {
		if !services.IsStopError(err) {
			err = services.NewServiceStopError(store.GetName(), err)
		}
		return false, err
	}
	return true, nil
}

func shortContainerID(cs containerizer.ContainerStatus) string {
	if len(cs.ID) > 12 {
		return cs.ID[:12]
	}
	return cs.ID
}
