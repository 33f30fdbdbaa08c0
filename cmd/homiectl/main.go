// homiectl - Homie v5 controller
//
// This is the main entry point for the controller. It discovers Homie v5
// devices over MQTT, maintains an in-memory picture of the bus, and fans the
// resulting actions out to the history journal, InfluxDB telemetry and
// materialized property queries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/hearthctl/homie-core/migrations"

	"github.com/hearthctl/homie-core/internal/controller"
	"github.com/hearthctl/homie-core/internal/events"
	"github.com/hearthctl/homie-core/internal/history"
	"github.com/hearthctl/homie-core/internal/homie"
	"github.com/hearthctl/homie-core/internal/infrastructure/config"
	"github.com/hearthctl/homie-core/internal/infrastructure/influxdb"
	"github.com/hearthctl/homie-core/internal/infrastructure/logging"
	"github.com/hearthctl/homie-core/internal/infrastructure/mqtt"
	"github.com/hearthctl/homie-core/internal/query"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// busMessage is one raw MQTT message on its way into the event loop.
type busMessage struct {
	topic   string
	payload []byte
}

func main() {
	historyStatus := flag.Bool("history-status", false,
		"print the history schema migration status and exit")
	historyRollback := flag.Bool("history-rollback", false,
		"roll back the newest history schema migration and exit")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch {
	case *historyStatus || *historyRollback:
		err = runHistoryMaintenance(ctx, *historyRollback)
	default:
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runHistoryMaintenance handles the schema maintenance flags. It opens the
// journal database without auto-migrating so the status reflects the file
// as it is and a rollback is not undone by a migration run.
func runHistoryMaintenance(ctx context.Context, rollback bool) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history is disabled in %s", getConfigPath())
	}

	journal, err := history.OpenExisting(cfg.History)
	if err != nil {
		return err
	}
	defer journal.Close() //nolint:errcheck // Maintenance path

	if rollback {
		if err := journal.RollbackMigration(ctx); err != nil {
			return fmt.Errorf("rolling back history schema: %w", err)
		}
		fmt.Println("rolled back newest history schema migration")
	}

	applied, pending, err := journal.MigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("reading history schema status: %w", err)
	}
	fmt.Printf("history database: %s\n", cfg.History.Path)
	for _, m := range applied {
		fmt.Printf("  applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
	}
	for _, m := range pending {
		fmt.Printf("  pending  %s  %s\n", m.Version, m.Name)
	}
	if len(applied)+len(pending) == 0 {
		fmt.Println("  no embedded migrations")
	}
	return nil
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting homiectl",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the history journal (optional)
	var journal *history.Journal
	if cfg.History.Enabled {
		journal, err = history.Open(ctx, cfg.History)
		if err != nil {
			return fmt.Errorf("opening history journal: %w", err)
		}
		defer func() {
			log.Info("closing history journal")
			if closeErr := journal.Close(); closeErr != nil {
				log.Error("error closing history journal", "error", closeErr)
			}
		}()
		log.Info("history journal opened", "path", cfg.History.Path)
	} else {
		log.Info("history journal disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Load materialized query definitions
	queries := map[string]*query.MaterializedQuery{}
	if cfg.Discovery.QueriesDir != "" {
		queries, err = query.LoadDir(cfg.Discovery.QueriesDir)
		if err != nil {
			return fmt.Errorf("loading queries: %w", err)
		}
		log.Info("queries loaded", "dir", cfg.Discovery.QueriesDir, "count", len(queries))
	}

	// Inbound message channel between the MQTT handler and the event loop.
	// The handler never blocks: when the loop falls behind, messages are
	// dropped and resynced from retained state on the next reconnect.
	inbound := make(chan busMessage, cfg.Discovery.EventBuffer)
	handler := func(topic string, payload []byte) error {
		msg := busMessage{topic: topic, payload: append([]byte(nil), payload...)}
		select {
		case inbound <- msg:
			return nil
		default:
			return fmt.Errorf("event buffer full, dropping %s", topic)
		}
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected, retained device state will replay")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Build the discovery engine on the MQTT transport
	transport := mqtt.NewTransport(mqttClient, handler)
	engine := controller.NewDiscovery(transport)
	engine.SetLogger(log)
	devices := controller.NewDeviceStore()

	// Start discovery in every configured domain
	for _, domain := range cfg.Discovery.Domains {
		if err := engine.Discover(ctx, homie.Domain(domain)); err != nil {
			return fmt.Errorf("starting discovery in %q: %w", domain, err)
		}
		log.Info("discovery started", "domain", domain)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, journal, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Merge inbound traffic into the event stream. The multiplexer leaves
	// room to attach further sources (timers, command channels) later.
	mux := events.NewMultiplexer[busMessage](cfg.Discovery.EventBuffer)
	events.Feed(ctx, mux, inbound, func(m busMessage) busMessage { return m })
	mux.Seal()

	sink := &actionSink{
		log:     log,
		journal: journal,
		influx:  influxClient,
		queries: queries,
		devices: devices,
	}

	log.Info("initialisation complete, entering event loop")
	return eventLoop(ctx, cfg, log, mux, engine, devices, sink)
}

// eventLoop pulls merged bus events and applies them to the device store.
// Idle periods drive housekeeping (journal pruning).
func eventLoop(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	mux *events.Multiplexer[busMessage],
	engine *controller.Discovery,
	devices *controller.DeviceStore,
	sink *actionSink,
) error {
	timeout := cfg.GetEventTimeout()

	for {
		msg, kind := mux.Next(ctx, timeout)
		switch kind {
		case events.NextClosed:
			log.Info("event stream closed, shutting down")
			return nil

		case events.NextTimeout:
			sink.housekeeping(ctx)
			continue

		case events.NextEvent:
			parsed, err := homie.ParseMessage(msg.topic, msg.payload)
			if err != nil {
				log.Debug("dropping unparseable message", "topic", msg.topic, "error", err)
				continue
			}

			// Removal is the one transition that destroys description
			// context, so the query views are reconciled before the store
			// forgets the device.
			if removal, ok := parsed.(homie.DeviceRemovalMessage); ok {
				sink.deviceRemoved(removal.Device)
			}

			action, err := engine.HandleEvent(ctx, parsed, devices)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				if errors.Is(err, controller.ErrDescriptionForUnknownDevice) {
					log.Warn("discovery anomaly", "error", err)
					continue
				}
				log.Error("handling event", "topic", msg.topic, "error", err)
				continue
			}
			if action != nil {
				sink.handle(ctx, action)
			}
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses HOMIECTL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMIECTL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - journal: History journal to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, journal *history.Journal, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if journal != nil {
		if err := journal.HealthCheck(ctx); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

// actionSink fans discovery actions out to the configured consumers. Sink
// failures are logged and never fed back into the engine: the in-memory
// picture of the bus stays authoritative even when a sink is down.
type actionSink struct {
	log     *logging.Logger
	journal *history.Journal
	influx  *influxdb.Client
	queries map[string]*query.MaterializedQuery
	devices *controller.DeviceStore

	lastPrune time.Time
}

func (s *actionSink) handle(ctx context.Context, action controller.Action) {
	now := time.Now()

	switch a := action.(type) {
	case controller.NewDeviceAction:
		s.log.Info("device discovered", "device", a.Device.String(), "status", a.Status.String())
		s.recordState(ctx, a.Device, a.Status, now)

	case controller.StateChangedAction:
		s.log.Info("device state changed",
			"device", a.Device.String(), "from", a.From.String(), "to", a.To.String())
		s.recordState(ctx, a.Device, a.To, now)

	case controller.DeviceDescriptionChangedAction:
		s.log.Info("device description changed", "device", a.Device.String())
		s.deviceDescribed(a.Device)

	case controller.DevicePropertyValueChangedAction:
		s.log.Debug("property value changed",
			"property", a.Property.String(), "value", a.To.String(),
			"queries", s.matchingQueries(a.Property))
		s.recordValue(ctx, a.Property, a.To, now)

	case controller.DevicePropertyValueTriggeredAction:
		s.log.Debug("property triggered",
			"property", a.Property.String(), "value", a.Value.String())
		s.recordValue(ctx, a.Property, a.Value, now)

	case controller.DevicePropertyTargetChangedAction:
		s.log.Debug("property target changed",
			"property", a.Property.String(), "target", a.To.String())

	case controller.DeviceAlertAction:
		s.log.Warn("device alert raised",
			"device", a.Device.String(), "alert", a.AlertID.String(), "message", a.Alert)
		s.recordAlert(ctx, a.Device, a.AlertID, a.Alert, now)

	case controller.DeviceAlertChangedAction:
		s.log.Warn("device alert changed",
			"device", a.Device.String(), "alert", a.AlertID.String(), "message", a.To)
		s.recordAlert(ctx, a.Device, a.AlertID, a.To, now)

	case controller.DeviceAlertClearedAction:
		s.log.Info("device alert cleared",
			"device", a.Device.String(), "alert", a.AlertID.String())
		s.recordAlert(ctx, a.Device, a.AlertID, "", now)

	case controller.UnhandledAction:
		s.log.Debug("unhandled message", "message", fmt.Sprintf("%T", a.Message))
	}
}

// deviceDescribed re-evaluates every materialized query for a freshly
// described device.
func (s *actionSink) deviceDescribed(ref homie.DeviceRef) {
	device, ok := s.devices.GetDevice(ref)
	if !ok || device.Description == nil {
		return
	}
	for name, q := range s.queries {
		q.AddMaterialized(ref.Domain, ref.DeviceID, device.Description)
		s.log.Debug("query re-evaluated", "query", name, "matches", q.Len())
	}
}

// deviceRemoved drops a departing device from every materialized query.
// Must run before the store evicts the device.
func (s *actionSink) deviceRemoved(ref homie.DeviceRef) {
	device, ok := s.devices.GetDevice(ref)
	if !ok || device.Description == nil {
		return
	}
	for _, q := range s.queries {
		q.RemoveMaterialized(ref.Domain, ref.DeviceID, device.Description)
	}
}

// matchingQueries names the query views containing the property.
func (s *actionSink) matchingQueries(ref homie.PropertyRef) []string {
	var names []string
	for name, q := range s.queries {
		if q.MatchQuery(ref) {
			names = append(names, name)
		}
	}
	return names
}

func (s *actionSink) recordState(ctx context.Context, ref homie.DeviceRef, state homie.DeviceStatus, at time.Time) {
	if s.journal != nil {
		if err := s.journal.RecordState(ctx, ref, state, at); err != nil {
			s.log.Error("recording device state", "device", ref.String(), "error", err)
		}
	}
	if s.influx != nil {
		s.influx.WriteDeviceState(ref, state)
	}
}

func (s *actionSink) recordValue(ctx context.Context, ref homie.PropertyRef, value homie.Value, at time.Time) {
	if s.journal != nil {
		if err := s.journal.RecordValue(ctx, ref, value, at); err != nil {
			s.log.Error("recording property value", "property", ref.String(), "error", err)
		}
	}
	if s.influx != nil {
		s.influx.WritePropertyValue(ref, value, at)
	}
}

func (s *actionSink) recordAlert(ctx context.Context, ref homie.DeviceRef, alertID homie.ID, message string, at time.Time) {
	if s.journal != nil {
		if err := s.journal.RecordAlert(ctx, ref, alertID, message, at); err != nil {
			s.log.Error("recording alert", "device", ref.String(), "error", err)
		}
	}
	if s.influx != nil {
		s.influx.WriteAlert(ref, alertID, message)
	}
}

// housekeeping runs during idle periods of the event loop. Journal pruning
// is rate limited to once an hour.
func (s *actionSink) housekeeping(ctx context.Context) {
	if s.journal == nil {
		return
	}
	if time.Since(s.lastPrune) < time.Hour {
		return
	}
	s.lastPrune = time.Now()

	deleted, err := s.journal.Prune(ctx)
	if err != nil {
		s.log.Error("pruning history journal", "error", err)
		return
	}
	if deleted > 0 {
		s.log.Info("history journal pruned", "rows", deleted)
	}
}
