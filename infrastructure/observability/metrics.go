package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dotabot/config"
	"dotabot/events"
	"dotabot/models"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricsProvider manages the bot's OpenTelemetry instruments. Every Record
// method is a no-op until Initialize succeeds with metrics enabled.
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	enabled       bool
	mu            sync.RWMutex

	sessionsFiredCounter metric.Int64Counter
	wagersSettledCounter metric.Int64Counter
	wagersExpiredCounter metric.Int64Counter
	wagersActiveGauge    metric.Int64UpDownCounter
	ledgerUpdatesCounter metric.Int64Counter
	ledgerUpdateDuration metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the exporter and instruments
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	exporter, err := mp.newExporter(ctx)
	if err != nil {
		return err
	}
	if exporter == nil {
		return nil
	}
	return mp.InitializeWithReader(ctx, sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	))
}

// InitializeWithReader sets up the instruments on the given reader
func (mp *MetricsProvider) InitializeWithReader(_ context.Context, reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.enabled {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("dotabot")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// newExporter returns nil when metrics are disabled or export is turned off
func (mp *MetricsProvider) newExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		return nil, nil
	}

	switch mp.config.OTelExporterType {
	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return exporter, nil

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")
		return exporter, nil

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}
}

func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.sessionsFiredCounter, err = mp.meter.Int64Counter(
		SessionsFiredTotal,
		metric.WithDescription("Total number of sessions that reached their threshold"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions fired counter: %w", err)
	}

	mp.wagersSettledCounter, err = mp.meter.Int64Counter(
		WagersSettledTotal,
		metric.WithDescription("Total number of settled wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers settled counter: %w", err)
	}

	mp.wagersExpiredCounter, err = mp.meter.Int64Counter(
		WagersExpiredTotal,
		metric.WithDescription("Total number of wagers that expired without a pick"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers expired counter: %w", err)
	}

	// UpDownCounter for gauge-like behavior
	mp.wagersActiveGauge, err = mp.meter.Int64UpDownCounter(
		WagersActive,
		metric.WithDescription("Current number of wagers waiting for a pick"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers active gauge: %w", err)
	}

	mp.ledgerUpdatesCounter, err = mp.meter.Int64Counter(
		LedgerUpdatesTotal,
		metric.WithDescription("Total number of ledger updates"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger updates counter: %w", err)
	}

	mp.ledgerUpdateDuration, err = mp.meter.Float64Histogram(
		LedgerUpdateDuration,
		metric.WithDescription("Duration of ledger updates in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger update duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.enabled = false
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// Subscribe records the bus's domain events
func (mp *MetricsProvider) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeSessionFired, func(ctx context.Context, _ events.Event) {
		mp.RecordSessionFired(ctx)
	})
	bus.Subscribe(events.EventTypeWagerStarted, func(ctx context.Context, e events.Event) {
		if started, ok := e.(events.WagerStartedEvent); ok {
			mp.UpdateActiveWagers(ctx, started.Variant, 1)
		}
	})
	bus.Subscribe(events.EventTypeWagerSettled, func(ctx context.Context, e events.Event) {
		if settled, ok := e.(events.WagerSettledEvent); ok {
			mp.UpdateActiveWagers(ctx, settled.Result.Variant, -1)
			mp.RecordWagerSettled(ctx, settled.Result)
		}
	})
	bus.Subscribe(events.EventTypeWagerExpired, func(ctx context.Context, e events.Event) {
		if expired, ok := e.(events.WagerExpiredEvent); ok {
			mp.UpdateActiveWagers(ctx, expired.Variant, -1)
			mp.RecordWagerExpired(ctx, expired.Variant)
		}
	})
}

// RecordSessionFired counts a session reaching its threshold
func (mp *MetricsProvider) RecordSessionFired(ctx context.Context) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsFiredCounter.Add(ctx, 1)
}

// RecordWagerSettled counts a settled wager by result
func (mp *MetricsProvider) RecordWagerSettled(ctx context.Context, result models.WagerResult) {
	if !mp.isEnabled() {
		return
	}

	outcome := ResultLoss
	if result.Correct {
		outcome = ResultWin
	}
	mp.wagersSettledCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelResult, outcome),
			attribute.String(LabelVariant, string(result.Variant)),
		),
	)
}

// RecordWagerExpired counts an expired wager
func (mp *MetricsProvider) RecordWagerExpired(ctx context.Context, variant models.WagerVariant) {
	if !mp.isEnabled() {
		return
	}
	mp.wagersExpiredCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String(LabelVariant, string(variant))),
	)
}

// UpdateActiveWagers moves the active wager gauge by delta
func (mp *MetricsProvider) UpdateActiveWagers(ctx context.Context, variant models.WagerVariant, delta int64) {
	if !mp.isEnabled() {
		return
	}
	mp.wagersActiveGauge.Add(ctx, delta,
		metric.WithAttributes(attribute.String(LabelVariant, string(variant))),
	)
}

// RecordLedgerUpdate counts a ledger update and its duration
func (mp *MetricsProvider) RecordLedgerUpdate(ctx context.Context, txType models.TransactionType, duration time.Duration, err error) {
	if !mp.isEnabled() {
		return
	}

	status := StatusOK
	if err != nil {
		status = StatusError
	}
	attrs := metric.WithAttributes(
		attribute.String(LabelType, string(txType)),
		attribute.String(LabelStatus, status),
	)
	mp.ledgerUpdatesCounter.Add(ctx, 1, attrs)
	mp.ledgerUpdateDuration.Record(ctx, duration.Seconds(), attrs)
}

func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.enabled
}
