package api

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.temporal.io/sdk/client"

	"github.com/agizo/agizo-api/internal/domains/notifications/domain"
	orderdomain "github.com/agizo/agizo-api/internal/domains/orders/domain"
	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
	"github.com/agizo/agizo-api/internal/shared/money"
)

// Notification modes select how order confirmations are delivered.
const (
	NotificationInline   = "inline"
	NotificationTemporal = "temporal"
	NotificationDisabled = "disabled"
)

// SMS providers the gateway can send through.
const (
	SMSProviderAfricasTalking = "africastalking"
	SMSProviderSNS            = "sns"
	SMSProviderLog            = "log"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	NotificationMode string
	SMSProvider      string
	SMSSenderID      string
	AfricasTalking   AfricasTalkingConfig

	KafkaBrokers []string
	RedisAddr    string

	MinItemPrice         money.Amount
	AllowUnknownCustomer bool

	Telemetry TelemetryConfig
}

// TelemetryConfig selects log and trace output for every agizo process.
type TelemetryConfig struct {
	Environment      string
	Version          string
	LogLevel         slog.Level
	LogFormat        string
	TraceExporter    string
	OTLPEndpoint     string
	OTLPInsecure     bool
	TraceSampleRatio float64
}

type AfricasTalkingConfig struct {
	Username string
	APIKey   string
	BaseURL  string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		NotificationMode:  strings.ToLower(envDefault("NOTIFICATION_MODE", NotificationInline)),
		SMSSenderID:       envDefault("SMS_SENDER_ID", domain.DefaultSenderID),
		AfricasTalking: AfricasTalkingConfig{
			Username: envDefault("AFRICAS_TALKING_USERNAME", "sandbox"),
			APIKey:   strings.TrimSpace(os.Getenv("AFRICAS_TALKING_API_KEY")),
			BaseURL:  strings.TrimSpace(os.Getenv("AFRICAS_TALKING_BASE_URL")),
		},
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
		RedisAddr:            strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		MinItemPrice:         orderdomain.DefaultMinItemPrice,
		AllowUnknownCustomer: isTruthy(os.Getenv("ORDERS_ALLOW_UNKNOWN_CUSTOMER")),
	}

	telemetry, err := loadTelemetry()
	if err != nil {
		return Config{}, err
	}
	cfg.Telemetry = telemetry

	defaultProvider := SMSProviderLog
	if cfg.AfricasTalking.APIKey != "" {
		defaultProvider = SMSProviderAfricasTalking
	}
	cfg.SMSProvider = strings.ToLower(envDefault("SMS_PROVIDER", defaultProvider))

	switch cfg.NotificationMode {
	case NotificationInline, NotificationDisabled:
	case NotificationTemporal:
		if cfg.TemporalDisabled {
			return Config{}, fmt.Errorf("NOTIFICATION_MODE=temporal conflicts with TEMPORAL_DISABLED")
		}
	default:
		return Config{}, fmt.Errorf("NOTIFICATION_MODE must be one of inline, temporal, disabled")
	}

	switch cfg.SMSProvider {
	case SMSProviderSNS, SMSProviderLog:
	case SMSProviderAfricasTalking:
		if cfg.AfricasTalking.APIKey == "" {
			return Config{}, fmt.Errorf("AFRICAS_TALKING_API_KEY is required when SMS_PROVIDER=africastalking")
		}
	default:
		return Config{}, fmt.Errorf("SMS_PROVIDER must be one of africastalking, sns, log")
	}

	if raw := strings.TrimSpace(os.Getenv("ORDER_MIN_ITEM_PRICE")); raw != "" {
		price, err := money.New(raw)
		if err != nil || price.IsNegative() {
			return Config{}, fmt.Errorf("ORDER_MIN_ITEM_PRICE must be a non-negative decimal")
		}
		cfg.MinItemPrice = price
	}
	return cfg, nil
}

func loadTelemetry() (TelemetryConfig, error) {
	t := TelemetryConfig{
		Environment:      envDefault("ENVIRONMENT", "local"),
		Version:          strings.TrimSpace(os.Getenv("SERVICE_VERSION")),
		LogFormat:        strings.ToLower(envDefault("LOG_FORMAT", platformobservability.LogFormatJSON)),
		TraceExporter:    strings.ToLower(envDefault("OTEL_TRACES_EXPORTER", platformobservability.ExporterOTLP)),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTLPInsecure:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")) != "0",
		TraceSampleRatio: 1,
	}
	if err := t.LogLevel.UnmarshalText([]byte(envDefault("LOG_LEVEL", "INFO"))); err != nil {
		return TelemetryConfig{}, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	}
	switch t.LogFormat {
	case platformobservability.LogFormatJSON, platformobservability.LogFormatText:
	default:
		return TelemetryConfig{}, fmt.Errorf("LOG_FORMAT must be json or text")
	}
	switch t.TraceExporter {
	case platformobservability.ExporterOTLP, platformobservability.ExporterStdout, platformobservability.ExporterNone:
	default:
		return TelemetryConfig{}, fmt.Errorf("OTEL_TRACES_EXPORTER must be one of otlp, stdout, none")
	}
	if raw := strings.TrimSpace(os.Getenv("OTEL_TRACES_SAMPLER_ARG")); raw != "" {
		ratio, err := strconv.ParseFloat(raw, 64)
		if err != nil || ratio <= 0 || ratio > 1 {
			return TelemetryConfig{}, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG must be a ratio in (0, 1]")
		}
		t.TraceSampleRatio = ratio
	}
	return t, nil
}

// Observability turns the telemetry section into settings for serviceName.
func (c Config) Observability(serviceName string) platformobservability.Settings {
	return platformobservability.Settings{
		ServiceName:    serviceName,
		ServiceVersion: c.Telemetry.Version,
		Environment:    c.Telemetry.Environment,
		LogLevel:       c.Telemetry.LogLevel,
		LogFormat:      c.Telemetry.LogFormat,
		TraceExporter:  c.Telemetry.TraceExporter,
		OTLPEndpoint:   c.Telemetry.OTLPEndpoint,
		OTLPInsecure:   c.Telemetry.OTLPInsecure,
		SampleRatio:    c.Telemetry.TraceSampleRatio,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
