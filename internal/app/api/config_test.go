package api

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformobservability "github.com/agizo/agizo-api/internal/platform/observability"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
		"NOTIFICATION_MODE", "SMS_PROVIDER", "SMS_SENDER_ID", "AFRICAS_TALKING_USERNAME",
		"AFRICAS_TALKING_API_KEY", "AFRICAS_TALKING_BASE_URL", "KAFKA_BROKERS", "REDIS_ADDR",
		"ORDER_MIN_ITEM_PRICE", "ORDERS_ALLOW_UNKNOWN_CUSTOMER",
		"ENVIRONMENT", "SERVICE_VERSION", "LOG_LEVEL", "LOG_FORMAT", "OTEL_TRACES_EXPORTER",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, NotificationInline, cfg.NotificationMode)
	assert.Equal(t, SMSProviderLog, cfg.SMSProvider)
	assert.Equal(t, "Agizo", cfg.SMSSenderID)
	assert.Equal(t, "sandbox", cfg.AfricasTalking.Username)
	assert.Equal(t, "5.00", cfg.MinItemPrice.String())
	assert.False(t, cfg.AllowUnknownCustomer)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("AFRICAS_TALKING_API_KEY", "key")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ORDER_MIN_ITEM_PRICE", "1.5")
	t.Setenv("ORDERS_ALLOW_UNKNOWN_CUSTOMER", "true")
	t.Setenv("NOTIFICATION_MODE", "Temporal")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, SMSProviderAfricasTalking, cfg.SMSProvider)
	assert.Equal(t, NotificationTemporal, cfg.NotificationMode)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "1.50", cfg.MinItemPrice.String())
	assert.True(t, cfg.AllowUnknownCustomer)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown mode":          {"NOTIFICATION_MODE": "carrier-pigeon"},
		"temporal disabled":     {"NOTIFICATION_MODE": "temporal", "TEMPORAL_DISABLED": "1"},
		"unknown provider":      {"SMS_PROVIDER": "fax"},
		"africastalking no key": {"SMS_PROVIDER": "africastalking"},
		"bad price":             {"ORDER_MIN_ITEM_PRICE": "five"},
		"negative price":        {"ORDER_MIN_ITEM_PRICE": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_TelemetryDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	settings := cfg.Observability("agizo-api")
	assert.Equal(t, "agizo-api", settings.ServiceName)
	assert.Equal(t, "local", settings.Environment)
	assert.Equal(t, slog.LevelInfo, settings.LogLevel)
	assert.Equal(t, platformobservability.LogFormatJSON, settings.LogFormat)
	assert.Equal(t, platformobservability.ExporterOTLP, settings.TraceExporter)
	assert.True(t, settings.OTLPInsecure)
	assert.Equal(t, 1.0, settings.SampleRatio)
}

func TestLoadConfig_TelemetryFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SERVICE_VERSION", "1.4.0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "TEXT")
	t.Setenv("OTEL_TRACES_EXPORTER", "stdout")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	settings := cfg.Observability("agizo-worker")
	assert.Equal(t, "production", settings.Environment)
	assert.Equal(t, "1.4.0", settings.ServiceVersion)
	assert.Equal(t, slog.LevelDebug, settings.LogLevel)
	assert.Equal(t, platformobservability.LogFormatText, settings.LogFormat)
	assert.Equal(t, platformobservability.ExporterStdout, settings.TraceExporter)
	assert.Equal(t, "collector:4318", settings.OTLPEndpoint)
	assert.False(t, settings.OTLPInsecure)
	assert.Equal(t, 0.25, settings.SampleRatio)
}

func TestLoadConfig_RejectsBadTelemetry(t *testing.T) {
	for key, value := range map[string]string{
		"LOG_LEVEL":               "loud",
		"LOG_FORMAT":              "xml",
		"OTEL_TRACES_EXPORTER":    "zipkin",
		"OTEL_TRACES_SAMPLER_ARG": "1.5",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := LoadConfig()
			require.ErrorContains(t, err, key)
		})
	}
}
