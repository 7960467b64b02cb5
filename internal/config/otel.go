package config

type Otel struct {
	ServiceName  string  `env:"OTEL_SERVICE_NAME" envDefault:"catalog-web"`
	CollectorURL string  `env:"OTEL_COLLECTOR_URL"`
	Insecure     bool    `env:"OTEL_INSECURE"`
	TraceIDRatio float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`
}
