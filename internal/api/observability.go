package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
)

type ObservabilityConfig struct {
	ServiceName   string
	MetricsPrefix string
	LogRequests   bool
	Enabled       bool
}

// Observability registra métricas Prometheus e spans OpenTelemetry por rota.
type Observability struct {
	cfg         ObservabilityConfig
	tracer      trace.Tracer
	requests    *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	exportacoes *prometheus.CounterVec
	registry    *prometheus.Registry
}

func NewObservability(cfg ObservabilityConfig) *Observability {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "conciliacao"
	}
	if cfg.MetricsPrefix == "" {
		cfg.MetricsPrefix = "conciliacao"
	}
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.MetricsPrefix,
		Name:      "requests_total",
		Help:      "Total de requisições HTTP processadas.",
	}, []string{"route", "method", "status"})
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.MetricsPrefix,
		Name:      "request_duration_seconds",
		Help:      "Duração das requisições HTTP em segundos.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
	exportacoes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.MetricsPrefix,
		Name:      "exportacoes_total",
		Help:      "Relatórios exportados por escopo e formato.",
	}, []string{"escopo", "formato"})
	registry.MustRegister(requests, durations, exportacoes)
	return &Observability{
		cfg:         cfg,
		tracer:      otel.Tracer(cfg.ServiceName),
		requests:    requests,
		durations:   durations,
		exportacoes: exportacoes,
		registry:    registry,
	}
}

// Middleware mede a requisição usando o padrão de rota do chi como rótulo.
func (o *Observability) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !o.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		ctx, span := o.tracer.Start(r.Context(), r.Method, trace.WithAttributes(
			attribute.String("http.method", r.Method),
		))
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		route := rotaDe(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", recorder.status),
		)
		if recorder.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(recorder.status))
		}
		span.End()

		duration := time.Since(start).Seconds()
		o.requests.WithLabelValues(route, r.Method, http.StatusText(recorder.status)).Inc()
		o.durations.WithLabelValues(route, r.Method).Observe(duration)
		if o.cfg.LogRequests {
			appLogger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   recorder.status,
				"duration": duration * 1000,
			}).Info("requisição HTTP")
		}
	})
}

// RegistrarExportacao conta um relatório entregue.
func (o *Observability) RegistrarExportacao(escopo, formato string) {
	if o == nil || !o.cfg.Enabled {
		return
	}
	o.exportacoes.WithLabelValues(escopo, formato).Inc()
}

func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func rotaDe(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "desconhecida"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
