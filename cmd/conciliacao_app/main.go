package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/api"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/relatorio"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/services"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/sessao"
)

func main() {
	if err := run(); err != nil {
		appLogger.Errorf("Aplicação encerrada com erro: %v", err)
		os.Exit(1)
	}
	appLogger.Info("Aplicação encerrada normalmente.")
}

func run() error {
	// --- 1. Carregar Configurações ---
	cfg, err := core.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Erro CRÍTICO ao carregar configuração: %v", err)
	}

	// --- 2. Configurar Logger ---
	if err := appLogger.SetupLogger(cfg); err != nil {
		log.Fatalf("Erro CRÍTICO ao configurar logger: %v", err)
	}
	appLogger.Info("=====================================================")
	appLogger.Infof("Iniciando %s v%s...", cfg.AppName, cfg.AppVersion)
	appLogger.Debugf("Modo Debug: %t", cfg.AppDebug)
	appLogger.Info("=====================================================")

	// --- 3. Inicializar Banco de Dados ---
	db, err := data.InitializeDB(cfg)
	if err != nil {
		appLogger.Fatalf("Erro CRÍTICO ao inicializar banco de dados: %v", err)
	}
	defer func() {
		if err := data.CloseDB(db); err != nil {
			appLogger.Errorf("Erro ao fechar conexão com banco de dados: %v", err)
		} else {
			appLogger.Info("Conexão com banco de dados fechada.")
		}
	}()
	appLogger.Info("Banco de dados inicializado com sucesso.")

	// --- 4. Repositórios e sessões ---
	resultadoRepo := repositories.NewGormResultadoSessaoRepository(db)
	auditLogRepo := repositories.NewGormAuditLogRepository(db)

	gerenciador := sessao.NovoGerenciador(cfg, resultadoRepo)
	gerenciador.StartCleanupGoroutine()
	defer gerenciador.Shutdown()

	// --- 5. Serviços ---
	auditLogService := services.NewAuditLogService(auditLogRepo)
	conciliador := services.NovoConciliadorHTTP(cfg.ConciliadorURL, cfg.ConciliadorTimeout)
	conciliacaoService := services.NewConciliacaoService(
		conciliador,
		gerenciador,
		relatorio.NovoExportador(cfg.ExportDir),
		auditLogService,
		cfg.ToleranciaValor,
	)
	appLogger.Infof("Serviço de conciliação externo: %s (timeout %s)", cfg.ConciliadorURL, cfg.ConciliadorTimeout)

	// --- 6. HTTP ---
	router := api.NewRouter(api.Config{
		Conciliacao: conciliacaoService,
		Auditoria:   auditLogService,
		Sessoes:     gerenciador,
		Observability: api.NewObservability(api.ObservabilityConfig{
			ServiceName: cfg.AppName,
			LogRequests: cfg.LogRequests,
			Enabled:     cfg.MetricsEnabled,
		}),
		CookieSecure:   cfg.CookieSecure,
		SessionTimeout: cfg.SessionTimeout,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infof("Servidor HTTP escutando em %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return core.WrapErrorf(core.ErrInternal, "servidor HTTP: %v", err)
		}
		return nil
	case <-ctx.Done():
		appLogger.Info("Sinal de encerramento recebido, finalizando requisições em andamento...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Warnf("Encerramento do servidor HTTP excedeu %s: %v", cfg.HTTPShutdownTimeout, err)
	}
	return nil
}
