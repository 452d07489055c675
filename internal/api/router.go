package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/services"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/sessao"
)

const tamanhoMaximoUpload = 32 << 20

type Config struct {
	Conciliacao    services.ConciliacaoService
	Auditoria      services.AuditLogService
	Sessoes        *sessao.Gerenciador
	Observability  *Observability
	CookieSecure   bool
	SessionTimeout time.Duration
}

// NewRouter monta as rotas HTTP da aplicação.
func NewRouter(cfg Config) http.Handler {
	if cfg.Conciliacao == nil || cfg.Sessoes == nil {
		appLogger.Fatalf("ConciliacaoService e gerenciador de sessões são obrigatórios para NewRouter")
	}
	h := &handlers{
		conciliacao: cfg.Conciliacao,
		auditoria:   cfg.Auditoria,
		obs:         cfg.Observability,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	obs := cfg.Observability
	if obs != nil {
		r.Use(obs.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if obs != nil {
		r.Handle("/metrics", obs.MetricsHandler())
	}

	r.Group(func(sr chi.Router) {
		sr.Use(sessaoMiddleware(cfg.Sessoes, cfg.CookieSecure, cfg.SessionTimeout))

		sr.Post("/conciliar", h.conciliar)
		sr.Get("/auditoria", h.auditoriaSessao)

		sr.Route("/resultado", func(rr chi.Router) {
			rr.Get("/", h.visao)
			rr.Delete("/", h.novaConciliacao)
			rr.Post("/sair", h.sair)
			rr.Post("/grupos/expandir", h.expandirTodos)
			rr.Post("/grupos/recolher", h.recolherTodos)
			rr.Post("/grupos/{data}/alternar", h.alternarGrupo)
			rr.Post("/confirmados/{indice}", h.confirmar)
			rr.Get("/exportar", h.exportar)
			rr.Post("/arquivar", h.arquivar)
		})
	})
	return r
}

type chaveSessao struct{}

// sessaoMiddleware resolve a sessão do cookie e renova o cookie quando um novo identificador é emitido.
func sessaoMiddleware(g *sessao.Gerenciador, secure bool, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(sessao.NomeCookie); err == nil {
				id = c.Value
			}
			s, nova := g.Garantir(r.Context(), id)
			if nova || s.ID != id {
				http.SetCookie(w, &http.Cookie{
					Name:     sessao.NomeCookie,
					Value:    s.ID,
					Path:     "/",
					MaxAge:   int(timeout.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), chaveSessao{}, s)
			ctx = services.ContextoComIP(ctx, ipCliente(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessaoDe(r *http.Request) *sessao.Sessao {
	s, _ := r.Context().Value(chaveSessao{}).(*sessao.Sessao)
	return s
}

func ipCliente(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
