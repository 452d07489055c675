package sessao

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/conciliacao"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories"
)

const (
	// ChaveResultado é a chave fixa sob a qual o envelope da última conciliação é guardado.
	ChaveResultado = "conciliacao_resultado"
	// NomeCookie identifica a sessão do navegador.
	NomeCookie = "conciliacao_sessao"
)

// Sessao é o estado de uma sessão do navegador.
type Sessao struct {
	ID        string
	CreatedAt time.Time

	ultimaAtividade atomic.Int64

	mu       sync.Mutex
	estado   *conciliacao.EstadoVisualizacao
	resposta *models.RespostaConciliacao
}

// IsExpired verifica se a sessão expirou com base no tempo de inatividade.
func (s *Sessao) IsExpired(timeout time.Duration) bool {
	return time.Now().UTC().After(s.LastActivity().Add(timeout))
}

// LastActivity é o instante do último acesso à sessão.
func (s *Sessao) LastActivity() time.Time {
	return time.Unix(0, s.ultimaAtividade.Load()).UTC()
}

// UpdateActivity atualiza o timestamp da última atividade.
func (s *Sessao) UpdateActivity() {
	s.ultimaAtividade.Store(time.Now().UTC().UnixNano())
}

// Gerenciador mantém as sessões em memória e o envelope persistido de cada uma.
type Gerenciador struct {
	cfg          *core.Config
	armazem      repositories.ResultadoSessaoRepository
	sessions     map[string]*Sessao
	lock         sync.RWMutex
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NovoGerenciador cria o gerenciador. armazem guarda os envelopes entre requisições.
func NovoGerenciador(cfg *core.Config, armazem repositories.ResultadoSessaoRepository) *Gerenciador {
	return &Gerenciador{
		cfg:          cfg,
		armazem:      armazem,
		sessions:     make(map[string]*Sessao),
		shutdownChan: make(chan struct{}),
	}
}

// StartCleanupGoroutine inicia a limpeza periódica de sessões expiradas.
func (g *Gerenciador) StartCleanupGoroutine() {
	if !g.cfg.SessionCleanupEnabled {
		appLogger.Info("Limpeza de sessão em background desabilitada.")
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(g.cfg.SessionCleanupInterval)
		defer ticker.Stop()

		appLogger.Infof("Goroutine de limpeza de sessões iniciada (intervalo: %v).", g.cfg.SessionCleanupInterval)
		for {
			select {
			case <-ticker.C:
				g.LimparExpiradas(context.Background())
			case <-g.shutdownChan:
				appLogger.Info("Goroutine de limpeza de sessões recebendo sinal de shutdown.")
				return
			}
		}
	}()
}

// Shutdown para a goroutine de limpeza. Pode ser chamado mais de uma vez.
func (g *Gerenciador) Shutdown() {
	appLogger.Info("Iniciando shutdown do gerenciador de sessões...")
	g.shutdownOnce.Do(func() { close(g.shutdownChan) })
	g.wg.Wait()
	appLogger.Info("Gerenciador de sessões finalizado.")
}

// Garantir devolve a sessão do identificador ou cria uma nova quando ele é vazio,
// inválido, expirado ou desconhecido. Um identificador que não está em memória só é
// readotado (após um reinício do servidor) quando já tem envelope persistido, então o
// cliente não escolhe o identificador de uma sessão nova.
// O booleano indica se um novo identificador foi emitido.
func (g *Gerenciador) Garantir(ctx context.Context, sessaoID string) (*Sessao, bool) {
	s, err := g.localizar(ctx, sessaoID)
	if err == nil {
		return s, false
	}
	switch {
	case errors.Is(err, core.ErrSessionExpired):
		appLogger.Infof("Sessão %s expirada. Criando nova.", appLogger.ShortID(sessaoID))
	case sessaoID != "":
		appLogger.Debugf("Identificador de sessão recusado: %v", err)
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	s = g.registrar(uuid.NewString())
	appLogger.Debugf("Sessão criada: %s", appLogger.ShortID(s.ID))
	return s, true
}

// localizar resolve o identificador recebido do cliente. Retorna core.ErrInvalidSession
// para identificadores malformados ou sem registro e core.ErrSessionExpired para sessões
// em memória que passaram do tempo de inatividade.
func (g *Gerenciador) localizar(ctx context.Context, sessaoID string) (*Sessao, error) {
	if _, err := uuid.Parse(sessaoID); err != nil {
		return nil, core.ErrInvalidSession
	}

	g.lock.Lock()
	if s, ok := g.sessions[sessaoID]; ok {
		defer g.lock.Unlock()
		if s.IsExpired(g.cfg.SessionTimeout) {
			delete(g.sessions, sessaoID)
			return nil, core.ErrSessionExpired
		}
		s.UpdateActivity()
		return s, nil
	}
	g.lock.Unlock()

	existe, err := g.armazem.Existe(ctx, sessaoID)
	if err != nil {
		return nil, core.WrapErrorf(core.ErrInvalidSession, "não foi possível verificar a sessão %s: %v", appLogger.ShortID(sessaoID), err)
	}
	if !existe {
		return nil, core.WrapErrorf(core.ErrInvalidSession, "sessão %s sem registro", appLogger.ShortID(sessaoID))
	}

	g.lock.Lock()
	defer g.lock.Unlock()
	if s, ok := g.sessions[sessaoID]; ok {
		s.UpdateActivity()
		return s, nil
	}
	appLogger.Debugf("Sessão %s readotada.", appLogger.ShortID(sessaoID))
	return g.registrar(sessaoID), nil
}

// registrar exige g.lock.
func (g *Gerenciador) registrar(id string) *Sessao {
	s := &Sessao{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		estado:    conciliacao.NovoEstadoVisualizacao(),
	}
	s.UpdateActivity()
	g.sessions[id] = s
	return s
}

// Ativas retorna os identificadores das sessões em memória.
func (g *Gerenciador) Ativas() []string {
	g.lock.RLock()
	defer g.lock.RUnlock()
	ids := make([]string, 0, len(g.sessions))
	for id := range g.sessions {
		ids = append(ids, id)
	}
	return ids
}

// GuardarResultado persiste o envelope e reinicia o estado de visualização.
func (g *Gerenciador) GuardarResultado(ctx context.Context, s *Sessao, resp *models.RespostaConciliacao) error {
	raw, err := resp.Codificar()
	if err != nil {
		return core.WrapErrorf(core.ErrInternal, "serializando resultado: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := g.armazem.Salvar(ctx, s.ID, ChaveResultado, raw); err != nil {
		return err
	}
	s.resposta = resp
	s.estado = conciliacao.NovoEstadoVisualizacao()
	appLogger.Infof("Resultado guardado na sessão %s (%d bytes).", appLogger.ShortID(s.ID), len(raw))
	return nil
}

// CarregarResultado devolve o envelope da sessão. Ausência e dados corrompidos
// resultam em (nil, false); o chamador exibe o estado vazio.
func (g *Gerenciador) CarregarResultado(ctx context.Context, s *Sessao) (*models.RespostaConciliacao, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return g.carregar(ctx, s)
}

func (g *Gerenciador) carregar(ctx context.Context, s *Sessao) (*models.RespostaConciliacao, bool) {
	if s.resposta != nil {
		return s.resposta, true
	}
	raw, err := g.armazem.Carregar(ctx, s.ID, ChaveResultado)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			appLogger.Errorf("Falha ao ler resultado da sessão %s: %v", appLogger.ShortID(s.ID), err)
		}
		return nil, false
	}
	resp, err := models.DecodificarResposta(raw)
	if err != nil {
		appLogger.Warnf("Resultado guardado na sessão %s é inválido; tratando como ausente: %v", appLogger.ShortID(s.ID), err)
		return nil, false
	}
	s.resposta = resp
	return resp, true
}

// ComResultado executa fn com o envelope e o estado da sessão sob o lock da sessão.
// Retorna core.ErrSemResultado quando não há envelope.
func (g *Gerenciador) ComResultado(ctx context.Context, s *Sessao, fn func(*models.RespostaConciliacao, *conciliacao.EstadoVisualizacao) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := g.carregar(ctx, s)
	if !ok {
		return core.ErrSemResultado
	}
	return fn(resp, s.estado)
}

// NovaConciliacao apaga o envelope e o estado de visualização.
func (g *Gerenciador) NovaConciliacao(ctx context.Context, s *Sessao) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := g.armazem.Remover(ctx, s.ID); err != nil {
		return err
	}
	s.resposta = nil
	s.estado = conciliacao.NovoEstadoVisualizacao()
	appLogger.Infof("Sessão %s iniciou nova conciliação.", appLogger.ShortID(s.ID))
	return nil
}

// SairDoResultado descarta só o estado efêmero da tela; o envelope continua guardado.
func (g *Gerenciador) SairDoResultado(s *Sessao) {
	s.mu.Lock()
	s.estado = conciliacao.NovoEstadoVisualizacao()
	s.mu.Unlock()
}

// LimparExpiradas remove da memória as sessões inativas e apaga os envelopes
// persistidos que não pertencem a nenhuma sessão ativa.
func (g *Gerenciador) LimparExpiradas(ctx context.Context) {
	g.lock.Lock()
	cleanedCount := 0
	for id, s := range g.sessions {
		if s.IsExpired(g.cfg.SessionTimeout) {
			delete(g.sessions, id)
			cleanedCount++
		}
	}
	g.lock.Unlock()

	if cleanedCount > 0 {
		appLogger.Infof("Limpeza de sessões removeu %d sessões expiradas.", cleanedCount)
	} else {
		appLogger.Debug("Limpeza de sessões: Nenhuma sessão expirada encontrada.")
	}

	antes := time.Now().UTC().Add(-g.cfg.SessionTimeout)
	n, err := g.armazem.RemoverExpirados(ctx, antes, g.Ativas())
	if err != nil {
		appLogger.Errorf("Falha ao remover resultados expirados: %v", err)
		return
	}
	if n > 0 {
		appLogger.Infof("Limpeza removeu %d resultados persistidos.", n)
	}
}
