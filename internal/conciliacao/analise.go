package conciliacao

import (
	"sync"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// TipoAnalise escolhe qual das análises do envelope alimenta a tela e as exportações.
type TipoAnalise string

const (
	AnaliseValorData   TipoAnalise = "valor_data"
	AnaliseCentroCusto TipoAnalise = "centro_custo"
)

// Label retorna o nome exibido no seletor.
func (t TipoAnalise) Label() string {
	switch t {
	case AnaliseCentroCusto:
		return "Data + Valor + Centro de Custo"
	default:
		return "Valor + Data"
	}
}

// ParseTipoAnalise converte o valor recebido da interface. String vazia resulta em valor_data.
func ParseTipoAnalise(s string) (TipoAnalise, error) {
	switch TipoAnalise(s) {
	case "", AnaliseValorData:
		return AnaliseValorData, nil
	case AnaliseCentroCusto:
		return AnaliseCentroCusto, nil
	default:
		return "", core.WrapErrorf(core.ErrInvalidInput, "tipo de análise desconhecido %q", s)
	}
}

// Resolver escolhe a análise ativa. Pedir centro_custo num envelope que não a traz
// devolve a análise padrão; a função nunca falha.
func Resolver(tipo TipoAnalise, resp *models.RespostaConciliacao) models.AnaliseConciliacao {
	if resp == nil {
		return resp.AnalisePadrao()
	}
	if tipo == AnaliseCentroCusto && resp.AnaliseCentroCusto != nil {
		return *resp.AnaliseCentroCusto
	}
	return resp.AnalisePadrao()
}

// SeletorAnalise é a máquina de dois estados da troca de análise.
// A seleção é sempre permitida e idempotente.
type SeletorAnalise struct {
	mu    sync.RWMutex
	atual TipoAnalise
}

// NovoSeletorAnalise cria o seletor no estado valor_data.
func NovoSeletorAnalise() *SeletorAnalise {
	return &SeletorAnalise{atual: AnaliseValorData}
}

// Selecionar muda o estado e informa se houve mudança.
func (s *SeletorAnalise) Selecionar(tipo TipoAnalise) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.atual == tipo {
		return false
	}
	s.atual = tipo
	return true
}

// Atual retorna o tipo selecionado.
func (s *SeletorAnalise) Atual() TipoAnalise {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.atual == "" {
		return AnaliseValorData
	}
	return s.atual
}

// Resolver aplica o estado atual ao envelope.
func (s *SeletorAnalise) Resolver(resp *models.RespostaConciliacao) models.AnaliseConciliacao {
	return Resolver(s.Atual(), resp)
}

// CentroCustoDisponivel informa se o envelope traz a segunda análise.
func CentroCustoDisponivel(resp *models.RespostaConciliacao) bool {
	return resp != nil && resp.AnaliseCentroCusto != nil
}
