package sessao

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/conciliacao"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories"
	mock_repositories "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories/mocks"
)

func setupArmazem(t *testing.T) repositories.ResultadoSessaoRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), data.GormConfig(false))
	require.NoError(t, err)
	require.NoError(t, data.AutoMigrate(db))
	return repositories.NewGormResultadoSessaoRepository(db)
}

func testConfig() *core.Config {
	return &core.Config{
		SessionTimeout:         time.Hour,
		SessionCleanupInterval: 10 * time.Millisecond,
	}
}

func respostaExemplo() *models.RespostaConciliacao {
	valor := 0.0
	item := models.ResultadoItem{
		Status:         models.StatusDivergente,
		Referencia:     models.RegistroItem{Fornecedor: "ACME", Valor: 10, Data: "2024-01-01"},
		Comparacao:     &models.RegistroItem{Fornecedor: "ACME", Valor: 12, Data: "2024-01-01"},
		DiferencaValor: &valor,
	}
	return &models.RespostaConciliacao{
		Resumo:     models.Resumo{TotalReferencia: 1, TotalComparacao: 1, Divergentes: 1},
		Resultados: []models.ResultadoItem{item},
		PorData: []models.PorData{
			{Data: "2024-01-01", QtdRef: 1, QtdComp: 1, TotalRef: 10, TotalComp: 12, Divergente: true, Resultados: []models.ResultadoItem{item}},
		},
		AlertasDiarios: []models.AlertaDiario{},
	}
}

func TestGarantir(t *testing.T) {
	g := NovoGerenciador(testConfig(), setupArmazem(t))

	s, nova := g.Garantir(context.Background(), "")
	require.True(t, nova)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	mesma, nova := g.Garantir(context.Background(), s.ID)
	assert.False(t, nova)
	assert.Same(t, s, mesma)

	_, nova = g.Garantir(context.Background(), "nao-e-uuid")
	assert.True(t, nova, "identificador inválido gera nova sessão")

	escolhido := uuid.NewString()
	emitida, nova := g.Garantir(context.Background(), escolhido)
	assert.True(t, nova, "identificador sem registro não é aceito")
	assert.NotEqual(t, escolhido, emitida.ID)

	s.ultimaAtividade.Store(time.Now().Add(-2 * time.Hour).UnixNano())
	outra, nova := g.Garantir(context.Background(), s.ID)
	assert.True(t, nova, "sessão expirada é substituída")
	assert.NotEqual(t, s.ID, outra.ID)
}

func TestLocalizar(t *testing.T) {
	ctx := context.Background()
	armazem := setupArmazem(t)
	g := NovoGerenciador(testConfig(), armazem)

	_, err := g.localizar(ctx, "")
	assert.ErrorIs(t, err, core.ErrInvalidSession)
	_, err = g.localizar(ctx, "nao-e-uuid")
	assert.ErrorIs(t, err, core.ErrInvalidSession)
	_, err = g.localizar(ctx, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrInvalidSession)

	persistida := uuid.NewString()
	require.NoError(t, armazem.Salvar(ctx, persistida, ChaveResultado, []byte(`{}`)))
	s, err := g.localizar(ctx, persistida)
	require.NoError(t, err)
	assert.Equal(t, persistida, s.ID)
	assert.Contains(t, g.Ativas(), persistida)

	s.ultimaAtividade.Store(time.Now().Add(-2 * time.Hour).UnixNano())
	_, err = g.localizar(ctx, persistida)
	assert.ErrorIs(t, err, core.ErrSessionExpired)
	assert.NotContains(t, g.Ativas(), persistida)
}

func TestGarantir_FalhaAoVerificarEmiteNova(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	armazem := mock_repositories.NewMockResultadoSessaoRepository(ctrl)
	id := uuid.NewString()
	armazem.EXPECT().Existe(gomock.Any(), id).Return(false, core.NewDatabaseErrorDetail("verificando", errors.New("conexão perdida")))

	g := NovoGerenciador(testConfig(), armazem)
	s, nova := g.Garantir(context.Background(), id)
	assert.True(t, nova)
	assert.NotEqual(t, id, s.ID)
}

func TestCicloDoResultado(t *testing.T) {
	ctx := context.Background()
	armazem := setupArmazem(t)
	g := NovoGerenciador(testConfig(), armazem)
	s, _ := g.Garantir(context.Background(), "")

	_, ok := g.CarregarResultado(ctx, s)
	assert.False(t, ok, "sem conciliação não há resultado")

	require.NoError(t, g.GuardarResultado(ctx, s, respostaExemplo()))
	resp, ok := g.CarregarResultado(ctx, s)
	require.True(t, ok)
	assert.Len(t, resp.Resultados, 1)

	// Outro processo com o mesmo armazém lê o envelope persistido.
	g2 := NovoGerenciador(testConfig(), armazem)
	s2, nova := g2.Garantir(context.Background(), s.ID)
	require.False(t, nova)
	resp2, ok := g2.CarregarResultado(ctx, s2)
	require.True(t, ok)
	assert.Equal(t, resp.Resumo, resp2.Resumo)

	require.NoError(t, g.NovaConciliacao(ctx, s))
	_, ok = g.CarregarResultado(ctx, s)
	assert.False(t, ok)
	g3 := NovoGerenciador(testConfig(), armazem)
	s3, _ := g3.Garantir(context.Background(), s.ID)
	_, ok = g3.CarregarResultado(ctx, s3)
	assert.False(t, ok, "nova conciliação apaga o envelope persistido")
}

func TestGuardarResultado_ReiniciaEstado(t *testing.T) {
	ctx := context.Background()
	g := NovoGerenciador(testConfig(), setupArmazem(t))
	s, _ := g.Garantir(context.Background(), "")
	require.NoError(t, g.GuardarResultado(ctx, s, respostaExemplo()))

	require.NoError(t, g.ComResultado(ctx, s, func(resp *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
		e.Filtro = conciliacao.FiltroTodos
		e.Expandidos.Alternar("2024-01-01")
		return e.Confirmados.Confirmar(0, resp.Resultados)
	}))

	require.NoError(t, g.GuardarResultado(ctx, s, respostaExemplo()))
	require.NoError(t, g.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
		assert.Equal(t, conciliacao.FiltroPadrao, e.Filtro)
		assert.Empty(t, e.Expandidos.Lista())
		assert.Empty(t, e.Confirmados.Lista())
		return nil
	}))
}

func TestSairDoResultado_MantemEnvelope(t *testing.T) {
	ctx := context.Background()
	g := NovoGerenciador(testConfig(), setupArmazem(t))
	s, _ := g.Garantir(context.Background(), "")
	require.NoError(t, g.GuardarResultado(ctx, s, respostaExemplo()))
	require.NoError(t, g.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
		e.Aba = conciliacao.AbaLista
		return nil
	}))

	g.SairDoResultado(s)

	_, ok := g.CarregarResultado(ctx, s)
	assert.True(t, ok)
	require.NoError(t, g.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
		assert.Equal(t, conciliacao.AbaAuditoria, e.Aba)
		return nil
	}))
}

func TestCarregarResultado_PayloadInvalidoViraAusente(t *testing.T) {
	ctx := context.Background()
	armazem := setupArmazem(t)
	id := uuid.NewString()
	require.NoError(t, armazem.Salvar(ctx, id, ChaveResultado, []byte(`{"resultados": "x"}`)))

	g := NovoGerenciador(testConfig(), armazem)
	s, _ := g.Garantir(context.Background(), id)
	resp, ok := g.CarregarResultado(ctx, s)
	assert.False(t, ok)
	assert.Nil(t, resp)

	err := g.ComResultado(ctx, s, func(*models.RespostaConciliacao, *conciliacao.EstadoVisualizacao) error {
		t.Fatal("não deve executar sem resultado")
		return nil
	})
	assert.ErrorIs(t, err, core.ErrSemResultado)
}

func TestCarregarResultado_FalhaDoBancoViraAusente(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	armazem := mock_repositories.NewMockResultadoSessaoRepository(ctrl)
	armazem.EXPECT().
		Carregar(gomock.Any(), gomock.Any(), ChaveResultado).
		Return(nil, core.NewDatabaseErrorDetail("carregando", errors.New("conexão perdida")))

	g := NovoGerenciador(testConfig(), armazem)
	s, _ := g.Garantir(context.Background(), "")
	_, ok := g.CarregarResultado(context.Background(), s)
	assert.False(t, ok)
}

func TestGuardarResultado_ErroDoArmazemPreservaEstado(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	armazem := mock_repositories.NewMockResultadoSessaoRepository(ctrl)
	falha := core.NewDatabaseErrorDetail("salvando", errors.New("disco cheio"))
	armazem.EXPECT().Salvar(gomock.Any(), gomock.Any(), ChaveResultado, gomock.Any()).Return(falha)
	armazem.EXPECT().Carregar(gomock.Any(), gomock.Any(), ChaveResultado).Return(nil, core.ErrNotFound)

	g := NovoGerenciador(testConfig(), armazem)
	s, _ := g.Garantir(context.Background(), "")
	err := g.GuardarResultado(context.Background(), s, respostaExemplo())
	assert.ErrorIs(t, err, core.ErrDatabase)
	_, ok := g.CarregarResultado(context.Background(), s)
	assert.False(t, ok)
}

func TestLimparExpiradas(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	armazem := mock_repositories.NewMockResultadoSessaoRepository(ctrl)

	g := NovoGerenciador(testConfig(), armazem)
	velha, _ := g.Garantir(context.Background(), "")
	ativa, _ := g.Garantir(context.Background(), "")
	velha.ultimaAtividade.Store(time.Now().Add(-3 * time.Hour).UnixNano())

	armazem.EXPECT().
		RemoverExpirados(gomock.Any(), gomock.Any(), []string{ativa.ID}).
		Return(int64(1), nil)

	g.LimparExpiradas(ctx)
	assert.Equal(t, []string{ativa.ID}, g.Ativas())
}

func TestCleanupGoroutineEShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	armazem := mock_repositories.NewMockResultadoSessaoRepository(ctrl)

	var once sync.Once
	chamado := make(chan struct{})
	armazem.EXPECT().
		RemoverExpirados(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time, []string) (int64, error) {
			once.Do(func() { close(chamado) })
			return 0, nil
		}).
		AnyTimes()

	cfg := testConfig()
	cfg.SessionCleanupEnabled = true
	g := NovoGerenciador(cfg, armazem)
	g.StartCleanupGoroutine()

	select {
	case <-chamado:
	case <-time.After(2 * time.Second):
		t.Fatal("limpeza não executou")
	}
	g.Shutdown()
	g.Shutdown()
}

func TestAcessoConcorrente(t *testing.T) {
	ctx := context.Background()
	g := NovoGerenciador(testConfig(), setupArmazem(t))
	s, _ := g.Garantir(context.Background(), "")
	require.NoError(t, g.GuardarResultado(ctx, s, respostaExemplo()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = g.Garantir(context.Background(), s.ID)
			_ = g.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
				e.Expandidos.Alternar("2024-01-01")
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, g.ComResultado(ctx, s, func(_ *models.RespostaConciliacao, e *conciliacao.EstadoVisualizacao) error {
		assert.Empty(t, e.Expandidos.Lista(), "número par de alternâncias")
		return nil
	}))
}
