package repositories

//go:generate mockgen -destination=mocks/mock_resultado_sessao_repo.go -source=resultado_sessao_repo.go

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// ResultadoSessaoRepository define a interface para o armazenamento do envelope por sessão do navegador.
type ResultadoSessaoRepository interface {
	// Salvar grava o payload da chave, substituindo o anterior por inteiro.
	Salvar(ctx context.Context, sessaoID, chave string, payload []byte) error
	// Carregar retorna ErrNotFound quando não há nada gravado para a chave.
	Carregar(ctx context.Context, sessaoID, chave string) ([]byte, error)
	// Existe informa se a sessão tem algum registro gravado.
	Existe(ctx context.Context, sessaoID string) (bool, error)
	// Remover apaga todas as chaves da sessão.
	Remover(ctx context.Context, sessaoID string) error
	// RemoverExpirados apaga registros não atualizados desde 'antes', exceto os das sessões ativas.
	RemoverExpirados(ctx context.Context, antes time.Time, ativas []string) (int64, error)
}

// HashSessao deriva a chave persistida a partir do identificador do cookie.
// O identificador bruto nunca vai para o banco.
func HashSessao(sessaoID string) string {
	sum := blake2b.Sum256([]byte(sessaoID))
	return hex.EncodeToString(sum[:])
}

// gormResultadoSessaoRepository é a implementação GORM de ResultadoSessaoRepository.
type gormResultadoSessaoRepository struct {
	db *gorm.DB
}

// NewGormResultadoSessaoRepository cria uma nova instância do repositório.
func NewGormResultadoSessaoRepository(db *gorm.DB) ResultadoSessaoRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormResultadoSessaoRepository")
	}
	return &gormResultadoSessaoRepository{db: db}
}

func (r *gormResultadoSessaoRepository) Salvar(ctx context.Context, sessaoID, chave string, payload []byte) error {
	if sessaoID == "" || chave == "" {
		return core.WrapErrorf(core.ErrInvalidInput, "sessão e chave são obrigatórias")
	}
	agora := time.Now().UTC()
	registro := models.DBResultadoSessao{
		SessaoHash: HashSessao(sessaoID),
		Chave:      chave,
		Payload:    payload,
		CreatedAt:  agora,
		UpdatedAt:  agora,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sessao_hash"}, {Name: "chave"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&registro)
	if result.Error != nil {
		appLogger.Errorf("Erro ao salvar resultado da sessão %s (chave %s): %v", appLogger.ShortID(registro.SessaoHash), chave, result.Error)
		return core.NewDatabaseErrorDetail("salvando resultado da sessão", result.Error)
	}
	return nil
}

func (r *gormResultadoSessaoRepository) Carregar(ctx context.Context, sessaoID, chave string) ([]byte, error) {
	var registro models.DBResultadoSessao
	err := r.db.WithContext(ctx).
		Where("sessao_hash = ? AND chave = ?", HashSessao(sessaoID), chave).
		First(&registro).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.WrapErrorf(core.ErrNotFound, "nenhum resultado para a chave %s", chave)
		}
		appLogger.Errorf("Erro ao carregar resultado da sessão (chave %s): %v", chave, err)
		return nil, core.NewDatabaseErrorDetail("carregando resultado da sessão", err)
	}
	return registro.Payload, nil
}

func (r *gormResultadoSessaoRepository) Existe(ctx context.Context, sessaoID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.DBResultadoSessao{}).
		Where("sessao_hash = ?", HashSessao(sessaoID)).
		Count(&n).Error
	if err != nil {
		appLogger.Errorf("Erro ao verificar registro da sessão: %v", err)
		return false, core.NewDatabaseErrorDetail("verificando sessão", err)
	}
	return n > 0, nil
}

func (r *gormResultadoSessaoRepository) Remover(ctx context.Context, sessaoID string) error {
	result := r.db.WithContext(ctx).
		Where("sessao_hash = ?", HashSessao(sessaoID)).
		Delete(&models.DBResultadoSessao{})
	if result.Error != nil {
		appLogger.Errorf("Erro ao remover resultados da sessão: %v", result.Error)
		return core.NewDatabaseErrorDetail("removendo resultados da sessão", result.Error)
	}
	return nil
}

func (r *gormResultadoSessaoRepository) RemoverExpirados(ctx context.Context, antes time.Time, ativas []string) (int64, error) {
	query := r.db.WithContext(ctx).Where("updated_at < ?", antes.UTC())
	if len(ativas) > 0 {
		hashes := make([]string, len(ativas))
		for i, id := range ativas {
			hashes[i] = HashSessao(id)
		}
		query = query.Where("sessao_hash NOT IN ?", hashes)
	}
	result := query.Delete(&models.DBResultadoSessao{})
	if result.Error != nil {
		appLogger.Errorf("Erro ao remover resultados expirados: %v", result.Error)
		return 0, core.NewDatabaseErrorDetail("removendo resultados expirados", result.Error)
	}
	return result.RowsAffected, nil
}
