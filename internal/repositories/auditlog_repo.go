package repositories

//go:generate mockgen -destination=mocks/mock_auditlog_repo.go -source=auditlog_repo.go

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// FiltroAuditoria restringe a consulta da trilha de auditoria. Campos vazios não filtram.
type FiltroAuditoria struct {
	Inicio    *time.Time
	Fim       *time.Time
	Severity  string
	Action    string
	SessaoRef string
	Limit     int
	Offset    int
}

// AuditLogRepository define a interface para operações no repositório de logs de auditoria.
type AuditLogRepository interface {
	// Create insere uma nova entrada de log de auditoria.
	Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error)

	// GetFiltered retorna as entradas da página e a contagem total que corresponde ao filtro.
	GetFiltered(ctx context.Context, filtro FiltroAuditoria) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// gormAuditLogRepository é a implementação GORM de AuditLogRepository.
type gormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository cria uma nova instância de gormAuditLogRepository.
func NewGormAuditLogRepository(db *gorm.DB) AuditLogRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormAuditLogRepository")
	}
	return &gormAuditLogRepository{db: db}
}

// Create insere uma nova entrada de log de auditoria no banco de dados.
func (r *gormAuditLogRepository) Create(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Severity = strings.ToUpper(entry.Severity)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		// Metadata pode ter dados sensíveis; não entra na mensagem.
		appLogger.Errorf("Erro ao criar entrada de log de auditoria (Ação: %s, Severidade: %s): %v",
			entry.Action, entry.Severity, err)
		return nil, core.NewDatabaseErrorDetail("criando entrada de auditoria", err)
	}
	return &entry, nil
}

// GetFiltered busca logs de auditoria com base nos filtros fornecidos, com paginação.
func (r *gormAuditLogRepository) GetFiltered(ctx context.Context, f FiltroAuditoria) ([]models.AuditLogEntry, int64, error) {
	var entries []models.AuditLogEntry
	var totalCount int64

	query := r.db.WithContext(ctx).Model(&models.AuditLogEntry{})

	if f.Inicio != nil {
		startOfDay := time.Date(f.Inicio.Year(), f.Inicio.Month(), f.Inicio.Day(), 0, 0, 0, 0, f.Inicio.Location())
		query = query.Where("timestamp >= ?", startOfDay)
	}
	if f.Fim != nil {
		endOfDay := time.Date(f.Fim.Year(), f.Fim.Month(), f.Fim.Day(), 23, 59, 59, 999999999, f.Fim.Location())
		query = query.Where("timestamp <= ?", endOfDay)
	}
	if f.Severity != "" {
		query = query.Where("UPPER(severity) = UPPER(?)", f.Severity)
	}
	if f.Action != "" {
		query = query.Where("LOWER(action) = LOWER(?)", f.Action)
	}
	if f.SessaoRef != "" {
		query = query.Where("sessao_ref = ?", f.SessaoRef)
	}

	// Contagem antes de limit/offset; a sessão isola as duas consultas.
	query = query.Session(&gorm.Session{})
	if err := query.Count(&totalCount).Error; err != nil {
		appLogger.Errorf("Erro ao contar logs de auditoria filtrados: %v", err)
		return nil, 0, core.NewDatabaseErrorDetail("contando logs de auditoria", err)
	}
	if totalCount == 0 {
		return []models.AuditLogEntry{}, 0, nil
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	} else if limit > 1000 {
		limit = 1000
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	if err := query.Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		appLogger.Errorf("Erro ao buscar logs de auditoria filtrados: %v", err)
		return nil, 0, core.NewDatabaseErrorDetail("buscando logs de auditoria", err)
	}
	return entries, totalCount, nil
}
