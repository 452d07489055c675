package services

import (
	"context"
	"strings"
	"time"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/repositories"
)

const tamanhoMaximoDescricao = 4000

// AuditLogService define a interface para o serviço de log de auditoria.
type AuditLogService interface {
	// LogAction registra uma ação de auditoria. sessaoID é o identificador bruto do cookie
	// (pode ser vazio para ações do sistema); só a referência derivada dele é gravada.
	LogAction(ctx context.Context, entry models.AuditLogEntry, sessaoID string) error

	// GetAuditLogs busca logs de auditoria com base nos filtros fornecidos e com paginação.
	GetAuditLogs(ctx context.Context, filtro repositories.FiltroAuditoria) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// auditLogServiceImpl é a implementação de AuditLogService.
type auditLogServiceImpl struct {
	repo repositories.AuditLogRepository
}

// NewAuditLogService cria uma nova instância de AuditLogService.
func NewAuditLogService(repo repositories.AuditLogRepository) AuditLogService {
	if repo == nil {
		appLogger.Fatalf("AuditLogRepository não pode ser nil para NewAuditLogService")
	}
	return &auditLogServiceImpl{repo: repo}
}

// ReferenciaSessao é a forma curta e não reversível do identificador de sessão usada na auditoria.
func ReferenciaSessao(sessaoID string) string {
	if sessaoID == "" {
		return "system"
	}
	return repositories.HashSessao(sessaoID)[:16]
}

// LogAction registra uma ação de auditoria no banco de dados.
func (s *auditLogServiceImpl) LogAction(ctx context.Context, entry models.AuditLogEntry, sessaoID string) error {
	// 1. Validar e normalizar
	if strings.TrimSpace(entry.Action) == "" {
		return core.WrapErrorf(core.ErrInvalidInput, "ação do log de auditoria não pode ser vazia")
	}
	if strings.TrimSpace(entry.Description) == "" {
		return core.WrapErrorf(core.ErrInvalidInput, "descrição do log de auditoria não pode ser vazia")
	}

	normalizedSeverity := strings.ToUpper(strings.TrimSpace(entry.Severity))
	if !models.ValidSeverities[normalizedSeverity] {
		appLogger.Warnf("Nível de severidade inválido '%s' fornecido para log. Usando 'INFO'. Ação: %s", entry.Severity, entry.Action)
		entry.Severity = "INFO"
	} else {
		entry.Severity = normalizedSeverity
	}

	// 2. Sessão
	if entry.SessaoRef == "" {
		entry.SessaoRef = ReferenciaSessao(sessaoID)
	}
	if entry.IPAddress == nil || *entry.IPAddress == "" {
		val := "N/A"
		entry.IPAddress = &val
	}

	// 3. Limites do banco
	if len(entry.Description) > tamanhoMaximoDescricao {
		entry.Description = entry.Description[:tamanhoMaximoDescricao-3] + "..."
		appLogger.Warnf("Descrição do log de auditoria truncada para %d caracteres. Ação: %s", tamanhoMaximoDescricao, entry.Action)
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	// 4. Persistir
	if _, err := s.repo.Create(ctx, entry); err != nil {
		return core.WrapErrorf(err, "falha ao persistir log de auditoria (Ação: %s)", entry.Action)
	}
	return nil
}

// GetAuditLogs busca logs de auditoria com base nos filtros fornecidos.
func (s *auditLogServiceImpl) GetAuditLogs(ctx context.Context, f repositories.FiltroAuditoria) ([]models.AuditLogEntry, int64, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	if f.Limit > 1000 {
		f.Limit = 1000
		appLogger.Warnf("Solicitação de GetAuditLogs com limite > 1000. Reduzido para 1000.")
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Inicio != nil {
		val := f.Inicio.In(time.UTC)
		f.Inicio = &val
	}
	if f.Fim != nil {
		val := f.Fim.In(time.UTC)
		f.Fim = &val
	}

	logs, totalCount, err := s.repo.GetFiltered(ctx, f)
	if err != nil {
		return nil, 0, core.WrapErrorf(err, "falha ao buscar logs de auditoria do repositório")
	}
	return logs, totalCount, nil
}
