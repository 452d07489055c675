package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Ações registradas na trilha de auditoria.
const (
	AcaoConciliacaoRecebida = "CONCILIACAO_RECEBIDA"
	AcaoConciliacaoFalhou   = "CONCILIACAO_FALHOU"
	AcaoExportacaoXLSX      = "EXPORTACAO_XLSX"
	AcaoExportacaoPDF       = "EXPORTACAO_PDF"
	AcaoNovaConciliacao     = "NOVA_CONCILIACAO"
)

// JSONMetadata é um tipo customizado para lidar com o campo metadata que é um JSON no banco.
// Ele implementa as interfaces sql.Scanner e driver.Valuer.
type JSONMetadata map[string]interface{}

// Value converte JSONMetadata para uma string JSON para ser salva no banco.
func (jm JSONMetadata) Value() (driver.Value, error) {
	if jm == nil {
		return nil, nil
	}
	b, err := json.Marshal(jm)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converte uma string JSON do banco para JSONMetadata.
func (jm *JSONMetadata) Scan(value interface{}) error {
	if value == nil {
		*jm = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("tipo de valor inválido para JSONMetadata scan, esperado []byte ou string")
	}
	if len(b) == 0 {
		*jm = make(JSONMetadata)
		return nil
	}
	return json.Unmarshal(b, jm)
}

// AuditLogEntry representa uma entrada de log de auditoria no banco de dados.
type AuditLogEntry struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Timestamp   time.Time `gorm:"not null;index"`
	Action      string    `gorm:"type:varchar(100);not null;index"`
	Description string    `gorm:"type:text;not null"`
	Severity    string    `gorm:"type:varchar(10);not null;index"` // DEBUG, INFO, WARNING, ERROR, CRITICAL
	// SessaoRef é o hash curto da sessão do navegador; o identificador bruto nunca é gravado.
	SessaoRef string  `gorm:"type:varchar(64);index"`
	IPAddress *string `gorm:"type:varchar(45)"`

	Metadata JSONMetadata `gorm:"type:text"`
}

// TableName especifica o nome da tabela para GORM.
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// ValidSeverities define os níveis de severidade válidos.
var ValidSeverities = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}
