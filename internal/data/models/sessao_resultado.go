package models

import "time"

// DBResultadoSessao guarda o envelope de conciliação de uma sessão do navegador.
// Existe no máximo um registro por (sessão, chave); uma nova conciliação substitui o anterior.
type DBResultadoSessao struct {
	SessaoHash string    `gorm:"primaryKey;type:varchar(64)"`
	Chave      string    `gorm:"primaryKey;type:varchar(64)"`
	Payload    []byte    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null;index"`
}

// TableName especifica o nome da tabela para GORM.
func (DBResultadoSessao) TableName() string {
	return "resultados_sessao"
}
