package data

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	appLogger "github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core/logger"
	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/data/models"
)

// InitializeDB configura e estabelece a conexão com o banco de dados
// e executa migrações automáticas.
func InitializeDB(cfg *core.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	appLogger.Infof("Inicializando conexão com banco de dados: %s", cfg.DBEngine)

	switch cfg.DBEngine {
	case "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		dialector = postgres.Open(dsn)
		appLogger.Infof("Conectando ao PostgreSQL: host=%s dbname=%s user=%s port=%d", cfg.DBHost, cfg.DBName, cfg.DBUser, cfg.DBPort)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBName + "?_foreign_keys=on")
		appLogger.Infof("Usando banco de dados SQLite: %s", cfg.DBName)
	default:
		return nil, core.WrapErrorf(core.ErrConfiguration, "motor de banco de dados não suportado: %s", cfg.DBEngine)
	}

	db, err := gorm.Open(dialector, GormConfig(cfg.AppDebug))
	if err != nil {
		appLogger.Errorf("Falha ao conectar ao banco de dados %s: %v", cfg.DBEngine, err)
		return nil, core.NewDatabaseErrorDetail(fmt.Sprintf("abrindo conexão com %s", cfg.DBEngine), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Falha ao obter instância *sql.DB do GORM: %v", err)
		return nil, fmt.Errorf("falha ao configurar pool de conexões: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	appLogger.Info("Conexão com banco de dados estabelecida.")

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// GormConfig monta a configuração do GORM com o logger da aplicação.
func GormConfig(debug bool) *gorm.Config {
	gormLogLevel := gormlogger.Silent
	if debug {
		gormLogLevel = gormlogger.Info // Loga todas as queries SQL em modo debug
	}
	return &gorm.Config{
		Logger: gormlogger.New(
			appLogger.WithFields(logrus.Fields{"component": "gorm"}),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormLogLevel,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate cria/ajusta as tabelas dos modelos persistidos.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("instância de banco de dados é nil, não é possível criar tabelas")
	}
	appLogger.Info("Executando migrações automáticas do GORM...")
	if err := db.AutoMigrate(
		&models.DBResultadoSessao{},
		&models.AuditLogEntry{},
	); err != nil {
		appLogger.Errorf("Falha durante AutoMigrate: %v", err)
		return fmt.Errorf("falha na migração do esquema do banco de dados: %w", err)
	}
	appLogger.Info("Migrações automáticas do GORM concluídas.")
	return nil
}

// CloseDB fecha a conexão com o banco de dados.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		appLogger.Warn("Tentativa de fechar conexão DB nula.")
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Errorf("Erro ao obter *sql.DB para fechar: %v", err)
		return err
	}
	appLogger.Info("Fechando conexão com o banco de dados...")
	return sqlDB.Close()
}
