package core

import (
	"fmt"
	"log" // Usado para logs iniciais antes que o logger da aplicação esteja configurado
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// ToleranciaValorPadrao é a diferença absoluta (em reais) abaixo da qual dois totais são considerados iguais.
const ToleranciaValorPadrao = "0.01"

// Config struct para armazenar todas as configurações da aplicação
type Config struct {
	AppName    string
	AppVersion string
	AppDebug   bool

	// HTTP
	HTTPAddr            string
	HTTPShutdownTimeout time.Duration
	CookieSecure        bool

	// Database
	DBEngine   string
	DBName     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string

	// Logging
	LogDir         string
	LogLevel       string
	LogMaxBytes    int
	LogBackupCount int
	LogToConsole   bool

	// Sessão do navegador (resultado da conciliação + estado de visualização)
	SessionTimeout         time.Duration
	SessionCleanupInterval time.Duration
	SessionCleanupEnabled  bool

	// Export
	ExportDir string

	// Serviço externo de conciliação
	ConciliadorURL     string
	ConciliadorTimeout time.Duration

	// Regras de apresentação
	ToleranciaValor decimal.Decimal

	// Observabilidade
	MetricsEnabled bool
	LogRequests    bool
}

// LoadConfig carrega as configurações do arquivo .env especificado ou encontrado na árvore de diretórios.
func LoadConfig(envPath string) (*Config, error) {
	foundEnvPath, err := findEnvFile(envPath)
	if err != nil {
		log.Printf("Aviso: Arquivo .env em '%s' não encontrado ou inacessível: %v. Usando variáveis de ambiente existentes ou defaults.", envPath, err)
	} else {
		log.Printf("Carregando configurações de: %s", foundEnvPath)
		if err := godotenv.Load(foundEnvPath); err != nil {
			log.Printf("Aviso: Erro ao carregar arquivo .env de '%s': %v. Usando valores padrão ou variáveis de ambiente existentes.", foundEnvPath, err)
		}
	}

	cfg := &Config{}

	cfg.AppName = getEnv("APP_NAME", "Conciliacao DE-PARA")
	cfg.AppVersion = getEnv("APP_VERSION", "1.0.0-go")
	cfg.AppDebug = getEnvAsBool("APP_DEBUG", false)

	cfg.HTTPAddr = getEnv("APP_HTTP_ADDR", ":8080")
	cfg.HTTPShutdownTimeout = getEnvAsDuration("APP_HTTP_SHUTDOWN_TIMEOUT", 15)
	cfg.CookieSecure = getEnvAsBool("APP_COOKIE_SECURE", false)

	cfg.DBEngine = getEnv("APP_DB_ENGINE", "sqlite")
	cfg.DBName = getEnv("APP_DB_NAME", "conciliacao_go.db")
	cfg.DBHost = getEnv("APP_DB_HOST", "localhost")
	cfg.DBPort = getEnvAsInt("APP_DB_PORT", 5432)
	cfg.DBUser = getEnv("APP_DB_USER", "user")
	cfg.DBPassword = getEnv("APP_DB_PASSWORD", "password")

	cfg.LogDir = getEnv("APP_LOG_DIR", "./app_logs")
	cfg.LogLevel = strings.ToUpper(getEnv("APP_LOG_LEVEL", "INFO"))
	cfg.LogMaxBytes = getEnvAsInt("APP_LOG_MAX_BYTES", 5*1024*1024) // 5MB
	cfg.LogBackupCount = getEnvAsInt("APP_LOG_BACKUP_COUNT", 7)
	cfg.LogToConsole = getEnvAsBool("APP_LOG_TO_CONSOLE", true)

	cfg.SessionTimeout = getEnvAsDuration("APP_SESSION_TIMEOUT", 8*3600)              // 8 horas
	cfg.SessionCleanupInterval = getEnvAsDuration("APP_SESSION_CLEANUP_INTERVAL", 600) // 10 minutos
	cfg.SessionCleanupEnabled = getEnvAsBool("APP_SESSION_CLEANUP_ENABLED", true)

	cfg.ExportDir = getEnv("APP_EXPORT_DIR", "./app_exports")

	cfg.ConciliadorURL = strings.TrimRight(getEnv("APP_CONCILIADOR_URL", "http://localhost:8000"), "/")
	cfg.ConciliadorTimeout = getEnvAsDuration("APP_CONCILIADOR_TIMEOUT", 120)

	cfg.MetricsEnabled = getEnvAsBool("APP_METRICS_ENABLED", true)
	cfg.LogRequests = getEnvAsBool("APP_LOG_REQUESTS", cfg.AppDebug)

	tolerancia, err := decimal.NewFromString(getEnv("APP_TOLERANCIA_VALOR", ToleranciaValorPadrao))
	if err != nil {
		return nil, WrapErrorf(ErrConfiguration, "APP_TOLERANCIA_VALOR inválida: %v", err)
	}
	if tolerancia.IsNegative() {
		return nil, WrapErrorf(ErrConfiguration, "APP_TOLERANCIA_VALOR não pode ser negativa (%s)", tolerancia)
	}
	cfg.ToleranciaValor = tolerancia

	// Validações de Configurações Críticas
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Garantir que diretórios essenciais existam
	if err := ensureDir(cfg.LogDir, true); err != nil {
		return nil, fmt.Errorf("falha ao criar diretório de log essencial '%s': %w", cfg.LogDir, err)
	}
	if cfg.DBEngine == "sqlite" {
		sqliteDir := filepath.Dir(cfg.DBName)
		if sqliteDir != "." && sqliteDir != string(filepath.Separator) {
			if err := ensureDir(sqliteDir, true); err != nil {
				return nil, fmt.Errorf("falha ao criar diretório para banco de dados SQLite '%s': %w", sqliteDir, err)
			}
		}
	}
	_ = ensureDir(cfg.ExportDir, false)

	log.Println("Configurações carregadas e validadas.")
	return cfg, nil
}

// Validate verifica as combinações de configuração que impedem a aplicação de subir.
func (c *Config) Validate() error {
	switch c.DBEngine {
	case "sqlite", "postgresql":
	default:
		return WrapErrorf(ErrConfiguration, "APP_DB_ENGINE não suportado: %q", c.DBEngine)
	}
	u, err := url.Parse(c.ConciliadorURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return WrapErrorf(ErrConfiguration, "APP_CONCILIADOR_URL inválida: %q", c.ConciliadorURL)
	}
	if c.SessionTimeout <= 0 {
		return WrapErrorf(ErrConfiguration, "APP_SESSION_TIMEOUT deve ser positivo")
	}
	if c.SessionCleanupEnabled && c.SessionCleanupInterval <= 0 {
		return WrapErrorf(ErrConfiguration, "APP_SESSION_CLEANUP_INTERVAL deve ser positivo quando a limpeza está habilitada")
	}
	return nil
}

// findEnvFile tenta localizar o arquivo .env.
// Primeiro no path fornecido, depois subindo na árvore de diretórios a partir do CWD.
func findEnvFile(envPath string) (string, error) {
	if _, err := os.Stat(envPath); err == nil {
		absPath, _ := filepath.Abs(envPath)
		return absPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("não foi possível obter o diretório de trabalho atual: %w", err)
	}

	for i := 0; i < 5; i++ {
		tryPath := filepath.Join(cwd, ".env")
		if _, err := os.Stat(tryPath); err == nil {
			return tryPath, nil
		}
		parent := filepath.Dir(cwd)
		if parent == cwd { // Chegou à raiz
			break
		}
		cwd = parent
	}
	return "", fmt.Errorf("arquivo .env não encontrado no caminho '%s' ou nos diretórios pais", envPath)
}

// ensureDir garante que um diretório exista, criando-o se necessário.
// Se 'critical' for true, retorna erro em caso de falha. Caso contrário, apenas loga um aviso.
func ensureDir(dirPath string, critical bool) error {
	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		msg := fmt.Sprintf("Não foi possível resolver o caminho absoluto para '%s': %v", dirPath, err)
		if critical {
			log.Println("ERRO CRÍTICO:", msg)
			return NewAppError(msg)
		}
		log.Println("AVISO:", msg)
		return nil
	}

	if err := os.MkdirAll(absPath, os.ModePerm); err != nil {
		msg := fmt.Sprintf("Não foi possível criar o diretório '%s': %v", absPath, err)
		if critical {
			log.Println("ERRO CRÍTICO:", msg)
			return NewAppError(msg)
		}
		log.Println("AVISO:", msg)
	}
	return nil
}

// getEnv recupera o valor de uma variável de ambiente ou retorna um fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration recupera uma variável de ambiente como time.Duration em segundos, ou retorna um fallback.
func getEnvAsDuration(key string, fallbackSeconds int) time.Duration {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallbackSeconds) * time.Second
}
