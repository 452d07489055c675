package logger // Nome do pacote 'logger' para evitar conflito com var 'logger'

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Dukorsa/APP_CONCILIACAO_GO/internal/core"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log   *logrus.Logger // Variável global para o logger
	logMu sync.RWMutex
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00" // ISO8601 com milissegundos

// SetupLogger inicializa o logger global da aplicação.
// Deve ser chamado uma vez no início.
func SetupLogger(cfg *core.Config) error {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		fmt.Fprintf(os.Stderr, "Nível de log inválido '%s', usando INFO: %v\n", cfg.LogLevel, err)
	}
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})

	logFilePath := filepath.Join(cfg.LogDir, strings.ToLower(strings.ReplaceAll(cfg.AppName, " ", "_"))+".log")

	logDirAbs, _ := filepath.Abs(cfg.LogDir)
	if err := os.MkdirAll(logDirAbs, os.ModePerm); err != nil {
		fmt.Fprintf(os.Stderr, "Falha ao criar diretório de log '%s': %v. Logs de arquivo podem não funcionar.\n", logDirAbs, err)
	}

	maxSizeMB := cfg.LogMaxBytes / (1024 * 1024)
	if maxSizeMB < 1 {
		maxSizeMB = 1
	}
	fileLogger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxSizeMB,
		MaxBackups: cfg.LogBackupCount,
		MaxAge:     28, // dias
		Compress:   true,
	}

	writers := []io.Writer{fileLogger}
	if cfg.LogToConsole {
		writers = append(writers, os.Stderr)
	}
	l.SetOutput(io.MultiWriter(writers...))

	setLogger(l)
	l.Infof("Logger configurado. Nível: %s. Arquivo: %s", level.String(), logFilePath)
	return nil
}

// SetupLoggerWriter configura o logger global para escrever em w. Usado em testes e ferramentas.
func SetupLoggerWriter(w io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timestampFormat})
	l.SetOutput(w)
	setLogger(l)
	return l
}

func setLogger(l *logrus.Logger) {
	logMu.Lock()
	log = l
	logMu.Unlock()
}

func current() *logrus.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// Funções de logging exportadas (Debug, Info, Warn, Error, Fatal)
func Debug(args ...interface{}) {
	if l := current(); l != nil {
		l.Debug(args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func Info(args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Println("Logger não inicializado:", fmt.Sprint(args...))
		return
	}
	l.Info(args...)
}

func Infof(format string, args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Printf("Logger não inicializado: "+format+"\n", args...)
		return
	}
	l.Infof(format, args...)
}

func Warn(args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Println("Logger não inicializado:", fmt.Sprint(args...))
		return
	}
	l.Warn(args...)
}

func Warnf(format string, args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Printf("Logger não inicializado: "+format+"\n", args...)
		return
	}
	l.Warnf(format, args...)
}

func Error(args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Println("Logger não inicializado:", fmt.Sprint(args...))
		return
	}
	l.Error(args...)
}

func Errorf(format string, args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Printf("Logger não inicializado: "+format+"\n", args...)
		return
	}
	l.Errorf(format, args...)
}

func Fatal(args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Println("Logger não inicializado:", fmt.Sprint(args...))
		os.Exit(1)
	}
	l.Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	l := current()
	if l == nil {
		fmt.Printf("Logger não inicializado: "+format+"\n", args...)
		os.Exit(1)
	}
	l.Fatalf(format, args...)
}

// WithFields retorna uma entry com campos estruturados. Sem logger configurado, a saída é descartada.
func WithFields(fields logrus.Fields) *logrus.Entry {
	l := current()
	if l == nil {
		dummyLogger := logrus.New()
		dummyLogger.SetOutput(io.Discard)
		return dummyLogger.WithFields(fields)
	}
	return l.WithFields(fields)
}

// ShortID encurta identificadores de sessão para os logs.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
