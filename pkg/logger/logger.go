// Package logger configura el logging estructurado del punto de venta.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger envuelve zerolog para inyectarse en los componentes del API.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger del proceso. En development escribe consola legible con
// hora corta; en cualquier otro entorno, una línea JSON por evento. Un nivel
// vacío o desconocido cae a info.
func New(env, level string) *Logger {
	var w io.Writer = os.Stdout
	if env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()

	// Librerías que escriben al logger global de zerolog salen por aquí mismo.
	log.Logger = zl

	return &Logger{zl: zl}
}

// Component devuelve un sublogger etiquetado, para distinguir los eventos de
// arranque, HTTP y mantenimiento en la misma salida.
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }
