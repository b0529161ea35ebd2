package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggingPrepare_File(t *testing.T) {
	defer debug.SetCrashOutput(nil, debug.CrashOptions{})

	dest := filepath.Join(t.TempDir(), "cardx.log")
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: dest, Mode: "overwrite"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	log.Debug("hidden")
	log.Info("Fields selected for extraction", zap.Strings("fields", []string{"Personality"}))
	_ = log.Sync()

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "Fields selected for extraction") || strings.Contains(string(data), "hidden") {
		t.Errorf("log content = %q", data)
	}
}

func TestLoggingPrepare_Report(t *testing.T) {
	defer debug.SetCrashOutput(nil, debug.CrashOptions{})

	dir := t.TempDir()
	rpt, err := (&ReporterConfig{Destination: filepath.Join(dir, "report.zip")}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "cardx.log")},
	}
	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	// report forces debug file log
	log.Debug("debug line")
	_ = log.Sync()
	if err := rpt.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	files := readReport(t, filepath.Join(dir, "report.zip"))
	if !strings.Contains(files["final.log"], "debug line") {
		t.Errorf("final.log = %q", files["final.log"])
	}
}

func TestLoggingPrepare_Disabled(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("disabled logger accepts errors")
	}
}

func TestConsoleEncoder_ShortErrors(t *testing.T) {
	enc := newEncoder(zap.NewDevelopmentEncoderConfig())
	err := multierr.Combine(errors.New("first"), errors.New("second"))

	buf, e := enc.EncodeEntry(zapcore.Entry{Message: "failed"}, []zapcore.Field{zap.Error(err)})
	if e != nil {
		t.Fatalf("EncodeEntry() error = %v", e)
	}
	if strings.Contains(buf.String(), "errorVerbose") {
		t.Errorf("console output is verbose: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "first; second") {
		t.Errorf("console output = %s", buf.String())
	}
}
