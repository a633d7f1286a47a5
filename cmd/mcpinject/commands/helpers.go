package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	cerrors "github.com/cockroachdb/errors"

	"github.com/shesha-tools/mcpinject/internal/audit"
	"github.com/shesha-tools/mcpinject/internal/backup"
	"github.com/shesha-tools/mcpinject/internal/clients"
	"github.com/shesha-tools/mcpinject/internal/config"
	"github.com/shesha-tools/mcpinject/internal/errors"
	"github.com/shesha-tools/mcpinject/internal/injector"
)

// resolveTargetPath turns the --client/--config flag pair into the config
// file to operate on. Exactly one of the two must be set.
func resolveTargetPath(clientFlag, configFlag string) (string, error) {
	switch {
	case clientFlag != "" && configFlag != "":
		return "", errors.NewUserError(
			cerrors.New("conflicting flags"),
			"use either --client or --config, not both")
	case clientFlag != "":
		path, err := clients.ConfigPath(clientFlag)
		if err != nil {
			return "", errors.NewUserError(err,
				fmt.Sprintf("known clients: %s", strings.Join(clients.Names(), ", ")))
		}
		return path, nil
	case configFlag != "":
		return expandPath(configFlag), nil
	default:
		return "", errors.NewUserError(
			cerrors.New("no target specified"),
			"pass --client <name> or --config <path>")
	}
}

// expandPath expands a leading ~ and makes the path absolute.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// newInjector builds an Injector for path from the loaded configuration.
func newInjector(path string, logger *slog.Logger) (*injector.Injector, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = &config.Config{Retries: config.DefaultRetries}
	}

	opts := []injector.Option{
		injector.WithLogger(logger),
		injector.WithRetries(cfg.Retries),
		injector.WithBackupManager(backup.NewManager(
			backup.WithTimestamps(cfg.Backup.Timestamped))),
	}

	if cfg.SchemaPath != "" {
		validator, err := audit.NewSchemaValidator(cfg.SchemaPath)
		if err != nil {
			return nil, errors.NewUserError(err,
				"check schema_path in the config file")
		}
		opts = append(opts, injector.WithAuditor(validator))
	}

	return injector.New(path, opts...), nil
}

// backupManager builds a standalone Manager for the backup subcommands.
func backupManager() *backup.Manager {
	timestamped := false
	if appConfig != nil {
		timestamped = appConfig.Backup.Timestamped
	}
	return backup.NewManager(backup.WithTimestamps(timestamped))
}

// parseKeyValueSlice parses repeated KEY=VALUE flag values into a map.
func parseKeyValueSlice(pairs []string, flagName string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.NewUserError(
				cerrors.Newf("invalid --%s value %q", flagName, pair),
				fmt.Sprintf("use --%s KEY=VALUE", flagName))
		}
		out[key] = value
	}
	return out, nil
}

// syncRegistry records path in the shared registry when it belongs to a
// known client. Registry failures never fail the operation that triggered
// the sync.
func syncRegistry(logger *slog.Logger, path string) {
	client, ok := clients.Identify(path)
	if !ok {
		return
	}
	if err := clients.Sync(client, path); err != nil {
		logger.Warn("registry sync failed",
			slog.String("client", client),
			slog.Any("error", err))
		return
	}
	logger.Debug("registry updated",
		slog.String("client", client),
		slog.String("path", path))
}

// hardenExecutable makes a server command file executable when it is
// referenced by path and lacks the execute bit. Best effort: commands
// resolved via PATH (npx, uvx, ...) are left alone.
func hardenExecutable(logger *slog.Logger, command string) {
	if !strings.ContainsRune(command, os.PathSeparator) {
		return
	}
	path := expandPath(command)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	if info.Mode()&0o111 != 0 {
		return
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		logger.Warn("could not make command executable",
			slog.String("path", path),
			slog.Any("error", err))
		return
	}
	logger.Info("made command executable", slog.String("path", path))
}
