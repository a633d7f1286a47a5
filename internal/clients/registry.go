package clients

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"

	"github.com/shesha-tools/mcpinject/pkg/fileutil"
)

// RegistryKey is the top-level key in the suite-wide registry under which
// per-client config paths are recorded.
const RegistryKey = "ide_config_paths"

// RegistryPath returns the location of the suite-wide registry file.
func RegistryPath() string {
	return filepath.Join(xdg.Home, ".mcp-tools", "config.json")
}

// Sync records a client's config path in the suite-wide registry.
// Best-effort from the caller's perspective: it runs only after an operation
// reached Done and its failure never changes the operation's outcome.
func Sync(client, configPath string) error {
	return SyncTo(RegistryPath(), client, configPath)
}

// SyncTo is Sync against an explicit registry file.
func SyncTo(registryPath, client, configPath string) error {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", configPath)
	}

	// Preserve everything else in the registry file verbatim.
	full := make(map[string]json.RawMessage)
	data, err := os.ReadFile(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, "reading registry %s", registryPath)
		}
	} else if err := json.Unmarshal(data, &full); err != nil {
		return errors.Wrapf(err, "parsing registry %s", registryPath)
	}

	paths := make(map[string]string)
	if raw, ok := full[RegistryKey]; ok {
		if err := json.Unmarshal(raw, &paths); err != nil {
			return errors.Wrapf(err, "parsing %s in registry", RegistryKey)
		}
	}
	paths[client] = abs

	rendered, err := json.Marshal(paths)
	if err != nil {
		return errors.Wrap(err, "marshaling registry paths")
	}
	full[RegistryKey] = rendered

	if err := os.MkdirAll(filepath.Dir(registryPath), 0o755); err != nil {
		return errors.Wrap(err, "creating registry directory")
	}
	return errors.Wrap(fileutil.AtomicWriteJSON(registryPath, full), "writing registry")
}
