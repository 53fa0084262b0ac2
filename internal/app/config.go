package app

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables read by Load.
const (
	EnvProviderURL = "ANCHOR_PROVIDER_URL"
	EnvWallet      = "ANCHOR_WALLET"
	EnvPassphrase  = "VOTING_PASSPHRASE"
	EnvWorkspace   = "VOTING_WORKSPACE"
)

// DefaultWorkspaceFile is looked up in the working directory when no
// workspace path is given.
const DefaultWorkspaceFile = "Voting.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Workspace  string        // workspace file path; empty when none was found
	ClusterURL string        // JSON-RPC endpoint, e.g. http://127.0.0.1:8899
	WalletPath string        // keypair file, e.g. ~/.config/solana/id.json
	Passphrase string        // empty for a plain solana-keygen keypair file
	Program    string        // program name or base58 address; empty means the default program
	Timeout    time.Duration // per-command deadline
	HTTP       *http.Client  // optional; defaults to http.DefaultClient
	Logger     zerolog.Logger

	programs map[string]string
}

// Overrides carries command-line values; empty fields do not override.
type Overrides struct {
	Workspace  string
	Cluster    string
	Wallet     string
	Passphrase string
	Program    string
}

// Load resolves the configuration. Later layers win: defaults, workspace
// file, .env, environment, then overrides.
func Load(o Overrides) (Config, error) {
	cfg := Config{
		ClusterURL: clusterURLs["localnet"],
		WalletPath: filepath.Join("~", ".config", "solana", "id.json"),
		Timeout:    60 * time.Second,
		Logger:     zerolog.Nop(),
	}

	wsPath := firstNonEmpty(o.Workspace, os.Getenv(EnvWorkspace))
	if wsPath == "" {
		if _, err := os.Stat(DefaultWorkspaceFile); err == nil {
			wsPath = DefaultWorkspaceFile
		}
	}
	if wsPath != "" {
		ws, err := LoadWorkspace(wsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Workspace = wsPath
		cfg.programs = ws.Programs
		if ws.Provider.Cluster != "" {
			cfg.ClusterURL = ResolveCluster(ws.Provider.Cluster)
		}
		if ws.Provider.Wallet != "" {
			cfg.WalletPath = ws.Provider.Wallet
		}
		if err := loadDotEnv(filepath.Join(filepath.Dir(wsPath), ".env")); err != nil {
			return Config{}, err
		}
	}
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(EnvProviderURL); v != "" {
		cfg.ClusterURL = ResolveCluster(v)
	}
	if v := os.Getenv(EnvWallet); v != "" {
		cfg.WalletPath = v
	}
	cfg.Passphrase = os.Getenv(EnvPassphrase)

	if o.Cluster != "" {
		cfg.ClusterURL = ResolveCluster(o.Cluster)
	}
	if o.Wallet != "" {
		cfg.WalletPath = o.Wallet
	}
	if o.Passphrase != "" {
		cfg.Passphrase = o.Passphrase
	}
	cfg.Program = o.Program

	cfg.WalletPath = expandHome(cfg.WalletPath)
	return cfg, nil
}

// loadDotEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
