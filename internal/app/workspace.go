package app

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/FME849/wsos23-voting-app/internal/program"
)

// Workspace is the project file naming the cluster, the wallet and the
// deployed programs.
//
//	provider:
//	  cluster: localnet
//	  wallet: ~/.config/solana/id.json
//	programs:
//	  wsos23_voting_app: DAExTRo6cEotQAgtREjCrS6R2tL54VfgBWsP7xozMiht
type Workspace struct {
	Provider struct {
		Cluster string `yaml:"cluster"`
		Wallet  string `yaml:"wallet"`
	} `yaml:"provider"`
	Programs map[string]string `yaml:"programs"`
}

// LoadWorkspace parses the workspace file at path.
func LoadWorkspace(path string) (Workspace, error) {
	var ws Workspace
	b, err := os.ReadFile(path)
	if err != nil {
		return ws, fmt.Errorf("read workspace: %w", err)
	}
	if err := yaml.Unmarshal(b, &ws); err != nil {
		return ws, fmt.Errorf("parse workspace %s: %w", path, err)
	}
	return ws, nil
}

var clusterURLs = map[string]string{
	"localnet":     "http://127.0.0.1:8899",
	"localhost":    "http://127.0.0.1:8899",
	"devnet":       "https://api.devnet.solana.com",
	"testnet":      "https://api.testnet.solana.com",
	"mainnet":      "https://api.mainnet-beta.solana.com",
	"mainnet-beta": "https://api.mainnet-beta.solana.com",
}

// ResolveCluster maps a cluster moniker to its URL; URLs pass through.
func ResolveCluster(v string) string {
	if u, ok := clusterURLs[strings.ToLower(strings.TrimSpace(v))]; ok {
		return u
	}
	return v
}

// NormalizeProgramName maps the snake, camel and kebab spellings of a
// program name to one snake_case key.
func NormalizeProgramName(name string) string {
	var b strings.Builder
	runes := []rune(strings.TrimSpace(name))
	for i, r := range runes {
		switch {
		case r == '-' || r == ' ':
			b.WriteRune('_')
		case unicode.IsUpper(r):
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ProgramID resolves name, a workspace program name or a base58 address.
// The voting program resolves to its default address when the workspace
// does not list it.
func (c Config) ProgramID(name string) (solana.PublicKey, error) {
	if name == "" {
		name = program.WorkspaceName
	}
	if pk, err := solana.PublicKeyFromBase58(name); err == nil {
		return pk, nil
	}
	key := NormalizeProgramName(name)
	for n, id := range c.programs {
		if NormalizeProgramName(n) != key {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(id)
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("workspace program %s: %w", n, err)
		}
		return pk, nil
	}
	if key == program.WorkspaceName {
		return program.ProgramID, nil
	}
	return solana.PublicKey{}, fmt.Errorf("program %q not found in workspace", name)
}
