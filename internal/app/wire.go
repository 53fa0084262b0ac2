package app

import (
	"fmt"
	"net/http"

	"github.com/FME849/wsos23-voting-app/internal/domain"
	"github.com/FME849/wsos23-voting-app/internal/rpc"
	electionsvc "github.com/FME849/wsos23-voting-app/internal/services/election"
	walletsvc "github.com/FME849/wsos23-voting-app/internal/services/wallet"
	"github.com/FME849/wsos23-voting-app/internal/store"
)

// Wire bundles the stores, services and clients for the CLI.
type Wire struct {
	Config   Config
	Keypairs domain.KeypairStore
	Wallet   domain.WalletService
	Cluster  domain.ClusterClient
	HTTP     *http.Client
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if cfg.ClusterURL == "" {
		return nil, fmt.Errorf("no cluster configured (set %s or --cluster)", EnvProviderURL)
	}

	// Ensure an HTTP client is available for outbound calls
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := rpc.NewHTTP(cfg.ClusterURL, httpClient)

	keypairs := store.NewKeypairFileStore(cfg.WalletPath)
	return &Wire{
		Config:   cfg,
		Keypairs: keypairs,
		Wallet:   walletsvc.New(keypairs),
		Cluster:  client,
		HTTP:     httpClient,
	}, nil
}

// Program returns a handle for the named workspace program, signing with the
// configured wallet.
func (w *Wire) Program(name string) (domain.ElectionService, error) {
	id, err := w.Config.ProgramID(name)
	if err != nil {
		return nil, err
	}
	payer, err := w.Wallet.LoadKeypair(w.Config.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("load wallet %s: %w", w.Config.WalletPath, err)
	}
	return electionsvc.New(w.Cluster, id, payer, electionsvc.WithLogger(w.Config.Logger)), nil
}
