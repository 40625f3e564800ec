package main

import (
	"fmt"
	"os"
	"time"

	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/config/file"
	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/relay"
	"github.com/meridian-labs/kickoff-cli/internal/adapters/driven/storage/sqlite"
	"github.com/meridian-labs/kickoff-cli/internal/adapters/driving/cli"
	"github.com/meridian-labs/kickoff-cli/internal/core/ports/driven"
	"github.com/meridian-labs/kickoff-cli/internal/core/services"
	"github.com/meridian-labs/kickoff-cli/internal/platforms/docstore"
	"github.com/meridian-labs/kickoff-cli/internal/platforms/recordstore"
	"github.com/meridian-labs/kickoff-cli/internal/platforms/taskboard"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore(os.Getenv("KICKOFF_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("initializing config store: %w", err)
	}

	store, err := sqlite.NewStore(os.Getenv("KICKOFF_DATA_DIR"))
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close() //nolint:errcheck

	tokenRelay := relay.NewRelay(relay.LoadProviderConfigs(configStore))
	refreshMargin := time.Duration(configStore.GetInt("tokens.refresh_margin_seconds")) * time.Second
	tokenService := services.NewTokenService(tokenRelay, store.TokenStore(), refreshMargin)

	recordClient := recordstore.NewClient(configStore.GetString("record_store.base_url"), tokenService)
	boardClient := taskboard.NewClient(configStore.GetString("task_board.base_url"), tokenService)
	docClient := docstore.NewClient(configStore.GetString("doc_store.base_url"), tokenService)

	checker := services.NewCheckerService(
		services.NewRecordStoreProbe(recordClient),
		services.NewTaskBoardProbe(boardClient),
		services.NewDocStoreProbe(docClient),
	)

	policy := services.NewPolicyService(configStore)

	provisionService := services.NewProvisionService(
		driven.PlatformClients{
			RecordStore: recordClient,
			TaskBoard:   boardClient,
			DocStore:    docClient,
		},
		recordClient,
		policy,
		configStore,
		store.RunStore(),
	)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		TokenManager:      tokenService,
		DuplicateChecker:  checker,
		ResolutionService: policy,
		Provisioner:       provisionService,
		RunStore:          store.RunStore(),
		ConfigStore:       configStore,
		TokenRelay:        tokenRelay,
	})

	return cli.Execute()
}
