package kv

import (
	"github.com/ValentinKolb/seglog/cmd/util"
	"github.com/ValentinKolb/seglog/lib/common"
	"github.com/ValentinKolb/seglog/lib/store"
	"github.com/ValentinKolb/seglog/lib/store/lstore"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	log = logger.GetLogger("cli")

	localStore   store.IStore
	engineConfig common.EngineConfig
	logRegistry  *util.LogRegistry

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value operations on a local store",
		Long:               "Perform key-value operations on a local in-memory store. The store only lives as long as the command, so every command starts with an empty log.",
		PersistentPreRunE:  setupLocalStore,
		PersistentPostRunE: closeLocalStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add engine flags to the KV command
	util.SetupEngineFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(execCmd)
	KeyValueCommands.AddCommand(encodeCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupLocalStore validates the engine configuration and starts the local store
func setupLocalStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	engineConfig = util.GetEngineConfig()
	if err := engineConfig.Validate(); err != nil {
		return err
	}
	common.InitLoggers(engineConfig)

	// encode does not execute anything
	if cmd == encodeCmd {
		return nil
	}

	logRegistry = &util.LogRegistry{}
	localStore = lstore.NewLocalStore(engineConfig, logRegistry.Factory(engineConfig))
	return nil
}

// closeLocalStore stops all cores of the local store
func closeLocalStore(_ *cobra.Command, _ []string) error {
	if localStore == nil {
		return nil
	}
	err := localStore.Close()
	localStore = nil
	return err
}
