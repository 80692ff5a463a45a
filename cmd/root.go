package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/seglog/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "seglog",
		Short: "segmented in-memory key-value log",
		Long: fmt.Sprintf(`seglog (v%s)

An in-memory, append-only key-value log written in Go. Records are appended
to fixed-size segments and every key is pinned to one core that owns its log.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of seglog",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("seglog v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
