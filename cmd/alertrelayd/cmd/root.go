package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cosmossdk.io/log"
)

// NewRootCmd creates the alertrelayd root command, mirroring evmd's
// NewRootCmd shape: a bare root with persistent flags, one command per
// subsystem attached afterward.
func NewRootCmd() *cobra.Command {
	v := viper.GetViper()

	rootCmd := &cobra.Command{
		Use:   "alertrelayd",
		Short: "multi-chain alert relay service",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().String("log-level", "info", "logging level (debug|info|warn|error)")
	_ = v.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(NewRunCmd(v))
	return rootCmd
}

// loggerFromFlags builds the process logger. log-level is read but not yet
// translated into a filter option; every component logs through this one
// instance via .With("module", ...).
func loggerFromFlags(_ *viper.Viper) log.Logger {
	return log.NewLogger(os.Stderr)
}
