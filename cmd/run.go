package cmd

import (
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/thistlemesh/thistle/core"
	"github.com/thistlemesh/thistle/state"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the thistle publisher daemon",
	Long:  `Runs the publisher on the current host and publishes the advertisements declared in the node config.`,
	Run: func(cmd *cobra.Command, args []string) {
		var nodeCfg state.LocalCfg
		file, err := os.ReadFile(nodeConfigPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &nodeCfg)
		if err != nil {
			panic(err)
		}

		err = state.LocalConfigValidator(&nodeCfg)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(nodeCfg, level, core.NewLocalDataset(), nil)
		if err != nil {
			panic(err)
		}
	},
	GroupID: "th",
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
}
