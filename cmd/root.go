package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var nodeConfigPath = "thistle.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "thistle",
	Short: "Thistle Border Router Publisher CLI",
	Long: `Thistle manages which of this border router's prefixes, routes and DNS/SRP
service end up in the mesh-wide network data, holding back entries that enough
other routers already advertise.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "init",
		Title: "Initialize Thistle",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "th",
		Title: "Thistle Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&nodeConfigPath, "node-config", "n", nodeConfigPath, "node-specific config")
}
