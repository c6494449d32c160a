package cmd

import (
	"fmt"
	"net/netip"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/thistlemesh/thistle/state"
)

// initCmd writes a starter node config with a fresh identity key and a sample
// publication set.
var initCmd = &cobra.Command{
	Use:   "init <router-id>",
	Short: "Write a starter node config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := state.RouterId(args[0])
		if err := state.NameValidator(string(id)); err != nil {
			return err
		}
		if _, err := os.Stat(nodeConfigPath); err == nil {
			return fmt.Errorf("%s already exists, refusing to overwrite", nodeConfigPath)
		}

		cfg := state.LocalCfg{
			Key: state.GenerateKey(),
			Id:  id,
			Publish: state.PublishCfg{
				OnMesh: []state.OnMeshPrefixConfig{
					{
						Prefix: netip.MustParsePrefix("fd00:db8::/64"),
						Slaac:  true,
						OnMesh: true,
						Stable: true,
					},
				},
				DnsSrp: &state.DnsSrpCfg{
					Unicast: &state.UnicastCfg{Port: uint16(state.DefaultPort)},
				},
			},
		}
		if err := state.LocalConfigValidator(&cfg); err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(nodeConfigPath, out, 0600); err != nil {
			return err
		}
		fmt.Printf("wrote %s for router %s\n", nodeConfigPath, id)
		return nil
	},
	GroupID: "init",
}

func init() {
	rootCmd.AddCommand(initCmd)
}
