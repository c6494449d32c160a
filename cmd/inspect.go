package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/thistlemesh/thistle/state"
)

// inspectCmd validates a node config and prints the publication set it
// declares, along with the coalesced address coverage of the prefix entries.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Validate a node config and show its publication set",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg state.LocalCfg
		file, err := os.ReadFile(nodeConfigPath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return err
		}
		if err := state.LocalConfigValidator(&cfg); err != nil {
			return err
		}

		pub, err := cfg.Key.Pubkey().MarshalText()
		if err != nil {
			return err
		}
		fmt.Printf("router: %s\n", cfg.Id)
		fmt.Printf("pubkey: %s\n", pub)
		fmt.Printf("prefix pool: %d/%d entries\n", len(cfg.Publish.PublishedPrefixes()), cfg.Limits.PrefixCapacity())
		for _, p := range cfg.Publish.OnMesh {
			fmt.Printf("  on-mesh %s pref=%s\n", p.Prefix, p.Preference)
		}
		for _, r := range cfg.Publish.Routes {
			fmt.Printf("  route   %s pref=%s\n", r.Prefix, r.Preference)
		}
		if dnssrp := cfg.Publish.DnsSrp; dnssrp != nil {
			switch {
			case dnssrp.Anycast != nil:
				fmt.Printf("  dnssrp anycast seq=%d\n", dnssrp.Anycast.SequenceNumber)
			case dnssrp.Unicast != nil && dnssrp.Unicast.Address.IsValid():
				fmt.Printf("  dnssrp unicast %s:%d\n", dnssrp.Unicast.Address, dnssrp.Unicast.Port)
			case dnssrp.Unicast != nil:
				fmt.Printf("  dnssrp unicast mleid:%d\n", dnssrp.Unicast.Port)
			}
		}
		if coverage := state.CoalescePrefix(cfg.Publish.PublishedPrefixes()); len(coverage) > 0 {
			fmt.Println("effective coverage:")
			for _, p := range coverage {
				fmt.Printf("  %s\n", p)
			}
		}
		return nil
	},
	GroupID: "th",
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
