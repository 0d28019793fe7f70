package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/careers-crawler/internal/sites"
)

func newSitesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the companies in the site registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			registry, err := sites.LoadRegistry(cfg.Sites.RegistryPath)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range registry.Names() {
				site, _ := registry.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\n", name, site.CareersURL)
			}
			fmt.Fprintf(w, "\n%d sites\n", registry.Len())
			if err := w.Flush(); err != nil {
				return fmt.Errorf("write site list: %w", err)
			}
			return nil
		},
	}
}
