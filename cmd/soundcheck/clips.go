package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClipsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clips",
		Short: "List every clip with its length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.lib.Names()
			if err != nil {
				return fmt.Errorf("listing clips: %w", err)
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var failed int
			for _, name := range names {
				clip, err := a.lib.LoadClip(name)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s\terror: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", name, clip.Length)
			}
			if err := out.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d clips failed to decode", failed, len(names))
			}
			return nil
		},
	}
}
