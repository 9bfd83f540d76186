package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPlaylistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "playlists",
		Short: "Check that every playlist track resolves to a clip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var missing int
			for _, name := range a.spec.PlaylistNames() {
				marker := ""
				if name == a.spec.Ambient.Default {
					marker = " (default)"
				}
				fmt.Fprintf(out, "%s%s:\n", name, marker)

				files, err := a.spec.Playlist(name)
				if err != nil {
					return err
				}
				for _, file := range files {
					clip, err := a.lib.LoadClip(file)
					if err != nil {
						missing++
						fmt.Fprintf(out, "  MISSING %s: %v\n", file, err)
						continue
					}
					fmt.Fprintf(out, "  ok      %s (%s)\n", file, clip.Length)
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d playlist track(s) did not resolve", missing)
			}
			return nil
		},
	}
}
