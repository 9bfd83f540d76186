package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/milk9111/soundstage/audio"
)

func newRotateCmd(a *app) *cobra.Command {
	var (
		playlist string
		count    int
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Print the track order the ambient rotation would play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			files, err := a.spec.Playlist(playlist)
			if err != nil {
				return err
			}
			tracks := make([]*audio.Clip, 0, len(files))
			for _, file := range files {
				clip, err := a.lib.LoadClip(file)
				if err != nil {
					return err
				}
				tracks = append(tracks, clip)
			}

			rng := rand.New(rand.NewPCG(seed, seed))
			out := cmd.OutOrStdout()
			var (
				current *audio.Clip
				at      time.Duration
			)
			for i := 1; i <= count; i++ {
				current = audio.PickNext(rng, tracks, current)
				fmt.Fprintf(out, "%3d  %9s  %s\n", i, at.Round(time.Millisecond), current.Name)
				at += current.Length
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&playlist, "playlist", "", "playlist name (default from audio.yaml)")
	cmd.Flags().IntVar(&count, "count", 10, "number of tracks to pick")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}
