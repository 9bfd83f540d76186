package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milk9111/soundstage/assets"
	"github.com/milk9111/soundstage/config"
	"github.com/milk9111/soundstage/prefabs"
)

// app is the state shared by every subcommand, filled in before they run.
type app struct {
	configPath string
	assetDir   string
	sampleRate int

	cfg  config.Config
	lib  *assets.Library
	spec *prefabs.AudioSpec
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "soundcheck",
		Short:         "Inspect clips and ambient playlists",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a soundstage config file")
	flags.StringVar(&a.assetDir, "assets", "", "directory overlaying the embedded assets")
	flags.IntVar(&a.sampleRate, "sample-rate", 0, "decode sample rate (default from config)")

	root.AddCommand(newClipsCmd(a), newPlaylistsCmd(a), newRotateCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("assets") {
		cfg.AssetDir = a.assetDir
	}
	if cmd.Flags().Changed("sample-rate") {
		cfg.SampleRate = a.sampleRate
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	spec, err := prefabs.LoadAudioSpec()
	if err != nil {
		return fmt.Errorf("loading %s: %w", prefabs.AudioSpecFile, err)
	}

	a.cfg = cfg
	a.spec = spec
	a.lib = assets.NewLibrary(assets.FS(cfg.AssetDir), cfg.SampleRate)
	return nil
}
