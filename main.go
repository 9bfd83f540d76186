package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/soundstage/assets"
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/audio/ebitenaudio"
	"github.com/milk9111/soundstage/config"
	"github.com/milk9111/soundstage/prefabs"
)

func main() {
	configPath := flag.String("config", "", "path to a soundstage config file (yaml, toml or json)")
	debug := flag.Bool("debug", false, "enable debug diagnostics")
	playlist := flag.String("playlist", "", "ambient playlist from prefabs/audio.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *debug {
		cfg.Debug = true
	}
	if *playlist != "" {
		cfg.Playlist = *playlist
	}

	spec, err := prefabs.LoadAudioSpec()
	if err != nil {
		log.Fatal(err)
	}
	spatial, err := spec.SpatialSettings()
	if err != nil {
		log.Fatal(err)
	}

	backend := ebitenaudio.New(cfg.SampleRate)
	backend.SetMasterVolume(cfg.MasterVolume)
	lib := assets.NewLibrary(assets.FS(cfg.AssetDir), backend.SampleRate())

	svc, err := audio.New(backend,
		audio.WithLoader(lib),
		audio.WithSpatial(spatial),
		audio.WithDebug(cfg.Debug),
		audio.WithMusicVolume(cfg.MusicVolume),
		audio.WithEffectsVolume(cfg.EffectsVolume),
	)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("soundstage")

	game := NewGame(svc, lib, spec, cfg.Playlist, cfg.Debug)
	if cfg.Watch {
		if err := game.WatchPrefabs(prefabs.Dir); err != nil {
			log.Printf("watch %s: %v", prefabs.Dir, err)
		}
	}

	runErr := ebiten.RunGame(game)
	if err := game.Close(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatal(runErr)
	}
}
