package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/soundstage/assets"
	"github.com/milk9111/soundstage/audio"
	"github.com/milk9111/soundstage/ecs"
	"github.com/milk9111/soundstage/ecs/component"
	"github.com/milk9111/soundstage/ecs/system"
	"github.com/milk9111/soundstage/prefabs"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	// pixelsPerUnit maps world units (audio distances) to screen pixels.
	pixelsPerUnit = 24
	listenerSpeed = 0.15
)

type Game struct {
	frames int
	debug  bool

	svc      *audio.Service
	lib      *assets.Library
	spec     *prefabs.AudioSpec
	watcher  *prefabs.Watcher
	playlist string

	world     *ecs.World
	scheduler *ecs.Scheduler
	emitters  *system.EmitterSystem
	listener  *component.Transform
	emitter   ecs.Entity
}

func NewGame(svc *audio.Service, lib *assets.Library, spec *prefabs.AudioSpec, playlist string, debug bool) *Game {
	g := &Game{
		debug:    debug,
		svc:      svc,
		lib:      lib,
		spec:     spec,
		playlist: playlist,
		world:    ecs.NewWorld(),
		emitters: system.NewEmitterSystem(svc),
	}
	g.scheduler = ecs.NewScheduler(
		system.NewMotionSystem(),
		system.NewListenerSystem(svc),
		system.NewAmbientSystem(svc),
		system.NewSoundSystem(svc),
		g.emitters,
	)

	cx, cy := screenCenter()
	g.listener = &component.Transform{X: cx, Y: cy}
	ent := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, ent, component.TransformComponent.Kind(), g.listener)
	_ = ecs.Add(g.world, ent, component.ListenerComponent.Kind(), &component.Listener{})

	g.spawnEmitter()
	g.startPlaylist(playlist)
	return g
}

// screenCenter returns the middle of the screen in world units.
func screenCenter() (float64, float64) {
	return baseWidth / 2.0 / pixelsPerUnit, baseHeight / 2.0 / pixelsPerUnit
}

// WatchPrefabs reloads audio.yaml whenever it changes under dir.
func (g *Game) WatchPrefabs(dir string) error {
	w, err := prefabs.NewWatcher(dir)
	if err != nil {
		return err
	}
	g.watcher = w
	return nil
}

func (g *Game) clip(alias string) *audio.Clip {
	return g.svc.Load(g.spec.ClipFile(alias))
}

func (g *Game) spawnEmitter() {
	g.emitter = ecs.CreateEntity(g.world)
	cx, cy := screenCenter()
	_ = ecs.Add(g.world, g.emitter, component.TransformComponent.Kind(), &component.Transform{X: cx + 10, Y: cy})
	_ = ecs.Add(g.world, g.emitter, component.OrbitComponent.Kind(), &component.Orbit{
		CenterX: cx,
		CenterY: cy,
		Radius:  10,
		Speed:   0.01,
	})
	_ = ecs.Add(g.world, g.emitter, component.AudioEmitterComponent.Kind(), &component.AudioEmitter{
		Clip:   g.clip("engine"),
		Volume: 0.8,
	})
}

func (g *Game) toggleEmitter() {
	if ecs.IsAlive(g.world, g.emitter) {
		ecs.DestroyEntity(g.world, g.emitter)
		return
	}
	g.spawnEmitter()
}

func (g *Game) startPlaylist(name string) {
	files, err := g.spec.Playlist(name)
	if err != nil {
		log.Printf("ambient: %v", err)
		return
	}
	if name == "" {
		name = g.spec.Ambient.Default
	}
	g.playlist = name
	system.RequestAmbient(g.world, g.svc.LoadAll(files...)...)
}

func (g *Game) reloadSpec() {
	spec, err := prefabs.LoadAudioSpec()
	if err != nil {
		log.Printf("reload %s: %v", prefabs.AudioSpecFile, err)
		return
	}
	if spec.Spatial != g.spec.Spatial {
		log.Printf("reload %s: spatial settings apply on restart", prefabs.AudioSpecFile)
	}
	g.spec = spec
	g.lib.Flush()

	if em, ok := ecs.Get(g.world, g.emitter, component.AudioEmitterComponent.Kind()); ok {
		em.Clip = g.clip("engine")
	}
	if _, err := spec.Playlist(g.playlist); err != nil {
		g.playlist = ""
	}
	g.startPlaylist(g.playlist)
	log.Printf("reloaded %s", prefabs.AudioSpecFile)
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if g.watcher != nil {
		for _, name := range g.watcher.Drain() {
			if name == prefabs.AudioSpecFile {
				g.reloadSpec()
			}
		}
	}

	g.handleInput()
	g.scheduler.Update(g.world)
	return nil
}

func (g *Game) handleInput() {
	if ebiten.IsKeyPressed(ebiten.KeyLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		g.listener.X -= listenerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		g.listener.X += listenerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		g.listener.Y -= listenerSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		g.listener.Y += listenerSpeed
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		system.RequestSound(g.world, g.clip("jump"))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		system.RequestSoundAt(g.world, g.clip("hit"), float64(mx)/pixelsPerUnit, float64(my)/pixelsPerUnit)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		system.RequestSoundAt(g.world, g.clip("pickup"), g.listener.X, g.listener.Y)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.toggleEmitter()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		system.StopAmbient(g.world)
	}

	names := g.spec.PlaylistNames()
	for i, key := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5} {
		if i < len(names) && inpututil.IsKeyJustPressed(key) {
			g.startPlaylist(names[i])
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 16, G: 20, B: 28, A: 255})

	lx, ly := float32(g.listener.X*pixelsPerUnit), float32(g.listener.Y*pixelsPerUnit)
	reach := float32(g.spec.Spatial.MaxDistance * pixelsPerUnit)
	vector.StrokeCircle(screen, lx, ly, reach, 1, colornames.Darkslategray, true)
	vector.FillCircle(screen, lx, ly, 8, colornames.Lightgrey, true)

	if t, ok := ecs.Get(g.world, g.emitter, component.TransformComponent.Kind()); ok {
		ex, ey := float32(t.X*pixelsPerUnit), float32(t.Y*pixelsPerUnit)
		vector.StrokeLine(screen, lx, ly, ex, ey, 1, colornames.Dimgray, true)
		vector.FillCircle(screen, ex, ey, 6, colornames.Crimson, true)
	}

	track := "-"
	if clip := g.svc.AmbientTrack(); clip != nil {
		track = clip.Name
	}
	lines := []string{
		fmt.Sprintf("Frames: %d    FPS: %.2f", g.frames, ebiten.ActualFPS()),
		fmt.Sprintf("Playlist: %s    Track: %s", g.playlist, track),
		fmt.Sprintf("Sources: %d    One-shots: %d", g.svc.Sources(), g.svc.PendingOneShots()),
		fmt.Sprintf("Playlists: %s", strings.Join(g.spec.PlaylistNames(), ", ")),
		"arrows/WASD move  space jump  click hit  P pickup  E emitter  1-5 playlist  M stop music",
	}
	if g.debug {
		lines = append(lines, fmt.Sprintf("Listener: %.1f, %.1f    Cached clips: %d", g.listener.X, g.listener.Y, g.lib.Cached()))
	}
	ebitenutil.DebugPrint(screen, strings.Join(lines, "\n"))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close stops every sound the demo started.
func (g *Game) Close() error {
	g.emitters.Close()
	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	errs = append(errs, g.svc.Close())
	return errors.Join(errs...)
}
