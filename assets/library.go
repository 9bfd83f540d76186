package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/patrickmn/go-cache"

	"github.com/milk9111/soundstage/audio"
)

// ClipDir is where clips live inside the asset tree.
const ClipDir = "audio"

var ErrClipNotFound = errors.New("assets: clip not found")

var clipExtensions = []string{".wav", ".ogg", ".mp3"}

// Library resolves logical clip names ("sfx/jump", "music/forest.ogg")
// under ClipDir and decodes them to PCM at the playback sample rate.
// Decoded clips are cached until Forget or Flush.
type Library struct {
	fsys       fs.FS
	sampleRate int
	cache      *cache.Cache
}

func NewLibrary(fsys fs.FS, sampleRate int) *Library {
	return &Library{
		fsys:       fsys,
		sampleRate: sampleRate,
		cache:      cache.New(cache.NoExpiration, 0),
	}
}

func (l *Library) SampleRate() int {
	return l.sampleRate
}

// LoadClip implements audio.Loader.
func (l *Library) LoadClip(name string) (*audio.Clip, error) {
	key := clipKey(name)
	if key == "" {
		return nil, fmt.Errorf("assets: empty clip name")
	}
	if v, ok := l.cache.Get(key); ok {
		return v.(*audio.Clip), nil
	}

	file, data, err := l.read(key)
	if err != nil {
		return nil, err
	}
	pcm, err := decodePCM(file, data, l.sampleRate)
	if err != nil {
		return nil, err
	}

	clip := audio.NewClip(key, pcm, l.sampleRate)
	l.cache.SetDefault(key, clip)
	return clip, nil
}

// Names lists every decodable clip under ClipDir, without extension.
func (l *Library) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(l.fsys, ClipDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isClipFile(p) {
			return nil
		}
		rel := strings.TrimPrefix(p, ClipDir+"/")
		names = append(names, strings.TrimSuffix(rel, path.Ext(rel)))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("assets: list clips: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Forget drops one cached clip so the next load re-reads it.
func (l *Library) Forget(name string) {
	l.cache.Delete(clipKey(name))
}

func (l *Library) Flush() {
	l.cache.Flush()
}

// Cached returns the number of decoded clips held in memory.
func (l *Library) Cached() int {
	return l.cache.ItemCount()
}

func (l *Library) read(key string) (string, []byte, error) {
	candidates := []string{path.Join(ClipDir, key)}
	if path.Ext(key) == "" {
		candidates = candidates[:0]
		for _, ext := range clipExtensions {
			candidates = append(candidates, path.Join(ClipDir, key+ext))
		}
	}

	for _, file := range candidates {
		data, err := fs.ReadFile(l.fsys, file)
		if err == nil {
			return file, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("assets: read %s: %w", file, err)
		}
	}
	return "", nil, fmt.Errorf("%w: %q", ErrClipNotFound, key)
}

func decodePCM(file string, data []byte, sampleRate int) ([]byte, error) {
	r := bytes.NewReader(data)

	var (
		stream io.Reader
		err    error
	)
	switch strings.ToLower(path.Ext(file)) {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, r)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(sampleRate, r)
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, r)
	default:
		return nil, fmt.Errorf("assets: %s: unsupported clip format", file)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", file, err)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("assets: read pcm %s: %w", file, err)
	}
	return pcm, nil
}

func clipKey(name string) string {
	key := cleanAssetPath(strings.TrimSpace(name))
	if key == "." {
		return ""
	}
	if after, ok := strings.CutPrefix(key, ClipDir+"/"); ok {
		key = after
	}
	return key
}

func isClipFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range clipExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
