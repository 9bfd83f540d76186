package prefabs

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/soundstage/audio"
)

// AudioSpecFile is the prefab holding sound content.
const AudioSpecFile = "audio.yaml"

type AudioSpec struct {
	Spatial SpatialSpec       `yaml:"spatial"`
	Clips   map[string]string `yaml:"clips"`
	Ambient AmbientSpec       `yaml:"ambient"`
}

type SpatialSpec struct {
	MaxDistance float64 `yaml:"max_distance"`
	MinDistance float64 `yaml:"min_distance"`
	Rolloff     string  `yaml:"rolloff"`
}

type AmbientSpec struct {
	Default   string              `yaml:"default"`
	Playlists map[string][]string `yaml:"playlists"`
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

func LoadAudioSpec() (*AudioSpec, error) {
	spec, err := LoadSpec[AudioSpec](AudioSpecFile)
	if err != nil {
		return nil, err
	}
	return finishAudioSpec(&spec)
}

// ParseAudioSpec decodes audio.yaml content that did not come from Load.
func ParseAudioSpec(data []byte) (*AudioSpec, error) {
	var spec AudioSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", AudioSpecFile, err)
	}
	return finishAudioSpec(&spec)
}

func finishAudioSpec(spec *AudioSpec) (*AudioSpec, error) {
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", AudioSpecFile, err)
	}
	return spec, nil
}

func (s *AudioSpec) applyDefaults() {
	def := audio.DefaultSpatial()
	if s.Spatial.MaxDistance == 0 {
		s.Spatial.MaxDistance = def.MaxDistance
	}
	if s.Spatial.MinDistance == 0 {
		s.Spatial.MinDistance = def.MinDistance
	}
	if s.Spatial.Rolloff == "" {
		s.Spatial.Rolloff = def.Rolloff.String()
	}
	if s.Clips == nil {
		s.Clips = map[string]string{}
	}
	if s.Ambient.Playlists == nil {
		s.Ambient.Playlists = map[string][]string{}
	}
}

func (s *AudioSpec) Validate() error {
	if _, err := audio.ParseRolloff(s.Spatial.Rolloff); err != nil {
		return err
	}
	if s.Spatial.MinDistance < 0 || s.Spatial.MaxDistance < s.Spatial.MinDistance {
		return fmt.Errorf("spatial: distances must satisfy 0 <= min_distance <= max_distance, got %v..%v",
			s.Spatial.MinDistance, s.Spatial.MaxDistance)
	}
	for alias, file := range s.Clips {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("clip %q: file is required", alias)
		}
	}
	for name, tracks := range s.Ambient.Playlists {
		if len(tracks) == 0 {
			return fmt.Errorf("playlist %q: no tracks", name)
		}
		for i, track := range tracks {
			if strings.TrimSpace(track) == "" {
				return fmt.Errorf("playlist %q: track %d is empty", name, i)
			}
		}
	}
	if s.Ambient.Default != "" {
		if _, ok := s.Ambient.Playlists[s.Ambient.Default]; !ok {
			return fmt.Errorf("ambient: default playlist %q is not defined", s.Ambient.Default)
		}
	}
	return nil
}

// SpatialSettings converts the spatial block for audio.WithSpatial.
func (s *AudioSpec) SpatialSettings() (audio.Spatial, error) {
	rolloff, err := audio.ParseRolloff(s.Spatial.Rolloff)
	if err != nil {
		return audio.Spatial{}, err
	}
	return audio.Spatial{
		MaxDistance: s.Spatial.MaxDistance,
		MinDistance: s.Spatial.MinDistance,
		Rolloff:     rolloff,
	}, nil
}

// ClipFile resolves a clip alias; names that are not aliases pass through.
func (s *AudioSpec) ClipFile(name string) string {
	if file, ok := s.Clips[name]; ok {
		return file
	}
	return name
}

// Playlist returns the resolved clip files of a playlist. An empty name
// selects the default playlist.
func (s *AudioSpec) Playlist(name string) ([]string, error) {
	if name == "" {
		name = s.Ambient.Default
	}
	tracks, ok := s.Ambient.Playlists[name]
	if !ok {
		return nil, fmt.Errorf("prefabs: unknown playlist %q", name)
	}
	files := make([]string, 0, len(tracks))
	for _, track := range tracks {
		files = append(files, s.ClipFile(track))
	}
	return files, nil
}

// PlaylistNames returns playlist names in sorted order.
func (s *AudioSpec) PlaylistNames() []string {
	names := make([]string, 0, len(s.Ambient.Playlists))
	for name := range s.Ambient.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
