package segment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"dubline/internal/services"
)

// rawSegment accepts the manifest keys emitted by older pipeline versions.
type rawSegment struct {
	ID             any     `yaml:"id"`
	Start          float64 `yaml:"start"`
	End            float64 `yaml:"end"`
	Text           string  `yaml:"text"`
	TranslatedText string  `yaml:"translated_text"`
	Vietnamese     string  `yaml:"vietnamese"`
	AudioPath      string  `yaml:"audio_path"`
	AudioFile      string  `yaml:"audio_file"`
}

type manifestDoc struct {
	Segments []rawSegment `yaml:"segments"`
}

// LoadManifest reads segments from a YAML or JSON file. The document may be a
// bare list or a mapping with a "segments" list. Relative audio paths resolve
// against the manifest's directory.
func LoadManifest(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "segment", "load manifest", fmt.Sprintf("manifest %q missing", path), err)
		}
		return nil, services.Wrap(services.ErrValidation, "segment", "load manifest", "read manifest", err)
	}
	segments, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	for i := range segments {
		p := segments[i].AudioPath
		if p != "" && !filepath.IsAbs(p) {
			segments[i].AudioPath = filepath.Join(base, p)
		}
	}
	return segments, nil
}

// ParseManifest decodes manifest bytes without resolving paths.
func ParseManifest(data []byte) ([]Segment, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, services.Wrap(services.ErrValidation, "segment", "parse manifest", "decode", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]

	var raws []rawSegment
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raws); err != nil {
			return nil, services.Wrap(services.ErrValidation, "segment", "parse manifest", "decode segment list", err)
		}
	case yaml.MappingNode:
		var m manifestDoc
		if err := doc.Decode(&m); err != nil {
			return nil, services.Wrap(services.ErrValidation, "segment", "parse manifest", "decode segments mapping", err)
		}
		raws = m.Segments
	default:
		return nil, services.Wrap(services.ErrValidation, "segment", "parse manifest", "expected a list or a mapping with segments", nil)
	}

	out := make([]Segment, 0, len(raws))
	for _, raw := range raws {
		out = append(out, raw.segment())
	}
	return out, nil
}

func (r rawSegment) segment() Segment {
	seg := Segment{
		Start:          r.Start,
		End:            r.End,
		Text:           r.Text,
		TranslatedText: r.TranslatedText,
		AudioPath:      strings.TrimSpace(r.AudioPath),
	}
	if r.ID != nil {
		seg.ID = strings.TrimSpace(fmt.Sprint(r.ID))
	}
	if seg.TranslatedText == "" {
		seg.TranslatedText = r.Vietnamese
	}
	if seg.AudioPath == "" {
		seg.AudioPath = strings.TrimSpace(r.AudioFile)
	}
	return seg
}
