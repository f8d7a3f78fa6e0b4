package artifacts

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	mathrand "math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// DefaultThumbnailWidth bounds thumbnails when no width is configured.
const DefaultThumbnailWidth = 320

// previewWidth is the size of the blurred placeholder variant.
const previewWidth = 32

// Saved records where one tool call's artifacts landed on disk.
type Saved struct {
	ID           string `json:"id"`
	PNG          string `json:"png,omitempty"`
	ThumbnailPNG string `json:"thumbnail_png,omitempty"`
	PreviewPNG   string `json:"preview_png,omitempty"`
	CSV          string `json:"csv,omitempty"`
}

// Store persists worker-produced plot artifacts. The worker returns plots
// inline as base64 PNG (plus the underlying samples as CSV); the store
// writes them out under ULID names and derives a thumbnail and a small
// blurred preview for clients that want a cheap placeholder.
type Store struct {
	dir        string
	thumbWidth int
	log        zerolog.Logger

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// NewStore creates dir if needed. thumbWidth <= 0 selects the default.
func NewStore(dir string, thumbWidth int, log zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifacts: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: create %s: %w", dir, err)
	}
	if thumbWidth <= 0 {
		thumbWidth = DefaultThumbnailWidth
	}
	return &Store{
		dir:        dir,
		thumbWidth: thumbWidth,
		log:        log,
		entropy:    ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) newID() string {
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// toolResult is the subset of a worker plot result the store acts on.
type toolResult struct {
	ImagePNGB64 string `json:"image_png_b64"`
	CSVData     string `json:"csv_data"`
}

// Annotate extracts any inline artifacts from a worker result, persists
// them, and returns the result with an "artifacts" member added. Results
// without inline artifacts pass through untouched with a nil Saved.
func (s *Store) Annotate(tool string, result json.RawMessage) (json.RawMessage, *Saved, error) {
	var tr toolResult
	if err := json.Unmarshal(result, &tr); err != nil {
		// Not an object-shaped result; nothing to persist.
		return result, nil, nil
	}
	if tr.ImagePNGB64 == "" && tr.CSVData == "" {
		return result, nil, nil
	}

	saved := &Saved{ID: s.newID()}

	if tr.ImagePNGB64 != "" {
		raw, err := base64.StdEncoding.DecodeString(tr.ImagePNGB64)
		if err != nil {
			return result, nil, fmt.Errorf("artifacts: %s returned undecodable PNG: %w", tool, err)
		}
		if err := s.savePNG(saved, raw); err != nil {
			return result, nil, err
		}
	}

	if tr.CSVData != "" {
		path := filepath.Join(s.dir, saved.ID+".csv")
		if err := os.WriteFile(path, []byte(tr.CSVData), 0o644); err != nil {
			return result, nil, fmt.Errorf("artifacts: write csv: %w", err)
		}
		saved.CSV = path
	}

	annotated, err := addArtifacts(result, saved)
	if err != nil {
		return result, nil, err
	}
	s.log.Debug().Str("tool", tool).Str("artifact", saved.ID).Msg("artifacts: saved")
	return annotated, saved, nil
}

func (s *Store) savePNG(saved *Saved, raw []byte) error {
	path := filepath.Join(s.dir, saved.ID+".png")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("artifacts: write png: %w", err)
	}
	saved.PNG = path

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("artifacts: decode png: %w", err)
	}

	thumbPath, err := s.writeThumbnail(img, saved.ID, s.thumbWidth)
	if err != nil {
		return err
	}
	saved.ThumbnailPNG = thumbPath

	previewPath := filepath.Join(s.dir, saved.ID+"_preview.png")
	if err := imaging.Save(blurredPreview(img), previewPath); err != nil {
		return fmt.Errorf("artifacts: write preview: %w", err)
	}
	saved.PreviewPNG = previewPath
	return nil
}

// Thumbnail derives a thumbnail for an already-saved artifact PNG. Width
// <= 0 selects the store's configured width.
func (s *Store) Thumbnail(path string, width int) (string, error) {
	if width <= 0 {
		width = s.thumbWidth
	}
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("artifacts: open %s: %w", path, err)
	}
	base := filepath.Base(path)
	id := base[:len(base)-len(filepath.Ext(base))]
	return s.writeThumbnail(img, id, width)
}

func (s *Store) writeThumbnail(img image.Image, id string, width int) (string, error) {
	thumb := imaging.Fit(img, width, width, imaging.Lanczos)
	path := filepath.Join(s.dir, fmt.Sprintf("%s_thumb%d.png", id, width))
	if err := imaging.Save(thumb, path); err != nil {
		return "", fmt.Errorf("artifacts: write thumbnail: %w", err)
	}
	return path, nil
}

// blurredPreview is a tiny gaussian-blurred variant, the classic
// low-quality placeholder clients show while the full plot loads.
func blurredPreview(img image.Image) image.Image {
	b := img.Bounds()
	h := previewWidth
	if b.Dx() > 0 {
		h = b.Dy() * previewWidth / b.Dx()
		if h < 1 {
			h = 1
		}
	}
	small := transform.Resize(img, previewWidth, h, transform.Linear)
	return blur.Gaussian(small, 1.5)
}

func addArtifacts(result json.RawMessage, saved *Saved) (json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(result, &m); err != nil {
		return nil, fmt.Errorf("artifacts: reparse result: %w", err)
	}
	ref, err := json.Marshal(saved)
	if err != nil {
		return nil, err
	}
	m["artifacts"] = ref
	return json.Marshal(m)
}
