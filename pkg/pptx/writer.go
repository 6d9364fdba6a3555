package pptx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// maxImageFileSize bounds a single embedded image.
const maxImageFileSize = 64 << 20

// Save writes the deck to path, creating parent directories. A partially
// written file is removed on failure.
func (p *Presentation) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	writeErr := p.Write(f)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

// Write encodes the deck as a PPTX zip stream.
func (p *Presentation) Write(out io.Writer) error {
	w := newWriter(p)
	zw := zip.NewWriter(out)

	steps := []func(*zip.Writer) error{
		w.writeContentTypes,
		w.writeRootRels,
		w.writeAppProperties,
		w.writeCoreProperties,
		w.writePresentation,
		w.writePresentationRels,
		w.writePresProps,
		w.writeViewProps,
		w.writeTableStyles,
		w.writeSlideMaster,
		w.writeSlideLayout,
		w.writeTheme,
	}
	for _, step := range steps {
		if err := step(zw); err != nil {
			return err
		}
	}

	for i, s := range p.slides {
		if err := w.writeSlide(zw, s, i+1); err != nil {
			return err
		}
		if err := w.writeSlideRels(zw, s, i+1); err != nil {
			return err
		}
	}

	if err := w.writeMedia(zw); err != nil {
		return err
	}
	return zw.Close()
}

// writer reads and numbers media across the whole deck before any part is
// emitted, so slide XML, slide rels and media parts agree on names.
// Pictures whose image cannot be read are left out of every part.
type writer struct {
	p     *Presentation
	media map[*Picture]string // picture -> media file name
	data  map[*Picture][]byte
	order []*Picture
}

func newWriter(p *Presentation) *writer {
	w := &writer{p: p, media: make(map[*Picture]string), data: make(map[*Picture][]byte)}
	for i, s := range p.slides {
		for _, sh := range s.shapes {
			pic, ok := sh.(*Picture)
			if !ok {
				continue
			}
			data, err := readImage(pic.Path)
			if err != nil {
				if p.Logger != nil {
					p.Logger.Warn("skipping picture", "slide", i+1, "path", pic.Path, "err", err)
				}
				continue
			}
			w.order = append(w.order, pic)
			w.data[pic] = data
			w.media[pic] = fmt.Sprintf("image%d.%s", len(w.order), imageExtension(pic.Path))
		}
	}
	return w
}

// embedded reports whether pic made it into the media parts.
func (w *writer) embedded(pic *Picture) bool {
	_, ok := w.media[pic]
	return ok
}

func imageExtension(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "gif", "bmp", "svg":
		return ext
	default:
		return "png"
	}
}

func imageContentType(ext string) string {
	switch ext {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/png"
	}
}

// ErrImageTooLarge is returned for images above the embed limit.
var ErrImageTooLarge = errors.New("image too large")

func readImage(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxImageFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageTooLarge, info.Size())
	}
	return os.ReadFile(path)
}

func (w *writer) writeMedia(zw *zip.Writer) error {
	for _, pic := range w.order {
		fw, err := zw.Create("ppt/media/" + w.media[pic])
		if err != nil {
			return err
		}
		if _, err := fw.Write(w.data[pic]); err != nil {
			return err
		}
	}
	return nil
}
