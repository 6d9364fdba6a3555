package pptx

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/klauspost/compress/zip"
)

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)

// SlideCount returns the number of slide parts in an encoded deck.
func SlideCount(data []byte) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open deck: %w", err)
	}
	n := 0
	for _, f := range zr.File {
		if slidePartRe.MatchString(f.Name) {
			n++
		}
	}
	return n, nil
}
