package extract

import (
	"archive/zip"
	"regexp"
)

var slideEntryRe = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)

// slideCount reads the PPTX zip directory and counts slide entries. The
// converter service owns the actual slide content.
func slideCount(path string) (int, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		if slideEntryRe.MatchString(f.Name) {
			count++
		}
	}
	return count, nil
}
