package model

import "strings"

// MeasureFileName converts a measure name to its file-system-safe form.
// Pseudo-spectral acceleration measures like "pSA_0.5" become "SA_0p5":
// the leading "p" is dropped and periods are replaced so the name can be
// used in filenames that treat "." as an extension separator.
func MeasureFileName(im string) string {
	if !strings.HasPrefix(im, "pSA") {
		return im
	}
	return strings.ReplaceAll(im[1:], ".", "p")
}
