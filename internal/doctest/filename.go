package doctest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"revision-runtime/backend/pkg/models"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	separatorRuns   = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns a display string into a file-name safe token: ASCII only,
// lowercase, runs of whitespace and hyphens collapsed into one hyphen.
func Slugify(value string) string {
	var ascii strings.Builder
	for _, r := range norm.NFKD.String(value) {
		if r <= unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}
	s := disallowedChars.ReplaceAllString(strings.ToLower(ascii.String()), "")
	s = separatorRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

// FileName is the extension-less base name used for the revision's files on
// disk, e.g. "linear-interpolation-numeric-index_100_<id>".
func FileName(tr *models.TransformationRevision) string {
	return Slugify(tr.Name) + "_" + Slugify(tr.VersionTag) + "_" + tr.ID.String()
}
