package repository

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
)

// Backup ids carry an ISO-8601 UTC timestamp with ':' and '.' replaced by
// '-' so they double as file names on every platform:
//
//	about-2024-01-15T10-30-00-123Z-cv37rs3pp9olc6atsptg
const (
	isoLayout = "2006-01-02T15:04:05.000Z"
	stampLen  = len(isoLayout)
)

var (
	stampReplacer = strings.NewReplacer(":", "-", ".", "-")
	validName     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// NewBackupID returns a fresh backup id for document name written at at.
// The xid suffix keeps two saves within the same millisecond apart.
func NewBackupID(name string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s", name, FormatStamp(at), xid.New().String())
}

// ParseBackupID reports whether id belongs to document name and returns the
// time encoded in it.
func ParseBackupID(name, id string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(id, name+"-")
	if !ok || len(rest) < stampLen {
		return time.Time{}, false
	}
	return ParseStamp(rest[:stampLen])
}

func FormatStamp(t time.Time) string {
	return stampReplacer.Replace(t.UTC().Format(isoLayout))
}

// ParseStamp reverses FormatStamp by restoring the separators at their
// fixed positions.
func ParseStamp(stamp string) (time.Time, bool) {
	if len(stamp) != stampLen {
		return time.Time{}, false
	}
	b := []byte(stamp)
	b[13], b[16], b[19] = ':', ':', '.'
	t, err := time.Parse(isoLayout, string(b))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CheckName rejects document names that are not lower-case kebab words.
// Names become file names, so anything else is refused before any I/O.
func CheckName(name string) error {
	if !validName.MatchString(name) {
		return apperror.ValidationFailed("name", fmt.Sprintf("invalid document name %q", name))
	}
	return nil
}
