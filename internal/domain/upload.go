package domain

import (
	"math"
	"strconv"
	"strings"
)

// PendingFile is one captured page held in memory between selection and
// submission. ID is generated at capture time and is the join key for
// crop/rotate/reorder edits; the display name is kept separately so an edit
// can replace bytes without touching the name.
type PendingFile struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the byte length of the file contents.
func (f *PendingFile) Size() int64 {
	return int64(len(f.Data))
}

// PendingUpload is the ephemeral client-side state of one scan session:
// selected files plus the document name. Cleared on successful submission.
type PendingUpload struct {
	ID           string        `json:"id"`
	DocumentName string        `json:"document_name"`
	Files        []PendingFile `json:"-"`
}

// Submittable reports whether the pending upload can be sent: the file set
// must be non-empty and the document name non-empty after trimming.
func (p *PendingUpload) Submittable() bool {
	return len(p.Files) > 0 && strings.TrimSpace(p.DocumentName) != ""
}

// TotalSize returns the combined size of all pending files.
func (p *PendingUpload) TotalSize() int64 {
	var total int64
	for i := range p.Files {
		total += p.Files[i].Size()
	}
	return total
}

// FileByID finds a pending file by its generated id.
func (p *PendingUpload) FileByID(id string) (*PendingFile, bool) {
	for i := range p.Files {
		if p.Files[i].ID == id {
			return &p.Files[i], true
		}
	}
	return nil, false
}

// FormatFileSize renders a byte count for display, e.g. "1.5 MB". Trailing
// zeros are dropped after rounding to two decimals.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	value := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + units[i]
}

// HasFileName reports whether a file with the given display name is already
// present. Used by the scanner capture flow to reject duplicate names, since
// names stay visible on the cards even though edits join on ID.
func (p *PendingUpload) HasFileName(name string) bool {
	for i := range p.Files {
		if p.Files[i].Name == name {
			return true
		}
	}
	return false
}
