package grants

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Row is one grant as listed in the directory spreadsheet.
type Row struct {
	UUID         string `json:"uuid"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ProjectImage string `json:"projectImage,omitempty"`
	Address      string `json:"address"`
}

type rowKey struct {
	uuid    string
	address string
}

// canonicalID reports whether s is a hyphenated version 4 RFC 4122 id.
func canonicalID(s string) bool {
	if len(s) != 36 {
		return false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122
}

// ExtractID returns the grant id held in a uuid cell. The cell either holds
// the id itself or an absolute URL whose last path segment is the id.
func ExtractID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if canonicalID(raw) {
		return raw, true
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "", false
	}
	last := segments[len(segments)-1]
	if canonicalID(last) {
		return last, true
	}
	return "", false
}

// Normalize turns raw sheet values into grant rows. The first row names the
// columns (case-insensitive). Rows without a resolvable id are dropped, and
// when several rows share (uuid, address) only the last one is kept. The
// survivors stay in spreadsheet order.
func Normalize(values [][]string) []Row {
	out := []Row{}
	if len(values) < 2 {
		return out
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, cells := range values[1:] {
		record := make(map[string]string, len(header))
		for i, cell := range cells {
			if i >= len(header) {
				break
			}
			record[header[i]] = cell
		}
		id, ok := ExtractID(record["uuid"])
		if !ok {
			continue
		}
		rows = append(rows, Row{
			UUID:         id,
			Title:        record["title"],
			Description:  record["description"],
			ProjectImage: record["image"],
			Address:      record["address"],
		})
	}

	last := make(map[rowKey]int, len(rows))
	for i, r := range rows {
		last[rowKey{r.UUID, r.Address}] = i
	}
	for i, r := range rows {
		if last[rowKey{r.UUID, r.Address}] == i {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps rows whose title contains term, ignoring case.
func Search(rows []Row, term string) []Row {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Title), term) {
			out = append(out, r)
		}
	}
	return out
}
