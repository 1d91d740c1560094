package job

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dshills/stormcore/internal/engine/buffer"
)

// Search tuning.
const (
	ChunkSize = 64 * 1024
	FileBatch = 32
)

// Match is a buffer search hit. Position is in buffer coordinates as of
// ChangeCount changes.
type Match struct {
	Position    uint64
	Line        int
	ChangeCount int
}

// SearchBuffer starts a search for query in the buffer behind h. The
// buffer is scanned in chunks, each under the read lock, so edits can
// interleave; the scan position follows them.
func SearchBuffer(h *buffer.Handle, query string) *Results[Match] {
	res := NewResults[Match]()
	if query == "" {
		res.finish()
		return res
	}
	h.Retain()
	Start(res, func(publish func([]Match) bool) {
		defer h.Release()

		var from uint64
		changeIndex := -1
		for {
			var found []Match
			more := false
			h.Read(func(b *buffer.Buffer) {
				if changeIndex >= 0 {
					buffer.AdjustPositions(b.ChangesSince(changeIndex), &from)
				}
				changeIndex = b.ChangeCount()

				c := b.Contents()
				if from >= c.Len() {
					return
				}
				end := min(from+ChunkSize, c.Len())
				text := c.SliceString(from, min(end+uint64(len(query))-1, c.Len()))
				for i := 0; ; {
					j := strings.Index(text[i:], query)
					if j < 0 || uint64(i+j) >= end-from {
						break
					}
					pos := from + uint64(i+j)
					found = append(found, Match{Position: pos, Line: c.LineAt(pos), ChangeCount: changeIndex})
					i += j + 1
				}
				from = end
				more = end < c.Len()
			})
			if !publish(found) || !more {
				return
			}
		}
	})
	return res
}

// SearchFiles starts a walk of root for files whose slash-separated path
// relative to root contains query, ignoring case. Hidden directories are
// skipped.
func SearchFiles(root, query string) *Results[string] {
	res := NewResults[string]()
	needle := strings.ToLower(query)
	Start(res, func(publish func([]string) bool) {
		var batch []string
		stopped := false
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if !strings.Contains(strings.ToLower(rel), needle) {
				return nil
			}
			batch = append(batch, rel)
			if len(batch) >= FileBatch {
				if !publish(batch) {
					stopped = true
					return filepath.SkipAll
				}
				batch = nil
			}
			return nil
		})
		if !stopped && len(batch) > 0 {
			publish(batch)
		}
	})
	return res
}
