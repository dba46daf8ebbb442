package js

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

var ErrOverlappingEdits = errors.New("overlapping edits")

// Edit replaces content[Start:End] with Text. Start == End inserts.
type Edit struct {
	Start int
	End   int
	Text  string
}

// ApplyEdits splices edits into content in a single pass. Everything
// outside the edited ranges (comments, whitespace, shebang) is copied
// untouched. Insertions at the same offset keep their given order.
func ApplyEdits(content []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return content, nil
	}

	ordered := append([]Edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var out bytes.Buffer
	out.Grow(len(content))
	last := 0
	for _, edit := range ordered {
		if edit.Start < 0 || edit.End < edit.Start || edit.End > len(content) {
			return nil, fmt.Errorf("edit [%d,%d) out of range for %d bytes", edit.Start, edit.End, len(content))
		}
		if edit.Start < last {
			return nil, fmt.Errorf("%w: [%d,%d) starts before %d", ErrOverlappingEdits, edit.Start, edit.End, last)
		}
		out.Write(content[last:edit.Start])
		out.WriteString(edit.Text)
		last = edit.End
	}
	out.Write(content[last:])
	return out.Bytes(), nil
}
