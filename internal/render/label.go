package render

import (
	"math"
	"unicode/utf8"

	"github.com/JackWithOneEye/hilbertchart/internal/hilbert"
)

const (
	maxPathCompression = 16
	maxPathExpansion   = .4

	maxCellCompression = .25
	maxCellExpansion   = .15
	maxCellTextLength  = .95

	fontScale = 1.4
)

// Label is a text fitted to a range, in cell units relative to the start
// cell.
type Label struct {
	Text       string
	FontSize   float64
	TextLength float64

	// Path is the path the text follows. It is empty for single-cell labels,
	// which are centred on their cell.
	Path string

	// StartOffset centres the text along Path, in percent.
	StartOffset float64
}

// FitLabel fits text onto the layout. It reports false when the text would
// be compressed beyond legibility.
func FitLabel(text string, l hilbert.Layout, simplify bool) (Label, bool) {
	n := utf8.RuneCountInString(text)
	if n == 0 || l.CellWidth <= 0 {
		return Label{}, false
	}
	lbl := Label{Text: text, FontSize: fontScale / math.Sqrt(l.CellWidth)}

	steps := len(l.PathVertices)
	if steps == 0 {
		if float64(n)/l.CellWidth > maxCellCompression {
			return Label{}, false
		}
		lbl.TextLength = min(maxCellTextLength, float64(n)*maxCellExpansion)
		return lbl, true
	}

	if float64(n)/float64(steps) > maxPathCompression {
		return Label{}, false
	}
	lbl.TextLength = min(float64(steps), float64(n)*maxPathExpansion)
	lbl.StartOffset = (1 - lbl.TextLength/float64(steps)) / 2 * 100
	lbl.Path = labelPath(l.PathVertices, simplify)
	return lbl, true
}

// labelPath returns the path a label follows. A walk that only goes left is
// drawn from its far end so the text is not upside down.
func labelPath(dirs []hilbert.Direction, simplify bool) string {
	if d, ok := hilbert.AllHorizontal(dirs); ok && d == hilbert.Left {
		return pathData(-len(dirs), 0, hilbert.Reverse(dirs), simplify)
	}
	return pathData(0, 0, dirs, simplify)
}
