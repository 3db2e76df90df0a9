package printer

import (
	"bytes"
	"strings"

	"comandero/internal/core"
)

// ESC/POS encoding of the renderer's directive stream. Only the handful of
// commands the tickets use; anything fancier belongs in firmware land.

const lineWidth = 42

var (
	cmdInit        = []byte{0x1b, '@'}
	cmdAlignLeft   = []byte{0x1b, 'a', 0}
	cmdAlignCenter = []byte{0x1b, 'a', 1}
	cmdBoldOn      = []byte{0x1b, 'E', 1}
	cmdBoldOff     = []byte{0x1b, 'E', 0}
	cmdCut         = []byte{0x1d, 'V', 66, 0}
)

// Encode serializes a directive stream into one printer payload, starting
// from a clean initialized state.
func Encode(directives []core.Directive) []byte {
	var buf bytes.Buffer
	buf.Write(cmdInit)

	for _, d := range directives {
		switch d.Op {
		case core.OpAlignLeft:
			buf.Write(cmdAlignLeft)
		case core.OpAlignCenter:
			buf.Write(cmdAlignCenter)
		case core.OpBoldOn:
			buf.Write(cmdBoldOn)
		case core.OpBoldOff:
			buf.Write(cmdBoldOff)
		case core.OpTextSize:
			buf.Write([]byte{0x1d, '!', sizeByte(d.Width, d.Height)})
		case core.OpPrintln:
			buf.WriteString(d.Text)
			buf.WriteByte('\n')
		case core.OpSeparator:
			buf.WriteString(strings.Repeat("-", lineWidth))
			buf.WriteByte('\n')
		case core.OpCut:
			// Feed past the blade before cutting.
			buf.WriteString("\n\n\n")
			buf.Write(cmdCut)
		}
	}

	return buf.Bytes()
}

// sizeByte packs width/height multipliers into the GS ! argument. The
// printer accepts multipliers 1..8; out-of-range values clamp to normal.
func sizeByte(w, h int) byte {
	if w < 1 || w > 8 {
		w = 1
	}
	if h < 1 || h > 8 {
		h = 1
	}
	return byte((w-1)<<4 | (h - 1))
}
