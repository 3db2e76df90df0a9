package core

// Directive is one step of a ticket's print stream. The renderer emits an
// ordered slice of these; the printer sink replays them against a live
// connection. Keeping the stream as data lets rendering stay free of I/O.
type Directive struct {
	Op   Op
	Text string
	// Width/Height multipliers for OpTextSize (1 = normal).
	Width  int
	Height int
}

type Op int

const (
	OpAlignLeft Op = iota
	OpAlignCenter
	OpBoldOn
	OpBoldOff
	OpTextSize
	OpPrintln
	OpSeparator
	OpCut
)

func AlignLeft() Directive          { return Directive{Op: OpAlignLeft} }
func AlignCenter() Directive        { return Directive{Op: OpAlignCenter} }
func BoldOn() Directive             { return Directive{Op: OpBoldOn} }
func BoldOff() Directive            { return Directive{Op: OpBoldOff} }
func TextSize(w, h int) Directive   { return Directive{Op: OpTextSize, Width: w, Height: h} }
func Println(text string) Directive { return Directive{Op: OpPrintln, Text: text} }
func Separator() Directive          { return Directive{Op: OpSeparator} }
func Cut() Directive                { return Directive{Op: OpCut} }
