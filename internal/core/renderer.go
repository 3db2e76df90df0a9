package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	takeawayLabel    = "PARA LLEVAR"
	noTableLabel     = "MESA(S): N/A"
	instructionsHead = "!  INSTRUCCIONES  !"
	reprintFooter    = "REIMPRESIÓN"
)

// RenderOptions tweaks the common ticket frame.
type RenderOptions struct {
	// SkipHeader lets a caller that already printed its own header reuse
	// the item/instruction/footer body.
	SkipHeader bool
	// Reprint appends the REIMPRESIÓN marker line before the cut.
	Reprint bool
}

// RenderTicket turns one flattened job into its print stream. items is the
// final, category-resolved list to print for the job's render mode; the
// caller picks it (order items for normal mode, parsed comment items for
// the marker modes). Pure: the only ambient input is now, used for the
// "Impreso" footer.
func RenderTicket(job Job, parsed ParsedComment, items []Item, now time.Time, opts RenderOptions) []Directive {
	var ds []Directive

	if !opts.SkipHeader {
		ds = append(ds, renderHeader(job)...)
	}

	if job.Order == nil {
		ds = append(ds,
			AlignCenter(),
			Println("Pedido no encontrado"),
		)
		ds = append(ds, renderFooter(now, opts.Reprint)...)
		return ds
	}

	ds = append(ds, AlignLeft())
	for _, it := range PartitionByBroth(items) {
		ds = append(ds, Println(formatItemLine(it)))
	}

	if parsed.Instruction != "" {
		ds = append(ds,
			Separator(),
			AlignCenter(),
			BoldOn(),
			Println(instructionsHead),
			BoldOff(),
			AlignLeft(),
			Println(parsed.Instruction),
		)
	}

	ds = append(ds, renderFooter(now, opts.Reprint)...)
	return ds
}

func renderHeader(job Job) []Directive {
	ds := []Directive{
		AlignCenter(),
		BoldOn(),
		TextSize(2, 1),
		Println("COCINA"),
		TextSize(1, 1),
		Println(fmt.Sprintf("COMANDA #%d", job.ID)),
		BoldOff(),
		Separator(),
		AlignLeft(),
	}
	if job.Order != nil {
		ds = append(ds,
			Println("Fecha: "+job.Order.CreatedAt.Format("02/01/2006 15:04")),
			BoldOn(),
			Println(TableLine(job.Order)),
			BoldOff(),
			Separator(),
		)
	}
	return ds
}

func renderFooter(now time.Time, reprint bool) []Directive {
	ds := []Directive{
		Separator(),
		AlignCenter(),
		Println("Impreso: " + now.Format("15:04:05")),
	}
	if reprint {
		ds = append(ds, BoldOn(), Println(reprintFooter), BoldOff())
	}
	ds = append(ds, Cut())
	return ds
}

// TableLine resolves where the order should be served. Table number 0 is a
// legacy sentinel meaning takeaway and must never be printed literally.
func TableLine(o *Order) string {
	if o.Takeaway != nil && *o.Takeaway {
		return takeawayLabel
	}

	var real []string
	for _, n := range o.Tables {
		if n != 0 {
			real = append(real, strconv.Itoa(n))
		}
	}

	if len(o.Tables) > 0 && len(real) == 0 {
		// Every assignment carries the sentinel.
		return takeawayLabel
	}
	if len(real) > 0 {
		return "MESA(S): " + strings.Join(real, ", ")
	}
	if o.Takeaway == nil {
		// Empty table list and no explicit dine-in signal.
		return takeawayLabel
	}
	return noTableLabel
}

// formatItemLine lays the quantity column out at a fixed four characters,
// description immediately after. A zero quantity means the entry came in as
// free text from a reprint marker and is echoed as-is.
func formatItemLine(it Item) string {
	desc := it.Description
	if desc == "" {
		desc = PlaceholderDish
	}
	if it.Quantity <= 0 {
		return desc
	}
	return fmt.Sprintf("%4s%s", strconv.Itoa(it.Quantity)+"x", desc)
}

// RenderTestTicket is the fixed diagnostic page behind the "probar
// impresora" button. No database involved.
func RenderTestTicket(now time.Time) []Directive {
	return []Directive{
		AlignCenter(),
		Println("Página de Prueba"),
		Println("Conexión Exitosa"),
		Println("Fecha: " + now.Format("02/01/2006 15:04:05")),
		Cut(),
	}
}
