package core

import (
	"regexp"
	"strconv"
	"strings"
)

// The comanda comment doubles as a control channel: the order system embeds
// a marker prefix when it wants a partial reprint or a new-items ticket,
// and appends the waiter's note after the last '|'. ParseComment contains
// that ambiguity in one total function so rendering never touches the raw
// string.

type RenderMode int

const (
	ModeNormal RenderMode = iota
	ModeReprintSpecific
	ModeNewItems
)

func (m RenderMode) String() string {
	switch m {
	case ModeReprintSpecific:
		return "reprint_specific"
	case ModeNewItems:
		return "new_items"
	default:
		return "normal"
	}
}

const (
	markerReprint  = "REIMPRESIÓN - Solo:"
	markerNewItems = "NUEVOS PLATOS - Solo:"
)

// ParsedItem is one entry extracted from a marker's item list. Entries in
// the reprint marker that do not match "<n>x <description>" are echoed
// verbatim through Raw with Quantity 0.
type ParsedItem struct {
	Quantity    int
	Description string
	Raw         string
}

type ParsedComment struct {
	Mode RenderMode
	// Items is populated only for the two marker modes.
	Items []ParsedItem
	// Instruction is the text the kitchen staff should see, already
	// stripped of any control marker.
	Instruction string
}

var itemEntryRe = regexp.MustCompile(`^(\d+)x\s+(.+)$`)
var newItemsRe = regexp.MustCompile(`(\d+)x\s*([^,]+)`)

// ParseComment classifies a comanda comment into exactly one render mode
// and extracts the embedded item list and displayable instruction. It is
// total: any string, including empty or malformed marker text, yields a
// valid result.
func ParseComment(comment string) ParsedComment {
	control := comment
	instruction := ""
	if idx := strings.LastIndex(comment, "|"); idx >= 0 {
		control = comment[:idx]
		instruction = strings.TrimSpace(comment[idx+1:])
	}

	switch {
	case strings.Contains(control, markerReprint):
		return ParsedComment{
			Mode:        ModeReprintSpecific,
			Items:       parseReprintList(control),
			Instruction: instruction,
		}
	case strings.Contains(control, markerNewItems):
		return ParsedComment{
			Mode:        ModeNewItems,
			Items:       parseNewItemsList(control),
			Instruction: instruction,
		}
	}

	// No marker: the whole comment is user text. When a '|' is present the
	// leading part is still treated as control noise and hidden.
	if instruction == "" && !strings.Contains(comment, "|") {
		instruction = strings.TrimSpace(comment)
	}
	return ParsedComment{Mode: ModeNormal, Instruction: instruction}
}

// parseReprintList splits the list after the reprint marker on commas.
// Entries shaped like "<n>x <description>" become structured items; anything
// else is kept verbatim so the kitchen at least sees what was asked for.
func parseReprintList(control string) []ParsedItem {
	rest := afterMarker(control, markerReprint)
	if rest == "" {
		return nil
	}
	var items []ParsedItem
	for _, entry := range strings.Split(rest, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if m := itemEntryRe.FindStringSubmatch(entry); m != nil {
			qty, err := strconv.Atoi(m[1])
			if err == nil {
				items = append(items, ParsedItem{Quantity: qty, Description: strings.TrimSpace(m[2])})
				continue
			}
		}
		items = append(items, ParsedItem{Raw: entry})
	}
	return items
}

// parseNewItemsList extracts repeated "<n>x <description>" tokens. Unlike
// the reprint path, entries that do not match are dropped without a trace;
// the order system has always relied on that behavior.
func parseNewItemsList(control string) []ParsedItem {
	rest := afterMarker(control, markerNewItems)
	if rest == "" {
		return nil
	}
	var items []ParsedItem
	for _, m := range newItemsRe.FindAllStringSubmatch(rest, -1) {
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items = append(items, ParsedItem{Quantity: qty, Description: strings.TrimSpace(m[2])})
	}
	return items
}

func afterMarker(control, marker string) string {
	idx := strings.Index(control, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(control[idx+len(marker):])
}
