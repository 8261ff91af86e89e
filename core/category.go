package core

import "sort"

// CategoryState is the derived category space of one enum signal: the
// distinct labelled codes present in the current window, remapped to a
// compact zero-based index space in ascending code order. It is a pure
// function of buffer contents plus the signal's EnumLabels and is
// recomputed rather than patched.
type CategoryState struct {
	// ActiveValues lists the distinct codes observed in the window that
	// have a label, ascending.
	ActiveValues []int

	// Categories holds the display labels, Categories[i] being the label
	// of ActiveValues[i].
	Categories []string

	// CodeToIndex and IndexToCode are the two directions of the
	// ActiveValues[i] <-> i mapping.
	CodeToIndex map[int]int
	IndexToCode map[int]int
}

// RemapCategories scans a signal's samples and derives its CategoryState.
// Sample values are rounded to the nearest integer code; codes without an
// entry in enumLabels contribute nothing. Identical inputs always yield
// an identical state, ordering included.
func RemapCategories(samples []Sample, enumLabels map[int]string) CategoryState {
	present := make(map[int]bool)
	for _, s := range samples {
		code := RoundCode(s.Value)
		if _, ok := enumLabels[code]; ok {
			present[code] = true
		}
	}

	active := make([]int, 0, len(present))
	for code := range present {
		active = append(active, code)
	}
	sort.Ints(active)

	state := CategoryState{
		ActiveValues: active,
		Categories:   make([]string, len(active)),
		CodeToIndex:  make(map[int]int, len(active)),
		IndexToCode:  make(map[int]int, len(active)),
	}
	for i, code := range active {
		state.Categories[i] = enumLabels[code]
		state.CodeToIndex[code] = i
		state.IndexToCode[i] = code
	}
	return state
}

// Index returns the plotted axis position for a raw code. The second
// result is false for codes outside the active mapping; such samples are
// omitted from the series entirely.
func (cs CategoryState) Index(code int) (int, bool) {
	idx, ok := cs.CodeToIndex[code]
	return idx, ok
}

// AxisMax returns the top of the category axis domain. Zero or one
// active category collapses the axis to the degenerate [0, 0] span.
func (cs CategoryState) AxisMax() int {
	if len(cs.Categories) <= 1 {
		return 0
	}
	return len(cs.Categories) - 1
}
