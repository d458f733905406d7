package ontomap

import "sync"

var (
	labelColumnsMu     sync.RWMutex
	activeLabelColumns = defaultLabelColumns()
)

func defaultLabelColumns() []string {
	return []string{"label", "labels", "name", "term", "concept", "ラベル", "名称"}
}

// DefaultLabelColumns returns the built-in header names tried when
// auto-detecting the label column of a CSV/TSV file.
func DefaultLabelColumns() []string {
	return cloneStrings(defaultLabelColumns())
}

// SetLabelColumns replaces the header names used for auto-detection.
// A nil slice restores the defaults.
func SetLabelColumns(columns []string) {
	labelColumnsMu.Lock()
	defer labelColumnsMu.Unlock()
	if columns == nil {
		activeLabelColumns = defaultLabelColumns()
		return
	}
	activeLabelColumns = cloneStrings(columns)
}

func getLabelColumns() []string {
	labelColumnsMu.RLock()
	defer labelColumnsMu.RUnlock()
	return cloneStrings(activeLabelColumns)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
