package publish

import (
	"fmt"
	"regexp"
	"strconv"
)

// MaxRangeSpan bounds the number of ids a single A-B argument may expand to
const MaxRangeSpan = 1000

var idRange = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ExpandIDs expands every "A-B" argument into the ids A through B inclusive.
// Other arguments pass through. Order is kept and duplicates are not removed.
// A range wider than MaxRangeSpan fails with ErrUsage.
func ExpandIDs(query []string) ([]string, error) {
	var ids []string
	for _, q := range query {
		m := idRange.FindStringSubmatch(q)
		if m == nil {
			ids = append(ids, q)
			continue
		}
		from, errFrom := strconv.Atoi(m[1])
		to, errTo := strconv.Atoi(m[2])
		if errFrom != nil || errTo != nil {
			return nil, fmt.Errorf("id range %s is out of bounds: %w", q, ErrUsage)
		}
		if to-from >= MaxRangeSpan {
			return nil, fmt.Errorf("id range %s spans more than %d ids: %w", q, MaxRangeSpan, ErrUsage)
		}
		for i := from; i <= to; i++ {
			ids = append(ids, strconv.Itoa(i))
		}
	}
	return ids, nil
}
