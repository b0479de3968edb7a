package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePages turns a 1-based selection such as "1,3-5,8-" into sorted,
// de-duplicated 0-based page indices for a document with count pages. An
// empty selection means every page.
func ParsePages(sel string, count int) ([]int, error) {
	seen := make([]bool, count)
	sel = strings.TrimSpace(sel)
	if sel == "" {
		for i := range seen {
			seen[i] = true
		}
		return collect(seen), nil
	}
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		from, to, err := parseRange(part, count)
		if err != nil {
			return nil, err
		}
		for p := from; p <= to; p++ {
			seen[p-1] = true
		}
	}
	return collect(seen), nil
}

func parseRange(part string, count int) (int, int, error) {
	lo, hi, isRange := strings.Cut(part, "-")
	from, err := pageNumber(lo, 1, count)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return from, from, nil
	}
	to, err := pageNumber(hi, count, count)
	if err != nil {
		return 0, 0, err
	}
	if to < from {
		return 0, 0, fmt.Errorf("invalid page range %q", part)
	}
	return from, to, nil
}

func pageNumber(s string, def, count int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("page %d out of range 1-%d", n, count)
	}
	return n, nil
}

func collect(seen []bool) []int {
	var out []int
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
