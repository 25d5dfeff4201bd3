package repository

import "strconv"

// Page bounds a list query. The zero value returns the whole table.
type Page struct {
	Limit  int
	Offset int
}

// clause renders the LIMIT/OFFSET suffix. Values are validated integers, so
// they are inlined rather than bound.
func (p Page) clause() string {
	if p.Limit <= 0 {
		if p.Offset > 0 {
			return " LIMIT " + strconv.Itoa(maxRows) + " OFFSET " + strconv.Itoa(p.Offset)
		}
		return ""
	}
	s := " LIMIT " + strconv.Itoa(p.Limit)
	if p.Offset > 0 {
		s += " OFFSET " + strconv.Itoa(p.Offset)
	}
	return s
}

// maxRows stands in for "no limit" when only an offset is given; MySQL has no
// OFFSET without LIMIT.
const maxRows = 1<<31 - 1
