package domain

// Revenue is the monthly income derived from enrollments and catalog prices.
type Revenue struct {
	Total       int            `json:"total"`
	ByProgram   map[string]int `json:"by_program"`
	Enrollments int            `json:"enrollments"`
	// Unpriced counts enrollments whose program is not in the catalog.
	Unpriced int `json:"unpriced"`
}

// TotalRevenue sums catalog prices over enrollments. Program names match
// case-insensitively and unknown programs contribute 0.
func TotalRevenue(enrollments []Enrollment) Revenue {
	rev := Revenue{
		ByProgram:   make(map[string]int),
		Enrollments: len(enrollments),
	}
	for _, e := range enrollments {
		p, ok := LookupProgram(e.Program)
		if !ok {
			rev.Unpriced++
			continue
		}
		rev.Total += p.Price
		rev.ByProgram[p.Name] += p.Price
	}
	return rev
}
