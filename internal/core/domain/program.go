package domain

import "strings"

// Program is an entry of the static program catalog.
type Program struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Price    int      `json:"price"`
	AgeRange string   `json:"age_range"`
	Features []string `json:"features"`
}

const (
	ProgramInfant      = "infant"
	ProgramPreschool   = "preschool"
	ProgramAfterschool = "afterschool"
)

var catalog = []Program{
	{
		Name:     ProgramInfant,
		Title:    "Infant Daycare",
		Price:    450,
		AgeRange: "6 Months - 2 Years",
		Features: []string{"Organic Meals Included", "Individual Nap Schedules", "Tummy Time Play", "Daily Digital Reports"},
	},
	{
		Name:     ProgramPreschool,
		Title:    "Preschool Academy",
		Price:    550,
		AgeRange: "3 - 5 Years",
		Features: []string{"Full Hot Lunch", "Phonics & STEM", "Potty Training Support", "Outdoor Exploration"},
	},
	{
		Name:     ProgramAfterschool,
		Title:    "After School",
		Price:    300,
		AgeRange: "6 - 12 Years",
		Features: []string{"Homework Assistance", "Healthy Evening Snacks", "Music Workshops", "Safe Bus Pick-up"},
	},
}

// Catalog returns the programs in display order.
func Catalog() []Program {
	out := make([]Program, len(catalog))
	copy(out, catalog)
	return out
}

// LookupProgram matches a program name case-insensitively.
func LookupProgram(name string) (Program, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range catalog {
		if p.Name == key {
			return p, true
		}
	}
	return Program{}, false
}

// PriceOf returns the monthly price of a program, or 0 when the name is unknown.
func PriceOf(name string) int {
	p, ok := LookupProgram(name)
	if !ok {
		return 0
	}
	return p.Price
}

// NormalizeProgram returns the catalog spelling of name, or name trimmed and
// lowercased when it is not in the catalog.
func NormalizeProgram(name string) string {
	if p, ok := LookupProgram(name); ok {
		return p.Name
	}
	return strings.ToLower(strings.TrimSpace(name))
}
