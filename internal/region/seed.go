package region

import "math"

// seedRegion is one entry of the fixed reference list used to populate an
// empty queue.
type seedRegion struct {
	Name       string
	Population int
	PLZ        string
}

// seedRegions lists the major German regions, largest first. Priority is
// derived coarsely from population (population / 10000).
var seedRegions = []seedRegion{
	{"Berlin", 3645000, "1"},
	{"Hamburg", 1841000, "2"},
	{"München", 1472000, "8"},
	{"Köln", 1084000, "5"},
	{"Frankfurt am Main", 753000, "6"},
	{"Stuttgart", 635000, "70"},
	{"Düsseldorf", 619000, "4"},
	{"Leipzig", 587000, "04"},
	{"Dortmund", 588000, "44"},
	{"Essen", 583000, "45"},
	{"Bremen", 563000, "28"},
	{"Dresden", 556000, "01"},
	{"Hannover", 536000, "30"},
	{"Nürnberg", 510000, "90"},
	{"Duisburg", 498000, "47"},
	{"Bochum", 365000, "44"},
	{"Bielefeld", 334000, "33"},
	{"Bonn", 330000, "53"},
	{"Münster", 315000, "48"},
	{"Mannheim", 310000, "68"},
	{"Karlsruhe", 308000, "76"},
	{"Augsburg", 296000, "86"},
	{"Wiesbaden", 278000, "65"},
	{"Freiburg", 231000, "79"},
	{"Mainz", 218000, "55"},
}

// seedPriority derives a coarse priority score from population.
func seedPriority(population int) int {
	return int(math.Round(float64(population) / 10000))
}
