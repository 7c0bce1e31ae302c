package entity

import "strings"

// CategorySeparator joins the selected categories of a submission.
const CategorySeparator = ", "

var Categories = []string{
	"Medicinal",
	"Food / Cooking",
	"Religious / Ritual",
	"Ecological / Environmental",
	"Craft / Utility",
	"Other",
}

var AgeGroups = []string{"18–30", "31–50", "51–70", "70+"}

func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func IsKnownAgeGroup(group string) bool {
	for _, g := range AgeGroups {
		if g == group {
			return true
		}
	}
	return false
}

func JoinCategories(categories []string) string {
	return strings.Join(categories, CategorySeparator)
}

// SplitCategories is the inverse of JoinCategories; blank entries are dropped.
func SplitCategories(joined string) []string {
	var out []string
	for _, c := range strings.Split(joined, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
