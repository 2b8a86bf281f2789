package item

import "fmt"

// DietaryTags is the fixed vocabulary an item's tags are drawn from.
var DietaryTags = []string{
	"Dairy-Free",
	"Gluten-Free",
	"Nut-Free",
	"Vegan",
	"Vegetarian",
	"Contains Alcohol",
}

// ValidateTags rejects tags outside the vocabulary and duplicates within one
// submission. An empty list is valid.
func ValidateTags(tags []string) error {
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if !validTag(tag) {
			return fmt.Errorf("unknown dietary tag %q", tag)
		}
		if seen[tag] {
			return fmt.Errorf("duplicate dietary tag %q", tag)
		}
		seen[tag] = true
	}
	return nil
}

func validTag(tag string) bool {
	for _, t := range DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}
