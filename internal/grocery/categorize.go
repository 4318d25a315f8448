package grocery

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Other is returned when no keyword matches.
const Other = "Other"

type rule struct {
	category string
	keywords []string
}

// rules map categories to keywords. Keywords match whole words of the item
// name, with an optional plural suffix on the last word. The keyword with the
// most words wins; ties go to the earlier rule.
var rules = []rule{
	{"Frozen", []string{"ice cream", "frozen", "popsicle", "fish sticks"}},
	{"Meat & Seafood", []string{
		"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak",
		"salmon", "tuna", "shrimp", "fish", "lamb", "thịt", "cá",
	}},
	{"Dairy", []string{
		"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "egg", "sữa", "trứng",
	}},
	{"Bakery", []string{
		"bread", "bagel", "bun", "roll", "croissant", "muffin", "tortilla", "cake", "bánh mì",
	}},
	{"Produce", []string{
		"apple", "banana", "orange", "lemon", "lime", "avocado", "tomato", "potato",
		"onion", "garlic", "lettuce", "spinach", "kale", "broccoli", "carrot",
		"celery", "cucumber", "pepper", "mushroom", "grape", "berries", "melon",
		"pear", "peach", "herb", "basil", "cilantro", "ginger", "rau",
	}},
	{"Beverages", []string{
		"water", "juice", "soda", "coffee", "tea", "beer", "wine", "kombucha",
	}},
	{"Snacks", []string{"chips", "cracker", "cookie", "popcorn", "pretzel", "candy", "chocolate", "nuts"}},
	{"Pantry", []string{
		"rice", "pasta", "noodle", "flour", "sugar", "salt", "oil", "vinegar",
		"sauce", "cereal", "oats", "beans", "soup", "honey", "jam", "spice",
		"peanut butter",
	}},
	{"Household", []string{
		"paper towel", "toilet paper", "detergent", "dish soap", "trash bag",
		"sponge", "foil", "bleach",
	}},
	{"Personal Care", []string{
		"shampoo", "conditioner", "toothpaste", "toothbrush", "deodorant",
		"soap", "lotion", "razor",
	}},
}

// Categorize guesses a category for an item name. Matching is
// case-insensitive across scripts.
func Categorize(itemName string) string {
	words := tokenize(itemName)
	if len(words) == 0 {
		return Other
	}

	best, bestLen := Other, 0
	for _, r := range rules {
		for _, kw := range r.keywords {
			kwWords := strings.Fields(kw)
			if len(kwWords) > bestLen && containsPhrase(words, kwWords) {
				best, bestLen = r.category, len(kwWords)
			}
		}
	}
	return best
}

func tokenize(s string) []string {
	return strings.FieldsFunc(cases.Fold().String(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
	})
}

func containsPhrase(words, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(words); i++ {
		if phraseAt(words[i:], phrase) {
			return true
		}
	}
	return false
}

func phraseAt(words, phrase []string) bool {
	last := len(phrase) - 1
	for j, p := range phrase {
		w := words[j]
		if w == p {
			continue
		}
		if j == last && (w == p+"s" || w == p+"es") {
			continue
		}
		return false
	}
	return true
}
