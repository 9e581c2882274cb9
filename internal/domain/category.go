package domain

// Category is one of the two independent poll dimensions.
type Category string

const (
	CategoryDestination Category = "destination"
	CategoryActivity    Category = "activity"
)

// Categories lists the recognized categories in display order.
var Categories = []Category{CategoryDestination, CategoryActivity}

// Valid reports whether the category is one of the two recognized ones.
func (c Category) Valid() bool {
	return c == CategoryDestination || c == CategoryActivity
}

// Table returns the record store table holding the category's options.
func (c Category) Table() string {
	if c == CategoryActivity {
		return "Activities"
	}
	return "Destinations"
}

// Label returns the user-facing (French) name of the category,
// used in duplicate-vote warnings.
func (c Category) Label() string {
	if c == CategoryActivity {
		return "Activité"
	}
	return "Destination"
}

// VotesTable is the record store table holding raw votes.
const VotesTable = "Votes"
