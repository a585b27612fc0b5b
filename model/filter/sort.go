package filter

// Sort is the single active ordering of a catalog listing.
type Sort string

const (
	SortPriceLowToHigh Sort = "price-lowtohigh"
	SortPriceHighToLow Sort = "price-hightolow"
	SortTitleAToZ      Sort = "title-atoz"
	SortTitleZToA      Sort = "title-ztoa"
)

// DefaultSort is applied on every catalog mount.
const DefaultSort = SortPriceLowToHigh

// SortOptions in display order, with labels.
var SortOptions = []struct {
	ID    Sort
	Label string
}{
	{SortPriceLowToHigh, "Price: Low to High"},
	{SortPriceHighToLow, "Price: High to Low"},
	{SortTitleAToZ, "Title: A to Z"},
	{SortTitleZToA, "Title: Z to A"},
}

func (s Sort) Valid() bool {
	switch s {
	case SortPriceLowToHigh, SortPriceHighToLow, SortTitleAToZ, SortTitleZToA:
		return true
	}
	return false
}

// ParseSort returns the named sort, falling back to DefaultSort for unknown input.
func ParseSort(s string) Sort {
	if v := Sort(s); v.Valid() {
		return v
	}
	return DefaultSort
}

// OrderClause is the SQL ORDER BY for the sort.
func (s Sort) OrderClause() string {
	switch s {
	case SortPriceHighToLow:
		return "price DESC"
	case SortTitleAToZ:
		return "title ASC"
	case SortTitleZToA:
		return "title DESC"
	default:
		return "price ASC"
	}
}
