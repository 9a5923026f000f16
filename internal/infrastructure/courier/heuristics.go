package courier

import (
	"math"
	"strings"

	"github.com/boutique/storefront/internal/domain/catalog"
	"github.com/boutique/storefront/internal/domain/order"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizePhone cleans a customer phone number into the 11-digit local format
// (01XXXXXXXXX). It is best-effort and may still return an invalid number.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "01"):
		return digits
	case strings.HasPrefix(digits, "8801") && len(digits) == 13:
		return digits[2:]
	case len(digits) == 10 && strings.HasPrefix(digits, "1"):
		return "0" + digits
	case len(digits) > 11:
		digits = digits[len(digits)-11:]
	}
	if len(digits) == 11 && !strings.HasPrefix(digits, "01") {
		digits = "01" + digits[2:]
	}
	return digits
}

// Per-unit weight estimates in kilograms
const (
	jewelryUnitWeight  = 0.05
	clothingUnitWeight = 0.4
	defaultUnitWeight  = 0.3

	minParcelWeight = 0.1
	maxParcelWeight = 5.0
)

// EstimateWeight sums per-unit category weights and clamps the result to [0.1, 5.0] kg.
// categories maps product IDs to catalog categories; missing entries count as unknown.
func EstimateWeight(items []order.Item, categories map[int64]string) float64 {
	total := 0.0
	for _, item := range items {
		unit := defaultUnitWeight
		switch strings.ToLower(categories[item.ProductID]) {
		case catalog.CategoryJewelry:
			unit = jewelryUnitWeight
		case catalog.CategoryClothing:
			unit = clothingUnitWeight
		}
		total += unit * float64(item.Quantity)
	}
	total = math.Max(minParcelWeight, math.Min(maxParcelWeight, total))
	return math.Round(total*100) / 100
}

type place struct {
	needle string
	city   string
	zone   string
}

// knownPlaces is checked in order; areas come before the cities that contain them.
var knownPlaces = []place{
	{"dhanmondi", "dhaka", "dhanmondi"},
	{"gulshan", "dhaka", "gulshan"},
	{"banani", "dhaka", "banani"},
	{"mirpur", "dhaka", "mirpur"},
	{"uttara", "dhaka", "uttara"},
	{"mohammadpur", "dhaka", "mohammadpur"},
	{"motijheel", "dhaka", "motijheel"},
	{"badda", "dhaka", "badda"},
	{"bashundhara", "dhaka", "bashundhara"},
	{"savar", "dhaka", "savar"},
	{"gazipur", "gazipur", "gazipur"},
	{"narayanganj", "narayanganj", "narayanganj"},
	{"chattogram", "chattogram", "chattogram"},
	{"chittagong", "chattogram", "chattogram"},
	{"cox's bazar", "cox's bazar", "cox's bazar"},
	{"sylhet", "sylhet", "sylhet"},
	{"rajshahi", "rajshahi", "rajshahi"},
	{"khulna", "khulna", "khulna"},
	{"barishal", "barishal", "barishal"},
	{"barisal", "barishal", "barishal"},
	{"rangpur", "rangpur", "rangpur"},
	{"mymensingh", "mymensingh", "mymensingh"},
	{"cumilla", "cumilla", "cumilla"},
	{"comilla", "cumilla", "cumilla"},
	{"bogura", "bogura", "bogura"},
	{"bogra", "bogura", "bogura"},
	{"dhaka", "dhaka", "dhaka"},
}

// ResolveDestination matches the shipping address against known cities and areas
// and returns the title-cased city and zone, defaulting to defaultCity.
func ResolveDestination(address, defaultCity string) (city, zone string) {
	// a Caser is stateful and must not be shared between goroutines
	title := cases.Title(language.English)
	lower := strings.ToLower(address)
	for _, p := range knownPlaces {
		if strings.Contains(lower, p.needle) {
			return title.String(p.city), title.String(p.zone)
		}
	}
	city = title.String(strings.ToLower(defaultCity))
	return city, city
}
