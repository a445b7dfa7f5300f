package locator

import (
	"strings"

	"storelocator/internal/stores"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Filter returns the stores whose name or city contains term (case
// insensitive) or whose zip contains it. A blank term returns every store.
// Relative order is always preserved.
func Filter(list []stores.Store, term string) []stores.Store {
	caser := cases.Lower(language.Und)
	t := caser.String(strings.TrimSpace(term))

	out := make([]stores.Store, 0, len(list))
	if t == "" {
		return append(out, list...)
	}
	for _, s := range list {
		if strings.Contains(caser.String(s.Name), t) ||
			strings.Contains(caser.String(s.City), t) ||
			strings.Contains(s.Zip, t) {
			out = append(out, s)
		}
	}
	return out
}

func contains(list []stores.Store, id string) bool {
	_, ok := stores.Find(list, id)
	return ok
}
