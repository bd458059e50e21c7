package suggestion

import (
	"sort"
	"strings"

	"comanda/backend/internal/domain"
)

const DefaultLimit = 8

// Engine ranks catalog products against the partial name typed on an order.
type Engine struct {
	limit int
}

func NewEngine(limit int) *Engine {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Engine{limit: limit}
}

type candidate struct {
	product domain.Product
	rank    int
	key     string
}

// Suggest returns products whose name contains query, ignoring case. Names
// starting with the query come first, then names with a word starting with it,
// then any other match; ties are alphabetical. limit <= 0 uses the engine default.
func (e *Engine) Suggest(query string, products []domain.Product, limit int) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []domain.Product{}
	}
	if limit <= 0 {
		limit = e.limit
	}

	matches := make([]candidate, 0, len(products))
	for _, product := range products {
		key := strings.ToLower(product.Name)
		rank, ok := matchRank(key, needle)
		if !ok {
			continue
		}
		matches = append(matches, candidate{product: product, rank: rank, key: key})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].key < matches[j].key
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	result := make([]domain.Product, 0, len(matches))
	for _, match := range matches {
		result = append(result, match.product)
	}
	return result
}

func matchRank(name string, needle string) (int, bool) {
	idx := strings.Index(name, needle)
	switch {
	case idx < 0:
		return 0, false
	case idx == 0:
		return 0, true
	}
	for _, word := range strings.Fields(name)[1:] {
		if strings.HasPrefix(word, needle) {
			return 1, true
		}
	}
	return 2, true
}
