package language

import "strings"

// MaxSuggestions is the most choices Discord accepts in one autocomplete
// response.
const MaxSuggestions = 25

// Popular is the curated default suggestion list, in display order.
var Popular = []string{"EN-US", "ES", "FR", "DE", "JA", "ZH", "PT-BR", "RU", "IT", "NL"}

// Suggest ranks catalog entries against a partial query.
//
// An empty query yields the Popular codes present in the catalog. Otherwise
// entries fall into the first matching class of: exact code, code prefix,
// display-name substring (all case-insensitive). Classes are concatenated in
// that order, each keeping catalog order, and the result is capped at
// MaxSuggestions.
func (c *Catalog) Suggest(query string) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.popular()
	}

	upper := strings.ToUpper(query)
	lower := strings.ToLower(query)

	var exact, prefix, name []Entry
	for _, e := range c.entries {
		switch {
		case e.Code == upper:
			exact = append(exact, e)
		case strings.HasPrefix(e.Code, upper):
			prefix = append(prefix, e)
		case strings.Contains(strings.ToLower(e.Name), lower):
			name = append(name, e)
		}
	}

	out := make([]Entry, 0, min(len(exact)+len(prefix)+len(name), MaxSuggestions))
	out = append(out, exact...)
	out = append(out, prefix...)
	out = append(out, name...)
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

func (c *Catalog) popular() []Entry {
	out := make([]Entry, 0, len(Popular))
	seen := make(map[string]bool, len(Popular))
	for _, code := range Popular {
		i, ok := c.index[code]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, c.entries[i])
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
