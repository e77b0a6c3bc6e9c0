package classification

import (
	"sort"
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// StemGroup ключевые слова, сведенные к одной основе
type StemGroup struct {
	Stem  string   `json:"stem"`
	Words []string `json:"words"`
}

// KeywordStemmer группирует словоформы ключевых слов (Snowball, английский)
type KeywordStemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
}

// NewKeywordStemmer создает стеммер с кэшем
func NewKeywordStemmer() *KeywordStemmer {
	return &KeywordStemmer{
		language: "english",
		cache:    make(map[string]string),
	}
}

// Stem возвращает основу слова; при ошибке стемминга возвращается само слово
func (s *KeywordStemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	cached, ok := s.cache[normalized]
	s.mu.RUnlock()
	if ok {
		return cached
	}

	stemmed, err := snowball.Stem(normalized, s.language, true)
	if err != nil || stemmed == "" {
		stemmed = normalized
	}

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()
	return stemmed
}

// Group сводит ключевые слова в группы по основе.
// Группы упорядочены по размеру, затем по первому появлению.
func (s *KeywordStemmer) Group(keywords []string) []StemGroup {
	index := make(map[string]int)
	var groups []StemGroup
	for _, kw := range keywords {
		stem := s.Stem(kw)
		if stem == "" {
			continue
		}
		i, ok := index[stem]
		if !ok {
			index[stem] = len(groups)
			groups = append(groups, StemGroup{Stem: stem})
			i = len(groups) - 1
		}
		groups[i].Words = append(groups[i].Words, kw)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Words) > len(groups[j].Words)
	})
	return groups
}
