// Package insights генерирует тексты корневых причин, профилактики и шагов исправления
// для паттерна по выборке текстов фидбэка.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"qcinsights/internal/domain/models"
)

// Input данные одной группы записей для генерации
type Input struct {
	Category  string
	Samples   []string
	Keywords  []string
	ItemCount int
}

// Insights три списка текстов, каждый непустой
type Insights struct {
	RootCauses      []string `json:"root_causes"`
	PreventionTips  []string `json:"prevention_tips"`
	ResolutionSteps []string `json:"resolution_steps"`
}

// signal контентный сигнал: набор фраз и шаблоны предложений.
// Шаблон rootCause получает количество совпавших образцов, их общее число и процент.
type signal struct {
	name       string
	phrases    []string
	rootCause  string
	prevention string
	resolution string
}

var contentSignals = []signal{
	{
		name:       "clone",
		phrases:    []string{"clone", "template", "old property", "previous property"},
		rootCause:  "%d of %d samples (%d%%) reference clone or template leftovers: content from the source site was not replaced",
		prevention: "Run the clone cleanup checklist for names, contact details and photos before submitting the site for QC",
		resolution: "Search the site for the source property's name and contact details and replace every occurrence",
	},
	{
		name:       "image",
		phrases:    []string{"image", "photo", "picture", "gallery", "logo"},
		rootCause:  "%d of %d samples (%d%%) involve images: assets were missing, wrong or low quality at build time",
		prevention: "Confirm the final asset list with the client before the build and check hero and gallery images at review",
		resolution: "Replace the affected images with approved client assets and re-check alt text",
	},
	{
		name:       "link",
		phrases:    []string{"link", "url", "redirect", "404", "href"},
		rootCause:  "%d of %d samples (%d%%) mention links that were broken or pointed to the wrong destination",
		prevention: "Click through every navigation item and call-to-action button before handoff",
		resolution: "Fix the target URLs and run a broken-link check over the whole site",
	},
	{
		name:       "copy",
		phrases:    []string{"copy", "content", "text", "typo", "spelling", "wording"},
		rootCause:  "%d of %d samples (%d%%) concern copy that did not match the approved content document",
		prevention: "Paste copy directly from the approved content document and proofread headings before QC",
		resolution: "Update the copy from the latest content document and proofread the page",
	},
	{
		name:       "stale",
		phrases:    []string{"not updated", "still", "incorrect", "outdated"},
		rootCause:  "%d of %d samples (%d%%) describe content that was not updated or stayed incorrect after earlier changes",
		prevention: "Track every requested change in the ticket checklist and re-verify it after publishing",
		resolution: "Re-apply the requested updates and confirm them on the live page",
	},
	{
		name:       "missing",
		phrases:    []string{"missing", "blank", "empty", "not added"},
		rootCause:  "%d of %d samples (%d%%) report missing or empty elements",
		prevention: "Compare each page against the sitemap and content document to catch missing sections before QC",
		resolution: "Add the missing elements and confirm every section renders with content",
	},
}

// recurringPhrases фразы, которые ищутся в неклассифицированных образцах
var recurringPhrases = []string{
	"not updated",
	"should be",
	"from clone",
	"needs to be",
	"please update",
	"is missing",
	"still showing",
	"does not match",
}

// minPhraseSamples фраза считается повторяющейся с этого числа образцов
const minPhraseSamples = 2

// Generator генератор инсайтов. Детерминирован: одинаковый вход дает одинаковый результат.
type Generator struct{}

// NewGenerator создает генератор
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate строит три списка по образцам группы
func (g *Generator) Generate(in Input) Insights {
	var out Insights

	lowered := make([]string, len(in.Samples))
	for i, s := range in.Samples {
		lowered[i] = strings.ToLower(s)
	}
	joined := strings.Join(lowered, "\n")
	total := len(lowered)

	for _, sig := range contentSignals {
		if !containsAny(joined, sig.phrases) {
			continue
		}
		matched := countSamples(lowered, sig.phrases)
		out.RootCauses = append(out.RootCauses, fmt.Sprintf(sig.rootCause, matched, total, percent(matched, total)))
		out.PreventionTips = append(out.PreventionTips, sig.prevention)
		out.ResolutionSteps = append(out.ResolutionSteps, sig.resolution)
	}

	g.applyCategoryRules(&out, in, lowered)
	g.applyFallbacks(&out, in)
	return out
}

func (g *Generator) applyCategoryRules(out *Insights, in Input, lowered []string) {
	name := strings.ToLower(in.Category)

	if strings.Contains(name, "photo") {
		out.RootCauses = append(out.RootCauses,
			fmt.Sprintf("Image problems recur across %d items: asset handoff from the client is the weak point", in.ItemCount))
		out.PreventionTips = append(out.PreventionTips, "Keep an approved photo folder per property and use only assets from it")
		out.ResolutionSteps = append(out.ResolutionSteps, "Request missing photos from the client and use approved stock images as a temporary placeholder")
	}
	if strings.Contains(name, "link") {
		out.PreventionTips = append(out.PreventionTips, "Keep a per-site URL map for buttons and menu items and review it at QC")
		out.ResolutionSteps = append(out.ResolutionSteps, "Verify every updated link in a private browser window after publishing")
	}
	if strings.Contains(name, "copy") {
		out.PreventionTips = append(out.PreventionTips, "Lock copy in a content document before the build and link it in the QC ticket")
		out.ResolutionSteps = append(out.ResolutionSteps, "Compare the live text with the content document line by line")
	}
	if in.Category == models.UncategorizedCategory {
		for _, p := range frequentPhrases(lowered) {
			out.RootCauses = append(out.RootCauses,
				fmt.Sprintf("Recurring phrase %q appears in %d uncategorized samples", p.phrase, p.count))
		}
		out.ResolutionSteps = append(out.ResolutionSteps,
			"Review uncategorized feedback and extend the category keywords so these items can be classified")
	}
}

func (g *Generator) applyFallbacks(out *Insights, in Input) {
	if len(out.RootCauses) == 0 {
		cause := fmt.Sprintf("%d items share the %s category without a dominant content signal", in.ItemCount, in.Category)
		if len(in.Keywords) > 0 {
			top := in.Keywords
			if len(top) > 5 {
				top = top[:5]
			}
			cause += "; most frequent terms: " + strings.Join(top, ", ")
		}
		out.RootCauses = append(out.RootCauses, cause)
	}
	if len(out.PreventionTips) == 0 {
		out.PreventionTips = append(out.PreventionTips,
			fmt.Sprintf("Add a %s check to the QC checklist based on the %d recorded items", in.Category, in.ItemCount))
	}
	if len(out.ResolutionSteps) == 0 {
		out.ResolutionSteps = append(out.ResolutionSteps,
			fmt.Sprintf("Review the %d %s items and apply the fixes described in the feedback", in.ItemCount, in.Category))
	}
}

// Describe описание, которое получает паттерн при создании
func Describe(category string, count int, formats []models.SourceFormat) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return fmt.Sprintf("Recurring %s feedback: %d records from %s", category, count, strings.Join(names, ", "))
}

type phraseCount struct {
	phrase string
	count  int
}

// frequentPhrases фразы, встреченные минимум в двух образцах, по убыванию частоты
func frequentPhrases(lowered []string) []phraseCount {
	var found []phraseCount
	for _, phrase := range recurringPhrases {
		n := countSamples(lowered, []string{phrase})
		if n >= minPhraseSamples {
			found = append(found, phraseCount{phrase: phrase, count: n})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].count > found[j].count
	})
	return found
}

func countSamples(lowered []string, phrases []string) int {
	n := 0
	for _, s := range lowered {
		if containsAny(s, phrases) {
			n++
		}
	}
	return n
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
