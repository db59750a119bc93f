package core

import (
	"fmt"
	"sort"
)

// DefaultTopN is the number of distinct items kept before folding the
// remainder into the Others bucket.
const DefaultTopN = 10

// OthersName is the synthetic entry holding everything beyond the top-N
// cutoff. It is never exploded or re-aggregated.
const OthersName = "Others"

// maxLabelNameLen caps item names in chart labels so the rendered chart
// stays legible.
const maxLabelNameLen = 20

// Aggregate merges line items sharing an identical name. Matching is exact
// and case-sensitive, no trimming or fuzzy matching. The result keeps the
// first-seen order of each distinct name; empty input yields empty output.
func Aggregate(items []LineItem) []AggregatedItem {
	index := make(map[string]int, len(items))
	aggregated := make([]AggregatedItem, 0, len(items))
	for _, item := range items {
		if i, seen := index[item.Name]; seen {
			aggregated[i].Price += item.Price
			aggregated[i].Count++
			continue
		}
		index[item.Name] = len(aggregated)
		aggregated = append(aggregated, AggregatedItem{
			Name:  item.Name,
			Price: item.Price,
			Count: 1,
		})
	}
	return aggregated
}

// TopN ranks aggregated items descending by price (ties keep the
// aggregator's first-seen order) and truncates to n entries. When more than
// n distinct items exist, the prices of the remainder are summed into one
// Others entry appended last, so total mass is preserved for any n.
func TopN(items []AggregatedItem, n int) []AggregatedItem {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := make([]AggregatedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price > ranked[j].Price
	})

	if len(ranked) <= n {
		return ranked
	}

	var rest float64
	for _, item := range ranked[n:] {
		rest += item.Price
	}

	top := ranked[:n:n]
	return append(top, AggregatedItem{Name: OthersName, Price: rest, Count: 1})
}

// BuildLabel renders one selected item as a single-line chart label:
// "<count prefix><truncated name> (<formatted price>)". The count prefix is
// present only when the item occurred more than once; the Others bucket
// always has count 1 and therefore no prefix. Names are hard-capped at the
// first 20 characters, no ellipsis.
func BuildLabel(item AggregatedItem, currency string) string {
	name := item.Name
	if runes := []rune(name); len(runes) > maxLabelNameLen {
		name = string(runes[:maxLabelNameLen])
	}

	prefix := ""
	if item.Count > 1 {
		prefix = fmt.Sprintf("%d ", item.Count)
	}

	return fmt.Sprintf("%s%s (%s)", prefix, name, FormatAmount(currency, item.Price))
}

// BuildChartDataset runs aggregation, top-N selection and label building
// over a receipt's raw item list. sum(Sizes) equals the sum over all raw
// item prices regardless of n.
func BuildChartDataset(items []LineItem, currency string, n int) ChartDataset {
	selected := TopN(Aggregate(items), n)

	dataset := ChartDataset{
		Sizes:  make([]float64, 0, len(selected)),
		Labels: make([]string, 0, len(selected)),
	}
	for _, item := range selected {
		dataset.Sizes = append(dataset.Sizes, item.Price)
		dataset.Labels = append(dataset.Labels, BuildLabel(item, currency))
	}
	return dataset
}
