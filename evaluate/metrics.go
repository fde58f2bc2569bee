package evaluate

// RecallAtK returns the fraction of relevant items found in the first k
// recommendations. It is 0 when relevant is empty or k is not positive.
func RecallAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	want := toSet(relevant)
	found := make(map[string]struct{}, len(want))
	for _, item := range head(recommended, k) {
		if _, ok := want[item]; ok {
			found[item] = struct{}{}
		}
	}
	return float64(len(found)) / float64(len(want))
}

// AveragePrecisionAtK averages precision at each relevant hit in the first k
// recommendations, normalised by min(k, |relevant|).
func AveragePrecisionAtK(relevant, recommended []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	want := toSet(relevant)
	var sum float64
	hits := 0
	for i, item := range head(recommended, k) {
		if _, ok := want[item]; !ok {
			continue
		}
		hits++
		sum += float64(hits) / float64(i+1)
	}
	return sum / float64(min(k, len(want)))
}

func head(items []string, k int) []string {
	if len(items) > k {
		return items[:k]
	}
	return items
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
