package customer

// TruncatePolicy reduces a merged embedding sequence to at most max
// elements. The sequence passed in is existing vectors followed by the
// newly observed ones, in insertion order.
type TruncatePolicy func(merged [][]float32, max int) [][]float32

// KeepOldest keeps the first max vectors, dropping the newest overflow.
// This matches the historical behavior of the receptionist: the vectors
// captured first stay, late observations are discarded once full.
func KeepOldest(merged [][]float32, max int) [][]float32 {
	if len(merged) <= max {
		return merged
	}
	return merged[:max]
}

// KeepNewest keeps the last max vectors, sliding the window forward so the
// most recent observations survive.
func KeepNewest(merged [][]float32, max int) [][]float32 {
	if len(merged) <= max {
		return merged
	}
	return merged[len(merged)-max:]
}

// MergeEmbeddings appends incoming vectors after the existing ones and
// applies the truncation policy with the MaxFacesPerPerson cap. A nil
// policy defaults to KeepOldest.
func MergeEmbeddings(existing, incoming [][]float32, policy TruncatePolicy) [][]float32 {
	if policy == nil {
		policy = KeepOldest
	}
	merged := make([][]float32, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return policy(merged, MaxFacesPerPerson)
}
