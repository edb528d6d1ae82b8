package codegen

// SeedLoader normalizes schema entries and drops duplicates.
type SeedLoader struct{}

// SeedsFromList normalizes list to protoItems, appending .proto if missing.
// Entries are deduplicated by full path: schemas sharing a base name are
// exactly the collisions the plan has to resolve.
func (SeedLoader) SeedsFromList(list []string) ([]protoItem, error) {
	seen := map[string]bool{}
	seeds := make([]protoItem, 0, len(list))
	for _, s := range list {
		it, err := normalizeItem(s)
		if err != nil {
			return nil, err
		}
		if seen[it.Path] {
			continue
		}
		seen[it.Path] = true
		seeds = append(seeds, it)
	}
	return seeds, nil
}
