package nts

// MergeResult counts what a merge did to the live collection.
type MergeResult struct {
	Added     int
	Updated   int
	Unchanged int
}

// Changed reports whether the merge altered the collection.
func (r MergeResult) Changed() bool { return r.Added > 0 || r.Updated > 0 }

// Merge combines imported records into current by identity. A record whose
// id is new is appended; a record whose id exists replaces the current one
// only if it is strictly newer by lastModified. Merging the same input twice
// is a no-op the second time. Neither input slice is modified.
func Merge[T Record[T]](current, imported []T) ([]T, MergeResult) {
	var res MergeResult
	merged := make([]T, len(current), len(current)+len(imported))
	copy(merged, current)

	index := make(map[string]int, len(merged))
	for i, rec := range merged {
		index[rec.RecordID()] = i
	}

	for _, rec := range imported {
		i, ok := index[rec.RecordID()]
		if !ok {
			index[rec.RecordID()] = len(merged)
			merged = append(merged, rec)
			res.Added++
			continue
		}
		if rec.Modified().After(merged[i].Modified()) {
			merged[i] = rec
			res.Updated++
		} else {
			res.Unchanged++
		}
	}
	return merged, res
}

// reconcile refreshes fetched records with any cached copy that is strictly
// newer. Only ids present in fetched are kept; order follows fetched.
func reconcile[T Record[T]](fetched, cached []T) ([]T, int) {
	byID := make(map[string]T, len(cached))
	for _, rec := range cached {
		byID[rec.RecordID()] = rec
	}
	out := make([]T, len(fetched))
	kept := 0
	for i, rec := range fetched {
		out[i] = rec
		if c, ok := byID[rec.RecordID()]; ok && c.Modified().After(rec.Modified()) {
			out[i] = c
			kept++
		}
	}
	return out, kept
}
