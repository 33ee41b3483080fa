package cluster

// Compactify produces a fresh sequence containing exactly the records in
// records[begin:end] whose Processed flag is false, preserving relative
// order. The driver must refresh both its cursor and end bound from the
// returned slice's length; any indices into the previous sequence are
// invalidated.
func Compactify(records []*ImageRecord, begin, end int) []*ImageRecord {
	compacted := make([]*ImageRecord, 0, end-begin)
	for i := begin; i < end; i++ {
		if !records[i].Processed {
			compacted = append(compacted, records[i])
		}
	}
	return compacted
}
