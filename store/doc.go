// Package store provides fixed-size record stores and the processing framework
// that walks them.
//
// A RecordStore holds records of one kind addressed by an integer id. It offers
// two access disciplines:
//
//   - Cached: GetRecord and UpdateRecord go through a record cache and a dirty
//     set that is written out by Flush or Close. Missing or freed records are
//     reported as errors.
//   - Forced: ForceGetRecord, ForceGetRaw and ForceUpdateRecord go straight to
//     the file. A forced read never reports absence as an error; a slot that was
//     never written or was freed comes back with InUse() == false.
//
// Bulk work is expressed with a Processor, a set of per-kind handlers:
//
//	p := &store.Processor{
//		Name: "count",
//		Node: func(s store.RecordStore[*record.Node], n *record.Node) error {
//			count++
//			return nil
//		},
//	}
//	err := store.ApplyFiltered(p, nodes, store.InUse[*record.Node])
//
// Scan and ScanByID expose the underlying lazy sequences directly.
package store
