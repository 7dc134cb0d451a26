// Package hash provides the CRC32-Castagnoli checksum used to protect backup
// record streams.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(entry1)
//	h.Write(entry2)
//	checksum := h.Sum32()
package hash
