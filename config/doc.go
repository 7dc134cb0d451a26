// Package config holds the string key/value parameters a graph store is opened with.
//
// Parameters start from DefaultParams and are overridden by caller input or a
// YAML file:
//
//	params, err := config.Load("recstore.yaml")
//	if err != nil { ... }
//	cacheBytes, err := params.Size(config.NodeStoreMappedMemory)
//
// Values that carry several settings use the grammar
// [true/false] or [key1=value1,key2=value2...]; see ParseMapValue.
package config
