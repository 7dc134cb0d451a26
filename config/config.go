package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Recognised parameter keys.
const (
	UseMemoryMappedBuffers   = "use_memory_mapped_buffers"
	DumpConfiguration        = "dump_configuration"
	BackupSlave              = "backup_slave"
	ReadOnly                 = "read_only"
	StoreDir                 = "store_dir"
	CacheType                = "cache_type"
	RebuildIDGeneratorsFast  = "rebuild_idgenerators_fast"
	AllowStoreUpgrade        = "allow_store_upgrade"
	StringBlockSize          = "string_block_size"
	ArrayBlockSize           = "array_block_size"
	NodeAutoIndexing         = "node_auto_indexing"
	RelationshipAutoIndexing = "relationship_auto_indexing"

	NodeStoreMappedMemory             = "neostore.nodestore.db.mapped_memory"
	RelationshipStoreMappedMemory     = "neostore.relationshipstore.db.mapped_memory"
	PropertyStoreMappedMemory         = "neostore.propertystore.db.mapped_memory"
	StringStoreMappedMemory           = "neostore.propertystore.db.strings.mapped_memory"
	ArrayStoreMappedMemory            = "neostore.propertystore.db.arrays.mapped_memory"
	PropertyIndexStoreMappedMemory    = "neostore.propertystore.db.index.mapped_memory"
	PropertyIndexKeyStoreMappedMemory = "neostore.propertystore.db.index.keys.mapped_memory"
)

// ErrMissing is returned when a required parameter is absent.
var ErrMissing = errors.New("config: parameter not set")

// Params is a set of configuration parameters.
type Params map[string]string

// DefaultParams returns the parameters every store set starts from.
func DefaultParams() Params {
	p := Params{
		NodeStoreMappedMemory:             "20M",
		PropertyStoreMappedMemory:         "90M",
		PropertyIndexStoreMappedMemory:    "1M",
		PropertyIndexKeyStoreMappedMemory: "1M",
		StringStoreMappedMemory:           "130M",
		ArrayStoreMappedMemory:            "130M",
		RelationshipStoreMappedMemory:     "100M",
		NodeAutoIndexing:                  "false",
		RelationshipAutoIndexing:          "false",
	}
	if runtime.GOOS == "windows" {
		p[UseMemoryMappedBuffers] = "false"
	} else {
		p[UseMemoryMappedBuffers] = "true"
	}
	return p
}

// New returns the defaults overridden by input. The result is a fresh map;
// later changes to input do not affect it.
func New(input Params) Params {
	p := DefaultParams()
	maps.Copy(p, input)
	return p
}

// Load reads a YAML document of scalar key/value pairs and merges it over the
// defaults.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is caller supplied
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	input := make(Params, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			input[k] = ""
		case string:
			input[k] = v
		case bool, int, int64, uint64, float64:
			input[k] = fmt.Sprint(v)
		default:
			return nil, fmt.Errorf("config: %s: value of %q is not a scalar", path, k)
		}
	}
	return New(input), nil
}

// Get returns the raw value of key.
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	return v, ok
}

// Bool reports whether key is set to "true" (case-insensitive). Any other
// value, or no value, is false.
func (p Params) Bool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(p[key]), "true")
}

// ReadOnly reports whether stores must be opened read-only.
func (p Params) ReadOnly() bool {
	return p.Bool(ReadOnly)
}

// BackupSlave reports whether the store set is a backup target.
func (p Params) BackupSlave() bool {
	return p.Bool(BackupSlave)
}

// Int parses key as an integer, returning def when it is not set.
func (p Params) Int(key string, def int) (int, error) {
	v, ok := p[key]
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

// Size parses key as a byte size such as "20M" or "1.5GiB". A bare unit
// letter (K, M, G, T) is binary: "20M" is 20 MiB.
func (p Params) Size(key string) (uint64, error) {
	v, ok := p[key]
	if !ok || strings.TrimSpace(v) == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissing, key)
	}
	n, err := ParseSize(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

// ParseSize parses a human readable byte size.
func ParseSize(v string) (uint64, error) {
	s := strings.TrimSpace(v)
	if s != "" {
		switch s[len(s)-1] {
		case 'k', 'K', 'm', 'M', 'g', 'G', 't', 'T':
			s += "iB"
		}
	}
	return humanize.ParseBytes(s)
}
