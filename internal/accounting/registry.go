package accounting

import (
	"sort"
	"sync"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
)

// DefaultSchemaCutoff is the first prompt version whose prompts ask for the
// nested v2 shape.
const DefaultSchemaCutoff = 23

type schemaRange struct {
	start  int
	parser Parser
}

// Registry maps prompt versions to schema parsers through a sorted list of
// range starts: a version uses the parser of the last range starting at or
// below it. New ranges are appended without touching existing ones.
type Registry struct {
	mu       sync.RWMutex
	ranges   []schemaRange
	bySchema map[domain.SchemaVersion]Parser
	fallback Parser
	cutoff   int
	log      *logger.Logger
}

// NewRegistry builds the registry with v1 for versions [1, cutoff) and v2 from
// cutoff onward. A cutoff below 2 routes every version to v2.
func NewRegistry(cutoff int, log *logger.Logger) *Registry {
	if cutoff < 1 {
		cutoff = 1
	}
	v1 := NewLegacyParser(log)
	v2 := NewCanonicalParser(log)
	r := &Registry{
		bySchema: map[domain.SchemaVersion]Parser{
			domain.SchemaV1: v1,
			domain.SchemaV2: v2,
		},
		fallback: v2,
		cutoff:   cutoff,
		log:      log,
	}
	r.ranges = append(r.ranges, schemaRange{start: 1, parser: v1})
	r.Register(cutoff, v2)
	return r
}

// Cutoff returns the first prompt version routed to the v2 parser.
func (r *Registry) Cutoff() int {
	return r.cutoff
}

// Register makes p the parser for versions starting at start, up to the next
// registered start. Registering an existing start replaces its parser.
func (r *Registry) Register(start int, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bySchema[p.SchemaVersion()] = p
	i := sort.Search(len(r.ranges), func(i int) bool { return r.ranges[i].start >= start })
	if i < len(r.ranges) && r.ranges[i].start == start {
		r.ranges[i].parser = p
		return
	}
	r.ranges = append(r.ranges, schemaRange{})
	copy(r.ranges[i+1:], r.ranges[i:])
	r.ranges[i] = schemaRange{start: start, parser: p}
}

// GetParser resolves a prompt version to its parser. It never fails: versions
// outside every range fall back to the v2 parser.
func (r *Registry) GetParser(version int) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := sort.Search(len(r.ranges), func(i int) bool { return r.ranges[i].start > version })
	if i == 0 {
		r.log.Warn("prompt version below every schema range, using v2 parser", "prompt_version", version)
		return r.fallback
	}
	return r.ranges[i-1].parser
}

// SchemaFor returns the schema version a prompt version is expected to emit.
func (r *Registry) SchemaFor(version int) domain.SchemaVersion {
	return r.GetParser(version).SchemaVersion()
}

// ParserFor returns the parser for an explicit schema version, falling back
// to v2 for unknown ones.
func (r *Registry) ParserFor(schema domain.SchemaVersion) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.bySchema[schema]; ok {
		return p
	}
	r.log.Warn("unknown schema version, using v2 parser", "schema_version", schema)
	return r.fallback
}

// Parse parses raw with the parser for the given prompt version.
func (r *Registry) Parse(raw map[string]any, version int) *Document {
	return r.GetParser(version).Parse(raw)
}

// ParseAuto detects the shape of raw and parses it. Prefer Parse whenever a
// trusted prompt version is available.
func (r *Registry) ParseAuto(raw map[string]any) (*Document, domain.SchemaVersion) {
	schema := r.DetectSchemaVersion(raw)
	return r.ParserFor(schema).Parse(raw), schema
}

// DetectSchemaVersion inspects the top-level keys of raw.
func (r *Registry) DetectSchemaVersion(raw map[string]any) domain.SchemaVersion {
	if has(raw, "metadata") && has(raw, "document") && has(raw, "items") {
		return domain.SchemaV2
	}
	if has(raw, "line_items") || has(raw, "vkn") || has(raw, "company_name") {
		return domain.SchemaV1
	}
	r.log.Warn("could not detect schema version, assuming v2")
	return domain.SchemaV2
}
