package metadata

import (
	"fmt"
	"sort"
)

// Kind identifies a category of fact recorded about a controller member.
type Kind string

const (
	// KindHTTPMethod holds the HTTP verb a member is mounted under.
	KindHTTPMethod Kind = "http_method"
	// KindPath holds the member's route path.
	KindPath Kind = "url_path"
	// KindPrefix holds the controller-level URL prefix.
	KindPrefix Kind = "url_prefix"
	// KindAuthProvider holds the name of the security provider a member requires.
	KindAuthProvider Kind = "auth_provider"
	// KindValidation holds the validation schema applied to the request body.
	KindValidation Kind = "validation_schema"
	// KindParams holds the accumulated parameter injection slots of a member.
	KindParams Kind = "injection_params"
)

type entryKey struct {
	target string
	member string
	kind   Kind
}

// Store is process-wide associative storage for registration facts, keyed by
// (target, member, kind). It is populated once at application start, before
// the server accepts connections, and is read-only during request handling,
// so it requires no locking.
type Store struct {
	entries map[entryKey]any
}

// NewStore creates an empty metadata store.
func NewStore() *Store {
	return &Store{entries: make(map[entryKey]any)}
}

// Define records a fact. Facts are write-once: redefining an existing
// (target, member, kind) entry panics, since that is always a registration
// bug. KindParams is exempt because parameter slots accumulate via
// read-modify-write (see AppendParam).
func (s *Store) Define(kind Kind, value any, target, member string) {
	key := entryKey{target, member, kind}
	if _, exists := s.entries[key]; exists && kind != KindParams {
		panic(fmt.Sprintf("metadata: %q already defined for %s.%s", kind, target, member))
	}
	s.entries[key] = value
}

// Get retrieves a fact. The second return reports whether it was defined.
func (s *Store) Get(kind Kind, target, member string) (any, bool) {
	v, ok := s.entries[entryKey{target, member, kind}]
	return v, ok
}

// Has reports whether a fact was defined.
func (s *Store) Has(kind Kind, target, member string) bool {
	_, ok := s.entries[entryKey{target, member, kind}]
	return ok
}

// AppendParam adds a parameter injection slot to the member's accumulated
// slot list, preserving the read-modify-write contract for list-valued facts.
func (s *Store) AppendParam(target, member string, slot ParamSlot) {
	slots := s.Params(target, member)
	slots = append(slots, slot)
	s.Define(KindParams, slots, target, member)
}

// Params returns the member's parameter slots ordered by declared index.
// Returns an empty slice if none were declared.
func (s *Store) Params(target, member string) []ParamSlot {
	v, ok := s.Get(KindParams, target, member)
	if !ok {
		return nil
	}
	slots := v.([]ParamSlot)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots
}
