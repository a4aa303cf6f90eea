package dispatch

import (
	"log"
	"strings"
)

// Capability tag grammar. Tags attach to agent types in the declarative
// capability source; precedence is fixed:
//
//	1. TASKS_NONE        -> deny everything
//	2. TASKS_ALL         -> allow everything
//	3. NO_TASK_<CAT>     -> deny that category
//	4. TASK_<CAT>        -> allow that category
//	5. default           -> deny
const (
	TagAllowAll    = "TASKS_ALL"
	TagBlockAll    = "TASKS_NONE"
	TagAllowPrefix = "TASK_"
	TagBlockPrefix = "NO_TASK_"
)

type bitset []uint64

func newBitset(n int) bitset { return make(bitset, (n+63)/64) }

func (b bitset) set(i int)      { b[i/64] |= 1 << (i % 64) }
func (b bitset) has(i int) bool { return b[i/64]&(1<<(i%64)) != 0 }

type typePerms struct {
	allowAll bool
	blockAll bool
	allow    bitset
	block    bitset
}

// CapabilityResolver answers "may this agent type perform this
// category". Tag strings are folded into per-type bitsets once at
// Rebuild time so the hot path is two map lookups and a bit test.
//
// All methods are called from the simulation loop goroutine only.
type CapabilityResolver struct {
	logger *log.Logger

	catIndex map[string]int
	types    map[string]*typePerms

	// One log line per distinct config problem, never per tick.
	warned map[string]bool
}

func NewCapabilityResolver(logger *log.Logger) *CapabilityResolver {
	return &CapabilityResolver{
		logger:   logger,
		catIndex: map[string]int{},
		types:    map[string]*typePerms{},
		warned:   map[string]bool{},
	}
}

// Rebuild recomputes every type's permission bitset from raw tag
// profiles. It is also the invalidation hook: call it again whenever the
// declarative capability source is edited at runtime.
func (r *CapabilityResolver) Rebuild(profiles map[string][]string, categories []string) {
	r.catIndex = make(map[string]int, len(categories))
	for i, c := range categories {
		r.catIndex[c] = i
	}
	r.types = make(map[string]*typePerms, len(profiles))

	for typeID, tags := range profiles {
		p := &typePerms{
			allow: newBitset(len(categories)),
			block: newBitset(len(categories)),
		}
		for _, tag := range tags {
			switch {
			case tag == TagAllowAll:
				p.allowAll = true
			case tag == TagBlockAll:
				p.blockAll = true
			case strings.HasPrefix(tag, TagBlockPrefix):
				cat := strings.TrimPrefix(tag, TagBlockPrefix)
				if i, ok := r.catIndex[cat]; ok {
					p.block.set(i)
				} else {
					r.warnOnce("tag:"+tag, "capability: tag %q names unknown category %q (type %s)", tag, cat, typeID)
				}
			case strings.HasPrefix(tag, TagAllowPrefix):
				cat := strings.TrimPrefix(tag, TagAllowPrefix)
				if i, ok := r.catIndex[cat]; ok {
					p.allow.set(i)
				} else {
					r.warnOnce("tag:"+tag, "capability: tag %q names unknown category %q (type %s)", tag, cat, typeID)
				}
			default:
				r.warnOnce("tag:"+tag, "capability: unrecognized tag %q (type %s)", tag, typeID)
			}
		}
		r.types[typeID] = p
	}
}

// Allowed reports whether the agent type may perform the category.
// Missing types and unknown categories resolve to false, logged once.
func (r *CapabilityResolver) Allowed(typeID, category string) bool {
	p, ok := r.types[typeID]
	if !ok {
		r.warnOnce("type:"+typeID, "capability: no profile for agent type %q, denying", typeID)
		return false
	}
	if p.blockAll {
		return false
	}
	if p.allowAll {
		return true
	}
	i, ok := r.catIndex[category]
	if !ok {
		r.warnOnce("cat:"+category, "capability: unknown category %q, denying", category)
		return false
	}
	if p.block.has(i) {
		return false
	}
	return p.allow.has(i)
}

func (r *CapabilityResolver) warnOnce(key, format string, args ...any) {
	if r.warned[key] {
		return
	}
	r.warned[key] = true
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
