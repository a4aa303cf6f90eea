package dispatch

type cooldownKey struct {
	AgentID  string
	ModuleID string
}

// CooldownTracker suppresses repeated attempts against a module that
// recently produced nothing for an agent, so a failing module is not
// re-scanned every decision tick. Entries expire lazily on lookup.
type CooldownTracker struct {
	entries map[cooldownKey]uint64 // expiry tick
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{entries: map[cooldownKey]uint64{}}
}

// OnFailure starts (or extends) the cooldown window for the pair.
// A zero duration is a no-op so modules can opt out entirely.
func (t *CooldownTracker) OnFailure(agentID, moduleID string, now, duration uint64) {
	if duration == 0 {
		return
	}
	t.entries[cooldownKey{agentID, moduleID}] = now + duration
}

func (t *CooldownTracker) IsOnCooldown(agentID, moduleID string, now uint64) bool {
	k := cooldownKey{agentID, moduleID}
	exp, ok := t.entries[k]
	if !ok {
		return false
	}
	if now >= exp {
		delete(t.entries, k)
		return false
	}
	return true
}

// Reset clears the pair's cooldown, typically after a successful
// dispatch through that module.
func (t *CooldownTracker) Reset(agentID, moduleID string) {
	delete(t.entries, cooldownKey{agentID, moduleID})
}

// ResetAll drops every cooldown; used on world reload.
func (t *CooldownTracker) ResetAll() {
	t.entries = map[cooldownKey]uint64{}
}

// ResetAgent drops every cooldown held by one agent, e.g. when the
// agent is removed or its type profile changes.
func (t *CooldownTracker) ResetAgent(agentID string) {
	for k := range t.entries {
		if k.AgentID == agentID {
			delete(t.entries, k)
		}
	}
}
