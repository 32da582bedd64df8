package model

// PartnerRef is one entry of an occurrence rule's partner list, or its
// active-constraint descriptor: (keep?, use_index, constraint) per spec.md
// §3.3. UseIndex is -1 until index inference (§4.3.4) assigns one.
type PartnerRef struct {
	Keep       bool
	UseIndex   int
	Head       HeadConstraint
}

// GuardPart is one slice of a rule's guard, evaluable immediately after the
// partner at PartnerIndex-1 is bound (PartnerIndex 0 means "after the active
// constraint", spec.md §3.3, §4.4.3).
type GuardPart struct {
	PartnerIndex int // 0 = right after active constraint; i = after partner i-1
	Clauses      []Expr
}

// OccRule is one occurrence rule: a per-head-position view of a Rule that
// pins a different head constraint as "active" (spec.md §3.3, §4.2).
type OccRule struct {
	Rule   RuleID
	// Active is the pinned head constraint for this occurrence.
	Active PartnerRef
	// Partners is the rule's head minus Active, in matching order (subject
	// to reordering, spec.md §4.3.1).
	Partners []PartnerRef
	// GuardParts has len(Partners)+1 entries; GuardParts[i].PartnerIndex == i.
	GuardParts []GuardPart
	// StoreActive mirrors spec.md §4.1.4's store_active_constraint flag.
	StoreActive bool
	// ActiveConstraintOccurrence is the running counter described in
	// spec.md §4.2(3): the occurrence number among all occurrences of this
	// constraint symbol in the whole program, in program order before
	// occurrence-reorder and post-reorder order after (spec.md §4.3.3).
	ActiveConstraintOccurrence int
}

// KeepActive reports whether the active constraint survives this firing
// (spec.md §4.4's "if keep_active" branch).
func (o *OccRule) KeepActive() bool { return o.Active.Keep }
