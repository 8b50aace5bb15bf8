package submission

import "skill-intake/internal/domain/skill"

type DecisionKind int

const (
	// DecisionCreate: the email is unseen.
	DecisionCreate DecisionKind = iota + 1
	// DecisionConflict: the email is known under a different username or location.
	DecisionConflict
	// DecisionDuplicate: the email is known and holds every submitted skill.
	DecisionDuplicate
	// DecisionMerge: the email is known and the submission brings new skills.
	DecisionMerge
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionCreate:
		return "create"
	case DecisionConflict:
		return "conflict"
	case DecisionDuplicate:
		return "duplicate"
	case DecisionMerge:
		return "merge"
	default:
		return "unknown"
	}
}

type Decision struct {
	Kind DecisionKind
	// Skills is what the user ends up with: the submitted set on create, the
	// union on merge.
	Skills []string
	// NewSkills must be upserted and attached.
	NewSkills []string
}

// Reconcile decides what to do with a normalized submission given the
// stored record for the same email, or nil when the email is unseen.
func Reconcile(existing *Submission, in Input) Decision {
	if existing == nil {
		return Decision{Kind: DecisionCreate, Skills: in.Skills, NewSkills: in.Skills}
	}

	if existing.User.Username != in.Username || existing.User.Location != in.Location {
		return Decision{Kind: DecisionConflict, Skills: existing.Skills}
	}

	merged, added := skill.Merge(existing.Skills, in.Skills)
	if len(added) == 0 {
		return Decision{Kind: DecisionDuplicate, Skills: existing.Skills}
	}
	return Decision{Kind: DecisionMerge, Skills: merged, NewSkills: added}
}
