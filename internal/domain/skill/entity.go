package skill

// Skill is one entry of the normalized skill taxonomy.
type Skill struct {
	ID   int64
	Name string
}

// UserSkill links a user to a skill. The (UserID, SkillID) pair is unique.
type UserSkill struct {
	ID      int64
	UserID  int64
	SkillID int64
}
