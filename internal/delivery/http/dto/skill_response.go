package dto

type SkillResponse struct {
	SkillID   int64  `json:"skill_id"`
	SkillName string `json:"skill_name"`
}
