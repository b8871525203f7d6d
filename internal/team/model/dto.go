package model

// RequiredSkillInput describes a required skill in create and update requests.
type RequiredSkillInput struct {
	Skill    string   `json:"skill"    binding:"required,max=128"`
	Priority Priority `json:"priority"`
	Count    int      `json:"count"`
}

// CreateTeamRequest is the body of POST /teams.
type CreateTeamRequest struct {
	Name                 string               `json:"name"                  binding:"required,min=3,max=100"`
	Description          string               `json:"description"           binding:"max=1000"`
	EventID              string               `json:"event_id"              binding:"required"`
	CapacityMin          int                  `json:"capacity_min"`
	CapacityMax          int                  `json:"capacity_max"          binding:"required"`
	RequiredSkills       []RequiredSkillInput `json:"required_skills"       binding:"dive"`
	IsPublic             bool                 `json:"is_public"`
	AllowDirectJoin      bool                 `json:"allow_direct_join"`
	CommunicationChannel string               `json:"communication_channel"`
}

// UpdateTeamRequest is the body of PATCH /teams/:id. Nil fields are left unchanged.
type UpdateTeamRequest struct {
	Description          *string               `json:"description"`
	CommunicationChannel *string               `json:"communication_channel"`
	Roadmap              *[]RoadmapItem        `json:"roadmap"`
	IsPublic             *bool                 `json:"is_public"`
	AllowDirectJoin      *bool                 `json:"allow_direct_join"`
	RequiredSkills       *[]RequiredSkillInput `json:"required_skills"`
	CapacityMin          *int                  `json:"capacity_min"`
	CapacityMax          *int                  `json:"capacity_max"`
}

// AddMemberRequest is the body of POST /teams/:id/members.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   Role   `json:"role"`
}

// TransferLeadershipRequest is the body of POST /teams/:id/transfer.
type TransferLeadershipRequest struct {
	NewLeaderID string `json:"new_leader_id" binding:"required"`
}

// RecordActivityRequest is the body of POST /teams/:id/activity.
type RecordActivityRequest struct {
	Kind string `json:"kind" binding:"required,max=64"`
}

// ListFilter narrows ListTeams.
type ListFilter struct {
	EventID string
	Status  Status
}
