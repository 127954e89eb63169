package models

import "time"

// Invite types. "own" hands the project's ownership to the invitee on
// acceptance, the other two add the invitee as a member.
const (
	InviteTypeOwn    = "own"
	InviteTypeManage = "manage"
	InviteTypeClient = "client"
)

// Invite represents a pending membership proposal. A pending invite is the
// row itself: accept, reject and revoke all hard-delete it, so the unique
// index on (project_id, invitee_id) enforces "at most one pending invite
// per project and invitee" at the persistence layer. No soft delete here,
// otherwise deleted rows would keep occupying the index.
type Invite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_invite_project_invitee;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	SenderID  uint      `gorm:"index;not null" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	InviteeID uint      `gorm:"uniqueIndex:idx_invite_project_invitee;index;not null" json:"invitee_id"`
	Invitee   *User     `gorm:"foreignKey:InviteeID" json:"invitee,omitempty"`
	Type      string    `gorm:"size:20;not null" json:"type"` // own, manage, client
	CreatedAt time.Time `json:"created_at"`
}

func (Invite) TableName() string { return "invites" }
