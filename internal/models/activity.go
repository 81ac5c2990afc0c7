package models

import "time"

// ActivityKind names a side effect performed on a member or conversation
type ActivityKind string

const (
	ActivityAvatarSet      ActivityKind = "avatar_set"
	ActivityMemberBlocked  ActivityKind = "member_blocked"
	ActivityMessageFlagged ActivityKind = "message_flagged"
	ActivityAlertSent      ActivityKind = "alert_sent"
)

// Activity is one entry of the per-site activity log shown on the dashboard
type Activity struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	InstanceID string       `gorm:"index:idx_activity_instance_created,priority:1;not null" json:"instance_id"`
	Kind       ActivityKind `gorm:"size:32;not null" json:"kind"`
	MemberID   string       `gorm:"size:64" json:"member_id,omitempty"`
	Detail     string       `gorm:"type:text" json:"detail,omitempty"`
	CreatedAt  time.Time    `gorm:"index:idx_activity_instance_created,priority:2,sort:desc" json:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}
