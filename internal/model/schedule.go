package model

import "time"

// ── 出欠状态编码 ──
// 0 = 欠席/未回答（存储中缺行时的默认值）、1 = 未定、2 = 出席

const (
	AvailabilityAbsent    = 0
	AvailabilityUndecided = 1
	AvailabilityPresent   = 2
)

// Schedule 预定表 — 对应 schedules
type Schedule struct {
	ScheduleID   string    `gorm:"type:uuid;primaryKey"                json:"schedule_id"`
	ScheduleName string    `gorm:"type:varchar(255);not null"          json:"schedule_name"`
	Memo         string    `gorm:"type:text;not null"                  json:"memo"`
	CreatedBy    int64     `gorm:"not null;index"                      json:"created_by"`
	UpdatedAt    time.Time `gorm:"not null"                            json:"updated_at"`

	// 关联
	Owner *User `gorm:"foreignKey:CreatedBy;references:UserID" json:"owner,omitempty"`
}

func (Schedule) TableName() string { return "schedules" }

// Candidate 候补日程表 — 对应 candidates
// CandidateID 为自增主键，列表展示按其升序排列（即创建顺序）
type Candidate struct {
	CandidateID   int64  `gorm:"primaryKey;autoIncrement"    json:"candidate_id"`
	CandidateName string `gorm:"type:varchar(255);not null"  json:"candidate_name"`
	ScheduleID    string `gorm:"type:uuid;not null;index"    json:"schedule_id"`
}

func (Candidate) TableName() string { return "candidates" }

// Availability 出欠表 — 对应 availabilities
// 每个 (candidate, user) 对至多一行，更新时 upsert
type Availability struct {
	CandidateID  int64  `gorm:"primaryKey;autoIncrement:false" json:"candidate_id"`
	UserID       int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ScheduleID   string `gorm:"type:uuid;not null;index"       json:"schedule_id"`
	Availability int    `gorm:"not null;default:0"             json:"availability"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Availability) TableName() string { return "availabilities" }

// Comment 留言表 — 对应 comments
// 每个 (schedule, user) 对至多一行，后写覆盖
type Comment struct {
	ScheduleID string `gorm:"type:uuid;primaryKey"           json:"schedule_id"`
	UserID     int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Comment    string `gorm:"type:text;not null"             json:"comment"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Comment) TableName() string { return "comments" }
