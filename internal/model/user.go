package model

// User 用户表 — 对应 users
// UserID 为 GitHub 提供的数字 ID，登录时 upsert，永不由本系统生成
type User struct {
	UserID   int64  `gorm:"primaryKey;autoIncrement:false"  json:"user_id"`
	Username string `gorm:"type:varchar(255);not null"      json:"username"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
