package models

import (
	"time"
)

// User 以 UUID 字符串为主键，手机号与邀请码均全局唯一
type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	PhoneNumber string `gorm:"uniqueIndex;size:15;not null" json:"phone_number"`
	InviteCode  string `gorm:"uniqueIndex;size:6;not null" json:"invite_code"`

	// 激活过的邀请码：最多设置一次，设置后不再改动
	ActivatedInviteCode *string `gorm:"size:6" json:"activated_invite_code"`

	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "referral_users"
}
