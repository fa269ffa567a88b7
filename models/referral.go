package models

import (
	"time"
)

// Referral 记录 referrer → referred 的一条边
// referred_user_id 全局唯一：一个用户只能被推荐一次
type Referral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerID     string    `gorm:"type:uuid;index;not null" json:"referrer_id"`
	ReferredUserID string    `gorm:"type:uuid;uniqueIndex;not null" json:"referred_user_id"`
	ActivatedAt    time.Time `gorm:"index;not null" json:"activated_at"`
}

func (Referral) TableName() string {
	return "referrals"
}
