package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referral-service/models"

	"gorm.io/gorm"
)

// ActivateInvite 为 phone 对应的用户激活 inviteCode，并写入一条推荐记录。
// 两个写入在同一事务里：要么都落库，要么都回滚。
func (r *Repo) ActivateInvite(ctx context.Context, phone, inviteCode string) (*models.Referral, error) {
	user, err := r.FindUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	referrer, err := r.FindUserByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	if referrer.ID == user.ID {
		return nil, ErrSelfActivation
	}
	if user.ActivatedInviteCode != nil {
		return nil, ErrAlreadyActivated
	}

	ref := &models.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: user.ID,
		ActivatedAt:    time.Now(),
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// compare-and-swap：条件更新，只有尚未激活的那一行会被改到
		res := tx.Model(&models.User{}).
			Where("id = ? AND activated_invite_code IS NULL", user.ID).
			Update("activated_invite_code", inviteCode)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyActivated
		}
		// referred_user_id 唯一索引兜底并发双写
		return tx.Create(ref).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyActivated) {
			return nil, ErrAlreadyActivated
		}
		return nil, fmt.Errorf("activate invite: %w", err)
	}
	return ref, nil
}

// ReferralEntry 是 referrals 列表的一行投影
type ReferralEntry struct {
	ReferredUserPhone string    `json:"referred_user_phone"`
	ActivatedAt       time.Time `json:"activated_at"`
}

func (r *Repo) ListReferrals(ctx context.Context, phone string) ([]ReferralEntry, error) {
	user, err := r.FindUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	var out []ReferralEntry
	if err := r.DB.WithContext(ctx).Model(&models.Referral{}).
		Select("referral_users.phone_number AS referred_user_phone, referrals.activated_at").
		Joins("JOIN referral_users ON referral_users.id = referrals.referred_user_id").
		Where("referrals.referrer_id = ?", user.ID).
		Order("referrals.activated_at, referrals.id").
		Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	if out == nil {
		out = []ReferralEntry{}
	}
	return out, nil
}
