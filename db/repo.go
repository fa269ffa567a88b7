package db

import (
	"context"
	"errors"
	"fmt"

	"referral-service/codes"
	"referral-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidInviteCode = errors.New("invalid invite code")
	ErrSelfActivation    = errors.New("cannot activate your own invite code")
	ErrAlreadyActivated  = errors.New("invite code already activated")
)

// 邀请码碰撞时的重试上限（62^6 空间内碰撞极少，5 次足够）
const inviteCodeRetries = 5

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Users

func (r *Repo) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("phone_number = ?", phone).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by phone: %w", err)
	}
	return &u, nil
}

func (r *Repo) FindUserByInviteCode(ctx context.Context, code string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("invite_code = ?", code).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("find user by invite code: %w", err)
	}
	return &u, nil
}

// FindOrCreateUser 按手机号查用户，不存在则创建并分配新邀请码。
// 重复验证不会改动已分配的邀请码。
func (r *Repo) FindOrCreateUser(ctx context.Context, phone string) (*models.User, error) {
	u, err := r.FindUserByPhone(ctx, phone)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	var lastErr error
	for i := 0; i < inviteCodeRetries; i++ {
		nu := models.User{
			ID:          uuid.NewString(),
			PhoneNumber: phone,
			InviteCode:  codes.GenerateInviteCode(),
		}
		if err := r.DB.WithContext(ctx).Create(&nu).Error; err != nil {
			// 可能是邀请码撞了唯一索引，也可能是并发下同号先建成功
			if u, ferr := r.FindUserByPhone(ctx, phone); ferr == nil {
				return u, nil
			}
			lastErr = err
			continue
		}
		return &nu, nil
	}
	return nil, fmt.Errorf("create user: %w", lastErr)
}
