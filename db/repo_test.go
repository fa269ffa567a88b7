package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"referral-service/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 单连接：一个 :memory: 库，并发事务在连接池上排队
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(gdb))
	return NewRepo(gdb)
}

func TestFindOrCreateUser_AssignsStableInviteCode(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u1, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)
	assert.Equal(t, "5551234567", u1.PhoneNumber)
	assert.Len(t, u1.InviteCode, 6)
	assert.Nil(t, u1.ActivatedInviteCode)

	// repeated verification must not reassign the code
	u2, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)
	assert.Equal(t, u1.InviteCode, u2.InviteCode)
}

func TestFindOrCreateUser_InviteCodesAreUnique(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	phones := []string{"5550000001", "5550000002", "5550000003", "5550000004", "5550000005"}
	seen := make(map[string]string)
	for _, p := range phones {
		u, err := r.FindOrCreateUser(ctx, p)
		require.NoError(t, err)
		prev, dup := seen[u.InviteCode]
		require.Falsef(t, dup, "invite code %q assigned to both %s and %s", u.InviteCode, prev, p)
		seen[u.InviteCode] = p
	}
}

func TestFindUserByPhone_NotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.FindUserByPhone(context.Background(), "5550000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivateInvite_Succeeds(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	referrer, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)
	referred, err := r.FindOrCreateUser(ctx, "5559876543")
	require.NoError(t, err)

	ref, err := r.ActivateInvite(ctx, referred.PhoneNumber, referrer.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, referrer.ID, ref.ReferrerID)
	assert.Equal(t, referred.ID, ref.ReferredUserID)
	assert.WithinDuration(t, time.Now(), ref.ActivatedAt, 5*time.Second)

	// flag and ledger row must both be there
	got, err := r.FindUserByPhone(ctx, referred.PhoneNumber)
	require.NoError(t, err)
	require.NotNil(t, got.ActivatedInviteCode)
	assert.Equal(t, referrer.InviteCode, *got.ActivatedInviteCode)

	entries, err := r.ListReferrals(ctx, referrer.PhoneNumber)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, referred.PhoneNumber, entries[0].ReferredUserPhone)
}

func TestActivateInvite_UserNotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	referrer, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)

	_, err = r.ActivateInvite(ctx, "5550000000", referrer.InviteCode)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestActivateInvite_InvalidInviteCode(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)

	_, err = r.ActivateInvite(ctx, u.PhoneNumber, "zzZZ99")
	assert.ErrorIs(t, err, ErrInvalidInviteCode)
}

func TestActivateInvite_SelfActivationForbidden(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	u, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)

	_, err = r.ActivateInvite(ctx, u.PhoneNumber, u.InviteCode)
	assert.ErrorIs(t, err, ErrSelfActivation)

	got, err := r.FindUserByPhone(ctx, u.PhoneNumber)
	require.NoError(t, err)
	assert.Nil(t, got.ActivatedInviteCode)
}

func TestActivateInvite_AlreadyActivated(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	a, err := r.FindOrCreateUser(ctx, "5551111111")
	require.NoError(t, err)
	b, err := r.FindOrCreateUser(ctx, "5552222222")
	require.NoError(t, err)
	target, err := r.FindOrCreateUser(ctx, "5559876543")
	require.NoError(t, err)

	_, err = r.ActivateInvite(ctx, target.PhoneNumber, a.InviteCode)
	require.NoError(t, err)

	// same code again
	_, err = r.ActivateInvite(ctx, target.PhoneNumber, a.InviteCode)
	assert.ErrorIs(t, err, ErrAlreadyActivated)

	// a different referrer's code changes nothing either
	_, err = r.ActivateInvite(ctx, target.PhoneNumber, b.InviteCode)
	assert.ErrorIs(t, err, ErrAlreadyActivated)

	var n int64
	require.NoError(t, r.DB.Model(&models.Referral{}).
		Where("referred_user_id = ?", target.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	got, err := r.FindUserByPhone(ctx, target.PhoneNumber)
	require.NoError(t, err)
	require.NotNil(t, got.ActivatedInviteCode)
	assert.Equal(t, a.InviteCode, *got.ActivatedInviteCode)
}

func TestActivateInvite_ConcurrentSingleWinner(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	target, err := r.FindOrCreateUser(ctx, "5559876543")
	require.NoError(t, err)

	const n = 8
	referrers := make([]string, n)
	for i := range referrers {
		u, err := r.FindOrCreateUser(ctx, fmt.Sprintf("555%07d", i))
		require.NoError(t, err)
		referrers[i] = u.InviteCode
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.ActivateInvite(ctx, target.PhoneNumber, referrers[i])
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent activation may succeed")

	var rows int64
	require.NoError(t, r.DB.Model(&models.Referral{}).
		Where("referred_user_id = ?", target.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestListReferrals_EmptyAndOrdered(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	referrer, err := r.FindOrCreateUser(ctx, "5551234567")
	require.NoError(t, err)

	entries, err := r.ListReferrals(ctx, referrer.PhoneNumber)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	first, err := r.FindOrCreateUser(ctx, "5551111111")
	require.NoError(t, err)
	second, err := r.FindOrCreateUser(ctx, "5552222222")
	require.NoError(t, err)

	_, err = r.ActivateInvite(ctx, first.PhoneNumber, referrer.InviteCode)
	require.NoError(t, err)
	_, err = r.ActivateInvite(ctx, second.PhoneNumber, referrer.InviteCode)
	require.NoError(t, err)

	entries, err = r.ListReferrals(ctx, referrer.PhoneNumber)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.PhoneNumber, entries[0].ReferredUserPhone)
	assert.Equal(t, second.PhoneNumber, entries[1].ReferredUserPhone)
	assert.False(t, entries[1].ActivatedAt.Before(entries[0].ActivatedAt))
}

func TestListReferrals_UserNotFound(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.ListReferrals(context.Background(), "5550000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
