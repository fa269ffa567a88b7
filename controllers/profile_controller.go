package controllers

import (
	"errors"
	"net/http"

	"referral-service/app"
	"referral-service/db"
)

type ProfileController struct {
	s *Srv
}

func GetProfileController(s *Srv) *ProfileController {
	return &ProfileController{s: s}
}

// GET /profile?phone_number=...
func (pc *ProfileController) GetProfile(c *app.Ctx) {
	phone := c.Query("phone_number")
	if !validPhone(phone) {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number query param must be a digits-only string"})
		return
	}

	user, err := pc.s.Repo.FindUserByPhone(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"phone_number":          user.PhoneNumber,
		"invite_code":           user.InviteCode,
		"activated_invite_code": user.ActivatedInviteCode,
	})
}

// POST /profile
func (pc *ProfileController) ActivateInvite(c *app.Ctx) {
	var in struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		InviteCode  string `json:"invite_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number and invite_code are required"})
		return
	}
	if !validPhone(in.PhoneNumber) {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number must be a digits-only string"})
		return
	}
	if !inviteCodeRe.MatchString(in.InviteCode) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invite_code must be 6 alphanumeric characters"})
		return
	}

	_, err := pc.s.Repo.ActivateInvite(c.Request.Context(), in.PhoneNumber, in.InviteCode)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, app.H{"message": "Invite code activated!"})
	case errors.Is(err, db.ErrUserNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
	case errors.Is(err, db.ErrInvalidInviteCode),
		errors.Is(err, db.ErrSelfActivation),
		errors.Is(err, db.ErrAlreadyActivated):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": "failed to activate invite code"})
	}
}

// GET /referrals?phone_number=...
func (pc *ProfileController) ListReferrals(c *app.Ctx) {
	phone := c.Query("phone_number")
	if !validPhone(phone) {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number query param must be a digits-only string"})
		return
	}

	entries, err := pc.s.Repo.ListReferrals(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": "failed to list referrals"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
