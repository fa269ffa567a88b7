package controllers

import (
	"net/http"

	"referral-service/app"
	"referral-service/codes"
)

type AuthController struct {
	s *Srv
}

func GetAuthController(s *Srv) *AuthController {
	return &AuthController{s: s}
}

// POST /auth
func (ac *AuthController) RequestCode(c *app.Ctx) {
	var in struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number is required"})
		return
	}
	if !validPhone(in.PhoneNumber) {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number must be a digits-only string"})
		return
	}

	ctx := c.Request.Context()
	// 旧码作废，同号只保留一条待验证记录
	ac.s.Codes.Delete(ctx, in.PhoneNumber)

	code := codes.GenerateVerificationCode()
	if err := ac.s.Codes.Set(ctx, in.PhoneNumber, code); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "failed to issue verification code"})
		return
	}

	// 不接短信网关，码直接回给调用方
	c.JSON(http.StatusOK, app.H{"message": "Verification code sent!", "code": code})
}

// POST /verify
func (ac *AuthController) VerifyCode(c *app.Ctx) {
	var in struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Code        string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "phone_number and code are required"})
		return
	}
	// 格式不对、码不对、码过期都给同一个回答，不泄露某号码是否发过码
	if !validPhone(in.PhoneNumber) || !verifyCodeRe.MatchString(in.Code) {
		c.JSON(http.StatusBadRequest, app.H{"error": "Invalid verification code."})
		return
	}

	ctx := c.Request.Context()
	cached, ok, err := ac.s.Codes.Get(ctx, in.PhoneNumber)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "verification temporarily unavailable"})
		return
	}
	if !ok || cached != in.Code {
		c.JSON(http.StatusBadRequest, app.H{"error": "Invalid verification code."})
		return
	}

	user, err := ac.s.Repo.FindOrCreateUser(ctx, in.PhoneNumber)
	if err != nil {
		// 用户没落库就不消费验证码，调用方可以原码重试
		c.JSON(http.StatusInternalServerError, app.H{"error": "failed to register user"})
		return
	}

	// 落库成功才消费，TTL 窗口内不允许重放
	ac.s.Codes.Delete(ctx, in.PhoneNumber)

	c.JSON(http.StatusOK, app.H{"invite_code": user.InviteCode})
}
