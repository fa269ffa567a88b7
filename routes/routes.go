package routes

import (
	"referral-service/app"
	"referral-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	profileCtl := controllers.GetProfileController(s)
	healthCtl := controllers.GetHealthController(s)

	r.GET("/health", healthCtl.Health)

	// 验证码：下发 + 校验
	r.POST("/auth", authCtl.RequestCode)
	r.POST("/verify", authCtl.VerifyCode)

	// 资料与邀请激活
	r.GET("/profile", profileCtl.GetProfile)
	r.POST("/profile", profileCtl.ActivateInvite)

	// 推荐列表
	r.GET("/referrals", profileCtl.ListReferrals)
}
