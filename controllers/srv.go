// controllers/srv.go
package controllers

import (
	"regexp"

	"referral-service/app"
	"referral-service/cache"
	"referral-service/db"
)

type Srv struct {
	Repo  *db.Repo
	Codes *cache.CodeStore
	Cfg   app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:  db.NewRepo(a.DB),
		Codes: cache.NewCodeStore(a.RDB, a.Config.CodeTTL),
		Cfg:   a.Config,
	}
}

// --- 边界校验：进 engine 之前格式先卡死 ---

var (
	phoneRe      = regexp.MustCompile(`^[0-9]{1,15}$`)
	verifyCodeRe = regexp.MustCompile(`^[0-9]{4}$`)
	inviteCodeRe = regexp.MustCompile(`^[a-zA-Z0-9]{6}$`)
)

func validPhone(p string) bool { return phoneRe.MatchString(p) }
