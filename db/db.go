package db

import (
	"fmt"
	"log"
	"os"

	"referral-service/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Referral{}); err != nil {
		return err
	}

	// 被推荐人只能出现一次（AutoMigrate 的 uniqueIndex 之外再兜底一层）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_row_per_referred
	  ON %s (referred_user_id);
	`, models.Referral{}.TableName(), models.Referral{}.TableName())).Error; err != nil {
		return err
	}

	// referrals 列表按激活时间查询
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_referrer_activatedat
	  ON %s (referrer_id, activated_at);
	`, models.Referral{}.TableName(), models.Referral{}.TableName())).Error; err != nil {
		return err
	}

	return nil
}
