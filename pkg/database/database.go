package database

import (
	"english_lt_backend/internal/config"
	"english_lt_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// release 模式默认跳过迁移，需 -migrate / -migrate-only 显式开启
	if cfg.Server.Mode == "release" && !cfg.ForceMigrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Question{},
		&model.TestHistory{},
		&model.TestDetail{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedQuestions(db)

	return db, nil
}

// seedQuestions 题库为空时插入默认题目，便于首次启动即可出题
func seedQuestions(db *gorm.DB) {
	var count int64
	db.Model(&model.Question{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Question{
		{Category: model.CategoryWord, Prompt: "苹果", Answer: "apple", Hint: "一种常见的水果", KeyPoint: "单词拼写", Ability: "记忆能力"},
		{Category: model.CategoryWord, Prompt: "平衡", Answer: "balance", Hint: "一种状态", KeyPoint: "单词拼写", Ability: "抽象思维"},
		{Category: model.CategoryWord, Prompt: "颜色", Answer: "color or colour", Hint: "英美拼写均可", KeyPoint: "单词拼写", Ability: "记忆能力"},
		{Category: model.CategoryPhrase, Prompt: "感谢你", Answer: "thank you", Hint: "表达感激之情", KeyPoint: "英语词汇量", Ability: "社交能力"},
		{Category: model.CategoryPhrase, Prompt: "推迟", Answer: `["put off","postpone"]`, Hint: "表达延后执行", KeyPoint: "英语词汇量", Ability: "时间管理"},
		{Category: model.CategorySentence, Prompt: "今天天气很好", Answer: "It is nice today.", Hint: "描述天气状况", KeyPoint: "英语语法点", Ability: "表达能力"},
		{Category: model.CategorySentence, Prompt: "你做得很棒", Answer: "You did good job.", Hint: "描述表现好", KeyPoint: "英语语法点", Ability: "表达能力"},
		{Category: model.CategoryGrammar, Prompt: "词汇运用：She _____(介绍) me to her best friend yesterday.", Answer: "introduced", Hint: "一般过去时", KeyPoint: "一般过去时", Ability: "推理能力"},
		{Category: model.CategoryGrammar, Prompt: "语法填空：I _____(visit) that library before I came back to China.", Answer: "had visited", Hint: "过去完成时", KeyPoint: "过去完成时", Ability: "系统思维"},
	}

	for i := range defaults {
		db.Create(&defaults[i])
	}
}
