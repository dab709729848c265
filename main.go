package main

import (
	"github.com/cppla/versecraft/config"
	"github.com/cppla/versecraft/models"
	"github.com/cppla/versecraft/routes"
	"github.com/cppla/versecraft/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Poem{},
		&models.DailyActivity{},
		&models.WritingStreak{},
		&models.Achievement{},
	)

	rdb := utils.GetRedis()

	r := routes.SetupRouter(db, rdb)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
