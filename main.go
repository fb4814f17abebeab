package main

import (
	"github.com/ivanhom/blogicum/config"
	"github.com/ivanhom/blogicum/models"
	"github.com/ivanhom/blogicum/routes"
	"github.com/ivanhom/blogicum/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
		&models.Image{},
		&models.PageView{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
