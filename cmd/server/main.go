package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophalbum/internal/buildinfo"
	"github.com/dmitrijs2005/gophalbum/internal/logging"
	"github.com/dmitrijs2005/gophalbum/internal/server"
	"github.com/dmitrijs2005/gophalbum/internal/server/config"
	"github.com/gin-gonic/gin"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	gin.SetMode(gin.ReleaseMode)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)

}
