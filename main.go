package main

import (
	"fmt"

	"whatnow/cms-api/api"
	"whatnow/cms-api/config"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	scheduler := cron.New()
	if err := a.Deps.Reaper.Attach(scheduler, viper.GetDuration("reaper.interval")); err != nil {
		panic(err)
	}
	scheduler.Start()

	zap.L().Info("Server starting", zap.Int("port", viper.GetInt("host.port")))

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
