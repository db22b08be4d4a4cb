package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/agrohub/transportbot/bot/app"
	"github.com/agrohub/transportbot/core/cmd"
)

func main() {
	// Local development keeps secrets in .env; absence is fine in prod.
	_ = godotenv.Load()

	err := cmd.Run(cmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return app.Load(path)
		},
		Bootstrap: func(cfg cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			return app.Bootstrap(cfg.(*app.Config))
		},
	})
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
}
