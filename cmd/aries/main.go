package main

import (
	"log"

	"github.com/ariesbot/aries/bot"
	"github.com/ariesbot/aries/core/buildinfo"
	corecmd "github.com/ariesbot/aries/core/cmd"
)

func main() {
	log.Printf("aries %s (%s, built %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.New(cfg.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("aries: %v", err)
	}
}
