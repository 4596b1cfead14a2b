package main

import (
	"flag"
	"log"

	"socialhub/internal/tui"
	"socialhub/internal/utils"
)

func main() {
	_ = utils.LoadEnv()
	apiURL := flag.String("api", utils.GetEnv("API_URL", "http://localhost:3001"), "server base URL")
	wsURL := flag.String("ws", utils.GetEnv("WS_URL", "ws://localhost:3001/ws"), "websocket URL")
	flag.Parse()

	if err := tui.NewApp(*apiURL, *wsURL).Run(); err != nil {
		log.Fatal(err)
	}
}
