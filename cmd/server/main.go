package main

import "socialhub/internal/app"

func main() {
	app.Run()
}
