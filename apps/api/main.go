package main

import (
	"flag"

	dig_container "github.com/trezcool/yuva/apps/api/di/dig"
)

func main() {
	inMemory := flag.Bool("inmem", false, "keep every record in memory instead of postgres (dev only)")
	flag.Parse()

	startWithDig(dig_container.Options{InMemory: *inMemory})
}
