package main

import (
	"context"
	"transcript-scraper/cmd/transcript-scraper/commands"
	"transcript-scraper/lib/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext(context.Background())
	commands.ExecuteContext(ctx)
}
