package main

import (
	"fmt"
	"os"

	"github.com/km-arc/go-payload/app"
	frameworkapp "github.com/km-arc/go-payload/framework/app"
	"github.com/km-arc/go-payload/routes"
)

func main() {
	application, err := frameworkapp.New() // loads .env when present
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application.Register(&app.RulesServiceProvider{})
	application.Register(&routes.ServiceProvider{})

	if err := application.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
