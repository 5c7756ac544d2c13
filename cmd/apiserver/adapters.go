package main

import (
	"github.com/turtacn/TextCoder/internal/bootstrap"
	"github.com/turtacn/TextCoder/internal/interfaces/http/handlers"
)

// healthCheckers adapts the backend probes of app to the readiness handler.
func healthCheckers(app *bootstrap.App) []handlers.HealthChecker {
	checks := app.Checks()
	out := make([]handlers.HealthChecker, 0, len(checks))
	for _, c := range checks {
		out = append(out, handlers.CheckFunc{ComponentName: c.Name, Fn: c.Fn})
	}
	return out
}

//Personal.AI order the ending
