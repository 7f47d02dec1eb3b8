package health

import (
	"github.com/dmitrymomot/typetrack/core/handler"
	"github.com/dmitrymomot/typetrack/core/response"
)

// Liveness reports that the process is running.
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

type statusBody struct {
	Status string `json:"status"`
}

// Status answers {"status":"healthy"} for load balancers that expect JSON.
func Status[C handler.Context](C) handler.Response {
	return response.JSON(statusBody{Status: "healthy"})
}
