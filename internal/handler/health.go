package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint polled by load balancers and the campus
// status page.  It answers as soon as the HTTP layer is up and does not
// touch the database or the broker, so a degraded backend still reports ok.
func Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "ticketmatch"})
}
