package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine serving /api/v1.
func NewRouter(bookings *BookingHandler, flights *FlightHandler, log logrus.FieldLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	v1 := router.Group("/api/v1")
	bookings.Register(v1.Group("/bookings"))
	flights.Register(v1.Group("/flights"))
	return router
}
