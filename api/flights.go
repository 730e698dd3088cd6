package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/service/flights"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID            string `json:"id"`
	FlightNumber  string `json:"flight_number"`
	Airline       string `json:"airline"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Duration      int    `json:"duration"`
}

type directRouteResponse struct {
	Flight        flightResponse `json:"flight"`
	TotalDuration int            `json:"total_duration"`
}

type transitRouteResponse struct {
	FirstLeg        flightResponse `json:"first_leg"`
	SecondLeg       flightResponse `json:"second_leg"`
	TransitCity     string         `json:"transit_city"`
	LayoverDuration int            `json:"layover_duration"`
	TotalDuration   int            `json:"total_duration"`
}

type routesResponse struct {
	Direct  []directRouteResponse  `json:"direct"`
	Transit []transitRouteResponse `json:"transit"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/routes", h.routes)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) routes(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))
	if origin == "" || destination == "" {
		badRequest(c, "origin and destination are required")
		return
	}
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		badRequest(c, "date must be in YYYY-MM-DD format")
		return
	}

	result, err := h.service.FindRoutes(c.Request.Context(), origin, destination, date)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := routesResponse{
		Direct:  make([]directRouteResponse, 0, len(result.Direct)),
		Transit: make([]transitRouteResponse, 0, len(result.Transit)),
	}
	for _, r := range result.Direct {
		resp.Direct = append(resp.Direct, directRouteResponse{
			Flight:        toFlightResponse(r.Flight),
			TotalDuration: r.TotalDuration,
		})
	}
	for _, r := range result.Transit {
		resp.Transit = append(resp.Transit, transitRouteResponse{
			FirstLeg:        toFlightResponse(r.FirstLeg),
			SecondLeg:       toFlightResponse(r.SecondLeg),
			TransitCity:     r.TransitCity,
			LayoverDuration: r.LayoverDuration,
			TotalDuration:   r.TotalDuration,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(*flight))
}

func toFlightResponse(f domain.Flight) flightResponse {
	return flightResponse{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Airline:       f.Airline,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: formatTime(f.DepartureTime),
		ArrivalTime:   formatTime(f.ArrivalTime),
		Duration:      f.Duration(),
	}
}
