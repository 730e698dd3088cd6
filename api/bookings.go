package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
	"github.com/Domenick1991/aircargo/internal/events"
	"github.com/Domenick1991/aircargo/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type BookingHandler struct {
	service  booking.BookingUseCase
	observer events.Observer
}

type createBookingRequest struct {
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Pieces      int      `json:"pieces"`
	WeightKg    int      `json:"weight_kg"`
	FlightRefs  []string `json:"flight_refs"`
}

type transitionRequest struct {
	FlightRef string `json:"flight_ref"`
}

type timelineEventResponse struct {
	Event     string `json:"event"`
	Timestamp string `json:"timestamp"`
	FlightRef string `json:"flight_ref,omitempty"`
}

type bookingResponse struct {
	ID          string                  `json:"id"`
	RefID       string                  `json:"ref_id"`
	Origin      string                  `json:"origin"`
	Destination string                  `json:"destination"`
	Pieces      int                     `json:"pieces"`
	WeightKg    int                     `json:"weight_kg"`
	Status      string                  `json:"status"`
	Flights     []string                `json:"flights"`
	Timeline    []timelineEventResponse `json:"timeline"`
	CreatedAt   string                  `json:"created_at"`
	UpdatedAt   string                  `json:"updated_at"`
}

func NewBookingHandler(service booking.BookingUseCase, observer events.Observer) *BookingHandler {
	if observer == nil {
		observer = events.Observers{}
	}
	return &BookingHandler{service: service, observer: observer}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.history)
	router.POST("/:id/depart", h.depart)
	router.POST("/:id/arrive", h.arrive)
	router.POST("/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		Pieces:      req.Pieces,
		WeightKg:    req.WeightKg,
		FlightRefs:  req.FlightRefs,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.observer.Observe(c.Request.Context(), events.NewBookingEvent(events.TypeBookingCreated, b))
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) history(c *gin.Context) {
	b, err := h.service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) depart(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	b, err := h.service.Depart(c.Request.Context(), c.Param("id"), req.FlightRef)
	h.respondTransition(c, events.TypeBookingDeparted, b, err)
}

func (h *BookingHandler) arrive(c *gin.Context) {
	req, ok := bindTransition(c)
	if !ok {
		return
	}
	b, err := h.service.Arrive(c.Request.Context(), c.Param("id"), req.FlightRef)
	h.respondTransition(c, events.TypeBookingArrived, b, err)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	h.respondTransition(c, events.TypeBookingCancelled, b, err)
}

func (h *BookingHandler) respondTransition(c *gin.Context, eventType string, b *domain.Booking, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	h.observer.Observe(c.Request.Context(), events.NewBookingEvent(eventType, b))
	c.JSON(http.StatusOK, toBookingResponse(b))
}

// bindTransition reads the optional flight reference. An empty body is fine.
func bindTransition(c *gin.Context) (transitionRequest, bool) {
	var req transitionRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return req, false
	}
	return req, true
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	timeline := make([]timelineEventResponse, 0, len(b.Timeline))
	for _, e := range b.Timeline {
		timeline = append(timeline, timelineEventResponse{
			Event:     string(e.Event),
			Timestamp: formatTime(e.Timestamp),
			FlightRef: e.FlightRef,
		})
	}
	flights := b.Flights
	if flights == nil {
		flights = []string{}
	}
	return bookingResponse{
		ID:          b.ID,
		RefID:       b.RefID,
		Origin:      b.Origin,
		Destination: b.Destination,
		Pieces:      b.Pieces,
		WeightKg:    b.WeightKg,
		Status:      string(b.Status),
		Flights:     flights,
		Timeline:    timeline,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
