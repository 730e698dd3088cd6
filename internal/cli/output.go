package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Domenick1991/aircargo/internal/domain"
)

var errWriter io.Writer = os.Stderr

const timeLayout = "2006-01-02 15:04 MST"

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) Booking(b *domain.Booking) error {
	if f.Format == "json" {
		return f.writeJSON(b)
	}

	w := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ref_id:\t%s\n", b.RefID)
	fmt.Fprintf(w, "id:\t%s\n", b.ID)
	fmt.Fprintf(w, "route:\t%s -> %s\n", b.Origin, b.Destination)
	fmt.Fprintf(w, "cargo:\t%d pcs, %d kg\n", b.Pieces, b.WeightKg)
	fmt.Fprintf(w, "status:\t%s\n", b.Status)
	if len(b.Flights) > 0 {
		fmt.Fprintf(w, "flights:\t%v\n", b.Flights)
	}
	fmt.Fprintln(w, "timeline:")
	for _, e := range b.Timeline {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", e.Timestamp.UTC().Format(time.RFC3339), e.Event, e.FlightRef)
	}
	return w.Flush()
}

func (f *OutputFormatter) Routes(r *domain.RouteResult) error {
	if f.Format == "json" {
		return f.writeJSON(r)
	}

	w := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "DIRECT (%d)\n", len(r.Direct))
	for _, d := range r.Direct {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%dm\n", d.Flight.FlightNumber, formatTime(d.Flight.DepartureTime), formatTime(d.Flight.ArrivalTime), d.TotalDuration)
	}
	fmt.Fprintf(w, "TRANSIT (%d)\n", len(r.Transit))
	for _, t := range r.Transit {
		fmt.Fprintf(w, "  %s + %s\tvia %s\tlayover %dm\t%dm\n", t.FirstLeg.FlightNumber, t.SecondLeg.FlightNumber, t.TransitCity, t.LayoverDuration, t.TotalDuration)
	}
	return w.Flush()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
