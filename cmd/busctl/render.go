package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/bus-ticket-booking/internal/client"
	"github.com/iliyamo/bus-ticket-booking/internal/model"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(52)

	seatStyles = map[string]lipgloss.Style{
		"seats-full":      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"seats-low":       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"seats-available": lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}

	badgeStyles = map[string]lipgloss.Style{
		"bus-type-express":  badge("33"),
		"bus-type-premium":  badge("135"),
		"bus-type-standard": badge("243"),
	}
)

func badge(bg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color(bg)).Padding(0, 1)
}

func renderCard(c client.RouteCard) string {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("#%d  %s → %s", c.ID, c.From, c.To))
	header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", badgeStyles[c.BusTypeClass].Render(string(c.BusType)))
	times := fmt.Sprintf("Departure %s   Arrival %s   Duration %s", c.DepartureTime, c.ArrivalTime, c.Duration)
	price := fmt.Sprintf("₹%d per passenger", c.Price)
	seats := seatStyles[c.SeatClass].Render(c.SeatsLabel)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, dimStyle.Render(times), price+"   "+seats))
}

func renderBooking(b model.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s\n", okStyle.Render(fmt.Sprintf("Booking #%d", b.ID)), strings.ToUpper(b.Status))
	fmt.Fprintf(&sb, "%s → %s  (%s - %s, %s, %s)\n", b.Route.From, b.Route.To,
		b.Route.DepartureTime, b.Route.ArrivalTime, b.Route.Duration, b.Route.BusType)
	fmt.Fprintf(&sb, "Booked %s\n", dimStyle.Render(b.BookingDate))
	fmt.Fprintf(&sb, "%s:\n", client.PassengerLabel(len(b.Passengers)))
	for i, p := range b.Passengers {
		fmt.Fprintf(&sb, "  %d. %s %s  %s  %s\n", i+1, p.FirstName, p.LastName, p.Email, p.Phone)
	}
	fmt.Fprintf(&sb, "Total ₹%d", b.TotalAmount)
	return cardStyle.Render(sb.String())
}
