package whatsapp

import (
	"fmt"
	"strings"
)

// ProactiveTemplates rotate for guests without recorded interests.
var ProactiveTemplates = []string{
	"Have you considered booking a romantic overwater experience? 🏝️",
	"New magical experiences available! Check out our latest offerings ✨",
	"Your next adventure awaits. Would you like personalized recommendations? 🌟",
	"Exclusive deals on premium rooms this week! Book now for 15% off 🎁",
}

func Welcome(name string) string {
	greeting := "Hello!"
	if name != "" {
		greeting = fmt.Sprintf("Hi %s!", name)
	}
	return greeting + ` 👋

Welcome to Lina Point Resort! I'm Maya, your personal concierge guide. ✨

I can help you with:
🏖️ Room bookings & reservations
🎵 Personalized magic experiences (songs, videos, packages)
🌴 Tours & activities
💫 Special occasions (birthdays, anniversaries, proposals)

Just send me a message and let's create some magic! The Magic is You 🌟`
}

type BookingDetails struct {
	BookingID string
	CheckIn   string
	CheckOut  string
	RoomType  string
	GuestName string
}

func BookingConfirmation(d BookingDetails) string {
	return fmt.Sprintf(`🎉 Booking Confirmed!

Hi %s,

Your reservation at Lina Point Resort is confirmed! ✨

📅 Check-in: %s
📅 Check-out: %s
🏖️ Room: %s
🆔 Booking ID: %s

We can't wait to welcome you! Reply with "magic" to explore personalized experiences for your stay. 🌟

The Magic is You! ✨`, d.GuestName, d.CheckIn, d.CheckOut, d.RoomType, d.BookingID)
}

// Reminder announces an upcoming check-in daysUntil days out.
func Reminder(guestName, checkIn string, daysUntil int) string {
	unit := "day"
	if daysUntil > 1 {
		unit = "days"
	}
	return fmt.Sprintf(`🌴 Your Stay is Coming Up!

Hi %s,

Just %d %s until your arrival at Lina Point Resort!

📅 Check-in: %s

Reply with any questions or if you'd like to add personalized magic experiences to your stay! ✨

Looking forward to hosting you! 🌟`, guestName, daysUntil, unit, checkIn)
}

type ContentLinks struct {
	Title    string
	SongURL  string
	VideoURL string
}

func MagicContentDelivery(links ContentLinks) string {
	title := links.Title
	if title == "" {
		title = "Your Personalized Magic"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✨ %s ✨\n\nYour personalized magic content is ready! 🎵🎬\n\n", title)
	if links.SongURL != "" {
		fmt.Fprintf(&b, "🎵 Song: %s\n", links.SongURL)
	}
	if links.VideoURL != "" {
		fmt.Fprintf(&b, "🎬 Video: %s\n", links.VideoURL)
	}
	b.WriteString("\nThe Magic is You! 🌟\n\nEnjoy your personalized experience! 💫")
	return b.String()
}

// InterestMessage personalizes a proactive message around the first interest.
func InterestMessage(interest string) string {
	return fmt.Sprintf("Hi! Based on your interest in %s, we have something special for you. ✨", interest)
}
