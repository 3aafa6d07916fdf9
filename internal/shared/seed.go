package shared

// BookingNumbers is the static backfill list processed once at startup.
// These are known-good bookings in the remote system; the scheduled sync
// keeps them current afterwards.
var BookingNumbers = []string{
	"23000001",
	"23000002",
	"23000014",
	"23000027",
	"23000033",
	"23000056",
	"23000061",
	"23000078",
	"23000082",
	"23000095",
	"23000101",
	"23000115",
}
