package confirm_booking

// ConfirmResponse HTTP response model
type ConfirmResponse struct {
	BookingID        string `json:"bookingId"`
	Status           string `json:"status"`
	AlreadyConfirmed bool   `json:"alreadyConfirmed"`
}
