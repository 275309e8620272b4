package email

import (
	"fmt"
	"strings"
)

// Welcome is the email sent when a new user registers.
func Welcome(firstName, lastName string) (subject, text, html string) {
	name := strings.TrimSpace(firstName + " " + lastName)
	subject = "Welcome to Our Service"
	text = "Thank you for registering with us!"
	html = fmt.Sprintf(`<h1>Welcome to Our Service!</h1>
<p>Dear %s,</p>
<p>Thank you for registering with us. We're excited to have you on board!</p>
<p>Best regards,<br/>The Team</p>`, name)
	return subject, text, html
}

// PaymentCompleted confirms a received payment for an order.
func PaymentCompleted(username, orderID, amount, currency string) (subject, text, html string) {
	subject = "Payment Successful"
	text = "We have received your payment"
	html = fmt.Sprintf(`<h1>Payment Successful!</h1>
<p>Dear %s,</p>
<p>We have received your payment of %s %s for the order ID: %s.</p>
<p>Thank you for your purchase!</p>
<p>Best regards,<br/>The Team</p>`, username, currency, amount, orderID)
	return subject, text, html
}

// PaymentFailed notifies the user that a payment did not go through.
func PaymentFailed(username, orderID string) (subject, text, html string) {
	subject = "Payment Failed"
	text = "Your payment could not be processed"
	html = fmt.Sprintf(`<h1>Payment Failed</h1>
<p>Dear %s,</p>
<p>Unfortunately, your payment for the order ID: %s has failed.</p>
<p>Please try again or contact support if the issue persists.</p>
<p>Best regards,<br/>The Team</p>`, username, orderID)
	return subject, text, html
}
