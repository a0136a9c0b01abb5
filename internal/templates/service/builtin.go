package service

import "github.com/lucky-hw-kim/CEO-Outreach-Tool/internal/templates/domain"

// Builtin returns the stock templates in display order.
func Builtin() []domain.Template {
	return []domain.Template{
		{
			ID:      "comeback",
			Name:    "Come Back to Us",
			Subject: "We Miss You, {first_name}!",
			Body: `Hi {first_name},

We noticed it's been a while since your last order with us. We'd love to have you back!

As a valued customer, we wanted to reach out personally and let you know we're here if you need anything.

Best regards,
[Your Company]`,
		},
		{
			ID:      "thankyou",
			Name:    "Thank You",
			Subject: "Thank You for Being With Us, {first_name}!",
			Body: `Hi {first_name},

We wanted to take a moment to thank you for being a loyal customer since {customer_since}.

Your support means everything to us, and we're grateful to have you as part of our community.

Best regards,
[Your Company]`,
		},
		{
			ID:      "special_offer",
			Name:    "Special Offer",
			Subject: "Exclusive Offer Just for You, {first_name}!",
			Body: `Hi {first_name},

As one of our valued customers, we wanted to share an exclusive offer with you.

[Include your special offer details here]

This is our way of saying thank you for your continued support.

Best regards,
[Your Company]`,
		},
		{
			ID:      "feedback",
			Name:    "Request Feedback",
			Subject: "We'd Love Your Feedback, {first_name}",
			Body: `Hi {first_name},

Your opinion matters to us! We'd love to hear about your experience with our products.

Could you take a moment to share your thoughts? Your feedback helps us serve you better.

Best regards,
[Your Company]`,
		},
	}
}
