package flow

// Conversation copy for each step of the guided enquiry. The numbered
// prompts mirror the form the centre's staff use on paper.
const (
	msgHelpOffer = "I can help you with course inquiries, fee details, or schedule information. How may I assist you?"

	msgAskName = "I'd be happy to help you with course information! Please provide the following details:\n\n1. Your Name:"

	msgAskMobile     = "2. Your Mobile Number:"
	msgInvalidMobile = "Invalid mobile number. Please enter exactly 10 digits."

	msgAskEmail     = "3. Your Email ID:"
	msgInvalidEmail = "Invalid email format. Please enter a valid email address."

	msgAskStatus = "4. What's your current status? (Student/Working Professional/Job Seeker/Other)"

	msgDuplicate = "I notice you've inquired with us before using this mobile number or email.\n" +
		"Our team will contact you soon with more information.\n" +
		"Thank you for your interest! Have a great day!"

	msgStoreDown = "Sorry, I couldn't check your details just now. Please send your email again in a moment."

	msgFarewell = "Thank you for your inquiry! Have a great day!"

	msgReset = "How else can I assist you today?"
)

func thankYouMessage(contact string) string {
	return "Thank you for providing your details! Our team will contact you soon with more information about the courses you're interested in.\n\n" +
		"For immediate assistance or more details, you can visit our center or call us at " + contact + ".\n\n" +
		msgFarewell
}

func gatewayFallbackMessage(contact string) string {
	return "Please contact us at " + contact + " for more details."
}
