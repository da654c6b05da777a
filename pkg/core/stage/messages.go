package stage

import "fmt"

// Fixed spoken lines. Generated speech handles the free-form parts of
// the conversation; these are the moments where wording must be exact.
const (
	msgIrrelevantShutdown = "Sorry, I don't think this conversation is going very smoothly. If you're interested later, feel free to get in touch. Have a nice day."
	msgRecruiterHandoff   = "Of course, let me transfer you to the recruiter. One moment."
	msgScreeningUnclear   = "No problem. Without an answer to this question I unfortunately can't continue with the screening. Feel free to get in touch later if you're interested. Have a nice day."

	msgReadyCheck          = "Great, thanks for the short yes and no questions. Now I'd like to ask you a few open questions about your motivation and experience. Take your time to answer. Are you ready?"
	msgReadyCheckDecline   = "No problem. Feel free to get in touch later if you're interested. Have a nice day."
	msgOpenQuestionsThanks = "Great, thanks for your answers."

	msgSchedulingFollowupTomorrow = "You'll receive a confirmation via WhatsApp shortly."
	msgSchedulingFollowupLater    = "You'll receive a confirmation and later a reminder via WhatsApp."
	msgSchedulingPreference       = "I'll note your preference and pass it on to the recruiter. They'll get in touch as soon as possible to find a suitable time. Thanks for your time and have a nice day."

	msgRecruiterGoodbye = "Thanks for the conversation. I'll take everything along and we'll get in touch as soon as possible. Have a nice day."

	msgAlternativeThanks        = "Thanks for your answers. I'll pass this on to the recruiter and they'll get in touch as soon as possible. Have a nice day."
	msgAlternativeNotInterested = "Totally fine, no problem. If you're interested in the future, feel free to get in touch. Have a nice day."

	msgProxyDetected         = "Ah okay, no problem. This conversation is meant for the candidate personally. Could you ask them to call us back when it suits them? Thanks and have a nice day."
	msgCandidateNotAvailable = "Totally fine. Feel free to get in touch when you have a moment. Have a nice day."
)

func msgExistingBooking(date string) string {
	return fmt.Sprintf("You already have an appointment on %s. You can discuss this during that meeting. Thanks for your time and have a nice day.", date)
}

func msgSchedulingInvite(location string) string {
	return fmt.Sprintf("We'd like to invite you for a short interview with the recruiter at our office in %s. Let's see when that would work.", location)
}

func msgSchedulingConfirm(timeslot, location, address, followup string) string {
	return fmt.Sprintf("Great, your interview is scheduled for %s, with the recruiter at our office in %s at %s. %s Thanks for the conversation, good luck and have a nice day.",
		timeslot, location, address, followup)
}

func msgRecruiterGreeting(name string) string {
	return fmt.Sprintf("Hello %s, you're now speaking with the recruiter. How can I help you?", name)
}

func msgVoicemail(name string) string {
	if name == "" {
		return "Hello, this is Anna from HireVox. We called you regarding your application. Feel free to call us back when it suits you. Have a nice day."
	}
	return fmt.Sprintf("Hello %s, this is Anna from HireVox. We called you regarding your application. Feel free to call us back when it suits you. Have a nice day.", name)
}
