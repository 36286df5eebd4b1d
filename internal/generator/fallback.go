package generator

import "review-responder-go/internal/model"

var fallbackTemplates = map[model.Sentiment]map[string]string{
	model.SentimentPositive: {
		model.ToneProfessional: "Thank you for your positive review. We are pleased to hear you had a great experience and look forward to serving you again.",
		model.ToneFriendly:     "Thanks so much for the kind words! We're thrilled you enjoyed your visit and can't wait to see you again soon!",
		model.ToneApologetic:   "Thank you for your kind review. We are grateful for your feedback and will keep working hard to earn your trust every visit.",
		model.ToneEnthusiastic: "Wow, thank you! Reviews like yours make our day, and we can't wait to welcome you back!",
	},
	model.SentimentNeutral: {
		model.ToneProfessional: "Thank you for your feedback. We appreciate you taking the time to share your experience and are always working to improve.",
		model.ToneFriendly:     "Thanks for stopping by and sharing your thoughts! We'd love another chance to make your next visit even better.",
		model.ToneApologetic:   "Thank you for your honest feedback. We're sorry your experience wasn't everything it should have been, and we're working to do better.",
		model.ToneEnthusiastic: "Thanks for the feedback! We're always looking to level up and hope to wow you next time!",
	},
	model.SentimentNegative: {
		model.ToneProfessional: "Thank you for your feedback. We are sorry to hear about your experience. Please contact us directly so we can address your concerns.",
		model.ToneFriendly:     "We're really sorry things didn't go well this time. Please reach out to us so we can make it right!",
		model.ToneApologetic:   "We sincerely apologize for your experience. This is not the standard we hold ourselves to. Please contact us so we can make things right.",
		model.ToneEnthusiastic: "We're sorry we missed the mark! We'd love the chance to turn this around, so please get in touch with us.",
	},
}

// FallbackText returns the canned reply for tone and the rating's sentiment.
// Unknown tones use the professional wording.
func FallbackText(tone string, rating int) string {
	byTone := fallbackTemplates[model.SentimentFor(rating)]
	if text, ok := byTone[normalizeTone(tone)]; ok {
		return text
	}
	return byTone[model.ToneProfessional]
}
