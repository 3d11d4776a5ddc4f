package gateway

import "strings"

// Topic is a domain question the bot answers with fixed copy before
// (or instead of) consulting the responder.
type Topic string

const (
	TopicFees     Topic = "fees"
	TopicSyllabus Topic = "syllabus"
	TopicDuration Topic = "duration"
)

var topicKeywords = []struct {
	topic Topic
	words []string
}{
	{TopicFees, []string{"fee", "cost", "price"}},
	{TopicSyllabus, []string{"syllabus", "curriculum"}},
	{TopicDuration, []string{"duration", "time", "long"}},
}

// ClassifyTopic scans an utterance for fee, syllabus, or duration
// keywords. Best-effort substring matching; first hit wins.
func ClassifyTopic(utterance string) (Topic, bool) {
	lowered := strings.ToLower(utterance)
	for _, entry := range topicKeywords {
		for _, word := range entry.words {
			if strings.Contains(lowered, word) {
				return entry.topic, true
			}
		}
	}
	return "", false
}

// Canned returns the fixed answer for a classified topic.
func Canned(topic Topic) string {
	switch topic {
	case TopicFees:
		return "For detailed information about fees structure, we recommend visiting our center in person."
	case TopicSyllabus:
		return "For detailed course syllabus and curriculum, we recommend visiting our center."
	case TopicDuration:
		return "The duration varies based on the course and your learning pace. For specific duration details, please visit our center."
	default:
		return "Please contact us at 7845821665 for more details."
	}
}
