package router

import "strings"

// Topic names the subject of an off-topic message.
type Topic string

const (
	TopicWeather  Topic = "weather"
	TopicNews     Topic = "news"
	TopicCalendar Topic = "calendar"
	TopicMusic    Topic = "music"
	TopicSearch   Topic = "search"
	TopicGreeting Topic = "greeting"
	TopicThanks   Topic = "thanks"
	TopicHelp     Topic = "help"
	TopicOther    Topic = "other"
)

const declineSuffix = " I'm designed to help you manage alarms only."

// HelpReply lists what the assistant can do.
const HelpReply = "I can help you manage your alarms. You can ask me to:\n" +
	"- Set an alarm (e.g., 'set an alarm for 7:00 AM')\n" +
	"- Remove an alarm (e.g., 'remove the 7:00 AM alarm')\n" +
	"- List all alarms (e.g., 'list all alarms')\n" +
	"- Stop a ringing alarm (e.g., 'stop the alarm')"

// FallbackReply answers off-topic messages no topic matched.
const FallbackReply = "I'm sorry, I can only help you manage alarms. I can set, remove, or list alarms for you. " +
	"Is there something specific about alarms you'd like help with?"

type chitchatRule struct {
	topic    Topic
	keywords []string
	reply    string
}

// chitchatRules are checked in order.
var chitchatRules = []chitchatRule{
	{TopicWeather, []string{"weather", "temperature", "forecast"},
		"I'm sorry, I can't provide weather information." + declineSuffix},
	{TopicNews, []string{"news", "headlines", "current events"},
		"I'm sorry, I can't provide news updates." + declineSuffix},
	{TopicCalendar, []string{"calendar", "schedule", "events"},
		"I'm sorry, I can't manage your calendar or events." + declineSuffix},
	{TopicMusic, []string{"music", "play", "song"},
		"I'm sorry, I can't play music for you." + declineSuffix},
	{TopicSearch, []string{"search", "find", "look up"},
		"I'm sorry, I can't search the internet for you." + declineSuffix},
	{TopicGreeting, []string{"hello", "hi", "hey"},
		"Hello! I can help you manage your alarms. What would you like to do?"},
	{TopicThanks, []string{"thank", "thanks"},
		"You're welcome! Let me know if you need anything else with your alarms."},
	{TopicHelp, []string{"help", "what can you do"}, HelpReply},
}

// ChitchatReply picks the canned reply for an off-topic message.
func ChitchatReply(input string) (Topic, string) {
	lower := strings.ToLower(input)
	for _, rule := range chitchatRules {
		if containsAny(lower, rule.keywords) {
			return rule.topic, rule.reply
		}
	}
	return TopicOther, FallbackReply
}
