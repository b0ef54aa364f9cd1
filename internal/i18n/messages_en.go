package i18n

// messagesEN returns the English message table.
func messagesEN() map[string]string {
	return map[string]string{
		"answer.timeout": "Sorry, the system is taking longer than usual to produce an answer. " +
			"Please try the question again in a moment.",
		"answer.error": "A system error occurred: %s",

		"contribution.received": "Contribution submitted and awaiting review",
		"moderation.approved":   "Approved & reindexed",
		"moderation.rejected":   "Rejected",
		"author.anonymous":      "Anonymous",
	}
}
