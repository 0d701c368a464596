package email

const (
	subjectWelcome         = "Welcome to EventCraft"
	subjectNewLeadFmt      = "New lead for %s"
	subjectLeadBookedFmt   = "Your booking with %s is confirmed"
	subjectLeadReminderFmt = "Reminder: %s is waiting for your reply"
)
