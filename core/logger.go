package core

type (
	// Logger is a leveled logger.
	// args may hold errors, map[string]interface{} extras and the current session.Profile.
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Notifier surfaces one-shot, user facing messages (the toasts of the UI).
	Notifier interface {
		Success(msg string)
		Error(msg string)
	}
)
