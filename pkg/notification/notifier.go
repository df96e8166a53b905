package notification

// NotificationData carries the recipient and template data for one notice
type NotificationData struct {
	To   string
	Data map[string]interface{}
}

// NoticeTemplate holds the subject and body templates for a notice. Text and
// Html are Go text/html templates rendered against NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// Notifier delivers notices to a recipient
type Notifier interface {
	Send(notification NotificationData, template NoticeTemplate) error
}

// NoopNotifier discards every notice. Used in tests and dev setups without
// an SMTP server.
type NoopNotifier struct{}

// NewNoopNotifier creates a notifier that does nothing
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Send implements Notifier
func (n *NoopNotifier) Send(notification NotificationData, template NoticeTemplate) error {
	return nil
}
