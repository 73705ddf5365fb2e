package tui

import tea "github.com/charmbracelet/bubbletea"

// notificationBuffer bounds the notifications queued while the program is
// busy. Further notifications are dropped.
const notificationBuffer = 32

// Notifier delivers notifications into the bubbletea message loop. It is
// safe for use from any goroutine.
type Notifier struct {
	messages chan string
}

// NewNotifier creates a Notifier. Pass it to the app controller and the
// synchronizer, and to NewModel.
func NewNotifier() *Notifier {
	return &Notifier{messages: make(chan string, notificationBuffer)}
}

// Notify queues message for display as a toast.
func (n *Notifier) Notify(message string) {
	select {
	case n.messages <- message:
	default:
	}
}

// notificationMsg carries one notification to Update.
type notificationMsg struct {
	text string
}

// listenForNotification blocks until a notification arrives and delivers it
// as a notificationMsg.
func listenForNotification(messages <-chan string) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-messages
		if !ok {
			return nil
		}
		return notificationMsg{text: text}
	}
}
