package service

import "fmt"

type emailShareNotifier struct {
	sender EmailSender
}

// NewShareNotifier wraps an EmailSender as the share side channel.
func NewShareNotifier(sender EmailSender) ShareNotifier {
	return &emailShareNotifier{sender: sender}
}

func (n *emailShareNotifier) Notify(recipient, senderName, docTitle, link string) error {
	subject := fmt.Sprintf("%s shared a document with you", senderName)
	if senderName == "" {
		subject = "A document was shared with you"
	}
	return n.sender.Send(recipient, subject, shareMailBody(senderName, docTitle, link))
}
