package mail

import "gopkg.in/gomail.v2"

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	From   string
	To     []string
	dialer dialer
}
