package mail

import "fmt"

// SMTPNotifier delivers account credential emails through the SMTP mailer.
// It satisfies the reconciler's Notifier interface.
type SMTPNotifier struct{}

func NewSMTPNotifier() *SMTPNotifier {
	return &SMTPNotifier{}
}

// SendWelcome emails the purchase-time credentials. Repeat purchases rotate
// the password, so this mail always carries the currently valid one.
func (n *SMTPNotifier) SendWelcome(email, password, planName string) error {
	subject := "Bem-vindo ao Amparo - seus dados de acesso"
	body := fmt.Sprintf(
		"<h2>Bem-vindo ao Amparo!</h2>"+
			"<p>Seu plano <strong>%s</strong> está ativo.</p>"+
			"<p>Acesse o portal do cliente com os dados abaixo:</p>"+
			"<p>E-mail: <strong>%s</strong><br>Senha: <strong>%s</strong></p>"+
			"<p>Recomendamos alterar a senha após o primeiro acesso.</p>",
		planName, email, password,
	)
	return SendMail(email, subject, body)
}

// SendAccessRecovery emails a freshly rotated credential for self-service
// account recovery.
func (n *SMTPNotifier) SendAccessRecovery(email, password string) error {
	subject := "Amparo - nova senha de acesso"
	body := fmt.Sprintf(
		"<h2>Recuperação de acesso</h2>"+
			"<p>Uma nova senha foi gerada para sua conta:</p>"+
			"<p>Senha: <strong>%s</strong></p>"+
			"<p>Se você não solicitou esta alteração, entre em contato com o suporte.</p>",
		password,
	)
	return SendMail(email, subject, body)
}
