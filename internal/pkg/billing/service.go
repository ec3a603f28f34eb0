package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/internal/pkg/payments"
	"gorm.io/gorm"
)

var (
	// ErrInvalidSignature is returned before any payload parsing when the
	// webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrNotFound covers both missing resources and ownership misses, so
	// callers cannot distinguish "not yours" from "does not exist".
	ErrNotFound = errors.New("not found")
)

// Notifier delivers credential emails. Delivery is best-effort from the
// reconciler's point of view.
type Notifier interface {
	SendWelcome(email, password, planName string) error
}

// Service is the event reconciler: it consumes signed processor events and
// drives accounts, subscriptions, invoices and payments to a consistent
// state. All collaborators are injected; the service holds no globals.
type Service struct {
	repo          Repository
	processor     payments.Client
	notifier      Notifier
	webhookSecret string
}

// NewService wires the reconciler from its collaborators.
func NewService(repo Repository, processor payments.Client, notifier Notifier, webhookSecret string) *Service {
	return &Service{
		repo:          repo,
		processor:     processor,
		notifier:      notifier,
		webhookSecret: webhookSecret,
	}
}

// HandleEvent is the single webhook entry point. The signature check runs
// against the raw body before anything is parsed; a forged event must never
// reach account provisioning. Every handler is safe to run twice with the
// same payload and assumes nothing about event ordering.
func (s *Service) HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if !VerifyWebhookSignature(rawBody, signatureHeader, s.webhookSecret) {
		return ErrInvalidSignature
	}

	event, err := ParseEvent(rawBody)
	if err != nil {
		return err
	}

	created, stored, err := s.repo.CreateWebhookEventIfNotExists(&models.WebhookEvent{
		StripeEventID:  event.ID,
		EventType:      event.Type,
		PayloadJSON:    string(rawBody),
		SignatureValid: true,
	})
	if err != nil {
		return err
	}
	if !created {
		// Redelivery of a cleanly processed event is acknowledged as-is.
		// A recorded event whose previous attempt failed or never finished
		// is re-run instead: the handlers are idempotent, and processor
		// redelivery is the only retry the system has.
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			return nil
		}
	}

	procErr := s.dispatch(ctx, event)
	s.markProcessed(stored.ID, procErr)
	return procErr
}

func (s *Service) dispatch(ctx context.Context, event *Event) error {
	switch event.Type {
	case EventCheckoutCompleted:
		ev, err := event.AsCheckoutCompleted()
		if err != nil {
			return err
		}
		return s.handleCheckoutCompleted(ctx, ev)
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		ev, err := event.AsSubscriptionChanged()
		if err != nil {
			return err
		}
		return s.handleSubscriptionChanged(ctx, ev)
	case EventInvoicePaymentSucceeded:
		ev, err := event.AsInvoicePaid()
		if err != nil {
			return err
		}
		return s.handleInvoicePaid(ctx, ev)
	default:
		log.Printf("webhook: ignoring event type %s", event.Type)
		return nil
	}
}

// ProvisionAccountForPurchase creates the account for a first-time buyer or
// rotates the credential of an existing one. Rotating on repeat purchase is
// intentional: the returning buyer must receive working credentials for this
// transaction, at the cost of invalidating the previous password.
func (s *Service) ProvisionAccountForPurchase(email, password string) (*models.Account, error) {
	account, err := s.repo.GetAccountByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account, err = models.CreateAccount("", email, password)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreateAccount(account); err != nil {
			return nil, err
		}
		return account, nil
	}

	if err := account.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAccount(account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, ev *CheckoutCompleted) error {
	password, err := models.GeneratePassword()
	if err != nil {
		return err
	}

	account, err := s.ProvisionAccountForPurchase(ev.CustomerEmail, password)
	if err != nil {
		return err
	}

	if ev.StripeCustomerID != "" && account.StripeCustomerID != ev.StripeCustomerID {
		account.StripeCustomerID = ev.StripeCustomerID
		if err := s.repo.SaveAccount(account); err != nil {
			return err
		}
	}

	planName := ""
	if ev.PlanID != 0 {
		if plan, err := s.repo.GetPlanByID(ev.PlanID); err == nil {
			planName = plan.Name
		} else {
			log.Printf("webhook: plan %d not found for checkout %s", ev.PlanID, ev.StripeSubscriptionID)
		}
	}

	_, _, err = s.repo.CreateSubscriptionIfAbsent(&models.Subscription{
		AccountID:            account.ID,
		PlanID:               ev.PlanID,
		StripeSubscriptionID: ev.StripeSubscriptionID,
		Status:               models.SubscriptionStatusActive,
		StartDate:            time.Now(),
	})
	if err != nil {
		return err
	}

	// Best-effort: the credential is already in effect and cannot be
	// recovered once discarded, so a failed mail must not fail the event.
	if err := s.notifier.SendWelcome(account.Email, password, planName); err != nil {
		log.Printf("webhook: welcome mail to %s failed: %v", account.Email, err)
	}
	return nil
}

func (s *Service) handleSubscriptionChanged(ctx context.Context, ev *SubscriptionChanged) error {
	sub, err := s.repo.GetSubscriptionByStripeID(ev.StripeSubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The lifecycle event may race ahead of checkout processing.
			log.Printf("webhook: no subscription for %s, skipping update", ev.StripeSubscriptionID)
			return nil
		}
		return err
	}

	if ev.Status != "" {
		sub.Status = ev.Status
	}
	sub.CancelAtPeriodEnd = ev.CancelAtPeriodEnd
	if ev.CanceledAt != nil {
		sub.EndDate = ev.CanceledAt
	}
	return s.repo.SaveSubscription(sub)
}

func (s *Service) handleInvoicePaid(ctx context.Context, ev *InvoicePaid) error {
	sub, err := s.repo.GetSubscriptionByStripeID(ev.StripeSubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Invoice raced ahead of checkout; the manual resync backfills it.
			log.Printf("webhook: no subscription for invoice %s, skipping", ev.StripeInvoiceID)
			return nil
		}
		return err
	}

	method := "card"
	if ev.CollectionMethod == "send_invoice" {
		method = "boleto"
	}

	return s.recordPaidInvoice(sub, paidInvoice{
		stripeInvoiceID:  ev.StripeInvoiceID,
		amountCents:      ev.AmountPaid,
		dueDate:          ev.DueDate,
		hostedInvoiceURL: ev.HostedInvoiceURL,
		invoicePDF:       ev.InvoicePDF,
		paymentIntentID:  ev.PaymentIntentID,
		method:           method,
	})
}

type paidInvoice struct {
	stripeInvoiceID  string
	amountCents      int64
	dueDate          *time.Time
	hostedInvoiceURL string
	invoicePDF       string
	paymentIntentID  string
	method           string
}

// recordPaidInvoice idempotently creates the invoice row and, only when the
// invoice is new, its parallel payment row. Keying both on the external
// invoice reference keeps redelivery from duplicating either.
func (s *Service) recordPaidInvoice(sub *models.Subscription, in paidInvoice) error {
	created, _, err := s.repo.CreateInvoiceIfAbsent(&models.Invoice{
		SubscriptionID:   sub.ID,
		StripeInvoiceID:  in.stripeInvoiceID,
		Amount:           CentsToAmount(in.amountCents),
		DueDate:          in.dueDate,
		Status:           models.InvoiceStatusPaid,
		HostedInvoiceURL: in.hostedInvoiceURL,
		InvoicePDFURL:    in.invoicePDF,
	})
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	payment := &models.Payment{
		AccountID:      sub.AccountID,
		SubscriptionID: sub.ID,
		Amount:         CentsToAmount(in.amountCents),
		Status:         models.PaymentStatusSucceeded,
		PaymentMethod:  in.method,
	}
	if in.paymentIntentID != "" {
		payment.StripePaymentIntentID = &in.paymentIntentID
	}
	return s.repo.CreatePayment(payment)
}

// SyncInvoices pulls the invoice history of every subscription of the
// account from the processor and backfills paid invoices and payments the
// push-based reconciler missed. Returns the number of invoices added.
func (s *Service) SyncInvoices(ctx context.Context, accountID string) (int, error) {
	subs, err := s.repo.ListSubscriptionsByAccount(accountID)
	if err != nil {
		return 0, err
	}

	added := 0
	for i := range subs {
		sub := &subs[i]
		history, err := s.processor.ListInvoices(ctx, sub.StripeSubscriptionID)
		if err != nil {
			return added, fmt.Errorf("listing invoices for %s: %w", sub.StripeSubscriptionID, err)
		}
		for _, remote := range history {
			if !remote.Paid {
				continue
			}
			created, _, err := s.repo.CreateInvoiceIfAbsent(&models.Invoice{
				SubscriptionID:   sub.ID,
				StripeInvoiceID:  remote.ID,
				Amount:           CentsToAmount(remote.AmountPaid),
				DueDate:          remote.DueDate,
				Status:           models.InvoiceStatusPaid,
				HostedInvoiceURL: remote.HostedInvoiceURL,
				InvoicePDFURL:    remote.InvoicePDF,
			})
			if err != nil {
				return added, err
			}
			if !created {
				continue
			}
			if err := s.repo.CreatePayment(&models.Payment{
				AccountID:      sub.AccountID,
				SubscriptionID: sub.ID,
				Amount:         CentsToAmount(remote.AmountPaid),
				Status:         models.PaymentStatusSucceeded,
				PaymentMethod:  "card",
			}); err != nil {
				return added, err
			}
			added++
		}
	}
	return added, nil
}

func (s *Service) markProcessed(webhookEventID uint, procErr error) {
	msg := ""
	if procErr != nil {
		msg = procErr.Error()
	}
	if err := s.repo.MarkWebhookProcessed(webhookEventID, msg); err != nil {
		log.Printf("webhook: marking event %d processed failed: %v", webhookEventID, err)
	}
}
