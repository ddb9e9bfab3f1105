// Package verify implements the email verification workflow: a per-user
// state machine over Unregistered → PendingCode → Verified, with a
// confirmation-gated side path for changing the email on an already
// verified account.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MerrickKing/walrusbot/internal/domain"
	"github.com/MerrickKing/walrusbot/internal/gateway"
	"github.com/MerrickKing/walrusbot/internal/pkg/code"
	"github.com/MerrickKing/walrusbot/internal/pkg/validate"
)

const emailSubject = "Your verification code"

// Mailer delivers a rendered email. Failures are treated as transient and
// surfaced to the user as retryable.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// UserStore is the record store. Create and Update report domain.ErrConflict
// on a lost concurrent write; the workflow abandons the operation and the
// user is told to retry.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.UserRecord, error)
	Create(ctx context.Context, u *domain.UserRecord) error
	Update(ctx context.Context, userID string, observed time.Time, updates map[string]interface{}) error
}

// Notifier publishes best-effort ops notifications. May be nil.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// Service is the verification workflow. All state lives in the record
// store and the Confirmations map; Service itself is stateless and safe
// for concurrent use by many event-handling goroutines.
type Service struct {
	users         UserStore
	mailer        Mailer
	client        gateway.Client
	confirmations *Confirmations
	template      *EmailTemplate
	notifier      Notifier
}

func NewService(users UserStore, mailer Mailer, client gateway.Client, confirmations *Confirmations, template *EmailTemplate, notifier Notifier) *Service {
	return &Service{
		users:         users,
		mailer:        mailer,
		client:        client,
		confirmations: confirmations,
		template:      template,
		notifier:      notifier,
	}
}

// Offer routes a non-command DM to a pending email-change confirmation.
// Returns true when a waiting transition consumed the message.
func (s *Service) Offer(userID, content string) bool {
	return s.confirmations.Offer(userID, content)
}

// SubmitEmail handles the "verify email" command for every state.
func (s *Service) SubmitEmail(ctx context.Context, user gateway.User, channelID, email string) error {
	if err := validate.Struct(domain.SubmitEmailRequest{Email: email}); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrInvalidEmail)
	}

	rec, err := s.users.Get(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.firstSubmission(ctx, user, channelID, email)
	case err != nil:
		return err
	}

	if rec.Email == email {
		if rec.Verified {
			return fmt.Errorf("user %s resubmitted confirmed email: %w", user.ID, domain.ErrAlreadyVerified)
		}
		// Re-send the outstanding code unchanged so earlier emails stay valid.
		return s.sendCode(ctx, channelID, user.Username, email, rec.Code)
	}

	if rec.Verified {
		if err := s.confirmEmailChange(ctx, user, channelID, email); err != nil {
			return err
		}
	}
	return s.reissue(ctx, user, channelID, email, rec)
}

// SubmitCode handles the "verify code" command.
func (s *Service) SubmitCode(ctx context.Context, user gateway.User, channelID, submitted string) error {
	rec, err := s.users.Get(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no record for %s: %w", user.ID, domain.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if rec.Code == "" {
		if rec.Verified {
			return fmt.Errorf("user %s has no code outstanding: %w", user.ID, domain.ErrAlreadyVerified)
		}
		return fmt.Errorf("no outstanding code for %s: %w", user.ID, domain.ErrNotFound)
	}

	// Exact, case-sensitive match against the stored fixed-length code.
	if submitted != rec.Code {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrCodeMismatch)
	}

	updates := map[string]interface{}{"verified": true, "code": ""}
	if err := s.users.Update(ctx, user.ID, rec.UpdatedAt, updates); err != nil {
		return err
	}

	if s.notifier != nil {
		msg := fmt.Sprintf("user %s (%s) verified %s", user.ID, user.Username, rec.Email)
		if err := s.notifier.Notify(ctx, "verification complete", msg); err != nil {
			slog.Warn("ops notification failed", "user_id", user.ID, "err", err)
		}
	}

	return s.reply(ctx, channelID, "Your email is verified! Your roles will be updated shortly.")
}

// NagUnverified DMs a joining member a prompt to verify, unless a verified
// record already exists for them.
func (s *Service) NagUnverified(ctx context.Context, user gateway.User) error {
	rec, err := s.users.Get(ctx, user.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if rec != nil && rec.Verified {
		return nil
	}
	dm, err := s.client.OpenDM(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("open DM for %s: %w", user.ID, err)
	}
	return s.reply(ctx, dm, "Welcome! To get your member roles, verify your email by sending me `verify email your@address.edu` here.")
}

// firstSubmission is transition Unregistered → PendingCode. The record is
// created only after the code email went out; a send failure leaves no
// trace.
func (s *Service) firstSubmission(ctx context.Context, user gateway.User, channelID, email string) error {
	c, err := code.New(domain.CodeLength)
	if err != nil {
		return err
	}
	if err := s.sendCode(ctx, channelID, user.Username, email, c); err != nil {
		return err
	}
	rec := &domain.UserRecord{
		UserID:   user.ID,
		Username: user.Username,
		Email:    email,
		Code:     c,
		Verified: false,
	}
	if err := s.users.Create(ctx, rec); err != nil {
		return err
	}
	return nil
}

// confirmEmailChange is the Verified → PendingReconfirmation step: warn,
// then suspend until the user explicitly confirms within the window. Any
// other reply, a timeout, or a superseding submission aborts the whole
// transition with the record untouched.
func (s *Service) confirmEmailChange(ctx context.Context, user gateway.User, channelID, newEmail string) error {
	if err := s.reply(ctx, channelID, "You've already verified with a different email, and you may lose access to your roles until you've verified this one!"); err != nil {
		return err
	}
	if err := s.reply(ctx, channelID, "Reply \"confirm\" if you wish to change your email (this offer times out)."); err != nil {
		return err
	}

	w := s.confirmations.Begin(user.ID, newEmail)
	content, err := s.confirmations.Await(ctx, user.ID, w)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(content), "confirm") {
		return fmt.Errorf("reply was not a confirmation: %w", domain.ErrConfirmationTimeout)
	}
	return nil
}

// reissue points an existing record at a new email with a fresh code:
// PendingCode with a changed address, or the back half of transition 4.
func (s *Service) reissue(ctx context.Context, user gateway.User, channelID, email string, rec *domain.UserRecord) error {
	c, err := code.New(domain.CodeLength)
	if err != nil {
		return err
	}
	if err := s.sendCode(ctx, channelID, user.Username, email, c); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"email":    email,
		"code":     c,
		"verified": false,
	}
	return s.users.Update(ctx, user.ID, rec.UpdatedAt, updates)
}

// sendCode renders the template and delivers it, replying with next steps
// on success. Delivery failures surface as retryable.
func (s *Service) sendCode(ctx context.Context, channelID, username, email, c string) error {
	body, err := s.template.Render(username, c)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, email, emailSubject, body); err != nil {
		slog.Error("verification email failed", "email_domain", emailDomain(email), "err", err)
		return fmt.Errorf("send to %s: %w", emailDomain(email), domain.ErrMailTransient)
	}
	return s.reply(ctx, channelID, "Verification email sent! Once you've got your code, send it to me with `verify code your-code-here`.")
}

func (s *Service) reply(ctx context.Context, channelID, text string) error {
	return s.client.SendMessage(ctx, channelID, text)
}

// emailDomain keeps full addresses out of logs and error strings.
func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i:]
	}
	return "?"
}
