package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/model"
	appErr "github.com/docvault/docvault/internal/pkg/errors"
	"github.com/docvault/docvault/internal/repo"
)

// shareTokenRetries bounds how often issuance retries after a token
// collision before giving up with an internal error.
const shareTokenRetries = 3

// ShareNotifier delivers the "a document was shared with you" side channel.
// Failures are logged by the caller and never fail the grant.
type ShareNotifier interface {
	Notify(recipient, senderName, docTitle, link string) error
}

// ShareService gates anonymous access to a document behind a possession
// token with a time bound. All mutating operations stay owner-only.
type ShareService struct {
	docs            *repo.DocumentRepo
	recipients      *repo.ShareRecipientRepo
	users           *repo.UserRepo
	notifier        ShareNotifier
	baseURL         string
	defaultTTLHours int
	maxTTLHours     int
	now             func() time.Time
}

func NewShareService(docs *repo.DocumentRepo, recipients *repo.ShareRecipientRepo, users *repo.UserRepo, notifier ShareNotifier, cfg config.ShareConfig) *ShareService {
	return &ShareService{
		docs:            docs,
		recipients:      recipients,
		users:           users,
		notifier:        notifier,
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		defaultTTLHours: cfg.DefaultTTLHours,
		maxTTLHours:     cfg.MaxTTLHours,
		now:             time.Now,
	}
}

type IssueGrantInput struct {
	RecipientEmail string
	TTLHours       int
}

// ShareGrant is the externally visible contract of an active share.
type ShareGrant struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	Link      string `json:"link"`
}

// SharedDocumentView is the read-only projection served to anonymous
// callers. It never carries the owner's id, only the display name.
type SharedDocumentView struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	FileName    string `json:"file_name"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	FileData    string `json:"file_data"`
	SharedBy    string `json:"shared_by"`
	SharedAt    int64  `json:"shared_at"`
}

type ActiveGrant struct {
	Grant      ShareGrant `json:"grant"`
	Recipients []string   `json:"recipients"`
}

func (s *ShareService) IssueGrant(ctx context.Context, userID, docID string, input IssueGrantInput) (*ShareGrant, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, appErr.ErrForbidden
	}
	ttl := input.TTLHours
	if ttl == 0 {
		ttl = s.defaultTTLHours
	}
	if ttl < 0 || ttl > s.maxTTLHours {
		return nil, appErr.ErrInvalid
	}
	recipient := strings.TrimSpace(strings.ToLower(input.RecipientEmail))

	now := s.now()
	expiresAt := now.Add(time.Duration(ttl) * time.Hour).Unix()
	var token string
	installed := false
	for attempt := 0; attempt < shareTokenRetries; attempt++ {
		token = newShareToken()
		err := s.docs.SetShare(ctx, docID, token, expiresAt, now.Unix())
		if err == nil {
			installed = true
			break
		}
		if !appErr.IsConflict(err) {
			return nil, err
		}
		logutil.GetLogger(ctx).Warn("share token collision, retrying",
			zap.String("document_id", docID), zap.Int("attempt", attempt+1))
	}
	if !installed {
		return nil, appErr.ErrInternal
	}

	items := make([]model.ShareRecipient, 0, 1)
	if recipient != "" {
		items = append(items, model.ShareRecipient{
			ID:         newID(),
			DocumentID: docID,
			Email:      recipient,
			Ctime:      now.Unix(),
		})
	}
	if err := s.recipients.Replace(ctx, docID, items); err != nil {
		return nil, err
	}

	link := s.buildLink(token)
	if recipient != "" {
		s.dispatchNotification(ctx, userID, doc.Title, recipient, link)
	}
	return &ShareGrant{Token: token, ExpiresAt: expiresAt, Link: link}, nil
}

func (s *ShareService) ResolveGrant(ctx context.Context, token string) (*SharedDocumentView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, appErr.ErrNotFound
	}
	doc, err := s.docs.GetByShareToken(ctx, token)
	if err != nil {
		// Revoked, replaced and never-issued tokens all land here on
		// purpose: the caller cannot probe which it was.
		return nil, err
	}
	if doc.Shared == 0 {
		return nil, appErr.ErrNotFound
	}
	if s.now().Unix() > doc.ShareExpiresAt {
		// Lazy expiry: the stale grant stays in storage untouched.
		return nil, appErr.ErrExpired
	}
	owner, err := s.users.GetByID(ctx, doc.UserID)
	if err != nil {
		return nil, err
	}
	return &SharedDocumentView{
		Title:       doc.Title,
		Category:    doc.Category,
		Description: doc.Description,
		FileName:    doc.FileName,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		FileData:    doc.FileData,
		SharedBy:    owner.Name,
		SharedAt:    doc.ShareCtime,
	}, nil
}

func (s *ShareService) RevokeGrant(ctx context.Context, userID, docID string) error {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.UserID != userID {
		return appErr.ErrForbidden
	}
	// Unconditional clear keeps revocation idempotent.
	if err := s.docs.ClearShare(ctx, docID, s.now().Unix()); err != nil {
		return err
	}
	return s.recipients.Clear(ctx, docID)
}

// GetActiveGrant is the owner's view of the current grant, expired or not.
func (s *ShareService) GetActiveGrant(ctx context.Context, userID, docID string) (*ActiveGrant, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, appErr.ErrForbidden
	}
	if doc.Shared == 0 || doc.ShareToken == "" {
		return nil, appErr.ErrNotFound
	}
	items, err := s.recipients.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(items))
	for _, item := range items {
		emails = append(emails, item.Email)
	}
	return &ActiveGrant{
		Grant: ShareGrant{
			Token:     doc.ShareToken,
			ExpiresAt: doc.ShareExpiresAt,
			Link:      s.buildLink(doc.ShareToken),
		},
		Recipients: emails,
	}, nil
}

func (s *ShareService) buildLink(token string) string {
	return s.baseURL + "/shared/" + token
}

// dispatchNotification fires after the grant is committed and does not block
// or fail the issuance.
func (s *ShareService) dispatchNotification(ctx context.Context, userID, docTitle, recipient, link string) {
	if s.notifier == nil {
		return
	}
	owner, err := s.users.GetByID(ctx, userID)
	senderName := ""
	if err == nil {
		senderName = owner.Name
	}
	go func() {
		if err := s.notifier.Notify(recipient, senderName, docTitle, link); err != nil {
			logutil.GetLogger(context.Background()).Error("share notification failed",
				zap.String("recipient", recipient),
				zap.Error(err))
		}
	}()
}
