package firestoredb

// Package firestoredb mirrors principal profiles into the users
// collection of the document database. The identity provider remains
// the source of truth for credentials; this store holds the portal's
// profile fields (department, student ID, bio) and login bookkeeping.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

const usersCollection = "users"

// ProfileStore implements ports.ProfileStore on Firestore.
type ProfileStore struct {
	client *firestore.Client
	now    func() time.Time
}

var _ ports.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore wraps a Firestore client from the SDK bootstrap.
func NewProfileStore(client *firestore.Client) (*ProfileStore, error) {
	if client == nil {
		return nil, errors.New("firestoredb: client is required")
	}
	return &ProfileStore{client: client, now: time.Now}, nil
}

func (s *ProfileStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(uid)
}

// Create writes the initial profile document. CreatedAt is stamped
// here if the caller left it zero.
func (s *ProfileStore) Create(ctx context.Context, profile domainauth.Profile) error {
	if profile.UID == "" {
		return errors.New("profile UID cannot be empty")
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}
	if _, err := s.doc(profile.UID).Set(ctx, profile); err != nil {
		return fmt.Errorf("create profile %s: %w", profile.UID, err)
	}
	return nil
}

func (s *ProfileStore) Get(ctx context.Context, uid string) (domainauth.Profile, error) {
	if uid == "" {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}

	snap, err := s.doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domainauth.Profile{}, ports.ErrProfileNotFound
		}
		return domainauth.Profile{}, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var profile domainauth.Profile
	if err := snap.DataTo(&profile); err != nil {
		return domainauth.Profile{}, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	profile.UID = uid
	return profile, nil
}

// Merge applies the set fields of upd without touching the rest of the
// document. A no-op update skips the write entirely.
func (s *ProfileStore) Merge(ctx context.Context, uid string, upd domainauth.ProfileUpdate) error {
	if uid == "" {
		return ports.ErrProfileNotFound
	}
	if upd.IsZero() {
		return nil
	}

	updates := []firestore.Update{
		{Path: "updated_at", Value: firestore.ServerTimestamp},
	}
	if upd.DisplayName != nil {
		updates = append(updates, firestore.Update{Path: "display_name", Value: *upd.DisplayName})
	}
	if upd.PhotoURL != nil {
		updates = append(updates, firestore.Update{Path: "photo_url", Value: *upd.PhotoURL})
	}
	if upd.Department != nil {
		updates = append(updates, firestore.Update{Path: "department", Value: *upd.Department})
	}
	if upd.StudentID != nil {
		updates = append(updates, firestore.Update{Path: "student_id", Value: *upd.StudentID})
	}
	if upd.Bio != nil {
		updates = append(updates, firestore.Update{Path: "bio", Value: *upd.Bio})
	}

	if _, err := s.doc(uid).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ports.ErrProfileNotFound
		}
		return fmt.Errorf("merge profile %s: %w", uid, err)
	}
	return nil
}

// TouchLastLogin stamps last_login on successful sign-in. Missing
// documents are not an error; the mirror may lag account creation.
func (s *ProfileStore) TouchLastLogin(ctx context.Context, uid string) error {
	if uid == "" {
		return nil
	}

	_, err := s.doc(uid).Update(ctx, []firestore.Update{
		{Path: "last_login", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("touch last login %s: %w", uid, err)
	}
	return nil
}
