package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patto-app/patto-api/internal/models"
	appErrors "github.com/patto-app/patto-api/pkg/errors"
	"github.com/patto-app/patto-api/pkg/token"
)

type inviteRepoStub struct {
	invites map[string]*models.StaffInvite
	used    map[string]bool
}

func newInviteRepoStub() *inviteRepoStub {
	return &inviteRepoStub{invites: map[string]*models.StaffInvite{}, used: map[string]bool{}}
}

func (s *inviteRepoStub) Create(ctx context.Context, invite *models.StaffInvite) error {
	s.invites[invite.ID] = invite
	return nil
}

func (s *inviteRepoStub) FindByID(ctx context.Context, id string) (*models.StaffInvite, error) {
	invite, ok := s.invites[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return invite, nil
}

func (s *inviteRepoStub) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	if s.used[id] {
		return sql.ErrNoRows
	}
	s.used[id] = true
	return nil
}

type inviteProfileStub struct {
	existingEmail string
	created       *models.Profile
}

func (s *inviteProfileStub) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if email == s.existingEmail {
		return &models.Profile{Email: email}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *inviteProfileStub) Create(ctx context.Context, profile *models.Profile) error {
	s.created = profile
	return nil
}

type issuerStub struct{}

func (issuerStub) IssueTokens(ctx context.Context, profile *models.Profile) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "token", Profile: models.ProfileInfo{ID: profile.ID}}, nil
}

func newTestInviteService(invites *inviteRepoStub, profiles *inviteProfileStub) *InviteService {
	signer := token.NewInviteSigner("invite-secret", time.Hour)
	return NewInviteService(invites, profiles, issuerStub{}, signer, "https://app.test", nil, nil)
}

func inviteAdmin() models.Actor {
	return models.Actor{ProfileID: "admin-1", FacilityID: "fac-1", Role: models.RoleAdmin}
}

func TestInviteServiceIssueRequiresAdmin(t *testing.T) {
	svc := newTestInviteService(newInviteRepoStub(), &inviteProfileStub{})

	_, err := svc.Issue(context.Background(), models.Actor{ProfileID: "p", FacilityID: "f", Role: models.RoleStaff}, IssueInviteRequest{Role: "staff"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestInviteServiceIssueAndRedeem(t *testing.T) {
	invites := newInviteRepoStub()
	profiles := &inviteProfileStub{}
	svc := newTestInviteService(invites, profiles)

	issued, err := svc.Issue(context.Background(), inviteAdmin(), IssueInviteRequest{Role: "staff"})
	require.NoError(t, err)
	assert.Contains(t, issued.URL, "https://app.test/join?token=")
	assert.NotEmpty(t, issued.Token)

	res, err := svc.Redeem(context.Background(), RedeemInviteRequest{
		Token:       issued.Token,
		Email:       "staff@example.com",
		Password:    "secret123",
		DisplayName: "新人スタッフ",
	})
	require.NoError(t, err)
	assert.Equal(t, "token", res.AccessToken)

	require.NotNil(t, profiles.created)
	assert.Equal(t, "fac-1", profiles.created.FacilityID)
	assert.Equal(t, models.RoleStaff, profiles.created.Role)
	assert.NotEqual(t, "secret123", profiles.created.PasswordHash)
}

func TestInviteServiceRedeemIsSingleUse(t *testing.T) {
	invites := newInviteRepoStub()
	svc := newTestInviteService(invites, &inviteProfileStub{})

	issued, err := svc.Issue(context.Background(), inviteAdmin(), IssueInviteRequest{Role: "staff"})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemInviteRequest{
		Token: issued.Token, Email: "a@example.com", Password: "secret123", DisplayName: "A",
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemInviteRequest{
		Token: issued.Token, Email: "b@example.com", Password: "secret123", DisplayName: "B",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInviteUsed.Code, appErrors.FromError(err).Code)
}

func TestInviteServiceRedeemExpiredInvite(t *testing.T) {
	invites := newInviteRepoStub()
	svc := newTestInviteService(invites, &inviteProfileStub{})

	issued, err := svc.Issue(context.Background(), inviteAdmin(), IssueInviteRequest{Role: "staff"})
	require.NoError(t, err)

	for _, invite := range invites.invites {
		invite.ExpiresAt = time.Now().Add(-time.Minute)
	}

	_, err = svc.Redeem(context.Background(), RedeemInviteRequest{
		Token: issued.Token, Email: "a@example.com", Password: "secret123", DisplayName: "A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInviteExpired.Code, appErrors.FromError(err).Code)
}

func TestInviteServiceRedeemRejectsExistingEmail(t *testing.T) {
	invites := newInviteRepoStub()
	svc := newTestInviteService(invites, &inviteProfileStub{existingEmail: "taken@example.com"})

	issued, err := svc.Issue(context.Background(), inviteAdmin(), IssueInviteRequest{Role: "staff"})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), RedeemInviteRequest{
		Token: issued.Token, Email: "taken@example.com", Password: "secret123", DisplayName: "A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestInviteServiceGarbageTokenRejected(t *testing.T) {
	svc := newTestInviteService(newInviteRepoStub(), &inviteProfileStub{})

	_, err := svc.Inspect(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInviteExpired.Code, appErrors.FromError(err).Code)
}
