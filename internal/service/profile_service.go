package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnect/internal/events"
	"devconnect/internal/models"
	"devconnect/internal/observability"
	"devconnect/internal/repository"
	"devconnect/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// UpsertResult tells whether Upsert created or updated the profile.
type UpsertResult int

const (
	Created UpsertResult = iota + 1
	Updated
)

func (r UpsertResult) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// ProfileInput carries the profile form. Empty strings mean "not supplied".
type ProfileInput struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         string
	Social         map[string]string
}

type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        time.Time
	To          *time.Time
	Current     bool
	Description string
}

type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         time.Time
	To           *time.Time
	Current      bool
	Description  string
}

type ProfileService struct {
	profiles repository.ProfileRepository
	accounts repository.AccountRepository
	posts    repository.PostRepository
	events   events.Publisher
}

func NewProfileService(store *repository.Store, publisher events.Publisher) *ProfileService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ProfileService{
		profiles: store.Profiles,
		accounts: store.Accounts,
		posts:    store.Posts,
		events:   publisher,
	}
}

// ParseSkills splits a comma separated list, trimming items and dropping empty ones.
func ParseSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// Upsert creates the caller's profile or applies the supplied fields to it.
func (s *ProfileService) Upsert(ctx context.Context, ownerID string, in ProfileInput) (_ *models.Profile, _ UpsertResult, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "ProfileService", "Upsert")
	defer func() { span.End(err) }()

	skills := ParseSkills(in.Skills)

	var v validation.Validator
	v.Required("status", in.Status, "Status is required")
	v.Check(len(skills) > 0, "skills", "Skills is required")
	if err := v.Err(); err != nil {
		return nil, 0, err
	}

	ownerID = models.CanonicalID(ownerID)
	profile, err := s.profiles.GetByUser(ctx, ownerID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		profile = models.NewProfile(ownerID)
		applyProfileInput(profile, in, skills)
		err = s.profiles.Create(ctx, profile)
		if err == nil {
			span.AddAttributes(attribute.String("profile.result", Created.String()))
			s.publishUpsert(ctx, ownerID, Created)
			return profile, Created, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, 0, models.NewInternalError(err)
		}
		// A concurrent request created it first; apply ours as an update.
		if profile, err = s.profiles.GetByUser(ctx, ownerID); err != nil {
			return nil, 0, models.NewInternalError(err)
		}
	case err != nil:
		return nil, 0, models.NewInternalError(err)
	}

	applyProfileInput(profile, in, skills)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	span.AddAttributes(attribute.String("profile.result", Updated.String()))
	s.publishUpsert(ctx, ownerID, Updated)
	return profile, Updated, nil
}

func applyProfileInput(p *models.Profile, in ProfileInput, skills []string) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.Status, in.Status)
	set(&p.GitHubUsername, in.GitHubUsername)
	p.Skills = skills

	if p.Social == nil {
		p.Social = map[string]string{}
	}
	for _, platform := range models.SocialPlatforms {
		if v := strings.TrimSpace(in.Social[platform]); v != "" {
			p.Social[platform] = v
		}
	}
}

func (s *ProfileService) publishUpsert(ctx context.Context, ownerID string, result UpsertResult) {
	_ = s.events.Publish(ctx, events.Event{
		Type:    events.ProfileUpserted,
		ActorID: ownerID,
		Payload: map[string]string{"result": result.String()},
	})
}

// GetMine returns the caller's profile with its owner populated.
func (s *ProfileService) GetMine(ctx context.Context, ownerID string) (*models.Profile, error) {
	return s.getPopulated(ctx, ownerID, "There is no profile for this user")
}

// GetByUser returns another account's profile with its owner populated.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return s.getPopulated(ctx, userID, "Profile not found")
}

func (s *ProfileService) getPopulated(ctx context.Context, userID, missing string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUser(ctx, models.CanonicalID(userID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewProfileMissingError(missing)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.populateOwners(ctx, []*models.Profile{profile}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}

// List returns every profile with owners populated.
func (s *ProfileService) List(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.populateOwners(ctx, profiles); err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (s *ProfileService) populateOwners(ctx context.Context, profiles []*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User)
	}
	accounts, err := s.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*models.Account, len(accounts))
	for _, a := range accounts {
		byID[models.CanonicalID(a.ID)] = a
	}
	for _, p := range profiles {
		p.Owner = byID[models.CanonicalID(p.User)].Ref()
	}
	return nil
}

// mutate loads the caller's profile, applies fn and persists the result.
func (s *ProfileService) mutate(ctx context.Context, ownerID string, fn func(*models.Profile) error) (*models.Profile, error) {
	profile, err := s.profiles.GetByUser(ctx, models.CanonicalID(ownerID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := fn(profile); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError("Profile not found")
		}
		return nil, models.NewInternalError(err)
	}
	return profile, nil
}

// AddExperience prepends an experience entry to the caller's profile.
func (s *ProfileService) AddExperience(ctx context.Context, ownerID string, in ExperienceInput) (_ *models.Profile, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "ProfileService", "AddExperience")
	defer func() { span.End(err) }()

	var v validation.Validator
	v.Required("title", in.Title, "Title is required")
	v.Required("company", in.Company, "Company is required")
	v.RequiredTime("from", in.From, "From date is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(p *models.Profile) error {
		p.AddExperience(models.Experience{
			Title:       strings.TrimSpace(in.Title),
			Company:     strings.TrimSpace(in.Company),
			Location:    strings.TrimSpace(in.Location),
			From:        in.From,
			To:          in.To,
			Current:     in.Current,
			Description: in.Description,
		})
		return nil
	})
}

// RemoveExperience deletes one experience entry by sub-id.
func (s *ProfileService) RemoveExperience(ctx context.Context, ownerID, expID string) (*models.Profile, error) {
	return s.mutate(ctx, ownerID, func(p *models.Profile) error {
		if !p.RemoveExperience(expID) {
			return models.NewNotFoundError("Experience not found")
		}
		return nil
	})
}

// AddEducation prepends an education entry to the caller's profile.
func (s *ProfileService) AddEducation(ctx context.Context, ownerID string, in EducationInput) (_ *models.Profile, err error) {
	span, ctx := observability.StartServiceSpan(ctx, "ProfileService", "AddEducation")
	defer func() { span.End(err) }()

	var v validation.Validator
	v.Required("school", in.School, "School is required")
	v.Required("degree", in.Degree, "Degree is required")
	v.Required("field_of_study", in.FieldOfStudy, "Field of Study is required")
	v.RequiredTime("from", in.From, "From date is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(p *models.Profile) error {
		p.AddEducation(models.Education{
			School:       strings.TrimSpace(in.School),
			Degree:       strings.TrimSpace(in.Degree),
			FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
			From:         in.From,
			To:           in.To,
			Current:      in.Current,
			Description:  in.Description,
		})
		return nil
	})
}

// RemoveEducation deletes one education entry by sub-id.
func (s *ProfileService) RemoveEducation(ctx context.Context, ownerID, eduID string) (*models.Profile, error) {
	return s.mutate(ctx, ownerID, func(p *models.Profile) error {
		if !p.RemoveEducation(eduID) {
			return models.NewNotFoundError("Education not found")
		}
		return nil
	})
}

// DeleteAccountCascade removes the caller's posts, then profile, then account.
// Steps are not rolled back; the first failure stops the sequence and names
// the step that failed.
func (s *ProfileService) DeleteAccountCascade(ctx context.Context, ownerID string) (err error) {
	span, ctx := observability.StartServiceSpan(ctx, "ProfileService", "DeleteAccountCascade")
	defer func() { span.End(err) }()

	ownerID = models.CanonicalID(ownerID)

	removed, err := s.posts.DeleteByUser(ctx, ownerID)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("delete posts: %w", err))
	}
	span.AddAttributes(attribute.Int64("posts.removed", removed))

	if err := s.profiles.DeleteByUser(ctx, ownerID); err != nil {
		return models.NewInternalError(fmt.Errorf("delete profile: %w", err))
	}

	if err := s.accounts.Delete(ctx, ownerID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return models.NewInternalError(fmt.Errorf("delete account: %w", err))
	}

	_ = s.events.Publish(ctx, events.Event{Type: events.AccountDeleted, ActorID: ownerID})
	return nil
}
