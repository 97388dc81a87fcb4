package seed

import (
	"fmt"
	"strings"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds demo entities without persisting them.
type Factory struct {
	faker    *gofakeit.Faker
	fixtures *Fixtures
	maxDays  int
	now      time.Time
	n        int
}

// NewFactory returns a factory drawing from fixtures. A zero seed picks a
// random one; any other seed makes the output repeatable.
func NewFactory(fixtures *Fixtures, seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{
		faker:    gofakeit.New(seed),
		fixtures: fixtures,
		maxDays:  maxDays,
		now:      time.Now().UTC(),
	}
}

func (f *Factory) pick(list []string) string {
	return list[f.faker.Number(0, len(list)-1)]
}

// pastDate is a random moment within the factory's window.
func (f *Factory) pastDate() time.Time {
	return f.faker.DateRange(f.now.AddDate(0, 0, -f.maxDays), f.now).UTC()
}

// Account builds an account with the given password hash. Emails are unique
// within one factory.
func (f *Factory) Account(passwordHash string) *models.Account {
	f.n++
	first, last := f.faker.FirstName(), f.faker.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s.%d@devconnect.dev", first, last, f.n))
	a := &models.Account{
		Name:     first + " " + last,
		Email:    email,
		Password: passwordHash,
		Avatar:   service.GravatarURL(email),
	}
	a.Prepare()
	return a
}

// Profile builds a profile for owner with one or two jobs and one school.
func (f *Factory) Profile(owner *models.Account) *models.Profile {
	p := models.NewProfile(owner.ID)
	p.Status = f.pick(f.fixtures.Statuses)
	p.Company = f.faker.Company()
	p.Website = f.faker.URL()
	p.Location = f.faker.City() + ", " + f.faker.StateAbr()
	p.Bio = f.faker.Sentence(12)
	p.GitHubUsername = f.faker.Username()

	skills := append([]string(nil), f.fixtures.Skills...)
	f.faker.ShuffleStrings(skills)
	p.Skills = skills[:f.faker.Number(1, min(5, len(skills)))]

	handle := strings.ToLower(f.faker.Username())
	p.Social = map[string]string{
		"twitter":  "https://twitter.com/" + handle,
		"linkedin": "https://linkedin.com/in/" + handle,
	}

	start := f.now.AddDate(-f.faker.Number(4, 12), 0, 0)
	p.AddEducation(models.Education{
		School:       f.pick(f.fixtures.Schools),
		Degree:       f.pick(f.fixtures.Degrees),
		FieldOfStudy: f.pick(f.fixtures.Fields),
		From:         start,
		To:           ptr(start.AddDate(4, 0, 0)),
	})

	from := start.AddDate(4, 1, 0)
	jobs := f.faker.Number(1, 2)
	for i := 0; i < jobs; i++ {
		e := models.Experience{
			Title:    f.pick(f.fixtures.Titles),
			Company:  f.faker.Company(),
			Location: f.faker.City(),
			From:     from,
		}
		if i == jobs-1 {
			e.Current = true
		} else {
			to := from.AddDate(f.faker.Number(1, 3), 0, 0)
			e.To = &to
			from = to
		}
		p.AddExperience(e)
	}
	return p
}

// Post builds a post by author dated within the window.
func (f *Factory) Post(author *models.Account) *models.Post {
	p := &models.Post{
		User:   author.ID,
		Text:   f.faker.Paragraph(1, f.faker.Number(1, 4), 12, " "),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   f.pastDate(),
	}
	p.Prepare()
	return p
}

// Comment builds a comment by author on post, after the post was written.
func (f *Factory) Comment(post *models.Post, author *models.Account) models.Comment {
	return models.Comment{
		User:   author.ID,
		Text:   f.faker.Sentence(f.faker.Number(4, 14)),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   f.faker.DateRange(post.Date, f.now).UTC(),
	}
}

func ptr[T any](v T) *T { return &v }
