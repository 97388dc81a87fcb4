package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/service"
	"devconnect/internal/validation"
)

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type postRequest struct {
	Text string `json:"text" form:"text"`
}

// skillList accepts either "Go, SQL" or ["Go","SQL"].
type skillList string

const skillsTypeMsg = "Skills must be a string or a list of strings"

func (s *skillList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return models.NewValidationError(skillsTypeMsg, models.FieldError{Msg: skillsTypeMsg, Param: "skills"})
		}
		*s = skillList(strings.Join(list, ","))
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return models.NewValidationError(skillsTypeMsg, models.FieldError{Msg: skillsTypeMsg, Param: "skills"})
	}
	*s = skillList(raw)
	return nil
}

type profileRequest struct {
	Company        string    `json:"company" form:"company"`
	Website        string    `json:"website" form:"website"`
	Location       string    `json:"location" form:"location"`
	Bio            string    `json:"bio" form:"bio"`
	Status         string    `json:"status" form:"status"`
	GitHubUsername string    `json:"githubusername" form:"githubusername"`
	Skills         skillList `json:"skills" form:"skills"`
	YouTube        string    `json:"youtube" form:"youtube"`
	Twitter        string    `json:"twitter" form:"twitter"`
	Facebook       string    `json:"facebook" form:"facebook"`
	LinkedIn       string    `json:"linkedin" form:"linkedin"`
	Instagram      string    `json:"instagram" form:"instagram"`
}

func (r profileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Bio:            r.Bio,
		Status:         r.Status,
		GitHubUsername: r.GitHubUsername,
		Skills:         string(r.Skills),
		Social: map[string]string{
			"youtube":   r.YouTube,
			"twitter":   r.Twitter,
			"facebook":  r.Facebook,
			"linkedin":  r.LinkedIn,
			"instagram": r.Instagram,
		},
	}
}

// dateRange holds the from/to/current fields shared by experience and education.
type dateRange struct {
	From    string `json:"from" form:"from"`
	To      string `json:"to" form:"to"`
	Current bool   `json:"current" form:"current"`
}

// parse returns from and an optional to. A current entry never has an end date.
func (d dateRange) parse() (time.Time, *time.Time, error) {
	var v validation.Validator

	from, err := validation.ParseDate(d.From)
	v.Check(err == nil, "from", "From date is not a valid date")

	var to *time.Time
	if !d.Current && strings.TrimSpace(d.To) != "" {
		t, err := validation.ParseDate(d.To)
		v.Check(err == nil, "to", "To date is not a valid date")
		if err == nil {
			to = &t
		}
	}
	if to != nil && !from.IsZero() {
		v.Check(!to.Before(from), "to", "To date must not be before from date")
	}

	if err := v.Err(); err != nil {
		return time.Time{}, nil, err
	}
	return from, to, nil
}

type experienceRequest struct {
	Title       string `json:"title" form:"title"`
	Company     string `json:"company" form:"company"`
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	dateRange
}

func (r experienceRequest) input() (service.ExperienceInput, error) {
	from, to, err := r.parse()
	if err != nil {
		return service.ExperienceInput{}, err
	}
	return service.ExperienceInput{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		From:        from,
		To:          to,
		Current:     r.Current,
		Description: r.Description,
	}, nil
}

type educationRequest struct {
	School       string `json:"school" form:"school"`
	Degree       string `json:"degree" form:"degree"`
	FieldOfStudy string `json:"field_of_study" form:"field_of_study"`
	Description  string `json:"description" form:"description"`
	dateRange
}

func (r educationRequest) input() (service.EducationInput, error) {
	from, to, err := r.parse()
	if err != nil {
		return service.EducationInput{}, err
	}
	return service.EducationInput{
		School:       r.School,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      r.Current,
		Description:  r.Description,
	}, nil
}
