package view

import (
	"strings"

	"github.com/sameboat/jobsheet/internal/core/domain"
)

// Badge classes by job state.
const (
	badgeActive      = "bg-emerald-500 text-black"
	badgeShortlisted = "bg-yellow-400 text-black"
	badgeInterview   = "bg-purple-500 text-white"
	badgeOffer       = "bg-indigo-500 text-white"
	badgeRejected    = "bg-rose-500 text-white"
	badgeDefault     = "bg-gray-500 text-white"
)

// EmptyJobsText is shown instead of cards when the list is empty.
const EmptyJobsText = "No jobs found. Add a job to get started."

// Card is the display form of one job. Values are raw; the template
// escapes them.
type Card struct {
	ID             string
	Title          string
	Company        string
	BadgeClass     string
	ActiveLabel    string
	JobURL         string
	Experience     string
	AppliedDate    string
	CoverLetterURL string
	ResumeURL      string
	EmploymentType string
	Status         string
	Skills         string
	Location       string
	Notes          []string
}

// Cards builds one card per job, in order.
func Cards(jobs []domain.Job) []Card {
	out := make([]Card, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, NewCard(j))
	}
	return out
}

// NewCard maps a job to its card.
func NewCard(j domain.Job) Card {
	c := Card{
		ID:             j.ID,
		Title:          j.Title,
		Company:        j.Company,
		BadgeClass:     badgeClass(j),
		ActiveLabel:    "Active : No",
		JobURL:         j.JobURL,
		Experience:     "N/A years",
		AppliedDate:    "No date provided",
		CoverLetterURL: j.CoverLetterURL,
		ResumeURL:      j.ResumeURL,
		EmploymentType: j.EmploymentType,
		Status:         j.Status,
		Skills:         strings.Join(j.Skills, ", "),
		Location:       j.Location,
		Notes:          j.Notes,
	}
	if j.IsActive {
		c.ActiveLabel = "Active : Yes"
	}
	if j.ExperienceRequired != "" {
		c.Experience = j.ExperienceRequired + " years"
	}
	if j.AppliedDate != "" {
		c.AppliedDate = j.AppliedDate
	}
	return c
}

// badgeClass picks the badge colour. Active wins over any status.
func badgeClass(j domain.Job) string {
	status := strings.ToLower(j.Status)
	switch {
	case j.IsActive:
		return badgeActive
	case strings.Contains(status, "short"):
		return badgeShortlisted
	case strings.Contains(status, "interview"):
		return badgeInterview
	case strings.Contains(status, "offer"):
		return badgeOffer
	case strings.Contains(status, "reject"):
		return badgeRejected
	}
	return badgeDefault
}
