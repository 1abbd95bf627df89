package domain

import (
	"strings"
)

// Backend status values for current_status.
const (
	StatusSaved       = "SAVED"
	StatusApplied     = "APPLIED"
	StatusShortlisted = "SHORTLISTED"
	StatusInterview   = "INTERVIEW"
	StatusOffer       = "OFFER"
	StatusRejected    = "REJECTED"
)

// Backend values for employment_type.
const (
	EmploymentFullTime   = "FULLTIME"
	EmploymentPartTime   = "PARTTIME"
	EmploymentInternship = "INTERNSHIP"
	EmploymentContract   = "CONTRACT"
)

// Job is one tracked application as served by the backend.
type Job struct {
	ID                 string   `json:"job_id"`
	Title              string   `json:"job_title"`
	Company            string   `json:"company_name"`
	Location           string   `json:"location"`
	EmploymentType     string   `json:"employment_type"`
	ExperienceRequired string   `json:"experience_required"`
	JobURL             string   `json:"job_url,omitempty"`
	AppliedDate        string   `json:"applied_date,omitempty"`
	Skills             []string `json:"skills"`
	Notes              []string `json:"notes"`
	Status             string   `json:"current_status"`
	IsActive           bool     `json:"is_active"`
	ResumeURL          string   `json:"resume_url,omitempty"`
	CoverLetterURL     string   `json:"cover_letter_url,omitempty"`
}

// WithLists returns j with nil Skills and Notes replaced by empty slices,
// so they encode as [] rather than null.
func (j Job) WithLists() Job {
	if j.Skills == nil {
		j.Skills = []string{}
	}
	if j.Notes == nil {
		j.Notes = []string{}
	}
	return j
}

// Stats are the dashboard counters for a list of jobs.
type Stats struct {
	Applied     int `json:"applied"`
	Active      int `json:"active"`
	Shortlisted int `json:"shortlisted"`
	Interviewed int `json:"interviewed"`
	Offered     int `json:"offered"`
	Rejected    int `json:"rejected"`
}

// ComputeStats counts jobs into status buckets. Buckets match on substrings
// of the lower-cased status and are not exclusive.
func ComputeStats(jobs []Job) Stats {
	s := Stats{Applied: len(jobs)}
	for _, j := range jobs {
		status := strings.ToLower(j.Status)
		if j.IsActive {
			s.Active++
		}
		if strings.Contains(status, "short") {
			s.Shortlisted++
		}
		if strings.Contains(status, "interview") {
			s.Interviewed++
		}
		if strings.Contains(status, "offer") {
			s.Offered++
		}
		if strings.Contains(status, "reject") {
			s.Rejected++
		}
	}
	return s
}

// FilterJobs keeps jobs whose title, company, location, skills or status
// contain q, case-insensitively. A blank query returns jobs unchanged.
func FilterJobs(jobs []Job, q string) []Job {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return jobs
	}
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if strings.Contains(j.haystack(), q) {
			out = append(out, j)
		}
	}
	return out
}

func (j Job) haystack() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{j.Title, j.Company, j.Location, strings.Join(j.Skills, " "), j.Status} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// FindJob returns the job with the given id.
func FindJob(jobs []Job, id string) (Job, bool) {
	for _, j := range jobs {
		if j.ID == id {
			return j, true
		}
	}
	return Job{}, false
}
