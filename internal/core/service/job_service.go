package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sameboat/jobsheet/internal/core/domain"
	"github.com/sameboat/jobsheet/internal/core/ports"
)

const (
	msgJobAdded        = "Job added successfully"
	msgJobUpdated      = "Job updated successfully"
	msgJobDeleted      = "Job deleted successfully"
	msgCreateNetwork   = "Unable to connect. Please try again later."
	msgCreateFailed    = "something went wrong"
	msgUpdateFailed    = "Update failed"
	msgDeleteFailed    = "Unable to delete the job"
	msgJobsUnavailable = "Unable to load jobs"
)

// JobService backs the job sheet pages. The backend is the source of
// truth: every sheet is rebuilt from a fresh list.
type JobService struct {
	api       ports.JobsAPI
	validator *FormValidator
	logger    zerolog.Logger
}

var _ ports.JobService = (*JobService)(nil)

func NewJobService(api ports.JobsAPI, validator *FormValidator, logger zerolog.Logger) *JobService {
	return &JobService{api: api, validator: validator, logger: logger}
}

// Sheet lists the jobs matching query and the counters for them.
func (s *JobService) Sheet(ctx context.Context, sess ports.Session, query string) domain.Envelope[ports.JobSheet] {
	env := s.api.ListJobs(ctx, sess)
	if !env.Success {
		s.logger.Warn().Str("session", sess.ID()).Str("reason", env.Message).Msg("list jobs failed")
		if env.Message == "" {
			env.Message = msgJobsUnavailable
		}
		return domain.Recast[[]domain.Job, ports.JobSheet](env)
	}

	visible := domain.FilterJobs(env.Data, query)
	if visible == nil {
		visible = []domain.Job{}
	}
	return domain.Ok(ports.JobSheet{
		Query: strings.TrimSpace(query),
		Total: len(env.Data),
		Jobs:  visible,
		Stats: domain.ComputeStats(visible),
	})
}

func normalizeJob(in ports.JobInput) ports.JobInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Location = strings.TrimSpace(in.Location)
	in.ExperienceRequired = strings.TrimSpace(in.ExperienceRequired)
	in.EmploymentType = strings.TrimSpace(in.EmploymentType)
	in.JobURL = strings.TrimSpace(in.JobURL)
	in.AppliedDate = strings.TrimSpace(in.AppliedDate)
	in.Status = strings.TrimSpace(in.Status)
	in.Skills = compact(in.Skills)
	in.Notes = compact(in.Notes)
	return in
}

// compact trims every entry and drops the blank ones.
func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Create validates and posts a new job.
func (s *JobService) Create(ctx context.Context, sess ports.Session, in ports.JobInput) domain.Envelope[domain.Job] {
	in = normalizeJob(in)
	if msg := s.validator.Job(in); msg != "" {
		return invalid[domain.Job](msg)
	}

	env := s.api.CreateJob(ctx, sess, in)
	if !env.Success {
		s.logger.Warn().Str("session", sess.ID()).Str("reason", env.Message).Msg("create job failed")
		switch env.Kind {
		case domain.KindNetwork:
			return env.WithMessage(msgCreateNetwork)
		case domain.KindUnauthorized:
			return env
		}
		return env.WithMessage(msgCreateFailed)
	}
	return env.WithMessage(msgJobAdded)
}

// Update validates and patches job id. The staged copy is dropped once the
// backend accepts the change.
func (s *JobService) Update(ctx context.Context, sess ports.Session, id string, in ports.JobInput) domain.Envelope[domain.Job] {
	in = normalizeJob(in)
	if msg := s.validator.Job(in); msg != "" {
		return invalid[domain.Job](msg)
	}

	env := s.api.UpdateJob(ctx, sess, id, in)
	if !env.Success {
		s.logger.Warn().Str("session", sess.ID()).Str("job_id", id).Str("reason", env.Message).Msg("update job failed")
		if env.Kind == domain.KindUnauthorized {
			return env
		}
		return env.WithMessage(msgUpdateFailed)
	}
	if err := sess.ClearStagedJob(ctx); err != nil {
		s.logger.Error().Err(err).Str("session", sess.ID()).Msg("clear staged job after update")
	}
	return env.WithMessage(msgJobUpdated)
}

// Delete removes job id.
func (s *JobService) Delete(ctx context.Context, sess ports.Session, id string) domain.Envelope[struct{}] {
	env := s.api.DeleteJob(ctx, sess, id)
	if !env.Success {
		s.logger.Warn().Str("session", sess.ID()).Str("job_id", id).Str("reason", env.Message).Msg("delete job failed")
		if env.Kind == domain.KindUnauthorized {
			return env
		}
		return env.WithMessage(msgDeleteFailed)
	}
	return env.WithMessage(msgJobDeleted)
}

// Stage copies job id from a fresh list into the session so the edit page
// can prefill its form.
func (s *JobService) Stage(ctx context.Context, sess ports.Session, id string) error {
	env := s.api.ListJobs(ctx, sess)
	if err := env.Err(); err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}
	job, ok := domain.FindJob(env.Data, id)
	if !ok {
		return domain.ErrJobNotFound
	}
	if err := sess.StageJob(ctx, job); err != nil {
		return fmt.Errorf("stage job %s: %w", id, err)
	}
	return nil
}

// Staged returns the job staged for id. ErrJobNotStaged is returned when
// nothing, or another job, is staged.
func (s *JobService) Staged(ctx context.Context, sess ports.Session, id string) (*domain.Job, error) {
	job, err := sess.StagedJob(ctx)
	if err != nil {
		return nil, fmt.Errorf("read staged job: %w", err)
	}
	if job == nil || job.ID != id {
		return nil, domain.ErrJobNotStaged
	}
	return job, nil
}
