package backend

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/sameboat/jobsheet/internal/core/ports"
)

// jobForm encodes a job as multipart/form-data the way the backend's
// serializer expects it: skills and notes as repeated keys, documents as
// file parts. Blank optional fields are left out so a PATCH keeps the
// stored value.
func jobForm(in ports.JobInput) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ key, value string }{
		{"job_title", in.Title},
		{"company_name", in.Company},
		{"location", in.Location},
		{"experience_required", in.ExperienceRequired},
		{"employment_type", in.EmploymentType},
		{"job_url", in.JobURL},
		{"applied_date", in.AppliedDate},
		{"current_status", in.Status},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", fmt.Errorf("write %s: %w", f.key, err)
		}
	}
	if in.IsActive != nil {
		if err := w.WriteField("is_active", strconv.FormatBool(*in.IsActive)); err != nil {
			return nil, "", fmt.Errorf("write is_active: %w", err)
		}
	}
	for _, s := range in.Skills {
		if err := w.WriteField("skills", s); err != nil {
			return nil, "", fmt.Errorf("write skills: %w", err)
		}
	}
	for _, n := range in.Notes {
		if err := w.WriteField("notes", n); err != nil {
			return nil, "", fmt.Errorf("write notes: %w", err)
		}
	}
	if err := writeFile(w, "resume", in.Resume); err != nil {
		return nil, "", err
	}
	if err := writeFile(w, "cover_letter", in.CoverLetter); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, field string, f *ports.FileUpload) error {
	if f == nil || len(f.Content) == 0 {
		return nil
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Filename))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(f.Content); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}
