package service

import (
	"context"

	"github.com/sakif/portfolio/internal/content"
	"github.com/sakif/portfolio/internal/model"
)

// ResumeView assembles the resume document with experience and skills.
//
// The resume page, the PDF and /api/portfolio/resume/view all render from
// this one value, so they never disagree. Experience is split by type into
// Work and Education, and skills by category into Technical and Soft;
// entries with any other value are left out. All four slices are non-nil
// so the JSON form always carries arrays.
//
// template overrides the stored template when it names a known one;
// otherwise the stored one is used, then "modern".
func (s *ContentService) ResumeView(ctx context.Context, template string) (*model.ResumeView, error) {
	var (
		resume     model.Resume
		experience []model.Experience
		skills     []model.Skill
	)
	if err := s.Decode(ctx, content.Resume, &resume); err != nil {
		return nil, err
	}
	if err := s.Decode(ctx, content.Experience, &experience); err != nil {
		return nil, err
	}
	if err := s.Decode(ctx, content.Skills, &skills); err != nil {
		return nil, err
	}

	view := &model.ResumeView{
		Resume:    resume,
		Template:  pickTemplate(template, resume.Template),
		Work:      []model.Experience{},
		Education: []model.Experience{},
		Technical: []model.Skill{},
		Soft:      []model.Skill{},
	}
	for _, e := range experience {
		switch e.Type {
		case model.ExperienceWork:
			view.Work = append(view.Work, e)
		case model.ExperienceEducation:
			view.Education = append(view.Education, e)
		}
	}
	for _, sk := range skills {
		switch sk.Category {
		case model.SkillTechnical:
			view.Technical = append(view.Technical, sk)
		case model.SkillSoft:
			view.Soft = append(view.Soft, sk)
		}
	}
	return view, nil
}

// pickTemplate returns the first known layout among requested and stored.
func pickTemplate(requested, stored string) string {
	for _, t := range []string{requested, stored} {
		switch t {
		case model.TemplateModern, model.TemplateClassic, model.TemplateMinimal:
			return t
		}
	}
	return model.TemplateModern
}
