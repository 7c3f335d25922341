package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/foomo/olxexport/fragment"
	"github.com/foomo/olxexport/olx"
	"github.com/foomo/olxexport/qti"
	"github.com/foomo/olxexport/service/vo"
	"go.uber.org/zap"
)

type Service interface {
	Convert(ctx context.Context, cartridge *vo.Cartridge) (*vo.Conversion, error)
	Preview(ctx context.Context, html string, index vo.ResourceIndex) (*vo.Preview, error)
}

// Settings holds the course attributes that override the cartridge's own.
type Settings struct {
	Course vo.CourseInfo
}

type service struct {
	logger   *zap.Logger
	settings Settings
	options  []olx.Option
}

func NewService(logger *zap.Logger, settings Settings, options ...olx.Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	// caller options come last and may replace the defaults
	defaults := []olx.Option{
		olx.WithLogger(logger),
		olx.WithAssessmentConverter(qti.NewConverter(logger)),
	}
	return &service{
		logger:   logger,
		settings: settings,
		options:  append(defaults, options...),
	}
}

func (s *service) courseInfo(cartridge *vo.Cartridge) vo.CourseInfo {
	course := s.settings.Course
	if course.Org == "" {
		course.Org = cartridge.Org
	}
	if course.Slug == "" {
		course.Slug = vo.DefaultCourseSlug
	}
	if course.Name == "" {
		course.Name = cartridge.Title
	}
	return course
}

func (s *service) Convert(ctx context.Context, cartridge *vo.Cartridge) (*vo.Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cartridge == nil {
		return nil, errors.New("cartridge is required")
	}

	converter := olx.NewConverter(cartridge, cartridge.ResourceIndex, s.options...)
	result, err := converter.Convert(s.courseInfo(cartridge), cartridge.Outline)
	if err != nil {
		return nil, fmt.Errorf("failed to convert cartridge %q: %w", cartridge.Title, err)
	}

	xml, err := olx.RenderString(result.Document)
	if err != nil {
		return nil, err
	}

	s.logger.Info("converted cartridge",
		zap.String("title", cartridge.Title),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.String("size", humanize.Bytes(uint64(len(xml)))),
	)
	return &vo.Conversion{
		XML:         xml,
		Diagnostics: result.Diagnostics,
	}, nil
}

func (s *service) Preview(ctx context.Context, html string, index vo.ResourceIndex) (*vo.Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rewritten, diags := olx.RewriteStaticLinks(html, index)
	frag, err := fragment.Parse(rewritten)
	if err != nil {
		return nil, err
	}
	markdown, err := fragment.Markdown(rewritten)
	if err != nil {
		return nil, err
	}

	return &vo.Preview{
		HTML:        rewritten,
		Markdown:    markdown,
		Text:        frag.Text(),
		Diagnostics: diags,
	}, nil
}
