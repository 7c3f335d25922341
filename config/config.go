package config

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/foomo/olxexport/service/vo"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

type Config struct {
	// Course overrides the root course attributes. Org and Name fall back to
	// the cartridge when empty.
	Course        vo.CourseInfo `yaml:"course"`
	LinkMapFile   string        `yaml:"linkMapFile"`
	Logging       Logging       `yaml:"logging"`
	Server        Server        `yaml:"server"`
	ContentServer ContentServer `yaml:"contentServer"`
}

type Logging struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

type Server struct {
	HTTPAddr string `yaml:"httpAddr"`
	Endpoint string `yaml:"endpoint"`
}

// ContentServer configures reading outlines from a foomo contentserver.
type ContentServer struct {
	URL        string                    `yaml:"url"`
	Dimensions []string                  `yaml:"dimensions"`
	Groups     []string                  `yaml:"groups"`
	MimeTypes  map[string]vo.ContentType `yaml:"mimeTypes"`

	// ContainerMimeTypes are the mime types of the outline levels.
	ContainerMimeTypes []string `yaml:"containerMimeTypes"`
}

func Default() Config {
	return Config{
		Course: vo.CourseInfo{Slug: vo.DefaultCourseSlug},
		Logging: Logging{
			Mode:  "development",
			Level: "info",
		},
		Server: Server{
			Endpoint: "/mcp",
		},
		ContentServer: ContentServer{
			MimeTypes: map[string]vo.ContentType{
				"text/html":                vo.ContentTypeHTML,
				"text/uri-list":            vo.ContentTypeLink,
				"video/x-youtube":          vo.ContentTypeVideo,
				"application/x-lti":        vo.ContentTypeExternalTool,
				"application/x-qti":        vo.ContentTypeAssessment,
				"application/x-discussion": vo.ContentTypeDiscussion,
			},
			ContainerMimeTypes: []string{"application/x-folder"},
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	course := c.Course
	if err := validation.ValidateStruct(&course,
		validation.Field(&course.Slug, validation.Required, validation.Match(slugPattern)),
	); err != nil {
		return fmt.Errorf("course: %w", err)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Logging),
		validation.Field(&c.Server),
		validation.Field(&c.ContentServer),
	)
}

func (l Logging) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Mode, validation.In("dev", "development", "prod", "production")),
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "error")),
	)
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Endpoint, validation.Required, validation.Match(regexp.MustCompile(`^/`))),
	)
}

func (cs ContentServer) Validate() error {
	return validation.ValidateStruct(&cs,
		validation.Field(&cs.URL, is.URL),
		validation.Field(&cs.MimeTypes, validation.Each(validation.In(
			vo.ContentTypeHTML,
			vo.ContentTypeLink,
			vo.ContentTypeVideo,
			vo.ContentTypeExternalTool,
			vo.ContentTypeAssessment,
			vo.ContentTypeDiscussion,
		))),
	)
}
