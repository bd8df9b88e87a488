package analysis

import (
	"context"
	"fmt"

	"github.com/hyperjump/kensa/internal/llm"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

// ProfileParser extracts a candidate profile from resume text with a language model.
type ProfileParser struct {
	generator llm.Generator
	logger    *zap.Logger
}

// NewProfileParser returns a parser. A nil generator makes Parse return llm.ErrNotConfigured.
func NewProfileParser(generator llm.Generator, logger *zap.Logger) *ProfileParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileParser{generator: generator, logger: logger}
}

// Parse returns the profile described by resumeText. Skills may come back from the
// model as an array or a comma-separated string; both become a slice.
func (p *ProfileParser) Parse(ctx context.Context, resumeText string) (*models.Profile, error) {
	if p.generator == nil {
		return nil, llm.ErrNotConfigured
	}
	prompt, err := render("profile.md", struct{ Resume string }{resumeText})
	if err != nil {
		return nil, err
	}
	reply, err := p.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	obj, err := decodeObject(reply)
	if err != nil {
		p.logger.Debug("unparseable profile response", zap.String("response", utils.TruncateForLog(reply, previewLength)))
		return nil, err
	}
	return &models.Profile{
		Name:      stringValue(obj["name"]),
		Email:     stringValue(obj["email"]),
		Location:  stringValue(obj["location"]),
		Education: stringValue(obj["education"]),
		Skills:    stringList(obj["skills"]),
	}, nil
}
