package cascade

import (
	"context"
	"fmt"

	"github.com/marcus/kadilac/internal/models"
)

// Source is the valuation lookup service as seen by the cascade.
type Source interface {
	Makes(ctx context.Context, cat models.Category) ([]models.Option, error)
	Models(ctx context.Context, cat models.Category, makeCode string) ([]models.Option, error)
	Years(ctx context.Context, cat models.Category, makeCode, modelCode string) ([]models.Option, error)
	Valuation(ctx context.Context, cat models.Category, makeCode, modelCode, yearCode string) (*models.Valuation, error)
}

// Do performs req against src. Errors are carried in the Response, never
// returned, so callers can always hand the result to Apply.
func Do(ctx context.Context, src Source, req Request) Response {
	resp := Response{Request: req}
	p := req.Path
	if req.Kind == KindValuation {
		resp.Valuation, resp.Err = src.Valuation(ctx, p.Category, p.Make, p.Model, p.Year)
		return resp
	}
	switch req.Level {
	case models.LevelMake:
		resp.Options, resp.Err = src.Makes(ctx, p.Category)
	case models.LevelModel:
		resp.Options, resp.Err = src.Models(ctx, p.Category, p.Make)
	case models.LevelYear:
		resp.Options, resp.Err = src.Years(ctx, p.Category, p.Make, p.Model)
	default:
		resp.Err = fmt.Errorf("%s: %w", req.Level, ErrUnknownLevel)
	}
	return resp
}

// Walk selects every level of path in order, applying each fetch before
// the next selection, and returns the final state. Unlike the interactive
// flow a failed fetch is reported as an error, since there is no user to
// retry.
func Walk(ctx context.Context, src Source, path Path) (State, error) {
	s := New()
	codes := []string{string(path.Category), path.Make, path.Model, path.Year}
	for i, code := range codes {
		l := models.Level(i)
		req, err := s.Select(l, code)
		if err != nil {
			return s, err
		}
		resp := Do(ctx, src, req)
		if resp.Err != nil {
			return s, fmt.Errorf("fetch %s: %w", req, resp.Err)
		}
		s.Apply(resp)
	}
	return s, nil
}

// Resolve walks the whole cascade for path and returns the resolved
// valuation.
func Resolve(ctx context.Context, src Source, path Path) (models.ResolvedValuation, error) {
	s, err := Walk(ctx, src, path)
	if err != nil {
		return models.ResolvedValuation{}, err
	}
	v, ok := s.Confirm()
	if !ok {
		return models.ResolvedValuation{}, fmt.Errorf("no valuation for %s", path.Key())
	}
	return v, nil
}
