// Package pdfcpu validates document structure with pdfcpu before the
// extraction engine parses it.
package pdfcpu

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

// ValidatingEngine rejects structurally broken files with a descriptive open
// error before delegating to the wrapped engine.
type ValidatingEngine struct {
	next ports.PDFEngine
	conf *model.Configuration
}

func NewValidatingEngine(next ports.PDFEngine, strict bool) *ValidatingEngine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if strict {
		conf.ValidationMode = model.ValidationStrict
	}
	return &ValidatingEngine{next: next, conf: conf}
}

func (e *ValidatingEngine) Open(ctx context.Context, path string) (ports.PDFDocument, error) {
	if err := e.Validate(ctx, path); err != nil {
		return nil, err
	}
	return e.next.Open(ctx, path)
}

func (e *ValidatingEngine) Validate(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.WrapError(domain.ErrOpen, "open pdf", err)
	}
	defer f.Close()

	if err := api.Validate(f, e.conf); err != nil {
		return domain.WrapError(domain.ErrOpen, "validate pdf", fmt.Errorf("pdfcpu: %w", err))
	}
	return nil
}
