// Package ledongthuc reads annotations and positioned text with
// github.com/ledongthuc/pdf (pure Go, no CGO).
package ledongthuc

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/pdf-highlights/internal/core/domain"
	"github.com/kirillkom/pdf-highlights/internal/core/ports"
)

// sourceFile is the part of *os.File the engine needs.
type sourceFile interface {
	io.ReaderAt
	io.Closer
	Stat() (os.FileInfo, error)
}

type Engine struct {
	openFile  func(path string) (sourceFile, error)
	newReader func(f io.ReaderAt, size int64) (*pdf.Reader, error)
}

func NewEngine() *Engine {
	return &Engine{
		openFile: func(path string) (sourceFile, error) {
			return os.Open(path)
		},
		newReader: pdf.NewReader,
	}
}

// Open keeps the file handle itself so that it is closed even when the
// reader panics on a malformed trailer.
func (e *Engine) Open(ctx context.Context, path string) (ports.PDFDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := e.openFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrOpen, "open pdf", err)
	}

	var reader *pdf.Reader
	err = recoverMalformed("open pdf", func() error {
		info, statErr := file.Stat()
		if statErr != nil {
			return statErr
		}
		var readErr error
		reader, readErr = e.newReader(file, info.Size())
		return readErr
	})
	if err != nil {
		_ = file.Close()
		return nil, domain.WrapError(domain.ErrOpen, "open pdf", err)
	}
	return &Document{file: file, reader: reader, cachedPage: -1}, nil
}

// Document owns the open file until Close. It is not safe for concurrent use.
type Document struct {
	file   io.Closer
	reader *pdf.Reader

	cachedPage  int
	cachedTexts []pdf.Text
}

func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

func (d *Document) Annotations(pageIndex int) ([]ports.Annotation, error) {
	var out []ports.Annotation
	err := recoverMalformed("read annotations", func() error {
		page, err := d.page(pageIndex)
		if err != nil {
			return err
		}
		annots := page.V.Key("Annots")
		for i := 0; i < annots.Len(); i++ {
			out = append(out, decodeAnnotation(annots.Index(i)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Document) TextInRect(pageIndex int, rect ports.Rect) (string, error) {
	texts, err := d.pageTexts(pageIndex)
	if err != nil {
		return "", err
	}
	return joinReadingOrder(clip(texts, rect)), nil
}

func (d *Document) Close() error {
	d.cachedTexts = nil
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

func (d *Document) page(pageIndex int) (pdf.Page, error) {
	if pageIndex < 0 || pageIndex >= d.reader.NumPage() {
		return pdf.Page{}, fmt.Errorf("page index %d out of range", pageIndex)
	}
	page := d.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return pdf.Page{}, fmt.Errorf("page %d not found in page tree", pageIndex+1)
	}
	return page, nil
}

// pageTexts keeps the glyphs of the last page read, since every highlight on
// a page clips the same content stream.
func (d *Document) pageTexts(pageIndex int) ([]pdf.Text, error) {
	if d.cachedPage == pageIndex {
		return d.cachedTexts, nil
	}
	var texts []pdf.Text
	err := recoverMalformed("read page content", func() error {
		page, err := d.page(pageIndex)
		if err != nil {
			return err
		}
		texts = page.Content().Text
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.cachedPage, d.cachedTexts = pageIndex, texts
	return texts, nil
}

// recoverMalformed turns the panics ledongthuc/pdf raises on malformed input
// into errors.
func recoverMalformed(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: malformed pdf: %v", op, r)
		}
	}()
	return fn()
}
