// Package pdf renders certificate artifacts.
//
// The layout template is a plain text/template whose output is one directive
// per line, "style|text", drawn top to bottom. Keeping layout in a template
// file lets deployments rebrand certificates without a rebuild while the
// renderer stays a pure function of its inputs: the same fields always
// produce byte-identical output, so the bound SHA-256 fingerprint is stable
// across re-renders. The logo is embedded into the document rather than
// referenced, so verification never depends on asset files still existing.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/go-pdf/fpdf"
)

var (
	// ErrTemplateNotFound means the configured template path does not resolve.
	// This is a deployment defect, not a user error.
	ErrTemplateNotFound = errors.New("certificate template not found")
	// ErrTemplateRender means required placeholders were missing or the
	// template itself is malformed.
	ErrTemplateRender = errors.New("certificate template render failed")
)

// Fields carries everything a certificate layout may reference.
type Fields struct {
	RecipientName string
	Title         string
	TrackID       string
	CredentialID  string
	Issuer        string
	Score         int
	IssuedAt      time.Time
}

// Renderer produces in-memory PDF buffers. It never writes to disk; the
// caller owns persistence.
type Renderer struct {
	templatePath string
	logoPath     string
}

func NewRenderer(templatePath, logoPath string) *Renderer {
	return &Renderer{templatePath: templatePath, logoPath: logoPath}
}

// Render fills the template with fields and draws the PDF.
func (r *Renderer) Render(f Fields) ([]byte, error) {
	if err := requireFields(f); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, r.templatePath)
		}
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}

	tmpl, err := template.New(filepath.Base(r.templatePath)).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any{
		"RecipientName": f.RecipientName,
		"Title":         f.Title,
		"TrackID":       f.TrackID,
		"CredentialID":  f.CredentialID,
		"Issuer":        f.Issuer,
		"Score":         f.Score,
		"Date":          f.IssuedAt.UTC().Format("January 2, 2006"),
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return r.draw(buf.String(), f)
}

func requireFields(f Fields) error {
	switch {
	case f.RecipientName == "":
		return fmt.Errorf("%w: recipient name is required", ErrTemplateRender)
	case f.Title == "":
		return fmt.Errorf("%w: title is required", ErrTemplateRender)
	case f.CredentialID == "":
		return fmt.Errorf("%w: credential ID is required", ErrTemplateRender)
	}
	return nil
}

func (r *Renderer) draw(layout string, f Fields) ([]byte, error) {
	doc := fpdf.New("L", "mm", "A4", "")
	// Pin the embedded creation date to the issue time so repeated renders of
	// the same certificate hash identically.
	doc.SetCreationDate(f.IssuedAt.UTC())
	doc.SetTitle("Certificate "+f.CredentialID, false)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	pageW, _ := doc.GetPageSize()

	if r.logoPath != "" {
		if err := r.embedLogo(doc, pageW); err != nil {
			return nil, err
		}
	}

	y := 60.0
	for _, line := range strings.Split(layout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		style, text, ok := strings.Cut(line, "|")
		if !ok {
			return nil, fmt.Errorf("%w: malformed layout line %q", ErrTemplateRender, line)
		}
		switch style {
		case "h1":
			doc.SetFont("Helvetica", "B", 30)
			y = centeredLine(doc, pageW, y, 16, text)
		case "h2":
			doc.SetFont("Helvetica", "B", 22)
			y = centeredLine(doc, pageW, y, 12, text)
		case "text":
			doc.SetFont("Helvetica", "", 13)
			y = centeredLine(doc, pageW, y, 9, text)
		case "small":
			doc.SetFont("Helvetica", "", 9)
			y = centeredLine(doc, pageW, y, 6, text)
		case "gap":
			y += 8
		default:
			return nil, fmt.Errorf("%w: unknown layout style %q", ErrTemplateRender, style)
		}
	}

	var out bytes.Buffer
	if err := doc.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return out.Bytes(), nil
}

func (r *Renderer) embedLogo(doc *fpdf.Fpdf, pageW float64) error {
	logo, err := os.ReadFile(r.logoPath)
	if err != nil {
		return fmt.Errorf("%w: logo %v", ErrTemplateNotFound, err)
	}
	imageType := strings.TrimPrefix(strings.ToUpper(filepath.Ext(r.logoPath)), ".")
	if imageType == "JPG" {
		imageType = "JPEG"
	}
	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
	doc.RegisterImageOptionsReader("logo", opts, bytes.NewReader(logo))
	doc.ImageOptions("logo", pageW/2-15, 15, 30, 0, false, opts, 0, "")
	return nil
}

func centeredLine(doc *fpdf.Fpdf, pageW, y, height float64, text string) float64 {
	doc.SetXY(0, y)
	doc.CellFormat(pageW, height, text, "", 0, "C", false, 0, "")
	return y + height
}
