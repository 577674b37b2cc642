package architecture

import (
	"context"
	"fmt"
	"strings"

	"archrecon/internal/architecture/extract"
	"archrecon/internal/architecture/reconcile"
	"archrecon/internal/types"
	"archrecon/internal/util/jsonutil"
)

type GenerateRequest struct {
	ProjectRef string
	// Section may be empty; the marker in the response then names it.
	Section     string
	Instruction string
	Author      string
}

type GenerateResult struct {
	MergeResult
	// Prose is the generator text around the payload.
	Prose string
	// Raw is the full generator response.
	Raw string
}

// GenerateAndMerge asks the generator for an update of one section and merges
// the structured part of its answer.
func (s *Service) GenerateAndMerge(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if s.gen == nil {
		return GenerateResult{}, ErrNoGenerator
	}
	ref, err := requireRef(req.ProjectRef)
	if err != nil {
		return GenerateResult{}, err
	}
	doc, ok, err := s.store.Get(ctx, ref)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("architecture: load %s: %w", ref, err)
	}
	if !ok {
		return GenerateResult{}, &reconcile.DocumentNotFoundError{ProjectRef: ref, Stage: reconcile.StageReceived}
	}
	prompt, err := BuildPrompt(req.Section, req.Instruction, doc)
	if err != nil {
		return GenerateResult{}, err
	}

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("architecture: generate with %s: %w", s.gen.Name(), err)
	}
	u, err := extract.Parse(text)
	if err != nil {
		return GenerateResult{Raw: text}, &reconcile.MalformedPayloadError{
			Section: req.Section,
			Reason:  "generator response carries no structured payload",
			Stage:   reconcile.StageReceived,
			Err:     err,
		}
	}
	section := strings.TrimSpace(req.Section)
	if section == "" {
		section = u.Section
	}
	if section == "" {
		return GenerateResult{Raw: text, Prose: u.Prose}, &reconcile.UnsupportedSectionError{Stage: reconcile.StageReceived}
	}

	mr, err := s.Merge(ctx, MergeRequest{
		ProjectRef: ref,
		Section:    section,
		Payload:    u.Payload,
		Author:     req.Author,
	})
	if err != nil {
		return GenerateResult{Raw: text, Prose: u.Prose}, err
	}
	return GenerateResult{MergeResult: mr, Prose: u.Prose, Raw: text}, nil
}

// BuildPrompt renders the generator prompt for a section update. The current
// fragment is included so the generator can answer with a partial update.
func BuildPrompt(section, instruction string, doc *types.Document) (string, error) {
	var b strings.Builder
	b.WriteString("You maintain the architecture document of a software project.\n")
	if in := strings.TrimSpace(instruction); in != "" {
		b.WriteString("Request: ")
		b.WriteString(in)
		b.WriteString("\n")
	}

	sections := types.Sections
	if sec, ok := types.ParseSection(section); ok {
		sections = []types.Section{sec}
	} else if strings.TrimSpace(section) != "" {
		return "", &reconcile.UnsupportedSectionError{Section: section, Stage: reconcile.StageReceived}
	}
	for _, sec := range sections {
		if sec.Field() == "" {
			continue
		}
		current, err := jsonutil.MarshalNoEscapeIndent(fragment(doc, sec), "", "  ")
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\nCurrent %s (%s):\n%s\n", sec, sec.Field(), current)
	}

	b.WriteString("\nAnswer with only the new or changed entries as one fenced ```json block. ")
	b.WriteString("Entries you leave out are kept unchanged.\n")
	if len(sections) == 1 {
		fmt.Fprintf(&b, "End the answer with %s\n", extract.Marker(sections[0].String()))
	} else {
		fmt.Fprintf(&b, "End the answer with %s naming the section you updated.\n", extract.Marker("<section>"))
	}
	return b.String(), nil
}

func fragment(doc *types.Document, sec types.Section) any {
	switch sec {
	case types.SectionStructure:
		if doc.DirectoryStructure == nil {
			return map[string]any{}
		}
		return doc.DirectoryStructure
	case types.SectionEndpoints:
		if doc.APIEndpoints == nil {
			return []types.Item{}
		}
		return doc.APIEndpoints
	case types.SectionModules:
		if doc.Modules == nil {
			return []types.Item{}
		}
		return doc.Modules
	}
	return nil
}
