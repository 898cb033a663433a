package identity

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ref is a minimal identity reference for discovery listings.
type Ref struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Path        string `json:"path" yaml:"-"`
}

// LoadCard loads an identity card: a markdown file whose YAML frontmatter
// carries the persona fields and whose body is the system prompt.
func LoadCard(path string) (*Identity, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity card: %w", err)
	}

	id, err := ParseCard(string(content))
	if err != nil {
		return nil, fmt.Errorf("invalid identity card %s: %w", path, err)
	}
	return id, nil
}

// ParseCard parses identity card content.
func ParseCard(content string) (*Identity, error) {
	frontmatter, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	id := &Identity{}
	if err := yaml.Unmarshal([]byte(frontmatter), id); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	id.SystemPrompt = strings.TrimSpace(body)
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := validateName(id.Name); err != nil {
		return nil, err
	}

	id.Normalize()
	return id, nil
}

// splitFrontmatter extracts YAML frontmatter from markdown.
func splitFrontmatter(content string) (frontmatter, body string, err error) {
	lines := strings.Split(content, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", fmt.Errorf("missing frontmatter delimiter")
	}

	var fmLines []string
	var bodyStart int
	inFrontmatter := true

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			inFrontmatter = false
			bodyStart = i + 1
			break
		}
		if inFrontmatter {
			fmLines = append(fmLines, lines[i])
		}
	}

	if inFrontmatter {
		return "", "", fmt.Errorf("unclosed frontmatter")
	}

	frontmatter = strings.Join(fmLines, "\n")
	if bodyStart < len(lines) {
		body = strings.Join(lines[bodyStart:], "\n")
	}

	return frontmatter, body, nil
}

// validateName keeps card names usable as file stems and NATS tokens.
func validateName(name string) error {
	if len(name) == 0 || len(name) > 64 {
		return fmt.Errorf("name must be 1-64 characters")
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return fmt.Errorf("name cannot start or end with hyphen")
	}
	if strings.Contains(name, "--") {
		return fmt.Errorf("name cannot contain consecutive hyphens")
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return fmt.Errorf("name can only contain lowercase letters, numbers, and hyphens")
		}
	}
	return nil
}

// Discover lists the identities in a directory: .md cards and .json configs.
// A missing directory yields an empty list. Unreadable entries are skipped.
func Discover(dir string) ([]Ref, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var refs []Ref
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		var ref Ref
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md":
			ref, err = parseCardRef(path)
		case ".json":
			var id *Identity
			id, err = loadJSON(path)
			if err == nil {
				ref = Ref{Name: id.Name, Description: id.Description}
			}
		default:
			continue
		}
		if err != nil {
			continue
		}
		ref.Path = path
		refs = append(refs, ref)
	}

	return refs, nil
}

// parseCardRef reads just the frontmatter for discovery.
func parseCardRef(path string) (Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return Ref{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var inFrontmatter bool
	var fmLines []string

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if !inFrontmatter {
			if trimmed == "---" {
				inFrontmatter = true
			}
			continue
		}

		if trimmed == "---" {
			break
		}
		fmLines = append(fmLines, line)
	}

	var ref Ref
	if err := yaml.Unmarshal([]byte(strings.Join(fmLines, "\n")), &ref); err != nil {
		return Ref{}, err
	}
	if ref.Name == "" {
		return Ref{}, fmt.Errorf("missing name in frontmatter")
	}

	return ref, nil
}
