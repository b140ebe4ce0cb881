package content

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// RawFrontMatter is an undecoded front matter block.
type RawFrontMatter struct {
	// Delimiter is "---", "+++" or "```".
	Delimiter string
	// Tag is the text after the opening delimiter, such as "toml".
	Tag     string
	Content string
}

// Format returns "toml" or "yaml". An explicit tag wins over the delimiter.
func (fm *RawFrontMatter) Format() string {
	switch strings.ToLower(fm.Tag) {
	case "toml":
		return "toml"
	case "yaml", "yml":
		return "yaml"
	}
	if fm.Delimiter == "+++" {
		return "toml"
	}
	return "yaml"
}

// Decode decodes the front matter into v.
func (fm *RawFrontMatter) Decode(v any) error {
	if fm.Format() == "toml" {
		return ParseToml(fm.Content, v)
	}
	if err := yaml.Unmarshal([]byte(fm.Content), v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ParseFrontMatter splits data into its front matter and body. The front
// matter is nil when data does not start with a delimiter line.
func ParseFrontMatter(data string) (*RawFrontMatter, string, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	lines := strings.Split(data, "\n")

	firstLine := lines[0]
	var delimiter string
	switch {
	case strings.HasPrefix(firstLine, "---"):
		delimiter = "---"
	case strings.HasPrefix(firstLine, "+++"):
		delimiter = "+++"
	case strings.HasPrefix(firstLine, "```"):
		delimiter = "```"
	default:
		return nil, data, nil
	}
	tag := strings.TrimSpace(strings.TrimPrefix(firstLine, delimiter))

	i := 1
	for ; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == delimiter {
			break
		}
	}
	if i == len(lines) {
		return nil, "", fmt.Errorf("front matter not closed; expected closing delimiter %q", delimiter)
	}

	fm := &RawFrontMatter{
		Delimiter: delimiter,
		Tag:       tag,
		Content:   strings.Join(lines[1:i], "\n"),
	}
	return fm, strings.Join(lines[i+1:], "\n"), nil
}

// ParseToml parses TOML content into the provided structure
func ParseToml(content string, v any) error {
	decoder := toml.NewDecoder(strings.NewReader(content))
	if _, err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	return nil
}

// ParseDataFile reads a page data file into a field map. The body after the
// front matter becomes the text field unless the front matter sets it.
func ParseDataFile(data string) (map[string]any, error) {
	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if fm != nil {
		if err := fm.Decode(&fields); err != nil {
			return nil, err
		}
	}
	if body = strings.TrimSpace(body); body != "" {
		if _, ok := fields[FieldText]; !ok {
			fields[FieldText] = body
		}
	}
	return fields, nil
}
