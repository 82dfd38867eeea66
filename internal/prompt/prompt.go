// Package prompt turns a migration task into the ordered chat messages sent
// to a model.
//
// A template is rendered with [Vars] and then cut into tagged regions:
//
//	{SYSTEM_CONFIG}...{SYSTEM_CONFIG_END}
//	{USER_CONFIG}...{USER_CONFIG_END}            (once or twice)
//	{ASSISTANT_CONFIG}...{ASSISTANT_CONFIG_END}  (one_shot only)
//
// The one_shot template yields four messages (system, user, assistant, user);
// every other template yields two (system, user).
package prompt

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
)

// OneShot is the template name that selects the four-turn exemplar layout.
const OneShot = "one_shot"

// Region tags.
const (
	TagSystem    = "SYSTEM_CONFIG"
	TagUser      = "USER_CONFIG"
	TagAssistant = "ASSISTANT_CONFIG"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrTemplateProtocol is wrapped by every [ProtocolError].
var ErrTemplateProtocol = errors.New("prompt template protocol error")

// ProtocolError reports a template that lacks a tagged region required by
// the selected mode. It is a configuration error, not a task-data error.
type ProtocolError struct {
	Template string
	Tag      string
	Index    int // 0-based occurrence that was required
	Found    int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("prompt template %q: region {%s} #%d required, found %d", e.Template, e.Tag, e.Index+1, e.Found)
}

func (e *ProtocolError) Unwrap() error {
	return ErrTemplateProtocol
}

// Message is one turn of a chat request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var regionPatterns = map[string]*regexp.Regexp{
	TagSystem:    regionPattern(TagSystem),
	TagUser:      regionPattern(TagUser),
	TagAssistant: regionPattern(TagAssistant),
}

// regionPattern matches, non-greedily and across newlines, everything
// between {TAG} and {TAG_END}, dropping line breaks right before the end tag.
func regionPattern(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)\{` + tag + `\}(.*?)[\r\n]*\{` + tag + `_END\}`)
}

// FindRegions returns the content of every {tag}...{tag_END} region in
// text, in order of appearance.
func FindRegions(text, tag string) []string {
	re, ok := regionPatterns[tag]
	if !ok {
		re = regionPattern(regexp.QuoteMeta(tag))
	}
	matches := re.FindAllStringSubmatch(text, -1)
	regions := make([]string, 0, len(matches))
	for _, m := range matches {
		regions = append(regions, m[1])
	}
	return regions
}

// VarsFor builds the template substitutions for a task under cfg.
func VarsFor(task *models.MigrationTask, cfg *config.RunConfig) *Vars {
	return &Vars{
		Prompt:              cfg.PromptTemplate,
		LanguageName:        task.Language,
		OldLibName:          task.SourceLib,
		NewLibName:          task.TargetLib,
		CodeBeforeMigration: task.CodeBefore,
	}
}

// Build renders tmpl and assembles the message sequence for templateName.
func Build(tmpl, templateName string, vars *Vars) ([]Message, error) {
	formatted, err := Render(tmpl, vars)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt template %q: %w", templateName, err)
	}

	systems := FindRegions(formatted, TagSystem)
	users := FindRegions(formatted, TagUser)

	region := func(regions []string, tag string, i int) (string, error) {
		if i >= len(regions) {
			return "", &ProtocolError{Template: templateName, Tag: tag, Index: i, Found: len(regions)}
		}
		return regions[i], nil
	}

	system, err := region(systems, TagSystem, 0)
	if err != nil {
		return nil, err
	}
	user1, err := region(users, TagUser, 0)
	if err != nil {
		return nil, err
	}

	messages := []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user1},
	}
	if templateName != OneShot {
		return messages, nil
	}

	assistant, err := region(FindRegions(formatted, TagAssistant), TagAssistant, 0)
	if err != nil {
		return nil, err
	}
	user2, err := region(users, TagUser, 1)
	if err != nil {
		return nil, err
	}

	return append(messages,
		Message{Role: RoleAssistant, Content: assistant},
		Message{Role: RoleUser, Content: user2},
	), nil
}

// Assemble loads the template named by cfg.PromptTemplate and builds the
// messages for task. Every client family shares this algorithm.
func Assemble(templates *Templates, task *models.MigrationTask, cfg *config.RunConfig) ([]Message, error) {
	tmpl, err := templates.Load(cfg.PromptTemplate)
	if err != nil {
		return nil, err
	}
	return Build(tmpl, cfg.PromptTemplate, VarsFor(task, cfg))
}
