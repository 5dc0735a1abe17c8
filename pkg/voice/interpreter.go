package voice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// View is the screen the client is showing when the transcript was captured.
type View string

const (
	ViewWelcome      View = "welcome"
	ViewNewProject   View = "new_project"
	ViewDatabase     View = "database"
	ViewViewArchived View = "view_archived"
)

// ParseView validates a view name sent by the client.
func ParseView(raw string) (View, bool) {
	switch v := View(raw); v {
	case ViewWelcome, ViewNewProject, ViewDatabase, ViewViewArchived:
		return v, true
	}
	return "", false
}

// Kind is the closed set of voice commands.
type Kind string

const (
	KindNextStep     Kind = "NEXT_STEP"
	KindPrevStep     Kind = "PREV_STEP"
	KindGetAIHelp    Kind = "GET_AI_HELP"
	KindDictate      Kind = "DICTATE"
	KindStartNew     Kind = "START_NEW"
	KindViewDatabase Kind = "VIEW_DATABASE"
	KindGoBack       Kind = "GO_BACK"
	KindSaveProject  Kind = "SAVE_PROJECT"
	KindDownloadPDF  Kind = "DOWNLOAD_PDF"
)

// FocusedStep is the step index of a help command that names no step.
const FocusedStep = -1

// Context is what the client was doing when the transcript was captured.
type Context struct {
	View           View
	SummaryVisible bool
	Saveable       bool
	// StepCount bounds the step numbers accepted by help commands. Zero means four.
	StepCount int
}

// Command is an interpreted transcript.
type Command struct {
	Kind Kind `json:"kind"`
	// Value is the dictated text for KindDictate.
	Value string `json:"value,omitempty"`
	// StepIndex is the zero-based target of KindGetAIHelp, or FocusedStep.
	StepIndex int `json:"stepIndex"`
	// Keyword is the phrase that matched.
	Keyword string `json:"keyword"`
}

type rule struct {
	keywords      []string
	kind          Kind
	views         []View
	requiresValue bool
}

// rules are evaluated in order and the first applicable match wins.
var rules = []rule{
	{keywords: []string{"siguiente paso", "siguiente", "next step", "next"}, kind: KindNextStep, views: []View{ViewNewProject}},
	{keywords: []string{"paso anterior", "anterior", "previous step", "previous"}, kind: KindPrevStep, views: []View{ViewNewProject}},
	{keywords: []string{"obtener ayuda", "ayúdame", "get help", "help me"}, kind: KindGetAIHelp, views: []View{ViewNewProject}},
	{keywords: []string{"dictar", "escribe", "dictate", "write"}, kind: KindDictate, views: []View{ViewNewProject}, requiresValue: true},
	{keywords: []string{"empezar nuevo proyecto", "nuevo proyecto", "start new project", "new project"}, kind: KindStartNew, views: []View{ViewWelcome}},
	{keywords: []string{"ver base de datos", "ver proyectos", "ver archivo", "ver proyectos guardados", "view database", "show projects", "view projects"}, kind: KindViewDatabase},
	{keywords: []string{"volver", "atrás", "go back", "back"}, kind: KindGoBack},
	{keywords: []string{"guardar proyecto", "save project"}, kind: KindSaveProject, views: []View{ViewNewProject}},
	{keywords: []string{"descargar pdf", "descargar resumen", "download pdf", "download summary"}, kind: KindDownloadPDF},
}

var helpWithStep = regexp.MustCompile(`(?:ayuda|ayúdame|help(?: me)?) (?:con (?:el )?|with )?(?:paso |step )?(\d+|uno|dos|tres|cuatro|one|two|three|four)\b`)

var numberWords = map[string]int{
	"uno": 1, "dos": 2, "tres": 3, "cuatro": 4,
	"one": 1, "two": 2, "three": 3, "four": 4,
}

// Interpret maps a transcript to a command. It reports false when nothing
// applicable matched; unmatched speech is never dictated implicitly.
func Interpret(transcript string, ctx Context) (Command, bool) {
	original := normalize(transcript)
	text := strings.ToLower(original)
	if text == "" {
		return Command{}, false
	}

	if m := helpWithStep.FindStringSubmatch(text); m != nil && ctx.View == ViewNewProject && !ctx.SummaryVisible {
		return Command{
			Kind:      KindGetAIHelp,
			StepIndex: stepIndex(m[1], ctx.stepCount()),
			Keyword:   m[0],
		}, true
	}

	for _, r := range rules {
		keyword, ok := matchPrefix(text, r.keywords)
		if !ok || !r.applies(ctx) {
			continue
		}
		cmd := Command{Kind: r.kind, StepIndex: FocusedStep, Keyword: keyword}
		if r.requiresValue {
			cmd.Value = remainder(original, keyword)
			if cmd.Value == "" {
				continue
			}
		}
		return cmd, true
	}
	return Command{}, false
}

// Feedback is the short confirmation shown to the user for a command.
func Feedback(cmd Command, ok bool) string {
	switch {
	case !ok:
		return "Comando no reconocido."
	case cmd.Kind == KindDictate:
		return fmt.Sprintf("Dictando: %q", cmd.Value)
	case cmd.Kind == KindGetAIHelp && cmd.StepIndex != FocusedStep:
		return fmt.Sprintf("Comando: Ayuda para paso %d", cmd.StepIndex+1)
	default:
		return "Comando: " + cmd.Keyword
	}
}

func (r rule) applies(ctx Context) bool {
	if len(r.views) > 0 && !containsView(r.views, ctx.View) {
		return false
	}
	switch r.kind {
	case KindSaveProject:
		return ctx.Saveable
	case KindDownloadPDF:
		return ctx.SummaryVisible || ctx.View == ViewViewArchived
	case KindNextStep, KindPrevStep, KindGetAIHelp, KindDictate:
		return !ctx.SummaryVisible
	}
	return true
}

func (c Context) stepCount() int {
	if c.StepCount <= 0 {
		return 4
	}
	return c.StepCount
}

func containsView(views []View, v View) bool {
	for _, candidate := range views {
		if candidate == v {
			return true
		}
	}
	return false
}

// matchPrefix returns the first keyword the text starts with, on a word boundary.
func matchPrefix(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if !strings.HasPrefix(text, k) {
			continue
		}
		rest := text[len(k):]
		if rest == "" || rest[0] == ' ' {
			return k, true
		}
	}
	return "", false
}

func stepIndex(raw string, count int) int {
	n, ok := numberWords[raw]
	if !ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return FocusedStep
		}
		n = parsed
	}
	if n < 1 || n > count {
		return FocusedStep
	}
	return n - 1
}

// remainder cuts the keyword off the original-case transcript. Lower-casing
// keeps the rune count, so the cut is done in runes.
func remainder(original, keyword string) string {
	runes := []rune(original)
	n := len([]rune(keyword))
	if n >= len(runes) {
		return ""
	}
	return strings.TrimSpace(string(runes[n:]))
}

// normalize trims whitespace and the punctuation speech recognizers add
// around an utterance, and collapses inner whitespace.
func normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".,;:!?¡¿", r)
	})
}
