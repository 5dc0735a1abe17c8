package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	editing := Context{View: ViewNewProject}
	summary := Context{View: ViewNewProject, SummaryVisible: true}
	welcome := Context{View: ViewWelcome}

	tests := []struct {
		name       string
		transcript string
		ctx        Context
		wantOK     bool
		want       Command
	}{
		{
			name:       "help with step number",
			transcript: "ayuda con el paso 2",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindGetAIHelp, StepIndex: 1, Keyword: "ayuda con el paso 2"},
		},
		{
			name:       "help with step word",
			transcript: "Ayúdame con el paso tres.",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindGetAIHelp, StepIndex: 2, Keyword: "ayúdame con el paso tres"},
		},
		{
			name:       "english help with step",
			transcript: "help me with step 4",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindGetAIHelp, StepIndex: 3, Keyword: "help me with step 4"},
		},
		{
			name:       "help with out of range step targets focused step",
			transcript: "ayuda paso 9",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindGetAIHelp, StepIndex: FocusedStep, Keyword: "ayuda paso 9"},
		},
		{
			name:       "generic help",
			transcript: "obtener ayuda",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindGetAIHelp, StepIndex: FocusedStep, Keyword: "obtener ayuda"},
		},
		{
			name:       "next step",
			transcript: "Siguiente paso",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindNextStep, StepIndex: FocusedStep, Keyword: "siguiente paso"},
		},
		{
			name:       "navigation inert on summary",
			transcript: "siguiente",
			ctx:        summary,
			wantOK:     false,
		},
		{
			name:       "help with step inert on summary",
			transcript: "ayuda con el paso 2",
			ctx:        summary,
			wantOK:     false,
		},
		{
			name:       "navigation inert on welcome",
			transcript: "anterior",
			ctx:        welcome,
			wantOK:     false,
		},
		{
			name:       "dictate keeps original case",
			transcript: "escribe Los clientes de Madrid",
			ctx:        editing,
			wantOK:     true,
			want:       Command{Kind: KindDictate, Value: "Los clientes de Madrid", StepIndex: FocusedStep, Keyword: "escribe"},
		},
		{
			name:       "dictate without value is not a command",
			transcript: "dictar",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "start new only on welcome",
			transcript: "nuevo proyecto",
			ctx:        welcome,
			wantOK:     true,
			want:       Command{Kind: KindStartNew, StepIndex: FocusedStep, Keyword: "nuevo proyecto"},
		},
		{
			name:       "start new ignored while editing",
			transcript: "nuevo proyecto",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "view database anywhere",
			transcript: "ver proyectos guardados",
			ctx:        Context{View: ViewViewArchived},
			wantOK:     true,
			want:       Command{Kind: KindViewDatabase, StepIndex: FocusedStep, Keyword: "ver proyectos"},
		},
		{
			name:       "go back",
			transcript: "volver",
			ctx:        summary,
			wantOK:     true,
			want:       Command{Kind: KindGoBack, StepIndex: FocusedStep, Keyword: "volver"},
		},
		{
			name:       "save requires saveable",
			transcript: "guardar proyecto",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "save when saveable",
			transcript: "guardar proyecto",
			ctx:        Context{View: ViewNewProject, SummaryVisible: true, Saveable: true},
			wantOK:     true,
			want:       Command{Kind: KindSaveProject, StepIndex: FocusedStep, Keyword: "guardar proyecto"},
		},
		{
			name:       "download needs summary or archived view",
			transcript: "descargar pdf",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "download from archived view",
			transcript: "descargar resumen",
			ctx:        Context{View: ViewViewArchived},
			wantOK:     true,
			want:       Command{Kind: KindDownloadPDF, StepIndex: FocusedStep, Keyword: "descargar resumen"},
		},
		{
			name:       "unmatched speech is not dictated",
			transcript: "me gustaría vender pan",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "keyword must end on a word boundary",
			transcript: "siguientes ideas",
			ctx:        editing,
			wantOK:     false,
		},
		{
			name:       "empty",
			transcript: "  ¿? ",
			ctx:        editing,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Interpret(tt.transcript, tt.ctx)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestInterpretHonoursStepCount(t *testing.T) {
	got, ok := Interpret("ayuda paso 3", Context{View: ViewNewProject, StepCount: 2})
	assert.True(t, ok)
	assert.Equal(t, FocusedStep, got.StepIndex)
}

func TestFeedback(t *testing.T) {
	assert.Equal(t, "Comando no reconocido.", Feedback(Command{}, false))
	assert.Equal(t, "Comando: Ayuda para paso 2", Feedback(Command{Kind: KindGetAIHelp, StepIndex: 1}, true))
	assert.Equal(t, `Dictando: "hola"`, Feedback(Command{Kind: KindDictate, Value: "hola"}, true))
	assert.Equal(t, "Comando: volver", Feedback(Command{Kind: KindGoBack, Keyword: "volver"}, true))
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("database")
	assert.True(t, ok)
	assert.Equal(t, ViewDatabase, v)

	_, ok = ParseView("settings")
	assert.False(t, ok)
}
