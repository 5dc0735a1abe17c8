package mailer

import (
	"testing"
	"time"

	"ship-framework-be/pkg/ideation"

	"github.com/stretchr/testify/assert"
)

func TestSummaryHTML(t *testing.T) {
	doc := ideation.NewDocument(ideation.Canonical())
	doc.ProjectName = "Recetas <beta>"
	doc.ClientProfile = ideation.ClientProfile{Name: "Ana", Company: "Cocina SA"}
	doc.Steps[0].DraftInput = "linea uno\nlinea dos"
	doc.Steps[0].CurrentResponse = "**Preguntas Clave**"

	body := SummaryHTML(ideation.NewArchivedProject(doc, time.Now()))

	assert.Contains(t, body, "Recetas &lt;beta&gt;")
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "(Cocina SA)")
	assert.Contains(t, body, "linea uno<br>linea dos")
	assert.Contains(t, body, "<blockquote")
	assert.Contains(t, body, doc.Steps[3].Title)
}
