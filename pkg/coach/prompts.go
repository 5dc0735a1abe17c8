package coach

import (
	"fmt"

	"ship-framework-be/pkg/ideation"
)

const iterationPreamble = "Actúa como un coach de producto que está ayudando a un usuario a iterar. Tu sugerencia anterior fue: \"%s\". El usuario ha actualizado su entrada. Proporciona un nuevo conjunto de sugerencias basadas en su entrada actualizada, reconociendo las mejoras o cambios si es posible. Aquí está la tarea original y la nueva entrada del usuario:\n\n---\n\n"

const problemPrompt = `Eres un coach de producto de clase mundial. Analiza el siguiente planteamiento del problema de un usuario: "%s".
Tu tarea es ayudar a refinarlo. Responde con la siguiente estructura, utilizando formato Markdown:
1.  **Preguntas Clave:** Formula 2-3 preguntas incisivas para ayudar al usuario a profundizar en la causa raíz y validar sus suposiciones.
2.  **Público Objetivo:** Describe el perfil del usuario ideal para este problema. Sé específico.
3.  **Planteamiento Refinado:** Reescribe el planteamiento del problema en una sola frase clara e impactante, usando el formato: "Para [Público Objetivo] que lucha con [Problema Específico], nuestra solución ayudará a [Resultado Deseado]."`

const hypothesisPrompt = `Eres un estratega de producto experto. El usuario está trabajando sobre este problema: "%s". Han propuesto la siguiente hipótesis: "%s".
Tu tarea es fortalecer esta hipótesis. Responde con esta estructura, utilizando formato Markdown:
1.  **Análisis de la Hipótesis:** Evalúa brevemente la hipótesis del usuario. ¿Es clara y comprobable?
2.  **Hipótesis Mejorada:** Reescribe la hipótesis usando el formato riguroso: "Creemos que al construir [Solución/Característica] para [Público Objetivo], lograremos [Resultado Medible]. Sabremos que esto es cierto cuando veamos [Métrica Específica] cambiar de [Valor Actual] a [Valor Objetivo]."
3.  **Métricas Clave:** Sugiere 2-3 métricas (una principal y dos secundarias) para rastrear el éxito y explica por qué son importantes.`

const implementationPrompt = `Eres un gerente de producto pragmático, experto en MVP. El usuario quiere probar esta hipótesis: "%s". Su plan inicial es: "%s".
Tu tarea es definir un MVP ultra-enfocado. Responde con esta estructura, utilizando formato Markdown:
1.  **Características Esenciales del MVP (Checklist):** Enumera las 3-5 características absolutamente mínimas necesarias para probar la hipótesis central. Para cada una, explica por qué es indispensable.
2.  **Lo que hay que OMITIR:** Enumera 2-3 características comunes o "agradables de tener" que deberían ser explícitamente excluidas del MVP para evitar la sobrecarga de funciones.
3.  **Prueba más simple:** ¿Cuál es la forma más rápida y barata de probar la idea principal, incluso antes de escribir una línea de código? (Ej: una página de aterrizaje, un prototipo manual, etc.)`

const reflectionPrompt = `Eres un experimentado asesor de startups. Un equipo ha obtenido los siguientes resultados de su MVP: "%s". Su contexto es: Problema: "%s" e Hipótesis: "%s".
Tu tarea es dar un consejo claro y accionable. Responde con esta estructura, utilizando formato Markdown:
1.  **Interpretación de los Resultados:** ¿Qué te dicen estos datos? Extrae 1-2 aprendizajes clave de los resultados del usuario.
2.  **Decisión Estratégica:** Basado en los aprendizajes, da una recomendación clara: **Perseverar**, **Pivotar**, o **Abandonar**. Justifica tu elección en una frase.
3.  **Próximos Pasos Concretos:** Proporciona una lista de 3 a 5 pasos siguientes y accionables que el equipo debería tomar en las próximas dos semanas basándose en tu recomendación.`

// BuildPrompt renders the stage instruction for step. When previousResponse
// is not blank the instruction asks for a refined pass over it.
func BuildPrompt(step ideation.StepID, inputs map[ideation.StepID]string, previousResponse string) (string, error) {
	var prompt string
	switch step {
	case ideation.StepProblem:
		prompt = fmt.Sprintf(problemPrompt, inputs[ideation.StepProblem])
	case ideation.StepHypothesis:
		prompt = fmt.Sprintf(hypothesisPrompt, inputs[ideation.StepProblem], inputs[ideation.StepHypothesis])
	case ideation.StepImplementation:
		prompt = fmt.Sprintf(implementationPrompt, inputs[ideation.StepHypothesis], inputs[ideation.StepImplementation])
	case ideation.StepReflection:
		prompt = fmt.Sprintf(reflectionPrompt, inputs[ideation.StepReflection], inputs[ideation.StepProblem], inputs[ideation.StepHypothesis])
	default:
		return "", fmt.Errorf("no prompt for step %q", step)
	}
	if previousResponse != "" {
		return fmt.Sprintf(iterationPreamble, previousResponse) + prompt, nil
	}
	return prompt, nil
}
