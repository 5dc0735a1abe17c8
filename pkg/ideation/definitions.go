package ideation

// Definition holds the immutable, compiled-in description of a stage.
type Definition struct {
	ID          StepID
	Title       string
	Description string
	HelpText    string
	Placeholder string
}

var canonical = []Definition{
	{
		ID:          StepProblem,
		Title:       "Paso 1: Definir el Problema",
		Description: "Describe claramente el problema que quieres resolver. ¿Para quién es? ¿Por qué es importante? Intenta llegar a la causa raíz.",
		HelpText:    "Esta es la base de todo. Un problema bien definido conduce a una solución enfocada. Antes de pensar en características, obsesiónate con el 'porqué'. Habla con usuarios potenciales. ¿Es un problema real y frecuente? ¿Pagarían por una solución? Una buena técnica es la de los '5 Porqués' para llegar a la causa raíz.",
		Placeholder: "Ej: Los cocineros aficionados tienen dificultades para encontrar recetas saludables y fáciles que se ajusten a sus restricciones dietéticas...",
	},
	{
		ID:          StepHypothesis,
		Title:       "Paso 2: Formular una Hipótesis",
		Description: "Propón una solución. ¿Cuál es tu hipótesis sobre cómo resolver el problema y cómo medirás el éxito?",
		HelpText:    "Una hipótesis no es una idea, es una apuesta comprobable. Debe ser falsable. El formato 'Creemos que [haciendo esto] para [estas personas], lograremos [este resultado medible]' te obliga a ser específico. Evita métricas vanidosas como 'descargas' y céntrate en métricas que demuestren valor real, como 'retención' o 'engagement'.",
		Placeholder: "Creemos que una app móvil con filtros de recetas por dieta, alergias y tiempo de preparación ayudará a los cocineros a encontrar comidas adecuadas rápidamente. El éxito se medirá por el número de recetas guardadas...",
	},
	{
		ID:          StepImplementation,
		Title:       "Paso 3: Planificar la Implementación (MVP)",
		Description: "Define el Producto Mínimo Viable (MVP). ¿Cuáles son las características esenciales para probar tu hipótesis?",
		HelpText:    "El objetivo del MVP no es construir una versión reducida de tu producto final; es aprender lo máximo posible con el mínimo esfuerzo. Sé brutalmente minimalista. Pregúntate: '¿Cuál es la única característica sin la cual no podemos probar nuestra hipótesis principal?'. Todo lo demás es ruido.",
		Placeholder: "Ej: 1. Buscador de recetas con filtros. 2. Página de detalles de la receta. 3. Opción para guardar recetas favoritas...",
	},
	{
		ID:          StepReflection,
		Title:       "Paso 4: Perseverar o Pivotar",
		Description: "Imagina que has lanzado tu MVP. Describe los resultados (reales o imaginarios) y reflexiona sobre los siguientes pasos. ¿Debes Perseverar o Pivotar?",
		HelpText:    "Esta es la fase más difícil y requiere honestidad brutal. Perseverar significa que vas por buen camino y necesitas optimizar. Pivotar es un cambio de estrategia, no un fracaso. No te enamores de tu solución, enamórate del problema del usuario.",
		Placeholder: "Ej: Después del lanzamiento, notamos que muchos usuarios guardan recetas pero pocos las cocinan. Los comentarios indican que los ingredientes son difíciles de encontrar...",
	},
}

// Canonical returns a fresh copy of the four stage definitions, in order.
func Canonical() []Definition {
	out := make([]Definition, len(canonical))
	copy(out, canonical)
	return out
}
